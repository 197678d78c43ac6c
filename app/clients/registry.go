package clients

import (
	"fmt"
	"log"
	"sync"
)

// Config defines the configuration for a client connector
type Config struct {
	Type    string            `yaml:"type" json:"type" validate:"required,oneof=http discord"`
	Enabled bool              `yaml:"enabled" json:"enabled"`
	Config  map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

type Registry struct {
	mu      sync.RWMutex
	clients []Interface
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make([]Interface, 0),
	}
}

func (r *Registry) Register(client Interface, svc Service, health Pinger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := client.Subscribe(svc, health); err != nil {
		return err
	}
	r.clients = append(r.clients, client)
	return nil
}

func (r *Registry) GetAll() []Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Interface, len(r.clients))
	copy(result, r.clients)
	return result
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.clients {
		if err := client.Close(); err != nil {
			log.Printf("⚠️ Error closing client: %v\n", err)
		}
	}
	r.clients = make([]Interface, 0)
}

func CreateClient(cfg Config) (Interface, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("client %s is disabled", cfg.Type)
	}

	switch cfg.Type {
	case "http":
		return NewHTTPClientFromConfig(cfg.Config)
	case "discord":
		return NewDiscordClientFromConfig(cfg.Config)
	default:
		return nil, fmt.Errorf("unknown client type: %s", cfg.Type)
	}
}
