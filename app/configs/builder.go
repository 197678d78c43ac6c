package configs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"PortfolioAI/app/chat"
	"PortfolioAI/app/clients"
	"PortfolioAI/app/models"
	"PortfolioAI/app/rag"
	"PortfolioAI/app/storage"
)

// Services holds every long-lived dependency built from a Config.
type Services struct {
	LLM          *models.LLMClient
	Vectors      *rag.QdrantStore
	Queries      *storage.SQLiteStorage
	Embedder     *rag.Embedder
	Orchestrator *chat.Orchestrator
}

func (c *Config) Build() (*Services, error) {
	llm := models.NewLLMClient(c.LLM)

	vectors, err := rag.NewQdrantStore(c.Qdrant)
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}

	svc := &Services{
		LLM:      llm,
		Vectors:  vectors,
		Embedder: rag.NewEmbedder(llm, c.Embedder),
	}

	deps := chat.Deps{
		Embedder:  svc.Embedder,
		Retriever: rag.NewRetriever(vectors, c.Retrieval.OverfetchFactor),
		Generator: models.NewGenerator(llm),
	}

	if c.Storage.Enabled {
		queries, err := storage.NewSQLiteStorage(c.Storage.DBPath)
		if err != nil {
			vectors.Close()
			return nil, fmt.Errorf("open query log: %w", err)
		}
		svc.Queries = queries
		deps.Recorder = queries
	} else {
		log.Println("ℹ️ Query log disabled")
	}

	svc.Orchestrator = chat.NewOrchestrator(deps, c.Settings())
	return svc, nil
}

// Seeder returns a content seeder writing into the configured collection.
func (c *Config) Seeder(svc *Services) *rag.Seeder {
	return rag.NewSeeder(svc.Vectors, svc.Embedder, c.Seed)
}

func (s *Services) Close() error {
	var errs []error
	if s.Queries != nil {
		errs = append(errs, s.Queries.Close())
	}
	if s.Vectors != nil {
		errs = append(errs, s.Vectors.Close())
	}
	return errors.Join(errs...)
}

// Ping checks the model server so health endpoints report upstream status.
func (s *Services) Ping(ctx context.Context) error {
	return s.LLM.Ping(ctx)
}

func (c *Config) InitializeClients(clientRegistry *clients.Registry, svc *Services) error {
	if len(c.Clients) == 0 {
		log.Println("ℹ️ No clients configured")
		return nil
	}

	for _, clientCfg := range c.Clients {
		if !clientCfg.Enabled {
			log.Printf("⏭️ Client %s is disabled, skipping\n", clientCfg.Type)
			continue
		}

		log.Printf("🔌 Initializing %s client...\n", clientCfg.Type)
		client, err := clients.CreateClient(clientCfg)
		if err != nil {
			return fmt.Errorf("failed to create %s client: %w", clientCfg.Type, err)
		}

		if err := clientRegistry.Register(client, svc.Orchestrator, svc); err != nil {
			return fmt.Errorf("failed to register %s client: %w", clientCfg.Type, err)
		}

		log.Printf("✅ %s client initialized\n", clientCfg.Type)
	}

	return nil
}
