package clients

import (
	"context"

	"PortfolioAI/app/chat"
)

// Service answers one question; *chat.Orchestrator implements it.
type Service interface {
	HandleQuery(ctx context.Context, message string, opts chat.Options) chat.QueryResult
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Interface interface {
	Subscribe(svc Service, health Pinger) error
	Close() error
}

type Client struct {
	service Service
	health  Pinger
}

func (c *Client) bind(svc Service, health Pinger) {
	c.service = svc
	c.health = health
}
