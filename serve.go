package main

import (
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PortfolioAI/app/clients"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the configured clients (HTTP endpoint, Discord bot)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Clients) == 0 {
				cfg.Clients = []clients.Config{{Type: "http", Enabled: true}}
			}

			svc, err := cfg.Build()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := svc.Ping(ctx); err != nil {
				log.Printf("⚠️ LLM server not reachable yet: %v", err)
			}

			registry := clients.NewRegistry()
			defer registry.CloseAll()
			if err := cfg.InitializeClients(registry, svc); err != nil {
				return err
			}

			log.Println("✅ PortfolioAI is up")
			<-ctx.Done()
			log.Println("🔌 Shutting down")
			return nil
		},
	}
}

