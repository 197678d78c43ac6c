package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"PortfolioAI/app/configs"
)

var configPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolioai",
		Short:        "Answer questions about a portfolio from its own content",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to the YAML config file")

	root.AddCommand(serveCmd(), askCmd(), seedCmd())
	return root
}

func loadConfig() (*configs.Config, error) {
	cfg, err := configs.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		log.Println("ℹ️ No config file given, using defaults and environment")
	}
	return cfg, nil
}
