package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"PortfolioAI/app/utils"
)

func seedCmd() *cobra.Command {
	var (
		force  bool
		folder string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Chunk, embed and upload the content folder to the vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if folder != "" {
				cfg.Seed.Folder = folder
			}

			paths, err := utils.LoadFilesFromDir(cfg.Seed.Folder)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.BuildTree(cfg.Seed.Folder, paths))

			svc, err := cfg.Build()
			if err != nil {
				return err
			}
			defer svc.Close()

			n, err := cfg.Seeder(svc).Seed(cmd.Context(), force)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			log.Printf("✅ Seeded %d chunks from %d files into %q", n, len(paths), cfg.Qdrant.Collection)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "upload even when the collection already exists")
	cmd.Flags().StringVar(&folder, "folder", "", "content folder (overrides seed.folder)")
	return cmd
}
