package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sanjeevani/internal/embedding"
	"sanjeevani/internal/ingest"
	"sanjeevani/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file.json]",
	Short: "Load a seed data file into the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := ingest.Load(args[0])
		if err != nil {
			return err
		}

		embedder, err := embedding.NewEngine(embedding.Config{
			Provider: cfg.Embedding.Provider,
			APIKey:   cfg.Embedding.APIKey,
			Model:    cfg.Embedding.Model,
			Endpoint: cfg.Embedding.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("embedding engine: %w", err)
		}

		kb, err := store.Open(cfg.Store.DatabasePath, embedder)
		if err != nil {
			return fmt.Errorf("knowledge base: %w", err)
		}
		defer kb.Close()

		cols := ingest.Collections{
			Research:     cfg.Store.ResearchCollection,
			Conservation: cfg.Store.ConservationCollection,
		}
		if err := ingest.Apply(cmd.Context(), kb, seed, cols); err != nil {
			return err
		}
		fmt.Printf("Seeded %d plant(s) and %d location(s) into %s\n",
			len(seed.Plants), len(seed.Locations), cfg.Store.DatabasePath)
		return nil
	},
}
