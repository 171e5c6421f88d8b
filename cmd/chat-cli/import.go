// cmd/chat-cli/import.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	appconn "govsupport-chatbot/internal/app"
	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/models"
	"govsupport-chatbot/internal/repository"
	"govsupport-chatbot/internal/search"
)

// policyWriter stores one policy somewhere.
type policyWriter interface {
	Save(ctx context.Context, p models.Policy) error
}

type indexWriter interface {
	Index(ctx context.Context, p models.Policy) error
}

var importCmd = &cobra.Command{
	Use:   "import-policies <file.json>",
	Short: "Load a JSON array of policies into PostgreSQL and the search index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		policies, err := readPolicies(f)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := "info"
		if debug {
			level = "debug"
		}
		log := logger.NewStructured(level, "console")

		ctx := cmd.Context()
		conns, err := appconn.Connect(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer conns.Close()

		if err := conns.Prepare(ctx, cfg); err != nil {
			return err
		}

		repo := repository.NewPolicyRepository(conns.Postgres.DB)
		searcher := search.NewPolicySearcher(conns.Elasticsearch.Client, cfg.Search, nil, log)

		n, err := importPolicies(ctx, policies, repo, searcher)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d policies\n", n, len(policies))
		return err
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func readPolicies(r io.Reader) ([]models.Policy, error) {
	var policies []models.Policy
	if err := json.NewDecoder(r).Decode(&policies); err != nil {
		return nil, fmt.Errorf("decode policies: %w", err)
	}
	for i, p := range policies {
		if p.ID == "" || p.Title == "" {
			return nil, fmt.Errorf("policy #%d: id and title are required", i+1)
		}
	}
	return policies, nil
}

// importPolicies writes each policy to the catalogue, then the index.
// It stops at the first failure and reports how many were written.
func importPolicies(ctx context.Context, policies []models.Policy, repo policyWriter, index indexWriter) (int, error) {
	for i, p := range policies {
		if err := repo.Save(ctx, p); err != nil {
			return i, fmt.Errorf("save %s: %w", p.ID, err)
		}
		if err := index.Index(ctx, p); err != nil {
			return i, fmt.Errorf("index %s: %w", p.ID, err)
		}
	}
	return len(policies), nil
}
