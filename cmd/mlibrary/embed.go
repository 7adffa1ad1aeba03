package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/service"
)

func newEmbedCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "maintain the embedding cache",
	}
	cmd.AddCommand(newBackfillCmd(configPath), newPurgeCmd(configPath))
	return cmd
}

func newBackfillCmd(configPath *string) *cobra.Command {
	var (
		kind  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "compute missing embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseBackfillKinds(kind)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			conn, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			ctx := context.Background()
			svcs, err := newServices(ctx, cfg, conn)
			if err != nil {
				return err
			}
			report, err := svcs.search.Backfill(ctx, kinds, force)
			if err != nil {
				return err
			}
			modelName := svcs.search.Status().Model
			cached, err := svcs.embedRepo.CountByModel(ctx, modelName)
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(struct {
				*service.BackfillReport
				Model  string `json:"model"`
				Cached int64  `json:"cached"`
			}{report, modelName, cached})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "all", "books, notes, reviews, files or all")
	cmd.Flags().BoolVar(&force, "force", false, "drop cached vectors before recomputing")
	return cmd
}

func newPurgeCmd(configPath *string) *cobra.Command {
	var before string
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "delete cached embeddings created before a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoff, err := time.Parse(time.RFC3339, before)
			if err != nil {
				return fmt.Errorf("--before must be RFC3339: %w", err)
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			conn, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			ctx := context.Background()
			svcs, err := newServices(ctx, cfg, conn)
			if err != nil {
				return err
			}
			n, err := service.PurgeEmbeddings(ctx, svcs.embedRepo, cutoff)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d cached embeddings\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "RFC3339 cutoff time")
	return cmd
}

var backfillKinds = map[string]model.OwnerKind{
	"books":   model.OwnerKindBook,
	"notes":   model.OwnerKindNote,
	"reviews": model.OwnerKindReview,
	"files":   model.OwnerKindFileText,
}

// parseBackfillKinds accepts a comma separated list of kind names.
func parseBackfillKinds(value string) ([]model.OwnerKind, error) {
	out := make([]model.OwnerKind, 0)
	for _, part := range strings.Split(value, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if name == "all" {
			return model.OwnerKinds(), nil
		}
		kind, ok := backfillKinds[name]
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", part)
		}
		out = append(out, kind)
	}
	if len(out) == 0 {
		return model.OwnerKinds(), nil
	}
	return out, nil
}
