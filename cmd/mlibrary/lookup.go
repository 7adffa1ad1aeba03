package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xxxsen/mlibrary/internal/metadata"
)

func newLookupCmd(configPath *string) *cobra.Command {
	var isbn string
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "resolve an isbn against the external sources and print the record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			clean := metadata.CleanISBN(isbn)
			if clean == "" {
				return fmt.Errorf("--isbn is required")
			}
			ctx := context.Background()
			resolver, err := newResolver(ctx, cfg)
			if err != nil {
				return err
			}
			res := resolver.Resolve(ctx, clean)
			if !res.Found() {
				if res.Err != nil {
					return fmt.Errorf("no record for %s: %w", clean, res.Err)
				}
				return fmt.Errorf("no record for %s", clean)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Record)
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "isbn-10 or isbn-13")
	return cmd
}
