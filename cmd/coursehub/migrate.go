package main

import (
	"github.com/spf13/cobra"

	"github.com/coursehub/marketplace/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create indexes (mongo) or schema (sqlite) for the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg, log)
		},
	}
}
