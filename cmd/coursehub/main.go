// Command coursehub runs the course marketplace API.
//
// @title                       CourseHub Marketplace API
// @version                     1.0
// @description                 Admin and user accounts, course catalog and purchases.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  AdminBearer
// @in                          header
// @name                        Authorization
// @securityDefinitions.apikey  UserBearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coursehub/marketplace/internal/infrastructure/config"
	"github.com/coursehub/marketplace/pkg/logger"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "coursehub",
		Short:        "Course marketplace API",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// setup loads the configuration and initialises the process logger.
func setup(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "coursehub",
	})
	return cfg, log, nil
}
