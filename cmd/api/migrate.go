package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/foodlink/foodlink-api/pkg/database"
)

var migrateCommand = &cli.Command{
	Name:   "migrate",
	Usage:  "Apply the database schema and exit",
	Action: migrate,
}

func migrate(cCtx *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cCtx.Context
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetries)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	log.Info().Str("database", cfg.DB.Name).Msg("migration complete")
	return nil
}
