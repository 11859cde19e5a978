package main

import (
	"context"
	"fmt"

	"hypercastle/internal/config"
	"hypercastle/internal/store/postgres"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (*postgres.Client, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is not set in %s", configPath)
	}
	return postgres.New(ctx, cfg.Database.DSN)
}
