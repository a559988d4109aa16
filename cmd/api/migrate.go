package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/figmachat/figmachat-backend/config"
	"github.com/figmachat/figmachat-backend/internal/bootstrap"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
	"github.com/figmachat/figmachat-backend/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		pool, err := bootstrap.OpenDB(cmd.Context(), bootstrap.DBOptions{DSN: cfg.Database.DSN, MaxConns: 1})
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		log.Info("schema applied")
		return nil
	},
}
