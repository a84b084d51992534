package main

import (
	"fmt"

	"quiz-forge/internal/config"
	"quiz-forge/internal/database"
	"quiz-forge/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd(load func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := load()
			dir := database.Direction(args[0])
			if err := database.RunMigrations(cfg.DB, dir); err != nil {
				return fmt.Errorf("migrate %s: %w", dir, err)
			}
			logger.Get().Info("Migrations finished", zap.String("direction", string(dir)), zap.String("driver", cfg.DB.Driver))
			return nil
		},
	}
}
