package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"quiz-forge/internal/app"
	"quiz-forge/internal/config"
	"quiz-forge/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfg *config.Config
	load := func() *config.Config { return cfg }

	root := &cobra.Command{
		Use:          "quizforge",
		Short:        "Generate, review and seed exam questions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				loaded.Logger.Level = level
			}
			if err := logger.Initialize(loaded.Logger); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cfg = loaded
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")

	root.AddCommand(
		generateCmd(load),
		quickCmd(load),
		reviewCmd(load),
		migrateCmd(load),
		seedCmd(load),
	)
	return root
}

// withComponents builds the full object graph for the duration of fn.
func withComponents(ctx context.Context, cfg *config.Config, fn func(*app.Components) error) error {
	components, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer components.Close()
	return fn(components)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
