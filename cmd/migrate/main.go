package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Rrens/chat-workspace/internal/config"
	"github.com/Rrens/chat-workspace/internal/logging"
	"github.com/Rrens/chat-workspace/internal/repository/postgres"
)

func main() {
	var (
		cfg       *config.Config
		logCloser io.Closer
	)

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the Postgres key-value store schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if it exists
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logCloser, err = logging.Setup(cfg.Logging, false)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			log.Info().
				Str("host", cfg.Database.Host).
				Int("port", cfg.Database.Port).
				Str("source", cfg.Database.MigrationsPath).
				Msg("Connecting to database")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logCloser.Close()
		},
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			return postgres.RollbackMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath, steps)
		},
	}

	rootCmd.AddCommand(upCmd, downCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		os.Exit(1)
	}
}
