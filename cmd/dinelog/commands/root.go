// Package commands implements the dinelog command-line client. Every command
// runs the use cases in-process against the configured backends.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kirillkom/dinelog/internal/bootstrap"
	"github.com/kirillkom/dinelog/internal/config"
	"github.com/kirillkom/dinelog/internal/observability/logging"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "dinelog",
	Short: "Query and maintain a personal restaurant review log",
	Long: `dinelog answers natural-language questions about visited restaurants,
filters reviews with structured criteria, normalizes menu item names and
imports or exports the review log.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
		} else {
			_ = godotenv.Load()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// withApp builds the application from the environment and runs fn with a
// context cancelled on interrupt.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "cli", level))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()
	return fn(ctx, app)
}
