package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redlantern/fortunebot/fortunebot"
	"github.com/redlantern/fortunebot/fortunebot/logger"
	"github.com/redlantern/fortunebot/internal/gateways/database"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "fortunebot",
	Short:         "Fortune of the Red Dragon event bot",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute(v, c string) {
	version, commit = v, c
	rootCmd.Version = fmt.Sprintf("%s (%s)", v, c)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed",
			slog.String("type", "sys"),
			slog.Any("error", err),
		)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config and installs the logger it describes.
func loadConfig() (*fortunebot.Config, error) {
	cfg, err := fortunebot.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.SetDefault(slog.New(logger.New(logger.Options{
		Format:    cfg.Log.Format,
		Level:     cfg.Log.Level,
		AddSource: cfg.Log.AddSource,
	})))
	return cfg, nil
}

func openDB(ctx context.Context, cfg database.Config) (*database.DB, error) {
	start := time.Now()

	connectCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	db, err := database.New(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := db.InitializeSchema(connectCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("driver", db.Driver()),
		slog.Duration("took", time.Since(start)),
	)
	return db, nil
}
