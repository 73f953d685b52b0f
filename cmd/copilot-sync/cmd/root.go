package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/devinsights/copilot-sync/internal/metrics"
	"github.com/devinsights/copilot-sync/pkg/config"
	"github.com/devinsights/copilot-sync/pkg/domo"
	"github.com/devinsights/copilot-sync/pkg/github"
	"github.com/devinsights/copilot-sync/pkg/sync"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   "copilot-sync",
		Short: "Synchronize GitHub Copilot usage and directory data into Domo",
		Long: `copilot-sync pulls Copilot usage metrics and user/team directory data
from the GitHub API and loads it into Domo datasets. Metrics runs are
incremental: a persisted checkpoint tracks the last synchronized date so
already-loaded ranges are never fetched twice. Directory runs replace the
users dataset with a point-in-time snapshot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Optional .env file loaded before the config")
}

// Execute runs the CLI. Any failed run exits non-zero so a scheduler can
// alert and retry.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the loaded configuration and shared collaborators for one
// command invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newApp() (*app, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		// Default .env is optional.
		_ = godotenv.Load()
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger}, nil
}

// close flushes logs and delivers run metrics. Called via defer, including
// on failed runs, so failures are visible on the Pushgateway too.
func (a *app) close() {
	if a.cfg.Monitoring.Enabled && a.cfg.Monitoring.PushgatewayURL != "" {
		if err := metrics.Push(a.cfg.Monitoring.PushgatewayURL, a.cfg.Monitoring.JobName); err != nil {
			a.logger.Warn("Failed to push run metrics", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) newDomoClient() (*domo.Client, error) {
	if a.cfg.Domo.ClientID == "" {
		return nil, nil
	}
	return domo.NewClient(&a.cfg.Domo, domo.WithLogger(a.logger))
}

func (a *app) newEngine() (*sync.Engine, error) {
	gh, err := github.NewClient(&a.cfg.GitHub, github.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}

	var uploader sync.Uploader
	dc, err := a.newDomoClient()
	if err != nil {
		return nil, err
	}
	if dc != nil {
		uploader = dc
	}

	dispatcher := sync.NewDispatcher(uploader, a.logger)
	checkpoints := sync.NewFileCheckpointStore(a.cfg.Sync.CheckpointFile)
	snapshots := sync.NewSnapshotWriter(a.cfg.Sync.OutputDir, a.logger)

	return sync.NewEngine(a.cfg, gh, dispatcher, checkpoints, snapshots, a.logger), nil
}
