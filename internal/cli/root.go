// Package cli implements the focusctl command-line interface: a thin
// collaborator over the same Recommender the HTTP API serves, useful for
// scripting and local debugging without a running daemon.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tutu-network/focusband/internal/core/recommender"
	"github.com/tutu-network/focusband/internal/daemon"
	"github.com/tutu-network/focusband/internal/infra/storage"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config.toml")
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "focusctl",
	Short: "Adaptive focus-duration recommender",
	Long: `focusctl drives the adaptive focus-duration recommender: a contextual
bandit that learns which focus and break durations work for a given task
type and energy level, and serves recommendations over HTTP or this CLI.`,
}

// Execute runs the root command, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "focusband.toml"
	}
	return home + "/.focusband/config.toml"
}

// openRecommender loads the config at configPath, opens the storage backend
// it names, and constructs a Recommender over it. Callers are responsible
// for closing the returned *storage.DB once they're done.
func openRecommender(ctx context.Context) (*recommender.Recommender, *storage.DB, error) {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage at %s: %w", cfg.Storage.Path, err)
	}

	rec := recommender.New(ctx, recommender.Config{Store: db})
	return rec, db, nil
}
