/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sayounara/foster-btree/pkg/btree"
	"github.com/sayounara/foster-btree/pkg/codec"
	"github.com/sayounara/foster-btree/pkg/config"
	"github.com/sayounara/foster-btree/pkg/store"
)

var (
	configPath string
	cfg        *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "foster",
	Short: "Foster B-tree - ordered KV store",
	Long: `A B-tree key-value store built on pmnk-prefixed slotted pages,
with snapshot persistence and a REST API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if config.ConfigExists(configPath) {
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		} else {
			cfg = config.DefaultConfig()
		}
		if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
			cfg.DataDir = dataDir
		}
		setupLogging(cfg.Logging.Level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "foster.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the store (overrides config)")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// openTree opens the page store under the configured data directory and
// restores the tree from the latest snapshot.
func openTree() (*btree.Tree[[]byte, []byte, uint32], *store.PageStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	ps, err := store.NewPageStore(store.PageStoreConfig{
		Path:       cfg.DataDir,
		CacheBytes: cfg.Engine.CacheBytes,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open page store: %w", err)
	}

	tree, err := btree.Restore(
		codec.NewBytesPairCodec[uint32](),
		bytes.Equal,
		btree.Config{PageSize: cfg.Engine.PageSize},
		ps,
	)
	if err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("failed to restore tree: %w", err)
	}

	return tree, ps, nil
}
