/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sayounara/foster-btree/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the REST API server backed by the tree.

The server restores the tree from the latest snapshot under the data
directory. POST /api/v1/snapshot persists the current state.

Examples:
  foster serve --port=8080
  foster serve --config=foster.yaml --data-dir=./data`,
	Run: func(cmd *cobra.Command, args []string) {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Port = port
		}

		tree, ps, err := openTree()
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}
		defer ps.Close()

		serverConfig := api.ServerConfig{
			Bind: cfg.Bind,
			Port: cfg.Port,
		}
		snapshot := func() error { return tree.Snapshot(ps) }

		if err := api.StartServer(tree, snapshot, serverConfig); err != nil {
			fmt.Printf("Error running server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides config)")
}
