package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a key-value pair",
	Long: `Delete a key-value pair from the store.

Example:
  foster delete mykey`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := []byte(args[0])

		tree, ps, err := openTree()
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}
		defer ps.Close()

		if err := tree.Delete(key); err != nil {
			fmt.Printf("Error deleting key: %v\n", err)
			return
		}
		if err := tree.Snapshot(ps); err != nil {
			fmt.Printf("Error persisting tree: %v\n", err)
			return
		}

		fmt.Printf("Successfully deleted key '%s'\n", string(key))
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
