package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Put a key-value pair",
	Long: `Put a key-value pair into the store.

Example:
  foster put mykey myvalue`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := []byte(args[0])
		value := []byte(args[1])

		tree, ps, err := openTree()
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}
		defer ps.Close()

		if err := tree.Put(key, value); err != nil {
			fmt.Printf("Error putting key-value: %v\n", err)
			return
		}
		if err := tree.Snapshot(ps); err != nil {
			fmt.Printf("Error persisting tree: %v\n", err)
			return
		}

		fmt.Printf("Successfully put key '%s' with value '%s'\n", string(key), string(value))
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
