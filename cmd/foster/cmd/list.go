package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
)

var listPrefix string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List keys in order",
	Long: `List all keys in the store in pmnk order, optionally filtered by prefix.

Example:
  foster list --prefix user:`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tree, ps, err := openTree()
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}
		defer ps.Close()

		prefix := []byte(listPrefix)
		err = tree.Scan(func(key, _ []byte) bool {
			if bytes.HasPrefix(key, prefix) {
				fmt.Printf("%s\n", string(key))
			}
			return true
		})
		if err != nil {
			fmt.Printf("Error scanning keys: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Only list keys with this prefix")
}
