package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sayounara/foster-btree/pkg/codec"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <key> <value>",
	Short: "Show the encoded form of a record",
	Long: `Encode a key-value pair the way the tree stores it and print the
pmnk and the payload bytes.

Example:
  foster inspect mykey myvalue`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := []byte(args[0])
		value := []byte(args[1])

		pairCodec := codec.NewBytesPairCodec[uint32]()
		pmnk := pairCodec.PMNK(key)

		payload := make([]byte, pairCodec.PayloadLength(key, value))
		pairCodec.Encode(key, value, payload)

		fmt.Printf("pmnk:    0x%08x\n", pmnk)
		fmt.Printf("payload: %d bytes\n", len(payload))
		fmt.Print(hex.Dump(payload))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
