package cmd

import (
	"encoding/json"
	"fmt"

	countsync "coop-inventory/feature/count/sync"

	"github.com/spf13/cobra"
)

// packetCmd groups offline packet utilities. Useful when debugging a scan
// that a device refused: the same decoder the service uses runs here.
var packetCmd = &cobra.Command{
	Use:   "packet",
	Short: "Inspect sync packets",
}

var packetDecodeCmd = &cobra.Command{
	Use:   "decode <encoded>",
	Short: "Decode a scanned packet and print it as JSON",
	Long: `Decodes either a join invitation (prefixed) or a data packet and
prints the structured content. Exits non-zero on a malformed packet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encoded := args[0]

		var decoded any
		if countsync.IsJoinPacket(encoded) {
			join, err := countsync.DecodeJoinPacket(encoded)
			if err != nil {
				return err
			}
			decoded = join
		} else {
			packet, err := countsync.DecodePacket(encoded)
			if err != nil {
				return err
			}
			decoded = packet
		}

		out, err := json.MarshalIndent(decoded, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var packetChunkCmd = &cobra.Command{
	Use:   "chunk <encoded>",
	Short: "Split an encoded packet into wireless chunk frames",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := cmd.Flags().GetInt("size")
		if err != nil {
			return err
		}

		for _, chunk := range countsync.SplitChunks(args[0], size) {
			frame, err := json.Marshal(chunk)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(frame))
		}
		return nil
	},
}

func init() {
	packetChunkCmd.Flags().Int("size", countsync.DefaultChunkSize, "chunk payload size in characters")
	packetCmd.AddCommand(packetDecodeCmd)
	packetCmd.AddCommand(packetChunkCmd)
	RootCmd.AddCommand(packetCmd)
}
