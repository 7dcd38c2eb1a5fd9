package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/tagwire"
)

func newConvertCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "convert <in> [out]",
		Short: "Transcode a payload between protocols",
		Long: `Re-encode a struct payload from one protocol to another without a
schema. Output goes to stdout when no output file is given.

Example:
  tagwire convert --from binary --to compact in.bin out.bin`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := protocolFlag(cmd, "from")
			if err != nil {
				return err
			}
			to, err := protocolFlag(cmd, "to")
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := tagwire.Transcode(from, to, data)
			if err != nil {
				return fmt.Errorf("failed to convert payload: %w", err)
			}
			if len(args) == 2 {
				if err := os.WriteFile(args[1], out, 0o644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				return nil
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	c.Flags().String("from", "binary", "input protocol (binary or compact)")
	c.Flags().String("to", "compact", "output protocol (binary or compact)")
	return c
}
