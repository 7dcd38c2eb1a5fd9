package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/tagwire"
)

// NewRootCmd builds the tagwire command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tagwire",
		Short: "Inspect and convert tagged binary struct payloads",
		Long: `tagwire reads Thrift-style binary and compact struct payloads
without a schema.

Examples:
  tagwire inspect payload.bin
  tagwire inspect --protocol compact payload.bin
  tagwire convert --from binary --to compact payload.bin payload.compact`,
		SilenceUsage: true,
	}
	root.AddCommand(newInspectCmd())
	root.AddCommand(newConvertCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func protocolFlag(cmd *cobra.Command, name string) (tagwire.Protocol, error) {
	v, _ := cmd.Flags().GetString(name)
	p, ok := tagwire.ProtocolByName(v)
	if !ok {
		return nil, fmt.Errorf("unknown protocol %q (want binary or compact)", v)
	}
	return p, nil
}

// readInput reads a file argument, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
