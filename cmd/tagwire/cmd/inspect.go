package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zoobzio/tagwire"
)

func newInspectCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the top-level fields of a payload",
		Long: `List the tag, wire kind and encoded size of every top-level field.
Use "-" to read from stdin.

Example:
  tagwire inspect --protocol compact payload.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := protocolFlag(cmd, "protocol")
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			fields, err := tagwire.SplitFields(p, data)
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tKIND\tSIZE")
			for _, f := range fields {
				fmt.Fprintf(w, "%d\t%s\t%d\n", f.Tag, f.Kind, len(f.Raw))
			}
			return w.Flush()
		},
	}
	c.Flags().StringP("protocol", "p", "binary", "wire protocol (binary or compact)")
	return c
}
