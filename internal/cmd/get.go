package cmd

import (
	"fmt"

	"github.com/harrison/runcollect/internal/accessor"
	"github.com/harrison/runcollect/internal/jsonvalue"
	"github.com/spf13/cobra"
)

// NewGetCommand creates and returns the get subcommand
func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file.json> <key>...",
		Short: "Print values from a single JSON document",
		Long: `Read one JSON document and print the value stored under each key,
one "key: value" line per key.

Strings in number-with-uncertainty notation are printed as measurements
(1.0(1) becomes 1.00+/-0.10). Other values are printed as they appear in
the document. A key that is not present prints the --default text.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runGet,
	}

	cmd.Flags().String("default", "", "Value printed for keys that are not present")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	def, _ := cmd.Flags().GetString("default")

	doc, err := jsonvalue.ReadFile(args[0])
	if err != nil {
		return err
	}

	fallback := accessor.Raw(jsonvalue.StringValue(def))
	out := cmd.OutOrStdout()
	for _, key := range args[1:] {
		fmt.Fprintf(out, "%s: %s\n", key, accessor.GetVal(doc, key, fallback))
	}
	return nil
}
