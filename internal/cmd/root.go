package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for runcollect
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runcollect",
		Short: "Collect results and configs from experiment run directories",
		Long: `Runcollect walks a directory tree and gathers every run directory,
meaning a directory holding a result document (results.json) and a config
document (conf.json).

Directories carrying an ignore.txt marker, or a file whose name matches an
--ignore pattern, are counted but skipped. Values written as numbers with
uncertainties, such as "1.23(4)" or "5.0+/-0.2", are read as measurements.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewCollectCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewGetCommand())

	return cmd
}
