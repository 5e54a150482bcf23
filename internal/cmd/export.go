package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/runcollect/internal/filelock"
	"github.com/harrison/runcollect/internal/models"
	"github.com/spf13/cobra"
)

// Export is the document written by the export command
type Export struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Root      string       `json:"root"`
	Total     int          `json:"total"`
	Runs      []models.Run `json:"runs"`
}

// NewExportCommand creates and returns the export subcommand
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <root>",
		Short: "Write the collected runs to a JSON file",
		Long: `Walk root and write every collected run, with its parsed result and
config documents, to a single JSON file. Documents that were missing or
malformed are written as null.

The file is replaced atomically while holding <output>.lock, so concurrent
exports never leave a partially written file behind. The lock file is kept.
Use --lock-timeout to give up instead of waiting for another export.

NaN and infinite numbers are written as the strings "NaN", "Infinity" and
"-Infinity" so the file stays strict JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}

	addCollectFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Path of the JSON file to write")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().Duration("lock-timeout", 0, "Give up if <output>.lock is not acquired within this duration (0 waits indefinitely)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return fmt.Errorf("--output cannot be empty")
	}
	lockTimeout, _ := cmd.Flags().GetDuration("lock-timeout")
	if lockTimeout < 0 {
		return fmt.Errorf("--lock-timeout cannot be negative")
	}

	root := args[0]
	collection, err := collectRuns(cmd, root)
	if err != nil {
		return err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	export := Export{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Root:      absRoot,
		Total:     collection.Summary.Total,
		Runs:      collection.Runs,
	}
	if err := filelock.WriteJSON(output, export, lockTimeout); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d runs to %s\n", len(export.Runs), output)
	return nil
}
