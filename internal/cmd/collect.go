package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/runcollect/internal/accessor"
	"github.com/harrison/runcollect/internal/collector"
	"github.com/harrison/runcollect/internal/config"
	"github.com/harrison/runcollect/internal/measure"
	"github.com/harrison/runcollect/internal/watch"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewCollectCommand creates and returns the collect subcommand
func NewCollectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect <root>",
		Short: "List the run directories found under root",
		Long: `Walk root and print the total number of qualifying run directories,
followed by a table of the runs that were collected.

Each --key adds a column with that key's value from the config document
(or the result document with --from results). Measurements such as
"1.23(4)" are shown as 1.230+/-0.040. With --summary a footer row gives
the inverse-variance weighted mean of every column holding measurements.

With --watch the tree is watched after the first pass and collected again
whenever run documents are added, changed, or removed, until interrupted.

Examples:
  runcollect collect ./data
  runcollect collect ./data --key temperature --key energy --from results --summary
  runcollect collect ./data --ignore failed --exclude .git
  runcollect collect ./data --key loss --from results --watch`,
		Args: cobra.ExactArgs(1),
		RunE: runCollect,
	}

	addCollectFlags(cmd)
	cmd.Flags().StringArray("key", nil, "Document key to show as a column (repeatable)")
	cmd.Flags().String("from", "conf", "Document the --key columns are read from (conf or results)")
	cmd.Flags().Bool("summary", false, "Append the weighted mean of each measurement column")
	cmd.Flags().Bool("watch", false, "Collect again whenever run documents under root change")

	return cmd
}

func runCollect(cmd *cobra.Command, args []string) error {
	keys, _ := cmd.Flags().GetStringArray("key")
	from, _ := cmd.Flags().GetString("from")
	summary, _ := cmd.Flags().GetBool("summary")
	watchFlag, _ := cmd.Flags().GetBool("watch")

	switch from {
	case "conf", "config", "results", "result":
	default:
		return fmt.Errorf("invalid --from %q, must be conf or results", from)
	}

	setup, err := prepareCollect(cmd)
	if err != nil {
		return err
	}
	defer setup.close()
	cfg, opts, log := setup.cfg, setup.opts, setup.log

	root := args[0]
	out := cmd.OutOrStdout()
	tableOpts := runTableOptions{
		Keys:    keys,
		From:    from,
		Summary: summary,
		Color:   isTerminal(out),
	}

	collectOnce := func() error {
		collection, err := collector.Load(root, opts)
		if err != nil {
			return err
		}
		if collection.Len() > 0 {
			renderRunTable(out, root, collection, tableOpts)
		}
		return nil
	}

	if err := collectOnce(); err != nil {
		return err
	}
	if !watchFlag {
		return nil
	}

	w, err := watch.New(root, watch.Options{
		Names:       watchedNames(cfg),
		ExcludeDirs: cfg.ExcludeDirs,
		SkipHidden:  cfg.SkipHidden,
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	defer w.Close()
	log.LogInfo(fmt.Sprintf("watching %s for changes", root))

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-w.Changes():
			log.LogDebug(fmt.Sprintf("change detected: %s", strings.Join(change.Paths, ", ")))
			fmt.Fprintf(out, "\n[%s] %d path(s) changed\n", change.Time.Format("15:04:05"), len(change.Paths))
			if err := collectOnce(); err != nil {
				return err
			}
		case err := <-w.Errors():
			log.LogError(fmt.Sprintf("watch: %v", err))
		}
	}
}

// watchedNames returns the file names whose changes can alter the result.
// Any file can match an ignore pattern, so an ignore list widens it to all.
func watchedNames(cfg *config.Config) []string {
	if len(cfg.Ignore) > 0 {
		return nil
	}
	return []string{cfg.ResultFile, cfg.ConfigFile, cfg.MarkerFile}
}

type runTableOptions struct {
	Keys    []string
	From    string
	Summary bool
	Color   bool
}

// renderRunTable writes one row per run: index, path relative to root,
// document status, then one cell per key.
func renderRunTable(w io.Writer, root string, collection *collector.Collection, opts runTableOptions) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{"#", "Path", "Result", "Config"}
	for _, key := range opts.Keys {
		header = append(header, key)
	}
	t.AppendHeader(header)

	columns := []table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Path", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	}
	for _, key := range opts.Keys {
		columns = append(columns, table.ColumnConfig{Name: key, Align: text.AlignRight})
	}
	t.SetColumnConfigs(columns)

	docs := collection.Documents(opts.From)
	for i, run := range collection.Runs {
		row := table.Row{i + 1, relativePath(root, run.Path), documentStatus(run.Result.IsAbsent()), documentStatus(run.Config.IsAbsent())}
		for _, key := range opts.Keys {
			row = append(row, accessor.Lookup(docs[i], key).String())
		}
		t.AppendRow(row)
	}

	if opts.Summary && len(opts.Keys) > 0 {
		footer := table.Row{"", "weighted mean", "", ""}
		for _, key := range opts.Keys {
			footer = append(footer, weightedMeanCell(accessor.Measurements(docs, key)))
		}
		t.AppendFooter(footer)
	}

	if opts.Color {
		t.SetStyle(table.StyleColoredBright)
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.Render()
}

func weightedMeanCell(ms []measure.Measurement) string {
	mean, err := measure.WeightedMean(ms)
	if err != nil {
		return "-"
	}
	return mean.String()
}

func documentStatus(absent bool) string {
	if absent {
		return "absent"
	}
	return "ok"
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// isTerminal reports whether w is a terminal, so tables are only colored
// when a person is reading them.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
