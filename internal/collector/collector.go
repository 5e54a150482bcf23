// Package collector gathers run directories from a filesystem tree.
//
// A run directory holds a result document and a config document (by default
// results.json and conf.json). Load walks a tree, decides for every directory
// whether it is a run to collect, and returns the parsed documents in
// traversal order. A document that is missing or malformed never aborts the
// walk; its slot in the Run is left absent instead.
package collector

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/runcollect/internal/fileutil"
	"github.com/harrison/runcollect/internal/jsonvalue"
	"github.com/harrison/runcollect/internal/logger"
	"github.com/harrison/runcollect/internal/models"
)

// Logger receives diagnostics from a collection.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogWarn(message string)
	LogRunSkipped(path string, reason models.SkipReason)
	LogSummary(summary models.CollectSummary)
}

// Options controls which directories are collected.
type Options struct {
	// Ignore holds file name substrings; a directory with a file whose name
	// contains one of them is skipped. Nil or empty disables the check.
	Ignore []string
	// IgnoreMarkerOverride collects directories even when the marker file is present.
	IgnoreMarkerOverride bool
	// CollectAll drops the result file requirement and every skip rule. The
	// config file is still required.
	CollectAll bool

	ResultFile string
	ConfigFile string
	MarkerFile string

	// ExcludeDirs names directories never descended into.
	ExcludeDirs []string
	// MaxDepth limits recursion (0 = unlimited, 1 = root only).
	MaxDepth int
	// SkipHidden leaves directories whose name starts with "." unwalked.
	SkipHidden bool

	// Output receives the "Total: <n>" line. Defaults to os.Stdout.
	Output io.Writer
	// Logger receives per-directory diagnostics. Defaults to a no-op logger.
	Logger Logger
}

// DefaultOptions returns Options with the standard file names.
func DefaultOptions() Options {
	return Options{
		ResultFile: models.DefaultResultFile,
		ConfigFile: models.DefaultConfigFile,
		MarkerFile: models.DefaultMarkerFile,
	}
}

func (o Options) withDefaults() Options {
	if o.ResultFile == "" {
		o.ResultFile = models.DefaultResultFile
	}
	if o.ConfigFile == "" {
		o.ConfigFile = models.DefaultConfigFile
	}
	if o.MarkerFile == "" {
		o.MarkerFile = models.DefaultMarkerFile
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = logger.NewNoOpLogger()
	}
	return o
}

// Load walks root and returns every run directory that qualifies under opts.
//
// A directory qualifies when it holds the config file and, unless CollectAll
// is set, the result file. Qualifying directories are counted, then dropped
// if the marker file is present (unless CollectAll or IgnoreMarkerOverride)
// or if a file name contains an Ignore substring (unless CollectAll). The
// count is written to opts.Output as "Total: <n>".
//
// A root that does not exist, or is not a directory, yields an empty
// collection. Only a root that exists but cannot be read is an error.
func Load(root string, opts Options) (*Collection, error) {
	opts = opts.withDefaults()
	start := time.Now()

	l := &loader{
		opts: opts,
		collection: &Collection{
			Runs:    make([]models.Run, 0),
			Summary: models.CollectSummary{Root: root},
		},
	}

	walkOpts := fileutil.WalkOptions{
		ExcludeDirs: opts.ExcludeDirs,
		MaxDepth:    opts.MaxDepth,
		SkipHidden:  opts.SkipHidden,
	}
	res, err := fileutil.WalkDirs(root, walkOpts, func(dir fileutil.Dir) error {
		l.visit(dir)
		return nil
	})
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fileutil.ErrNotDirectory):
		opts.Logger.LogDebug(fmt.Sprintf("nothing to collect: %v", err))
	case err != nil:
		return nil, fmt.Errorf("failed to collect runs under %s: %w", root, err)
	default:
		for _, walkErr := range res.Errors {
			opts.Logger.LogWarn(walkErr.Error())
		}
		l.collection.Summary.WalkErrors = len(res.Errors)
	}

	summary := &l.collection.Summary
	summary.Collected = len(l.collection.Runs)
	summary.Duration = time.Since(start)

	fmt.Fprintf(opts.Output, "Total: %d\n", summary.Total)
	opts.Logger.LogSummary(*summary)

	return l.collection, nil
}

type loader struct {
	opts       Options
	collection *Collection
}

func (l *loader) visit(dir fileutil.Dir) {
	opts := l.opts
	summary := &l.collection.Summary
	opts.Logger.LogTrace(fmt.Sprintf("visit %s (%d files)", dir.Path, len(dir.Files)))

	hasResult := dir.HasFile(opts.ResultFile)
	hasConfig := dir.HasFile(opts.ConfigFile)
	if !(opts.CollectAll || hasResult) || !hasConfig {
		return
	}

	// counted before the skip rules below
	summary.Total++

	if dir.HasFile(opts.MarkerFile) && !opts.IgnoreMarkerOverride && !opts.CollectAll {
		summary.SkippedMarker++
		opts.Logger.LogRunSkipped(dir.Path, models.SkipMarker)
		return
	}

	if !opts.CollectAll && matchesIgnore(dir.Files, opts.Ignore) {
		summary.SkippedIgnore++
		opts.Logger.LogRunSkipped(dir.Path, models.SkipIgnored)
		return
	}

	run := models.Run{
		Path:   dir.Path,
		Result: l.readDocument(dir.Path, opts.ResultFile),
		Config: l.readDocument(dir.Path, opts.ConfigFile),
	}
	if run.Result.IsAbsent() {
		summary.MissingResult++
	}
	if run.Config.IsAbsent() {
		summary.MissingConfig++
	}
	l.collection.Runs = append(l.collection.Runs, run)
}

// readDocument returns the parsed document, or the absent value on any failure.
func (l *loader) readDocument(dir, name string) jsonvalue.Value {
	v, err := jsonvalue.ReadFile(filepath.Join(dir, name))
	if err == nil {
		return v
	}
	if errors.Is(err, fs.ErrNotExist) {
		l.opts.Logger.LogDebug(err.Error())
	} else {
		l.opts.Logger.LogWarn(err.Error())
	}
	return jsonvalue.Value{}
}

// matchesIgnore reports whether any file name contains any non-empty pattern.
func matchesIgnore(files, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		for _, f := range files {
			if strings.Contains(f, pattern) {
				return true
			}
		}
	}
	return false
}
