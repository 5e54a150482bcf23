package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("path is not a directory")

// SkipDir can be returned by a WalkFunc to keep the walk from descending
// into the subdirectories of the directory being visited.
var SkipDir = filepath.SkipDir

// WalkOptions configures the directory walk
type WalkOptions struct {
	// ExcludeDirs is a list of directory names never descended into (e.g., ".git")
	ExcludeDirs []string
	// MaxDepth limits recursion depth (0 = unlimited, 1 = root directory only)
	MaxDepth int
	// SkipHidden skips directories whose name starts with "."
	SkipHidden bool
}

// Dir describes one visited directory and its immediate entries
type Dir struct {
	// Path is the directory path, built by joining names onto the walk root
	Path string
	// Depth is 1 for the root directory, 2 for its children, and so on
	Depth int
	// Files holds the names of non-directory entries, sorted
	Files []string
	// Dirs holds the names of subdirectory entries, sorted. Symlinks to
	// directories are listed here but never descended into.
	Dirs []string
}

// HasFile reports whether name is among the directory's files
func (d Dir) HasFile(name string) bool {
	for _, f := range d.Files {
		if f == name {
			return true
		}
	}
	return false
}

// WalkFunc is called once for every visited directory
type WalkFunc func(dir Dir) error

// WalkResult summarises a completed walk
type WalkResult struct {
	// Visited is the number of directories passed to the WalkFunc
	Visited int
	// Errors contains non-fatal errors (unreadable subdirectories)
	Errors []error
}

// WalkDirs visits root and every directory below it, top-down and depth-first,
// calling fn with each directory's file listing before descending into its
// subdirectories in lexical order.
//
// A root that cannot be accessed is a fatal error and wraps the underlying
// error, so callers can test for fs.ErrNotExist. Unreadable subdirectories are
// recorded in WalkResult.Errors and skipped. An error returned by fn other
// than SkipDir stops the walk and is returned unchanged.
func WalkDirs(root string, opts WalkOptions, fn WalkFunc) (*WalkResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	excludeMap := make(map[string]bool)
	for _, dir := range opts.ExcludeDirs {
		excludeMap[dir] = true
	}

	w := &walker{
		opts:    opts,
		exclude: excludeMap,
		fn:      fn,
		result: &WalkResult{
			Errors: make([]error, 0),
		},
	}

	dir, err := w.readDir(root, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if err := w.visit(dir); err != nil {
		return w.result, err
	}
	return w.result, nil
}

type walker struct {
	opts    WalkOptions
	exclude map[string]bool
	fn      WalkFunc
	result  *WalkResult
}

func (w *walker) visit(dir Dir) error {
	w.result.Visited++
	err := w.fn(dir)
	if errors.Is(err, SkipDir) {
		return nil
	}
	if err != nil {
		return err
	}

	if w.opts.MaxDepth > 0 && dir.Depth >= w.opts.MaxDepth {
		return nil
	}

	for _, name := range dir.Dirs {
		if w.exclude[name] || (w.opts.SkipHidden && strings.HasPrefix(name, ".")) {
			continue
		}
		path := filepath.Join(dir.Path, name)

		// symlinked directories are listed but not followed
		if info, err := os.Lstat(path); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			continue
		}

		child, err := w.readDir(path, dir.Depth+1)
		if err != nil {
			w.result.Errors = append(w.result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			continue
		}
		if err := w.visit(child); err != nil {
			return err
		}
	}
	return nil
}

// readDir lists path and splits its entries into files and directories.
// Symlinks are classified by their target; broken links count as files.
func (w *walker) readDir(path string, depth int) (Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return Dir{}, err
	}

	dir := Dir{
		Path:  path,
		Depth: depth,
		Files: make([]string, 0, len(entries)),
		Dirs:  make([]string, 0),
	}
	for _, entry := range entries {
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(filepath.Join(path, entry.Name())); err == nil {
				isDir = target.IsDir()
			}
		}
		if isDir {
			dir.Dirs = append(dir.Dirs, entry.Name())
		} else {
			dir.Files = append(dir.Files, entry.Name())
		}
	}
	return dir, nil
}
