// Package fileutil provides the directory walk used to discover run directories.
//
// WalkDirs visits a directory tree top-down and hands each directory to a
// callback together with its immediate file and subdirectory names, which is
// the shape needed to decide whether a directory is a run directory from its
// listing alone.
//
// # Behaviour
//
//   - The root directory itself is visited first
//   - Subdirectories are visited depth-first in lexical order
//   - Symlinks to directories are listed in Dir.Dirs but never followed
//   - Unreadable subdirectories are recorded in WalkResult.Errors and skipped
//   - A missing or unreadable root is a fatal error
//
// # Options
//
// WalkOptions - Configuration struct for the walk:
//   - ExcludeDirs: Directory names never descended into (e.g., ".git", "plots")
//   - MaxDepth: Limit recursion depth (0 = unlimited, 1 = root directory only)
//   - SkipHidden: Skip directories whose name starts with "."
//
// # Usage
//
//	res, err := fileutil.WalkDirs("/data/sweep", fileutil.WalkOptions{
//	    ExcludeDirs: []string{"plots"},
//	}, func(dir fileutil.Dir) error {
//	    if dir.HasFile("results.json") {
//	        fmt.Println(dir.Path)
//	    }
//	    return nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, err := range res.Errors {
//	    log.Printf("skipped: %v", err)
//	}
//
// Returning fileutil.SkipDir from the callback keeps the walk out of that
// directory's subdirectories; any other error stops the walk.
package fileutil
