// Package workdir changes the process working directory for the duration of
// a function call.
//
// The working directory is process-global, so Within is not safe for
// concurrent use: another goroutine resolving relative paths while fn runs
// sees the temporary directory. Nested calls restore in order. Prefer passing
// explicit paths; the collector never relies on the working directory.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Within changes into path, runs fn, and changes back to the previous working
// directory whether fn returns normally, returns an error, or panics. A
// leading "~" in path is expanded to the user's home directory.
func Within(path string, fn func() error) (err error) {
	target, err := ExpandHome(path)
	if err != nil {
		return err
	}

	saved, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	if err := os.Chdir(target); err != nil {
		return fmt.Errorf("change directory to %s: %w", target, err)
	}
	defer func() {
		if restoreErr := os.Chdir(saved); restoreErr != nil && err == nil {
			err = fmt.Errorf("restore working directory %s: %w", saved, restoreErr)
		}
	}()

	return fn()
}

// ExpandHome replaces a leading "~" or "~/" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}
