// Package filelock writes export files so that concurrent runcollect
// processes never interleave output or leave a reader with a partial file.
//
// Writers hold an advisory lock on "<path>.lock". The lock file is never
// removed, so every writer locks the same inode and holders are mutually
// exclusive.
package filelock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned when a lock is not acquired before the deadline.
var ErrLockTimeout = errors.New("timed out waiting for lock")

const retryDelay = 50 * time.Millisecond

// FileLock is an exclusive advisory lock held on a sidecar file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock returns an unlocked lock on path. The file is created on first lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock blocks until the lock is held.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// LockWithTimeout retries until the lock is held or timeout elapses.
func (fl *FileLock) LockWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	acquired, err := fl.flock.TryLockContext(ctx, retryDelay)
	if errors.Is(err, context.DeadlineExceeded) || (err == nil && !acquired) {
		return fmt.Errorf("%w: %s after %v", ErrLockTimeout, fl.path, timeout)
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite replaces path with data via a temp file in the same directory
// and a rename. Missing parent directories are created. On failure the
// previous contents of path are untouched and no temp file remains.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".runcollect-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	renamed := false
	defer func() {
		if !renamed {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	renamed = true
	return nil
}

// LockAndWrite holds "<path>.lock" while atomically writing data to path.
// A positive timeout bounds the wait for the lock; zero waits indefinitely.
func LockAndWrite(path string, data []byte, timeout time.Duration) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lock := NewFileLock(path + ".lock")
	if timeout > 0 {
		if err := lock.LockWithTimeout(timeout); err != nil {
			return err
		}
	} else if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	return AtomicWrite(path, data)
}

// WriteJSON encodes v as indented JSON with a trailing newline and writes it
// with LockAndWrite.
func WriteJSON(path string, v interface{}, timeout time.Duration) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return LockAndWrite(path, append(data, '\n'), timeout)
}
