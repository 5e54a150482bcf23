package filelock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewFileLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "export.json.lock")

	lock := NewFileLock(lockPath)
	if lock == nil {
		t.Fatal("NewFileLock should not return nil")
	}
	if lock.Path() != lockPath {
		t.Errorf("Expected lock path %s, got %s", lockPath, lock.Path())
	}
}

func TestLockUnlock(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "test.lock"))

	if err := lock.Lock(); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Failed to release lock: %v", err)
	}
}

func TestLockWithTimeout(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	t.Run("free lock", func(t *testing.T) {
		lock := NewFileLock(lockPath)
		if err := lock.LockWithTimeout(time.Second); err != nil {
			t.Fatalf("LockWithTimeout error: %v", err)
		}
		lock.Unlock()
	})

	t.Run("held lock times out", func(t *testing.T) {
		holder := NewFileLock(lockPath)
		if err := holder.Lock(); err != nil {
			t.Fatal(err)
		}
		defer holder.Unlock()

		start := time.Now()
		err := NewFileLock(lockPath).LockWithTimeout(150 * time.Millisecond)
		if !errors.Is(err, ErrLockTimeout) {
			t.Fatalf("expected ErrLockTimeout, got %v", err)
		}
		if time.Since(start) < 100*time.Millisecond {
			t.Error("LockWithTimeout returned before the timeout")
		}
	})
}

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "nested", "out", "runs.json")

	if err := AtomicWrite(target, []byte("first")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}
	if err := AtomicWrite(target, []byte("second")); err != nil {
		t.Fatalf("AtomicWrite overwrite failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("permissions = %v, want 0644", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestAtomicWriteFailureKeepsOriginal(t *testing.T) {
	tmpDir := t.TempDir()
	// a directory at the target path makes the rename fail
	target := filepath.Join(tmpDir, "runs.json")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWrite(target, []byte("data")); err == nil {
		t.Fatal("expected rename onto a non-empty directory to fail")
	}

	if _, err := os.Stat(filepath.Join(target, "keep")); err != nil {
		t.Errorf("original content disturbed: %v", err)
	}
	entries, _ := os.ReadDir(tmpDir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLockAndWriteKeepsLockFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "runs.json")

	if err := LockAndWrite(target, []byte("content"), 0); err != nil {
		t.Fatalf("LockAndWrite failed: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("target not written: %v", err)
	}
	info, err := os.Stat(target + ".lock")
	if err != nil {
		t.Fatalf("lock file %s.lock should persist: %v", target, err)
	}

	// A second write reuses the same lock file rather than creating a new one.
	if err := LockAndWrite(target, []byte("again"), 0); err != nil {
		t.Fatalf("second LockAndWrite failed: %v", err)
	}
	again, err := os.Stat(target + ".lock")
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(info, again) {
		t.Error("lock file was replaced between writes")
	}
}

func TestLockAndWriteTimesOutWhileHeld(t *testing.T) {
	target := filepath.Join(t.TempDir(), "runs.json")

	holder := NewFileLock(target + ".lock")
	if err := holder.Lock(); err != nil {
		t.Fatal(err)
	}

	err := LockAndWrite(target, []byte("content"), 100*time.Millisecond)
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("nothing should be written without the lock")
	}

	if err := holder.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := LockAndWrite(target, []byte("content"), time.Second); err != nil {
		t.Fatalf("LockAndWrite after release failed: %v", err)
	}
}

func TestConcurrentLockAndWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "runs.json")

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			if err := LockAndWrite(target, []byte(fmt.Sprintf("content-%d", id)), 0); err != nil {
				t.Errorf("LockAndWrite failed for goroutine %d: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "content-") || len(data) > len("content-9") {
		t.Errorf("expected one complete write, got %q", data)
	}
}

func TestWriteJSON(t *testing.T) {
	target := filepath.Join(t.TempDir(), "runs.json")

	payload := map[string]interface{}{"total": 2, "runs": []string{"a", "b"}}
	if err := WriteJSON(target, payload, 0); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "}\n") || !strings.Contains(string(data), "\n  \"runs\"") {
		t.Errorf("expected indented JSON with trailing newline, got %q", data)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["total"] != float64(2) {
		t.Errorf("total = %v", decoded["total"])
	}
}

func TestWriteJSONEncodeError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "runs.json")

	err := WriteJSON(target, map[string]interface{}{"bad": make(chan int)}, 0)
	if err == nil {
		t.Fatal("expected encode error")
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Error("nothing should be written when encoding fails")
	}
}
