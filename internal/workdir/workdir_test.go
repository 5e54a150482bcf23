package workdir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func realPath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

func cwd(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return realPath(t, dir)
}

func TestWithinChangesAndRestores(t *testing.T) {
	before := cwd(t)
	target := t.TempDir()

	var inside string
	err := Within(target, func() error {
		inside = cwd(t)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, realPath(t, target), inside)
	assert.Equal(t, before, cwd(t))
}

func TestWithinNested(t *testing.T) {
	before := cwd(t)
	outer := t.TempDir()
	inner := t.TempDir()

	done := make(chan error, 1)
	var inInner, afterInner string
	go func() {
		done <- Within(outer, func() error {
			err := Within(inner, func() error {
				var err error
				inInner, err = os.Getwd()
				return err
			})
			afterInner, _ = os.Getwd()
			return err
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("nested Within did not return")
	}
	assert.Equal(t, realPath(t, inner), realPath(t, inInner))
	assert.Equal(t, realPath(t, outer), realPath(t, afterInner))
	assert.Equal(t, before, cwd(t))
}

func TestWithinRestoresOnError(t *testing.T) {
	before := cwd(t)
	boom := errors.New("boom")

	err := Within(t.TempDir(), func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, cwd(t))
}

func TestWithinRestoresOnPanic(t *testing.T) {
	before := cwd(t)

	assert.Panics(t, func() {
		_ = Within(t.TempDir(), func() error { panic("block failed") })
	})
	assert.Equal(t, before, cwd(t))
}

func TestWithinRelativePathsResolveInside(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "conf.json"), []byte("{}"), 0644))

	err := Within(target, func() error {
		_, err := os.Stat("conf.json")
		return err
	})
	assert.NoError(t, err)
}

func TestWithinMissingDirectory(t *testing.T) {
	before := cwd(t)
	called := false

	err := Within(filepath.Join(t.TempDir(), "missing"), func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, called)
	assert.Equal(t, before, cwd(t))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := ExpandHome("~/runs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "runs"), got)

	got, err = ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = ExpandHome("/abs/~path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/~path", got)

	got, err = ExpandHome("~user/runs")
	require.NoError(t, err)
	assert.Equal(t, "~user/runs", got)
}
