package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

// buildTree creates:
//
//	tmpDir/
//	  top.txt
//	  a/
//	    results.json
//	    conf.json
//	    a1/
//	      conf.json
//	  b/
//	    notes.md
//	  .hidden/
//	    results.json
//	  plots/
//	    fig.png
func buildTree(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	testFiles := []string{
		"top.txt",
		"a/results.json",
		"a/conf.json",
		"a/a1/conf.json",
		"b/notes.md",
		".hidden/results.json",
		"plots/fig.png",
	}

	for _, f := range testFiles {
		path := filepath.Join(tmpDir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
	return tmpDir
}

func relPaths(t *testing.T, root string, dirs []Dir) []string {
	t.Helper()
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		rel, err := filepath.Rel(root, d.Path)
		if err != nil {
			t.Fatalf("failed to relativise %s: %v", d.Path, err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalkDirs(t *testing.T) {
	root := buildTree(t)

	tests := []struct {
		name     string
		opts     WalkOptions
		wantDirs []string
	}{
		{
			name:     "unlimited walk visits everything top-down",
			opts:     WalkOptions{},
			wantDirs: []string{".", ".hidden", "a", "a/a1", "b", "plots"},
		},
		{
			name:     "skip hidden",
			opts:     WalkOptions{SkipHidden: true},
			wantDirs: []string{".", "a", "a/a1", "b", "plots"},
		},
		{
			name:     "exclude dirs",
			opts:     WalkOptions{ExcludeDirs: []string{"plots", "a"}},
			wantDirs: []string{".", ".hidden", "b"},
		},
		{
			name:     "maxDepth 1 - root only",
			opts:     WalkOptions{MaxDepth: 1},
			wantDirs: []string{"."},
		},
		{
			name:     "maxDepth 2 - one level deep",
			opts:     WalkOptions{MaxDepth: 2},
			wantDirs: []string{".", ".hidden", "a", "b", "plots"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []Dir
			res, err := WalkDirs(root, tt.opts, func(d Dir) error {
				visited = append(visited, d)
				return nil
			})
			if err != nil {
				t.Fatalf("WalkDirs() error = %v", err)
			}

			got := relPaths(t, root, visited)
			if !reflect.DeepEqual(got, tt.wantDirs) {
				t.Errorf("visited = %v, want %v", got, tt.wantDirs)
			}
			if res.Visited != len(tt.wantDirs) {
				t.Errorf("Visited = %d, want %d", res.Visited, len(tt.wantDirs))
			}
		})
	}
}

func TestWalkDirsListsImmediateEntries(t *testing.T) {
	root := buildTree(t)

	byPath := make(map[string]Dir)
	if _, err := WalkDirs(root, WalkOptions{}, func(d Dir) error {
		byPath[d.Path] = d
		return nil
	}); err != nil {
		t.Fatalf("WalkDirs() error = %v", err)
	}

	a := byPath[filepath.Join(root, "a")]
	if !reflect.DeepEqual(a.Files, []string{"conf.json", "results.json"}) {
		t.Errorf("a.Files = %v", a.Files)
	}
	if !reflect.DeepEqual(a.Dirs, []string{"a1"}) {
		t.Errorf("a.Dirs = %v", a.Dirs)
	}
	if a.Depth != 2 {
		t.Errorf("a.Depth = %d, want 2", a.Depth)
	}
	if !a.HasFile("results.json") || a.HasFile("ignore.txt") {
		t.Errorf("HasFile gave wrong answer for %v", a.Files)
	}

	top := byPath[root]
	if !reflect.DeepEqual(top.Files, []string{"top.txt"}) {
		t.Errorf("root Files = %v", top.Files)
	}
}

func TestWalkDirsSkipDir(t *testing.T) {
	root := buildTree(t)

	var visited []Dir
	_, err := WalkDirs(root, WalkOptions{}, func(d Dir) error {
		visited = append(visited, d)
		if filepath.Base(d.Path) == "a" {
			return SkipDir
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDirs() error = %v", err)
	}

	for _, p := range relPaths(t, root, visited) {
		if p == "a/a1" {
			t.Error("SkipDir should prevent descending into a/a1")
		}
	}
}

func TestWalkDirsCallbackErrorStops(t *testing.T) {
	root := buildTree(t)
	stop := errors.New("stop")

	calls := 0
	_, err := WalkDirs(root, WalkOptions{}, func(d Dir) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("callback called %d times, want 2", calls)
	}
}

func TestWalkDirsRootErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := WalkDirs(filepath.Join(tmpDir, "nope"), WalkOptions{}, func(Dir) error { return nil })
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}

	file := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = WalkDirs(file, WalkOptions{}, func(Dir) error { return nil })
	if !errors.Is(err, ErrNotDirectory) || !strings.Contains(err.Error(), file) {
		t.Errorf("expected not a directory error, got %v", err)
	}
}

func TestWalkDirsSymlinkedDirNotFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
	root := buildTree(t)
	if err := os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "link")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	var visited []Dir
	if _, err := WalkDirs(root, WalkOptions{}, func(d Dir) error {
		visited = append(visited, d)
		return nil
	}); err != nil {
		t.Fatalf("WalkDirs() error = %v", err)
	}

	for _, p := range relPaths(t, root, visited) {
		if strings.HasPrefix(p, "link") {
			t.Errorf("symlinked directory should not be walked, visited %s", p)
		}
	}
	if !reflect.DeepEqual(visited[0].Dirs, []string{".hidden", "a", "b", "link", "plots"}) {
		t.Errorf("root Dirs = %v, want link listed as a directory", visited[0].Dirs)
	}
}

func TestWalkDirsUnreadableSubdir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	root := buildTree(t)
	locked := filepath.Join(root, "b")
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(locked, 0755)

	res, err := WalkDirs(root, WalkOptions{}, func(Dir) error { return nil })
	if err != nil {
		t.Fatalf("WalkDirs() error = %v", err)
	}
	if len(res.Errors) != 1 {
		t.Errorf("expected 1 non-fatal error, got %v", res.Errors)
	}
}
