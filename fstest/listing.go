package fstest

import (
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

// TestListDirectory tests ListDirectory, Entries and ReadDirNames.
func TestListDirectory(t *testing.T, env Env) {
	dir := filepath.Join(env.Root, "listing")
	if err := env.Mkdir(dir); err != nil {
		t.Fatalf("Mkdir(%q): setup failed: %v", dir, err)
	}
	WriteFile(t, env.FA, filepath.Join(dir, "a"), []byte("a"))
	WriteFile(t, env.FA, filepath.Join(dir, "b"), []byte("b"))

	t.Run("VisitsEntries", func(t *testing.T) {
		var got []string
		err := env.FA.ListDirectory(dir, func(name string) error {
			got = append(got, name)
			return nil
		})
		if err != nil {
			t.Fatalf("ListDirectory(%q): got error %v, want nil", dir, err)
		}
		sort.Strings(got)
		if fmt.Sprint(got) != "[a b]" {
			t.Errorf("ListDirectory(%q): visited %v, want [a b]", dir, got)
		}
	})

	t.Run("NotExist", func(t *testing.T) {
		missing := filepath.Join(env.Root, "nonexistent")
		calls := 0
		err := env.FA.ListDirectory(missing, func(string) error {
			calls++
			return nil
		})
		if err == nil {
			t.Fatalf("ListDirectory(%q): got nil error, want error", missing)
		}
		if calls != 0 {
			t.Errorf("ListDirectory(%q): visitor called %d times, want 0", missing, calls)
		}
		if !fileaccess.IsNotFound(err) {
			t.Errorf("ListDirectory(%q): got error %v, want ErrNotFound", missing, err)
		}
		var ioErr *fileaccess.IoError
		if !asIoError(err, &ioErr) || ioErr.Message() == "" {
			t.Errorf("ListDirectory(%q): got %v, want IoError with message", missing, err)
		}
	})

	t.Run("SkipAll", func(t *testing.T) {
		calls := 0
		err := env.FA.ListDirectory(dir, func(string) error {
			calls++
			return fileaccess.SkipAll
		})
		if err != nil {
			t.Errorf("ListDirectory(%q): got error %v, want nil", dir, err)
		}
		if calls != 1 {
			t.Errorf("ListDirectory(%q): visitor called %d times, want 1", dir, calls)
		}
	})

	t.Run("VisitorError", func(t *testing.T) {
		boom := fmt.Errorf("boom")
		err := env.FA.ListDirectory(dir, func(string) error {
			return boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("ListDirectory(%q): got error %v, want %v", dir, err, boom)
		}
	})

	t.Run("EntriesBreak", func(t *testing.T) {
		seen := 0
		for name, err := range env.FA.Entries(dir) {
			if err != nil {
				t.Fatalf("Entries(%q): got error %v, want nil", dir, err)
			}
			if name == "." || name == ".." {
				t.Errorf("Entries(%q): yielded pseudo-entry %q", dir, name)
			}
			seen++
			break
		}
		if seen != 1 {
			t.Errorf("Entries(%q): saw %d entries before break, want 1", dir, seen)
		}
	})

	t.Run("ReadDirNames", func(t *testing.T) {
		names, err := env.FA.ReadDirNames(dir)
		if err != nil {
			t.Fatalf("ReadDirNames(%q): got error %v, want nil", dir, err)
		}
		sort.Strings(names)
		if fmt.Sprint(names) != "[a b]" {
			t.Errorf("ReadDirNames(%q): got %v, want [a b]", dir, names)
		}
	})
}

func asIoError(err error, target **fileaccess.IoError) bool {
	return errors.As(err, target)
}
