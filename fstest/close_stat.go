package fstest

import (
	"path/filepath"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

// TestClose tests handle release.
func TestClose(t *testing.T, env Env) {
	p := filepath.Join(env.Root, "close.txt")
	WriteFile(t, env.FA, p, []byte("close me"))

	t.Run("OpenThenClose", func(t *testing.T) {
		h, err := env.FA.OpenForRead(p)
		if err != nil {
			t.Fatalf("OpenForRead(%q): got error %v, want nil", p, err)
		}
		if err := env.FA.Close(h); err != nil {
			t.Errorf("Close(): got error %v, want nil", err)
		}
	})

	t.Run("CloseQuiet", func(t *testing.T) {
		h, err := env.FA.OpenForRead(p)
		if err != nil {
			t.Fatalf("OpenForRead(%q): got error %v, want nil", p, err)
		}
		if !env.FA.CloseQuiet(h) {
			t.Errorf("CloseQuiet(): got false, want true")
		}
	})

	t.Run("UseAfterClose", func(t *testing.T) {
		h, err := env.FA.OpenForRead(p)
		if err != nil {
			t.Fatalf("OpenForRead(%q): got error %v, want nil", p, err)
		}
		if err := env.FA.Close(h); err != nil {
			t.Fatalf("Close(): got error %v, want nil", err)
		}

		if _, err := env.FA.Read(h, make([]byte, 4)); err == nil {
			t.Errorf("Read() after Close: got nil error, want error")
		}
		err = env.FA.Close(h)
		if err == nil {
			t.Fatalf("second Close(): got nil error, want error")
		}
		if code := errors.CodeOf(err); code != errors.CodeInvalidInput {
			t.Errorf("second Close(): got code %s, want %s", code, errors.CodeInvalidInput)
		}
		if env.FA.CloseQuiet(h) {
			t.Errorf("CloseQuiet() after Close: got true, want false")
		}
	})
}

// TestStat tests Populate, PathExists and Probe.
func TestStat(t *testing.T, env Env) {
	content := []byte("stat file content")
	file := filepath.Join(env.Root, "stat.txt")
	dir := filepath.Join(env.Root, "statdir")
	missing := filepath.Join(env.Root, "nonexistent")

	WriteFile(t, env.FA, file, content)
	if err := env.Mkdir(dir); err != nil {
		t.Fatalf("Mkdir(%q): setup failed: %v", dir, err)
	}

	t.Run("PopulateFile", func(t *testing.T) {
		info, err := env.FA.Populate(file)
		if err != nil {
			t.Fatalf("Populate(%q): got error %v, want nil", file, err)
		}
		if info.IsDir {
			t.Errorf("Populate(%q): IsDir = true, want false", file)
		}
		if info.Length != uint64(len(content)) {
			t.Errorf("Populate(%q): Length = %d, want %d", file, info.Length, len(content))
		}
		if !filepath.IsAbs(info.Path) {
			t.Errorf("Populate(%q): Path = %q, want absolute path", file, info.Path)
		}
		if info.Name() != "stat.txt" {
			t.Errorf("Populate(%q): Name() = %q, want %q", file, info.Name(), "stat.txt")
		}
	})

	t.Run("PopulateDir", func(t *testing.T) {
		info, err := env.FA.Populate(dir)
		if err != nil {
			t.Fatalf("Populate(%q): got error %v, want nil", dir, err)
		}
		if !info.IsDir {
			t.Errorf("Populate(%q): IsDir = false, want true", dir)
		}
	})

	t.Run("PopulateNotExist", func(t *testing.T) {
		info, err := env.FA.Populate(missing)
		if err == nil {
			t.Fatalf("Populate(%q): got %+v, want error", missing, info)
		}
		if !fileaccess.IsNotFound(err) {
			t.Errorf("Populate(%q): got error %v, want ErrNotFound", missing, err)
		}
		if info != (fileaccess.FileInfo{}) {
			t.Errorf("Populate(%q): got %+v alongside error, want zero value", missing, info)
		}
	})

	t.Run("PathExists", func(t *testing.T) {
		tests := []struct {
			path string
			want fileaccess.PathKind
		}{
			{file, fileaccess.File},
			{dir, fileaccess.Directory},
			{missing, fileaccess.Absent},
		}
		for _, tt := range tests {
			if got := env.FA.PathExists(tt.path); got != tt.want {
				t.Errorf("PathExists(%q): got %s, want %s", tt.path, got, tt.want)
			}
		}
	})

	t.Run("Probe", func(t *testing.T) {
		kind, err := env.FA.Probe(missing)
		if err != nil || kind != fileaccess.Absent {
			t.Errorf("Probe(%q): got (%s, %v), want (absent, nil)", missing, kind, err)
		}
		kind, err = env.FA.Probe(dir)
		if err != nil || kind != fileaccess.Directory {
			t.Errorf("Probe(%q): got (%s, %v), want (directory, nil)", dir, kind, err)
		}
	})
}

// TestSymlink tests that Populate resolves symlinks.
func TestSymlink(t *testing.T, env Env) {
	if env.Symlink == nil {
		t.Skip("backend has no symlink fixture hook")
	}

	target := filepath.Join(env.Root, "target.txt")
	link := filepath.Join(env.Root, "link.txt")
	WriteFile(t, env.FA, target, []byte("pointed at"))
	if err := env.Symlink(target, link); err != nil {
		t.Fatalf("Symlink(%q, %q): setup failed: %v", target, link, err)
	}

	want, err := env.FA.Populate(target)
	if err != nil {
		t.Fatalf("Populate(%q): got error %v, want nil", target, err)
	}
	got, err := env.FA.Populate(link)
	if err != nil {
		t.Fatalf("Populate(%q): got error %v, want nil", link, err)
	}
	if got.Path != want.Path {
		t.Errorf("Populate(%q): Path = %q, want %q", link, got.Path, want.Path)
	}
	if got.Length != want.Length {
		t.Errorf("Populate(%q): Length = %d, want %d", link, got.Length, want.Length)
	}
}
