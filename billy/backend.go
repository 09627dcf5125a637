// Package billy provides a fileaccess backend over a go-billy filesystem.
// It is intended for in-memory use in tests and for sandboxed access below a
// chroot; handles are issued from a per-backend table rather than by the OS.
package billy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
)

// Backend implements fileaccess.Backend using go-billy.
//
// Thread Safety: the handle table is guarded by a mutex. Operations on the
// same handle are not serialized.
type Backend struct {
	fs billy.Filesystem

	mu    sync.Mutex
	next  fileaccess.Handle
	files map[fileaccess.Handle]billy.File
}

var _ fileaccess.Backend = (*Backend)(nil)

// NewBackend creates a Backend over the given go-billy filesystem.
func NewBackend(fsys billy.Filesystem) *Backend {
	return &Backend{
		fs:    fsys,
		files: make(map[fileaccess.Handle]billy.File),
	}
}

// New creates a FileAccess over the given go-billy filesystem.
func New(fsys billy.Filesystem, opts ...fileaccess.Option) *fileaccess.FileAccess {
	return fileaccess.New(NewBackend(fsys), opts...)
}

// NewInMemory creates a FileAccess over an empty in-memory filesystem.
func NewInMemory(opts ...fileaccess.Option) *fileaccess.FileAccess {
	return New(memfs.New(), opts...)
}

// NewOS creates a FileAccess over the host filesystem, chrooted at root.
func NewOS(root string, opts ...fileaccess.Option) *fileaccess.FileAccess {
	return New(osfs.New(root), opts...)
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // returning interface here is intentional to expose the adapter target.
func (b *Backend) Raw() billy.Filesystem {
	return b.fs
}

// Open implements fileaccess.Backend. The parent directory must exist;
// missing parents are not created.
func (b *Backend) Open(name string, flag int, perm fs.FileMode) (fileaccess.Handle, error) {
	p, err := b.locate(name)
	if err != nil {
		return fileaccess.InvalidHandle, fmt.Errorf("billy: openfile %q: %w", name, err)
	}

	f, err := b.fs.OpenFile(p, flag, perm)
	if err != nil {
		return fileaccess.InvalidHandle, fmt.Errorf("billy: openfile %q: %w", name, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.files[b.next] = f
	return b.next, nil
}

// Close implements fileaccess.Backend. Closing an unknown handle fails with
// EBADF, as close(2) would.
func (b *Backend) Close(h fileaccess.Handle) error {
	b.mu.Lock()
	f, ok := b.files[h]
	delete(b.files, h)
	b.mu.Unlock()

	if !ok {
		return syscall.EBADF
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("billy: close %q: %w", f.Name(), err)
	}
	return nil
}

// Read implements fileaccess.Backend. End of stream is reported as a
// successful zero-length read.
func (b *Backend) Read(h fileaccess.Handle, p []byte) (int, error) {
	f, err := b.lookup(h)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	n, err := f.Read(p)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		return n, fmt.Errorf("billy: read %q: %w", f.Name(), err)
	}
	return n, nil
}

// Write implements fileaccess.Backend.
func (b *Backend) Write(h fileaccess.Handle, p []byte) (int, error) {
	f, err := b.lookup(h)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	n, err := f.Write(p)
	if err != nil {
		return n, fmt.Errorf("billy: write %q: %w", f.Name(), err)
	}
	return n, nil
}

// Stat implements fileaccess.Backend.
func (b *Backend) Stat(name string) (fileaccess.Attr, error) {
	p, err := b.locate(name)
	if err != nil {
		return fileaccess.Attr{}, fmt.Errorf("billy: stat %q: %w", name, err)
	}

	info, err := b.fs.Stat(p)
	if err != nil {
		return fileaccess.Attr{}, fmt.Errorf("billy: stat %q: %w", name, err)
	}
	return fileaccess.Attr{
		IsDir: info.IsDir(),
		Size:  info.Size(),
		Mode:  info.Mode(),
	}, nil
}

// Realpath implements fileaccess.Backend. Symlinks are resolved inside the
// filesystem and the result is joined onto its root.
func (b *Backend) Realpath(name string) (string, error) {
	if b.hostPaths() {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", err
		}
		name = abs
	}

	resolved, err := resolve(b.fs, name)
	if err != nil {
		return "", err
	}
	return filepath.Join(b.fs.Root(), filepath.FromSlash(resolved)), nil
}

// ReadDir implements fileaccess.Backend. go-billy reads the whole directory
// up front, so there is no stream left open once the listing is obtained.
func (b *Backend) ReadDir(name string, fn func(name string) error) error {
	p, err := b.locate(name)
	if err != nil {
		return opendirError(name, err)
	}

	list, err := b.fs.ReadDir(p)
	if err != nil {
		return opendirError(name, err)
	}

	for _, info := range list {
		if err := fn(info.Name()); err != nil {
			return err
		}
	}
	return nil
}

func opendirError(name string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &fs.PathError{Op: "opendir", Path: name, Err: err}
}

// OpenHandles reports how many handles are currently open.
func (b *Backend) OpenHandles() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files)
}

// locate resolves symlinks in every directory above name, so that a path
// through a linked directory reaches the same file Realpath reports. Host
// filesystems follow links themselves and get name unchanged.
func (b *Backend) locate(name string) (string, error) {
	if b.hostPaths() {
		return name, nil
	}

	clean := path.Clean("/" + filepath.ToSlash(name))
	dir, err := resolve(b.fs, path.Dir(clean))
	if err != nil {
		return "", err
	}
	return path.Join(dir, path.Base(clean)), nil
}

// hostPaths reports whether paths are handed to the OS as given, relative
// ones resolving against the working directory.
func (b *Backend) hostPaths() bool {
	h, ok := b.fs.(interface{ HostPaths() bool })
	return ok && h.HostPaths()
}

func (b *Backend) lookup(h fileaccess.Handle) (billy.File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.files[h]
	if !ok {
		return nil, syscall.EBADF
	}
	return f, nil
}
