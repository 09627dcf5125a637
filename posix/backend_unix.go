//go:build unix

package posix

import (
	"io/fs"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
)

// direntBufSize matches the buffer os.File uses for getdents.
const direntBufSize = 8192

// Open exposes open(2). O_CLOEXEC is always added.
func (Backend) Open(path string, flag int, perm fs.FileMode) (fileaccess.Handle, error) {
	fd, err := unix.Open(path, flag|unix.O_CLOEXEC, uint32(perm.Perm()))
	if err != nil {
		return fileaccess.InvalidHandle, err
	}
	return fileaccess.Handle(fd), nil
}

// Close exposes close(2).
func (Backend) Close(h fileaccess.Handle) error {
	return unix.Close(int(h))
}

// Read exposes read(2).
func (Backend) Read(h fileaccess.Handle, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil // Short-circuit 0-len reads.
	}
	n, err := unix.Read(int(h), p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Write exposes write(2).
func (Backend) Write(h fileaccess.Handle, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil // Short-circuit 0-len writes.
	}
	n, err := unix.Write(int(h), p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Stat exposes stat(2).
func (Backend) Stat(path string) (fileaccess.Attr, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileaccess.Attr{}, err
	}

	mode := fs.FileMode(uint32(st.Mode) & 0o777)
	isDir := uint32(st.Mode)&unix.S_IFMT == unix.S_IFDIR
	if isDir {
		mode |= fs.ModeDir
	}

	return fileaccess.Attr{
		IsDir: isDir,
		Size:  st.Size,
		Mode:  mode,
	}, nil
}

// Realpath returns the absolute, symlink-free form of path.
func (Backend) Realpath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ReadDir reads the directory with getdents(2). The descriptor is closed on
// every return path once opened.
func (Backend) ReadDir(path string, fn func(name string) error) error {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return &fs.PathError{Op: "opendir", Path: path, Err: err}
	}
	defer func() {
		_ = unix.Close(fd)
	}()

	buf := make([]byte, direntBufSize)
	var names []string
	for {
		n, err := unix.ReadDirent(fd, buf)
		if err != nil {
			return &fs.PathError{Op: "readdir", Path: path, Err: err}
		}
		if n <= 0 {
			return nil
		}

		_, _, names = unix.ParseDirent(buf[:n], -1, names[:0])
		for _, name := range names {
			if err := fn(name); err != nil {
				return err
			}
		}
	}
}
