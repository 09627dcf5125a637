package billy

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-git/go-billy/v5"
)

// maxSymlinkHops matches the Linux limit before ELOOP.
const maxSymlinkHops = 40

// resolve walks name one element at a time, replacing every symlink with its
// target, and returns the resulting slash-separated absolute path within fsys.
func resolve(fsys billy.Filesystem, name string) (string, error) {
	pending := splitPath(path.Clean("/" + filepath.ToSlash(name)))
	resolved := "/"
	hops := 0

	for len(pending) > 0 {
		elem := pending[0]
		pending = pending[1:]

		switch elem {
		case "", ".":
			continue
		case "..":
			resolved = path.Dir(resolved)
			continue
		}

		next := path.Join(resolved, elem)
		info, err := fsys.Lstat(next)
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}

		hops++
		if hops > maxSymlinkHops {
			return "", &fs.PathError{Op: "realpath", Path: name, Err: syscall.ELOOP}
		}

		target, err := fsys.Readlink(next)
		if err != nil {
			return "", err
		}
		target = filepath.ToSlash(target)
		if path.IsAbs(target) {
			resolved = "/"
		}
		pending = append(splitPath(target), pending...)
	}

	return resolved, nil
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}
