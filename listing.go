package fileaccess

import (
	"io/fs"
	"iter"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

// VisitFunc is called by ListDirectory once per directory entry. Returning
// SkipAll ends the listing without error; any other error aborts it.
type VisitFunc func(name string) error

// ListDirectory calls visit with the name of every entry in the directory at
// path, excluding the "." and ".." pseudo-entries. Order is whatever the
// backend reports. If the directory cannot be opened visit is never called.
func (fa *FileAccess) ListDirectory(path string, visit VisitFunc) error {
	var visitErr error
	err := fa.backend.ReadDir(path, func(name string) error {
		if isPseudoEntry(name) {
			return nil
		}
		if err := visit(name); err != nil {
			visitErr = err
			return err
		}
		return nil
	})

	switch {
	case visitErr != nil:
		if errors.Is(visitErr, SkipAll) {
			fa.done("opendir", path, InvalidHandle)
			return nil
		}
		fa.record("opendir", visitErr)
		return errors.WrapWithContext(visitErr, errors.CodeOf(visitErr), "directory visitor failed",
			map[string]interface{}{"path": path})
	case err != nil:
		return fa.fail(listingOp(err), path, InvalidHandle, err)
	}

	fa.done("opendir", path, InvalidHandle)
	return nil
}

// Entries returns an iterator over the entry names of the directory at path,
// excluding "." and "..". A failure is yielded once as ("", err) and ends the
// sequence. Stopping early releases the directory.
//
//	for name, err := range fa.Entries(dir) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(name)
//	}
func (fa *FileAccess) Entries(path string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := fa.ListDirectory(path, func(name string) error {
			if !yield(name, nil) {
				return SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

// ReadDirNames collects the entry names of the directory at path.
func (fa *FileAccess) ReadDirNames(path string) ([]string, error) {
	var names []string
	for name, err := range fa.Entries(path) {
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func isPseudoEntry(name string) bool {
	return name == "." || name == ".."
}

// listingOp reports readdir when the backend failed after the directory was
// opened, and opendir otherwise.
func listingOp(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) && pe.Op == "readdir" {
		return "readdir"
	}
	return "opendir"
}
