//go:build !unix

package posix

import (
	"io/fs"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

var errUnsupported = errors.New(errors.CodeNotImplemented, "posix system calls are not available on this platform")

func (Backend) Open(string, int, fs.FileMode) (fileaccess.Handle, error) {
	return fileaccess.InvalidHandle, errUnsupported
}

func (Backend) Close(fileaccess.Handle) error { return errUnsupported }

func (Backend) Read(fileaccess.Handle, []byte) (int, error) { return 0, errUnsupported }

func (Backend) Write(fileaccess.Handle, []byte) (int, error) { return 0, errUnsupported }

func (Backend) Stat(string) (fileaccess.Attr, error) { return fileaccess.Attr{}, errUnsupported }

func (Backend) Realpath(string) (string, error) { return "", errUnsupported }

func (Backend) ReadDir(string, func(string) error) error { return errUnsupported }
