package fileaccess_test

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

// fakeBackend serves a fixed directory listing that includes the pseudo
// entries, and fails every other call with err.
type fakeBackend struct {
	entries   []string
	err       error
	closed    bool
	lastFlag  int
	lastPerm  fs.FileMode
	readCalls int
}

func (f *fakeBackend) Open(_ string, flag int, perm fs.FileMode) (fileaccess.Handle, error) {
	f.lastFlag, f.lastPerm = flag, perm
	if f.err != nil {
		return fileaccess.InvalidHandle, f.err
	}
	return 7, nil
}

func (f *fakeBackend) Close(fileaccess.Handle) error {
	if f.closed {
		return syscall.EBADF
	}
	f.closed = true
	return f.err
}

func (f *fakeBackend) Read(_ fileaccess.Handle, p []byte) (int, error) {
	f.readCalls++
	if f.err != nil {
		return -1, f.err
	}
	return len(p), nil
}

func (f *fakeBackend) Write(_ fileaccess.Handle, p []byte) (int, error) {
	if f.err != nil {
		return -1, f.err
	}
	return len(p), nil
}

func (f *fakeBackend) Stat(string) (fileaccess.Attr, error) {
	if f.err != nil {
		return fileaccess.Attr{}, f.err
	}
	return fileaccess.Attr{Size: 42}, nil
}

func (f *fakeBackend) Realpath(path string) (string, error) {
	return "/canonical" + path, nil
}

func (f *fakeBackend) ReadDir(path string, fn func(string) error) error {
	if f.err != nil {
		return &fs.PathError{Op: "opendir", Path: path, Err: f.err}
	}
	for _, name := range f.entries {
		if err := fn(name); err != nil {
			return err
		}
	}
	return nil
}

type recorder struct {
	ops    []string
	failed []string
}

func (r *recorder) Record(op string, err error) {
	r.ops = append(r.ops, op)
	if err != nil {
		r.failed = append(r.failed, op)
	}
}

func TestListDirectory_FiltersPseudoEntries(t *testing.T) {
	backend := &fakeBackend{entries: []string{".", "a", "..", "b"}}
	fa := fileaccess.New(backend)

	var got []string
	err := fa.ListDirectory("/dir", func(name string) error {
		got = append(got, name)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, []string{"a", "b"}, got)

	names, err := fa.ReadDirNames("/dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestListDirectory_OpenFailure(t *testing.T) {
	fa := fileaccess.New(&fakeBackend{err: syscall.EACCES})

	called := false
	err := fa.ListDirectory("/secret", func(string) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)

	var ioErr *fileaccess.IoError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "opendir", ioErr.Op)
	assert.Equal(t, syscall.EACCES, ioErr.Errno)
	assert.Equal(t, errors.CodeForbidden, ioErr.Code())
	assert.Equal(t, "opendir /secret: "+syscall.EACCES.Error(), err.Error())
}

func TestEntries_YieldsErrorOnce(t *testing.T) {
	fa := fileaccess.New(&fakeBackend{err: syscall.ENOENT})

	var errs []error
	for name, err := range fa.Entries("/missing") {
		assert.Empty(t, name)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.True(t, fileaccess.IsNotFound(errs[0]))
}

func TestIoError(t *testing.T) {
	fa := fileaccess.New(&fakeBackend{err: syscall.EIO})

	n, err := fa.Read(3, make([]byte, 8))
	assert.Equal(t, 0, n, "negative backend counts are not passed through")
	require.Error(t, err)

	var ioErr *fileaccess.IoError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
	assert.Equal(t, fileaccess.Handle(3), ioErr.Handle)
	assert.Equal(t, syscall.EIO, ioErr.Errno)
	assert.Equal(t, syscall.EIO.Error(), ioErr.Message())
	assert.Equal(t, errors.CodeIO, ioErr.Code())
	assert.True(t, errors.Is(err, syscall.EIO))
	assert.False(t, fileaccess.IsNotFound(err))
	assert.Equal(t, map[string]interface{}{
		"op":     "read",
		"handle": int64(3),
		"errno":  int(syscall.EIO),
	}, ioErr.Context())

	var pe errors.PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, errors.CodeIO, pe.Code())
}

func TestIoError_PathError(t *testing.T) {
	fa := fileaccess.New(&fakeBackend{err: &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}})

	h, err := fa.OpenForRead("/x")
	assert.Equal(t, fileaccess.InvalidHandle, h)
	require.Error(t, err)
	assert.True(t, fileaccess.IsNotFound(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var ioErr *fileaccess.IoError
	require.True(t, errors.As(err, &ioErr))
	assert.Zero(t, ioErr.Errno)
	assert.Equal(t, fs.ErrNotExist.Error(), ioErr.Message())
}

func TestIoError_WrappedSentinel(t *testing.T) {
	cause := fmt.Errorf("billy: stat %q: %w", "/x", fs.ErrNotExist)
	fa := fileaccess.New(&fakeBackend{err: cause})

	_, err := fa.Populate("/x")
	require.Error(t, err)
	assert.Equal(t, "stat /x: file does not exist", err.Error())

	var ioErr *fileaccess.IoError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, fs.ErrNotExist.Error(), ioErr.Message())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOpenForWrite_Mode(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		backend := &fakeBackend{}
		_, err := fileaccess.New(backend).OpenForWrite("/out")
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o644), backend.lastPerm)
		assert.NotZero(t, backend.lastFlag&syscall.O_TRUNC)
		assert.NotZero(t, backend.lastFlag&syscall.O_CREAT)
	})

	t.Run("override", func(t *testing.T) {
		backend := &fakeBackend{}
		_, err := fileaccess.New(backend, fileaccess.WithWriteMode(0o600|fs.ModeDir)).OpenForWrite("/out")
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o600), backend.lastPerm)
	})
}

func TestReadN_Clamps(t *testing.T) {
	backend := &fakeBackend{}
	fa := fileaccess.New(backend)

	n, err := fa.ReadN(1, make([]byte, 4), 10)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = fa.ReadN(1, make([]byte, 4), -1)
	assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(err))
	assert.Equal(t, 1, backend.readCalls, "a negative length never reaches the backend")
}

func TestPopulate(t *testing.T) {
	info, err := fileaccess.New(&fakeBackend{}).Populate("/f")
	require.NoError(t, err)
	assert.Equal(t, fileaccess.FileInfo{Path: "/canonical/f", Length: 42}, info)

	_, err = fileaccess.New(&fakeBackend{err: syscall.ENOENT}).Populate("/f")
	assert.ErrorIs(t, err, fileaccess.ErrNotFound)
}

func TestPathExists_SwallowsErrors(t *testing.T) {
	fa := fileaccess.New(&fakeBackend{err: syscall.EACCES})

	assert.Equal(t, fileaccess.Absent, fa.PathExists("/root/x"))

	kind, err := fa.Probe("/root/x")
	assert.Equal(t, fileaccess.Absent, kind)
	assert.Equal(t, errors.CodeForbidden, errors.CodeOf(err))
}

func TestPathExists_MissingIsNotAFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &recorder{}
	fa := fileaccess.New(&fakeBackend{err: syscall.ENOENT}, fileaccess.WithLogger(logger), fileaccess.WithRecorder(rec))

	assert.Equal(t, fileaccess.Absent, fa.PathExists("/missing"))
	kind, err := fa.Probe("/missing")
	require.NoError(t, err)
	assert.Equal(t, fileaccess.Absent, kind)

	assert.Equal(t, []string{"stat", "stat"}, rec.ops)
	assert.Empty(t, rec.failed)
	assert.NotContains(t, buf.String(), "failed")
}

func TestCloseQuiet(t *testing.T) {
	fa := fileaccess.New(&fakeBackend{})
	assert.True(t, fa.CloseQuiet(7))
	assert.False(t, fa.CloseQuiet(7))
}

func TestOptions_LoggerAndRecorder(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &recorder{}

	fa := fileaccess.New(&fakeBackend{err: syscall.ENOENT}, fileaccess.WithLogger(logger), fileaccess.WithRecorder(rec))
	_, err := fa.OpenForRead("/nope")
	require.Error(t, err)

	assert.Equal(t, []string{"open"}, rec.ops)
	assert.Equal(t, []string{"open"}, rec.failed)
	assert.Contains(t, buf.String(), "file operation failed")
	assert.Contains(t, buf.String(), "code=NOT_FOUND")
	assert.Contains(t, buf.String(), "path=/nope")
}

func TestOptions_LogsTransfers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &recorder{}
	fa := fileaccess.New(&fakeBackend{}, fileaccess.WithLogger(logger), fileaccess.WithRecorder(rec))

	_, err := fa.Read(7, make([]byte, 3))
	require.NoError(t, err)
	_, err = fa.Write(7, make([]byte, 5))
	require.NoError(t, err)

	assert.Equal(t, []string{"read", "write"}, rec.ops)
	assert.Contains(t, buf.String(), "op=read handle=7 bytes=3")
	assert.Contains(t, buf.String(), "op=write handle=7 bytes=5")
}

func TestPathKind_String(t *testing.T) {
	assert.Equal(t, "absent", fileaccess.Absent.String())
	assert.Equal(t, "file", fileaccess.File.String())
	assert.Equal(t, "directory", fileaccess.Directory.String())
	assert.Equal(t, "unknown", fileaccess.PathKind(9).String())
}
