package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/billy"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/errors"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one invocation against fsys, or against the backend selected
// by flags when fsys is nil.
func run(t *testing.T, fsys gobilly.Filesystem, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	if fsys != nil {
		a.newAccess = func(opts ...fileaccess.Option) (*fileaccess.FileAccess, error) {
			return billy.New(fsys, opts...), nil
		}
	}

	cmd := a.rootCmd()
	cmd.SetArgs(args)
	err := a.execute(cmd)

	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func seeded(t *testing.T) gobilly.Filesystem {
	t.Helper()

	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "/data/hello.txt", []byte("hello world"), 0o644))
	require.NoError(t, util.WriteFile(fsys, "/data/sub/nested.txt", []byte("x"), 0o644))
	return fsys
}

func TestStat(t *testing.T) {
	fsys := seeded(t)

	t.Run("json", func(t *testing.T) {
		res := run(t, fsys, "", "-o", "json", "stat", "/data/hello.txt")
		require.NoError(t, res.err)

		var infos []fileaccess.FileInfo
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &infos))
		assert.Equal(t, []fileaccess.FileInfo{{Path: "/data/hello.txt", Length: 11}}, infos)
	})

	t.Run("text", func(t *testing.T) {
		res := run(t, fsys, "", "stat", "/data/hello.txt", "/data/sub")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Path")
		assert.Regexp(t, `/data/hello.txt\s+file\s+11`, res.stdout)
		assert.Regexp(t, `/data/sub\s+directory`, res.stdout)
	})

	t.Run("missing", func(t *testing.T) {
		res := run(t, fsys, "", "stat", "/data/nope")
		require.Error(t, res.err)
		assert.True(t, fileaccess.IsNotFound(res.err))
		assert.Empty(t, res.stdout)
	})
}

func TestExists(t *testing.T) {
	fsys := seeded(t)

	res := run(t, fsys, "", "-o", "yaml", "exists", "/data/hello.txt", "/data/sub", "/data/nope")
	require.NoError(t, res.err)

	var states []pathState
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &states))
	assert.Equal(t, []pathState{
		{Path: "/data/hello.txt", Kind: "file"},
		{Path: "/data/sub", Kind: "directory"},
		{Path: "/data/nope", Kind: "absent"},
	}, states)
}

func TestExists_Strict(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	under := filepath.Join(file, "child")

	res := run(t, nil, "", "exists", under)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "absent")

	res = run(t, nil, "", "exists", "--strict", under)
	require.Error(t, res.err)
	assert.Equal(t, errors.CodeInvalidInput, errors.CodeOf(res.err))
}

func TestLs(t *testing.T) {
	fsys := seeded(t)

	t.Run("names", func(t *testing.T) {
		res := run(t, fsys, "", "ls", "--sort", "/data")
		require.NoError(t, res.err)
		assert.Equal(t, "hello.txt\nsub\n", res.stdout)
	})

	t.Run("long", func(t *testing.T) {
		res := run(t, fsys, "", "-o", "json", "ls", "-l", "-s", "/data")
		require.NoError(t, res.err)

		var infos []fileaccess.FileInfo
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "hello.txt", infos[0].Name())
		assert.True(t, infos[1].IsDir)
	})

	t.Run("missing", func(t *testing.T) {
		res := run(t, nil, "", "ls", "/definitely/not/here")
		require.Error(t, res.err)
		assert.True(t, fileaccess.IsNotFound(res.err))
	})
}

func TestWriteThenCat(t *testing.T) {
	fsys := memfs.New()
	payload := strings.Repeat("0123456789", 10_000)

	res := run(t, fsys, payload, "write", "/out.txt")
	require.NoError(t, res.err)
	assert.Equal(t, "wrote 100000 bytes to /out.txt\n", res.stdout)

	res = run(t, fsys, "", "cat", "--buffer", "777", "/out.txt")
	require.NoError(t, res.err)
	assert.Equal(t, payload, res.stdout)

	res = run(t, fsys, "short", "-o", "json", "write", "/out.txt")
	require.NoError(t, res.err)
	assert.JSONEq(t, `{"path":"/out.txt","written":5}`, res.stdout)

	res = run(t, fsys, "", "cat", "/out.txt")
	require.NoError(t, res.err)
	assert.Equal(t, "short", res.stdout)
}

func TestCat_Errors(t *testing.T) {
	fsys := memfs.New()

	res := run(t, fsys, "", "cat", "/missing")
	require.Error(t, res.err)
	assert.True(t, fileaccess.IsNotFound(res.err))

	res = run(t, fsys, "", "cat", "--buffer", "0", "/missing")
	assert.ErrorContains(t, res.err, "buffer size must be positive")
}

func TestPosixBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posix.txt")

	res := run(t, nil, "abc", "--backend", "posix", "write", path)
	require.NoError(t, res.err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	res = run(t, nil, "", "--backend", "os", "--root", dir, "cat", "/posix.txt")
	require.NoError(t, res.err)
	assert.Equal(t, "abc", res.stdout)
}

func TestFlags_Invalid(t *testing.T) {
	res := run(t, nil, "", "--backend", "tape", "ls", "/")
	assert.ErrorContains(t, res.err, `unknown backend "tape"`)

	res = run(t, nil, "", "-o", "xml", "ls", "/")
	assert.ErrorContains(t, res.err, `unsupported output format "xml"`)
}

func TestDebugLogging(t *testing.T) {
	fsys := memfs.New()

	res := run(t, fsys, "", "--debug", "cat", "/missing")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "file operation failed")
	assert.Contains(t, res.stderr, "code=NOT_FOUND")

	res = run(t, fsys, "", "cat", "/missing")
	require.Error(t, res.err)
	assert.Empty(t, res.stderr)
}

func TestLogLevelEnv(t *testing.T) {
	fsys := memfs.New()

	t.Setenv(logLevelEnv, "debug")
	res := run(t, fsys, "", "exists", "/missing")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "level=DEBUG")

	t.Setenv(logLevelEnv, "loud")
	res = run(t, fsys, "", "exists", "/missing")
	assert.ErrorContains(t, res.err, "invalid "+logLevelEnv)
}

func TestMetrics(t *testing.T) {
	fsys := seeded(t)

	t.Run("absent is not a failure", func(t *testing.T) {
		res := run(t, fsys, "", "--metrics", "exists", "/data/hello.txt", "/data/nope")
		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, `cli_fileaccess_operations_total{op="stat"} 2`)
		assert.NotContains(t, res.stderr, "cli_fileaccess_failures_total{")
	})

	t.Run("strict stats once per path", func(t *testing.T) {
		res := run(t, fsys, "", "--metrics", "exists", "--strict", "/data/hello.txt", "/data/sub", "/data/nope")
		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, `cli_fileaccess_operations_total{op="stat"} 3`)
	})

	t.Run("failures by code", func(t *testing.T) {
		res := run(t, fsys, "", "--metrics", "stat", "/data/nope")
		require.Error(t, res.err)
		assert.Contains(t, res.stderr, `cli_fileaccess_failures_total{code="NOT_FOUND",op="stat"} 1`)
	})
}
