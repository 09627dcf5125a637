package fstest

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
)

// TestReadWrite tests OpenForRead, OpenForWrite, Read and Write.
func TestReadWrite(t *testing.T, env Env) {
	t.Run("RoundTrip", func(t *testing.T) {
		testRoundTrip(t, env)
	})
	t.Run("ReadPastEnd", func(t *testing.T) {
		testReadPastEnd(t, env)
	})
	t.Run("Truncate", func(t *testing.T) {
		testTruncate(t, env)
	})
	t.Run("ShortBuffer", func(t *testing.T) {
		testShortBuffer(t, env)
	})
	t.Run("OpenNotExist", func(t *testing.T) {
		testOpenNotExist(t, env)
	})
	t.Run("CreateInNonExistentDir", func(t *testing.T) {
		testCreateInNonExistentDir(t, env)
	})
}

// WriteFile creates name with data through FileAccess, failing the test on error.
func WriteFile(t *testing.T, fa *fileaccess.FileAccess, name string, data []byte) {
	t.Helper()

	h, err := fa.OpenForWrite(name)
	if err != nil {
		t.Fatalf("OpenForWrite(%q): got error %v, want nil", name, err)
	}
	for written := 0; written < len(data); {
		n, err := fa.Write(h, data[written:])
		if err != nil {
			_ = fa.Close(h)
			t.Fatalf("Write(%q): got error %v, want nil", name, err)
		}
		written += n
	}
	if err := fa.Close(h); err != nil {
		t.Fatalf("Close(%q): got error %v, want nil", name, err)
	}
}

// ReadFile reads name to end of stream through FileAccess, failing the test on error.
func ReadFile(t *testing.T, fa *fileaccess.FileAccess, name string) []byte {
	t.Helper()

	h, err := fa.OpenForRead(name)
	if err != nil {
		t.Fatalf("OpenForRead(%q): got error %v, want nil", name, err)
	}
	defer func() {
		if err := fa.Close(h); err != nil {
			t.Errorf("Close(%q): got error %v, want nil", name, err)
		}
	}()

	var out bytes.Buffer
	buf := make([]byte, 4096)
	for {
		n, err := fa.Read(h, buf)
		if err != nil {
			t.Fatalf("Read(%q): got error %v, want nil", name, err)
		}
		if n == 0 {
			return out.Bytes()
		}
		out.Write(buf[:n])
	}
}

// testRoundTrip writes byte sequences and reads them back after reopening.
func testRoundTrip(t *testing.T, env Env) {
	large := make([]byte, 3*4096+17)
	for i := range large {
		large[i] = byte(i * 7)
	}

	cases := map[string][]byte{
		"empty":  {},
		"text":   []byte("hello, world"),
		"binary": {0x00, 0xff, 0x10, 0x00, 0x7f},
		"large":  large,
	}

	for name, data := range cases {
		p := filepath.Join(env.Root, "roundtrip-"+name)
		WriteFile(t, env.FA, p, data)

		got := ReadFile(t, env.FA, p)
		if !bytes.Equal(got, data) {
			t.Errorf("round trip %s: got %d bytes, want %d", name, len(got), len(data))
		}
	}
}

// testReadPastEnd tests that reading at end of stream is a zero-length success.
func testReadPastEnd(t *testing.T, env Env) {
	p := filepath.Join(env.Root, "eof.txt")
	WriteFile(t, env.FA, p, []byte("abc"))

	h, err := env.FA.OpenForRead(p)
	if err != nil {
		t.Fatalf("OpenForRead(%q): got error %v, want nil", p, err)
	}
	defer env.FA.CloseQuiet(h)

	buf := make([]byte, 8)
	n, err := env.FA.Read(h, buf)
	if err != nil || n != 3 {
		t.Fatalf("Read(): got (%d, %v), want (3, nil)", n, err)
	}

	for i := 0; i < 2; i++ {
		n, err = env.FA.Read(h, buf)
		if err != nil {
			t.Errorf("Read() past end: got error %v, want nil", err)
		}
		if n != 0 {
			t.Errorf("Read() past end: got %d bytes, want 0", n)
		}
	}
}

// testTruncate tests that OpenForWrite truncates an existing file.
func testTruncate(t *testing.T, env Env) {
	p := filepath.Join(env.Root, "truncate.txt")
	WriteFile(t, env.FA, p, []byte("a much longer original content"))
	WriteFile(t, env.FA, p, []byte("short"))

	if got := ReadFile(t, env.FA, p); string(got) != "short" {
		t.Errorf("after truncate: got %q, want %q", got, "short")
	}
}

// testShortBuffer tests ReadN and WriteN length clamping.
func testShortBuffer(t *testing.T, env Env) {
	p := filepath.Join(env.Root, "short.txt")

	h, err := env.FA.OpenForWrite(p)
	if err != nil {
		t.Fatalf("OpenForWrite(%q): got error %v, want nil", p, err)
	}
	n, err := env.FA.WriteN(h, []byte("0123456789"), 4)
	if err != nil || n != 4 {
		t.Errorf("WriteN(4): got (%d, %v), want (4, nil)", n, err)
	}
	if _, err := env.FA.WriteN(h, []byte("x"), -1); err == nil {
		t.Errorf("WriteN(-1): got nil error, want error")
	}
	if err := env.FA.Close(h); err != nil {
		t.Fatalf("Close(): got error %v, want nil", err)
	}

	h, err = env.FA.OpenForRead(p)
	if err != nil {
		t.Fatalf("OpenForRead(%q): got error %v, want nil", p, err)
	}
	defer env.FA.CloseQuiet(h)

	buf := make([]byte, 8)
	n, err = env.FA.ReadN(h, buf, 2)
	if err != nil || n != 2 || string(buf[:n]) != "01" {
		t.Errorf("ReadN(2): got (%q, %v), want (%q, nil)", buf[:n], err, "01")
	}
	n, err = env.FA.ReadN(h, buf, 100)
	if err != nil || string(buf[:n]) != "23" {
		t.Errorf("ReadN(100): got (%q, %v), want (%q, nil)", buf[:n], err, "23")
	}
}

// testOpenNotExist tests that opening a missing file reports NOT_FOUND with a message.
func testOpenNotExist(t *testing.T, env Env) {
	p := filepath.Join(env.Root, "nonexistent")

	h, err := env.FA.OpenForRead(p)
	if err == nil {
		env.FA.CloseQuiet(h)
		t.Fatalf("OpenForRead(%q): got nil error, want error", p)
	}
	if h != fileaccess.InvalidHandle {
		t.Errorf("OpenForRead(%q): got handle %d, want InvalidHandle", p, h)
	}
	if !fileaccess.IsNotFound(err) {
		t.Errorf("OpenForRead(%q): got error %v, want ErrNotFound", p, err)
	}

	var ioErr *fileaccess.IoError
	if !asIoError(err, &ioErr) {
		t.Fatalf("OpenForRead(%q): got %T, want *fileaccess.IoError", p, err)
	}
	if ioErr.Message() == "" {
		t.Errorf("OpenForRead(%q): got empty message", p)
	}
	if ioErr.Op != "open" || ioErr.Path != p {
		t.Errorf("OpenForRead(%q): got op=%q path=%q", p, ioErr.Op, ioErr.Path)
	}
}

// testCreateInNonExistentDir tests that OpenForWrite fails below a missing
// directory. In-memory backends that create parents implicitly skip this.
func testCreateInNonExistentDir(t *testing.T, env Env) {
	p := filepath.Join(env.Root, "missing-dir", "file.txt")

	h, err := env.FA.OpenForWrite(p)
	if err == nil {
		env.FA.CloseQuiet(h)
		t.Skip("backend creates parent directories implicitly")
	}
	if !fileaccess.IsNotFound(err) {
		t.Errorf("OpenForWrite(%q): got error %v, want ErrNotFound", p, err)
	}
}
