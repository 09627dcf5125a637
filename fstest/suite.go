// Package fstest provides a conformance test suite for validating fileaccess
// backends against the FileAccess contract.
//
// The suite drives a backend only through FileAccess and checks the
// documented behaviour: end of stream is a successful zero-length read,
// missing paths are NOT_FOUND, "." and ".." never reach a visitor, and so on.
// Fixture directories are created through the Env callbacks because
// FileAccess itself has no mkdir.
//
// Example usage:
//
//	func TestMyBackend(t *testing.T) {
//	    fstest.TestSuite(t, func(t *testing.T) fstest.Env {
//	        dir := t.TempDir()
//	        return fstest.Env{
//	            FA:    mybackend.New(),
//	            Root:  dir,
//	            Mkdir: func(p string) error { return os.Mkdir(p, 0o755) },
//	        }
//	    })
//	}
package fstest

import (
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
)

// Env is one fresh backend instance plus the fixture hooks the suite needs.
type Env struct {
	FA *fileaccess.FileAccess

	// Root is an existing, empty directory the suite works below.
	Root string

	// Mkdir creates a single directory.
	Mkdir func(path string) error

	// Symlink creates link pointing at target. Symlink tests are skipped
	// when nil.
	Symlink func(target, link string) error
}

// TestSuite runs all conformance tests. newEnv must return a fresh Env for
// every call.
func TestSuite(t *testing.T, newEnv func(t *testing.T) Env) {
	TestSuiteWithSkip(t, newEnv, nil)
}

// TestSuiteWithSkip runs conformance tests, skipping the named groups
// (e.g. "Symlink").
func TestSuiteWithSkip(t *testing.T, newEnv func(t *testing.T) Env, skipTests []string) {
	shouldSkip := func(testName string) bool {
		for _, skip := range skipTests {
			if skip == testName {
				return true
			}
		}
		return false
	}

	groups := []struct {
		name string
		run  func(t *testing.T, env Env)
	}{
		{"ReadWrite", TestReadWrite},
		{"Close", TestClose},
		{"Stat", TestStat},
		{"ListDirectory", TestListDirectory},
		{"Symlink", TestSymlink},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if shouldSkip(g.name) {
				t.Skip("Skipped by backend configuration")
				return
			}
			g.run(t, newEnv(t))
		})
	}
}
