package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
)

const defaultBufferSize = 32 * 1024

func (a *app) printer() *printer {
	return &printer{format: a.flags.Output, w: a.stdout}
}

func (a *app) statCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat PATH...",
		Short: "Show canonical path, type and length.",
		Long:  "Inspect each path and print its absolute, symlink-resolved form, whether it is a directory and its length.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]fileaccess.FileInfo, 0, len(args))
			for _, path := range args {
				info, err := a.fa.Populate(path)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			return a.printer().fileInfos(infos)
		},
	}
}

func (a *app) existsCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "exists PATH...",
		Short: "Report whether paths are absent, files or directories.",
		Long: "Report whether each path is absent, a file or a directory. Any failure to inspect a path " +
			"reads as absent unless --strict is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			states := make([]pathState, 0, len(args))
			for _, path := range args {
				kind, err := a.exists(path, strict)
				if err != nil {
					return err
				}
				states = append(states, pathState{Path: path, Kind: kind.String()})
			}
			return a.printer().pathStates(states)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on errors other than a missing path")

	return cmd
}

func (a *app) exists(path string, strict bool) (fileaccess.PathKind, error) {
	if strict {
		return a.fa.Probe(path)
	}
	return a.fa.PathExists(path), nil
}

func (a *app) lsCmd() *cobra.Command {
	var (
		long   bool
		sorted bool
	)

	cmd := &cobra.Command{
		Use:   "ls DIR",
		Short: "List directory entries.",
		Long:  "List the entries of a directory, excluding . and .., in the order the backend reports them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			names, err := a.fa.ReadDirNames(dir)
			if err != nil {
				return err
			}
			if sorted {
				sort.Strings(names)
			}

			if !long {
				return a.printer().names(names)
			}

			infos := make([]fileaccess.FileInfo, 0, len(names))
			for _, name := range names {
				info, err := a.fa.Populate(filepath.Join(dir, name))
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			return a.printer().listing(infos)
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show type and length of every entry")
	cmd.Flags().BoolVarP(&sorted, "sort", "s", false, "Sort entries by name")

	return cmd
}

func (a *app) catCmd() *cobra.Command {
	var bufferSize int

	cmd := &cobra.Command{
		Use:   "cat FILE",
		Short: "Print file contents.",
		Long:  "Read a file from start to end and copy it to standard output.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bufferSize <= 0 {
				return fmt.Errorf("buffer size must be positive, got %d", bufferSize)
			}

			h, err := a.fa.OpenForRead(args[0])
			if err != nil {
				return err
			}

			if err := a.copyOut(h, make([]byte, bufferSize)); err != nil {
				a.fa.CloseQuiet(h)
				return err
			}
			return a.fa.Close(h)
		},
	}

	cmd.Flags().IntVar(&bufferSize, "buffer", defaultBufferSize, "Read buffer size in bytes")

	return cmd
}

func (a *app) writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write FILE",
		Short: "Write standard input to a file.",
		Long:  "Create or truncate a file and write standard input to it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			h, err := a.fa.OpenForWrite(path)
			if err != nil {
				return err
			}

			written, err := a.copyIn(h)
			if err != nil {
				a.fa.CloseQuiet(h)
				return err
			}
			if err := a.fa.Close(h); err != nil {
				return err
			}

			return a.printer().written(writeResult{Path: path, Written: written})
		},
	}
}

// copyOut copies h to stdout until end of stream.
func (a *app) copyOut(h fileaccess.Handle, buf []byte) error {
	for {
		n, err := a.fa.Read(h, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := a.stdout.Write(buf[:n]); err != nil {
			return err
		}
	}
}

// copyIn writes stdin to h, resubmitting the remainder after short writes.
func (a *app) copyIn(h fileaccess.Handle) (int64, error) {
	var total int64
	buf := make([]byte, defaultBufferSize)
	for {
		n, rerr := a.stdin.Read(buf)
		for chunk := buf[:n]; len(chunk) > 0; {
			w, err := a.fa.Write(h, chunk)
			if err != nil {
				return total, err
			}
			if w == 0 {
				return total, io.ErrShortWrite
			}
			chunk = chunk[w:]
			total += int64(w)
		}
		if errors.Is(rerr, io.EOF) {
			return total, nil
		}
		if rerr != nil {
			return total, fmt.Errorf("failed to read input: %w", rerr)
		}
	}
}
