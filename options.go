package fileaccess

import (
	"io/fs"
	"log/slog"
)

// Recorder receives the outcome of every operation. err is nil on success.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Record(op string, err error)
}

type options struct {
	logger    *slog.Logger
	recorder  Recorder
	writeMode fs.FileMode
}

// Option is a functional option for configuring a FileAccess.
type Option func(*options)

// WithLogger configures the logger operations are reported to at debug level.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithRecorder configures a Recorder, for example a metrics.Collector.
func WithRecorder(r Recorder) Option {
	return func(opts *options) {
		opts.recorder = r
	}
}

// WithWriteMode overrides the permission mode OpenForWrite creates files with.
func WithWriteMode(mode fs.FileMode) Option {
	return func(opts *options) {
		opts.writeMode = mode.Perm()
	}
}

func defaultOptions() *options {
	return &options{
		logger:    nil, // No default logger
		recorder:  nil,
		writeMode: WriteMode,
	}
}

func applyOptions(opts *options, fns []Option) {
	for _, option := range fns {
		option(opts)
	}
}
