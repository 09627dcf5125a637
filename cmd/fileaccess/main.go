// fileaccess is a small command line front end to the fileaccess library.
// Every subcommand maps onto one FileAccess operation, so it doubles as a
// way to observe how a backend reports success and failure:
//
//	fileaccess stat /etc/hostname
//	fileaccess --backend os --root /srv ls -l /
//	echo hello | fileaccess write /tmp/greeting
//	fileaccess --output yaml --metrics exists /tmp
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/billy"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/fileaccess/posix"
)

const (
	backendPosix  = "posix"
	backendOS     = "os"
	backendMemory = "memory"

	logLevelEnv = "FILEACCESS_LOG_LEVEL"
)

type Flags struct {
	// Backend selects the provider operations go through: posix (system
	// calls), os (go-billy chrooted at Root) or memory (empty in-memory
	// filesystem, mostly useful with write).
	Backend string

	// Root is the chroot directory of the os backend.
	Root string

	// Output selects text, json or yaml rendering.
	Output outputFormat

	// Debug enables debug logging of every operation on stderr. Without it
	// the level comes from FILEACCESS_LOG_LEVEL, and logging is off when
	// that is unset.
	Debug bool

	// Metrics prints operation counters in Prometheus text format on stderr
	// once the command has finished, whether or not it succeeded.
	Metrics bool
}

// app holds the state shared by all subcommands of one invocation.
type app struct {
	flags Flags

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	fa        *fileaccess.FileAccess
	collector *metrics.Collector
	registry  *prometheus.Registry

	// newAccess is overridden in tests to share one filesystem between
	// invocations.
	newAccess func(opts ...fileaccess.Option) (*fileaccess.FileAccess, error)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	a.newAccess = a.openBackend
	return a
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fileaccess",
		Short:         "Primitive file and directory operations",
		Long:          "Run single file and directory operations through a fileaccess backend and print the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVar(&a.flags.Backend, "backend", backendPosix, "Backend to use: posix, os or memory")
	cmd.PersistentFlags().StringVar(&a.flags.Root, "root", "/", "Chroot directory of the os backend")
	a.flags.Output = outputText
	cmd.PersistentFlags().VarP(&a.flags.Output, "output", "o", "Output format: text, json or yaml")
	cmd.PersistentFlags().BoolVarP(&a.flags.Debug, "debug", "d", false, "Log every operation to stderr")
	cmd.PersistentFlags().BoolVar(&a.flags.Metrics, "metrics", false, "Print operation counters to stderr on exit")

	cmd.AddCommand(
		a.statCmd(),
		a.existsCmd(),
		a.lsCmd(),
		a.catCmd(),
		a.writeCmd(),
	)

	return cmd
}

func (a *app) setup() error {
	logger, err := a.logger()
	if err != nil {
		return err
	}

	opts := []fileaccess.Option{fileaccess.WithLogger(logger)}
	if a.flags.Metrics {
		a.collector = metrics.NewCollector("cli")
		a.registry = prometheus.NewRegistry()
		if err := a.registry.Register(a.collector); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, fileaccess.WithRecorder(a.collector))
	}

	a.fa, err = a.newAccess(opts...)
	return err
}

// logger returns nil, which disables logging, unless --debug or the
// environment asks for it.
func (a *app) logger() (*slog.Logger, error) {
	var level slog.Level
	switch {
	case a.flags.Debug:
		level = slog.LevelDebug
	case os.Getenv(logLevelEnv) != "":
		if err := level.UnmarshalText([]byte(os.Getenv(logLevelEnv))); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", logLevelEnv, err)
		}
	default:
		return nil, nil
	}

	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})), nil
}

func (a *app) openBackend(opts ...fileaccess.Option) (*fileaccess.FileAccess, error) {
	switch strings.ToLower(a.flags.Backend) {
	case backendPosix:
		return posix.New(opts...), nil
	case backendOS:
		return billy.NewOS(a.flags.Root, opts...), nil
	case backendMemory:
		return billy.NewInMemory(opts...), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", a.flags.Backend)
	}
}

// execute runs cmd and then dumps metrics, also when the command failed.
func (a *app) execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if derr := a.dumpMetrics(); err == nil {
		err = derr
	}
	return err
}

func (a *app) dumpMetrics() error {
	if a.registry == nil {
		return nil
	}

	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stderr, mf); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.execute(a.rootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
