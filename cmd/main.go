// icredeemer - Idle Champions chest code redeemer
// Types codes into the game's "Unlock a Locked Chest" dialog for you
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"icredeemer/internal/clipboard"
	"icredeemer/internal/config"
	"icredeemer/internal/input"
	"icredeemer/internal/input/backend"
	"icredeemer/internal/redeem"
)

var version = "0.1.0"

// Process exit codes
const (
	exitSuccess   = 0
	exitCLI       = 1
	exitClean     = 2
	exitSetup     = 3
	exitConfig    = 4
	exitLocalRun  = 5
	exitRemoteRun = 6
	exitRunFailed = 7
)

// exitError carries the process exit code of a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitCLI
}

type options struct {
	codes         []string
	url           string
	setup         bool
	preferRemote  bool
	noInteraction bool
	slow          bool
	verbose       bool
	configDir     string
}

// app holds the flags and the collaborators of a command invocation
type app struct {
	opts options

	in  *bufio.Reader
	out io.Writer
	log *zap.Logger

	newDriver func(backend string) (input.Driver, error)
	clipboard clipboard.Provider
	sleep     redeem.Sleeper
}

func newApp() *app {
	return &app{
		in:        bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		newDriver: backend.New,
		clipboard: clipboard.System{},
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func (a *app) configManager() (*config.Manager, error) {
	m, err := config.NewManager(a.opts.configDir, a.log.Named("config"))
	if err != nil {
		return nil, exitWith(exitConfig, err)
	}
	return m, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "icredeemer [codes...]",
		Short: "Redeem Idle Champions chest codes",
		Long: `icredeemer redeems chest codes in Idle Champions by clicking through the
"Unlock a Locked Chest" dialog for you.

The first run asks you to point at the dialog buttons so their screen
positions can be stored. Codes can be passed as arguments, with --codes or
fetched from a remote list.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.log != nil {
				return nil
			}
			logger, err := buildLogger(a.opts.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: a.runRedeem,
	}

	flags := root.Flags()
	flags.StringSliceVarP(&a.opts.codes, "codes", "c", nil, "Provide codes manually")
	flags.StringVarP(&a.opts.url, "url", "u", "", "Retrieve codes from a remote list")
	flags.BoolVar(&a.opts.setup, "setup", false, "Run the setup before redeeming")
	flags.BoolVar(&a.opts.preferRemote, "prefer-remote", false, "Prefer obtaining codes remotely")
	flags.BoolVar(&a.opts.slow, "slow", false, "Add half a second to every action")

	persistent := root.PersistentFlags()
	persistent.BoolVar(&a.opts.noInteraction, "no-interaction", false, "Do not interact with the user (no pauses, no setup)")
	persistent.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Verbose output")
	persistent.StringVar(&a.opts.configDir, "config-dir", "", "Configuration directory (default is the per-user config dir)")

	root.AddCommand(newSetupCmd(a))
	root.AddCommand(newCleanCmd(a))
	root.AddCommand(newBustCacheCmd(a))
	root.AddCommand(newVersionCmd(a))

	return root
}

func main() {
	a := newApp()
	err := newRootCmd(a).Execute()
	if err != nil {
		if a.log != nil {
			a.log.Error("Command failed", zap.Error(err))
			_ = a.log.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(exitCode(err))
}
