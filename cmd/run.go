package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"icredeemer/internal/cache"
	"icredeemer/internal/config"
	"icredeemer/internal/input"
	"icredeemer/internal/progress"
	"icredeemer/internal/redeem"
	"icredeemer/internal/remote"
	"icredeemer/internal/setup"
)

// Used for a remote given only by --url
const (
	urlMaxRetries = 1
	urlTimeoutMS  = 4000
)

// runPlan says where the codes of a run come from. Remote is nil for a local
// run.
type runPlan struct {
	codes  []string
	remote *config.Remote
}

// planRun decides between a local and a remote run
func planRun(opts options, codes []string, cfg *config.Config) (runPlan, error) {
	preferRemote := opts.preferRemote || cfg.DefaultStrategy == config.StrategyRemote
	if len(codes) == 0 && opts.url == "" && !preferRemote {
		return runPlan{}, exitWith(exitCLI, errors.New("no codes provided"))
	}

	requireLocal := cfg.Remote == nil && opts.url == "" && preferRemote
	if len(codes) > 0 || requireLocal {
		if len(codes) == 0 {
			return runPlan{}, exitWith(exitLocalRun, errors.New("no codes provided, pass --codes or configure a remote code list"))
		}
		return runPlan{codes: codes}, nil
	}

	if cfg.Remote != nil {
		r := *cfg.Remote
		return runPlan{remote: &r}, nil
	}
	if opts.url != "" {
		return runPlan{remote: &config.Remote{URL: opts.url, MaxRetries: urlMaxRetries, TimeoutMS: urlTimeoutMS}}, nil
	}

	return runPlan{}, exitWith(exitRemoteRun, errors.New("no remote configuration provided, pass an --url or configure a remote"))
}

// awaitEnter blocks until a line is read. A closed stdin counts as ENTER.
func (a *app) awaitEnter() {
	if _, err := a.in.ReadString('\n'); err != nil {
		a.log.Debug("Stopped waiting for ENTER", zap.Error(err))
	}
}

func (a *app) driver(cfg *config.Config) (input.Driver, error) {
	d, err := a.newDriver(cfg.Input.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize input: %w", err)
	}
	return d, nil
}

func (a *app) runSetup(ctx context.Context, m *config.Manager) error {
	if a.opts.noInteraction {
		return exitWith(exitSetup, errors.New("cannot run setup without interaction"))
	}

	a.log.Debug("Running setup")
	d, err := a.driver(m.Get())
	if err != nil {
		return exitWith(exitSetup, err)
	}

	if _, err := setup.Run(ctx, setup.Options{
		In:        a.in,
		Out:       a.out,
		Driver:    d,
		Config:    m,
		Clipboard: a.clipboard,
		Sleep:     a.sleep,
		Logger:    a.log.Named("setup"),
	}); err != nil {
		return exitWith(exitSetup, err)
	}

	a.log.Debug("Setup completed successfully")
	return nil
}

func (a *app) cacheStore(m *config.Manager, cfg *config.Config) cache.Store {
	if !cfg.Cache.Enabled {
		return cache.Disabled{}
	}
	return cache.NewFile(m.Dir())
}

func (a *app) progressConsumer(cfg *config.Config) func(total int) progress.Consumer {
	switch cfg.Progress {
	case config.ProgressBar:
		return func(total int) progress.Consumer {
			return &progress.Bar{Total: total, Output: a.out, Logger: a.log.Named("progress")}
		}
	case config.ProgressLog:
		return func(total int) progress.Consumer {
			return &progress.Log{Total: total, Logger: a.log.Named("progress")}
		}
	default:
		return nil
	}
}

func (a *app) runRedeem(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	codes := append(append([]string{}, a.opts.codes...), args...)
	if a.opts.url != "" && len(codes) > 0 {
		return exitWith(exitCLI, errors.New("cannot use both --url and --codes"))
	}

	m, err := a.configManager()
	if err != nil {
		return err
	}

	if a.opts.setup || !m.IsSetup() {
		if m.IsSetup() {
			if err := m.Load(); err != nil {
				a.log.Warn("Failed to load existing config, starting over", zap.Error(err))
			}
		}
		if err := a.runSetup(ctx, m); err != nil {
			return err
		}
	}

	if err := m.Load(); err != nil {
		return exitWith(exitConfig, err)
	}
	cfg := m.Get()

	plan, err := planRun(a.opts, codes, cfg)
	if err != nil {
		return err
	}

	d, err := a.driver(cfg)
	if err != nil {
		return exitWith(exitRunFailed, err)
	}

	if !a.opts.noInteraction {
		fmt.Fprintln(a.out, "Ensure you are on the Chest menu (default hotkey 'o'), and press ENTER to start redemption.")
		a.awaitEnter()
	}

	if plan.remote != nil {
		a.log.Debug("Running remote", zap.String("url", plan.remote.URL))
		client := remote.New(plan.remote.URL, plan.remote.MaxRetries,
			time.Duration(plan.remote.TimeoutMS)*time.Millisecond, a.log.Named("remote"))
		plan.codes, err = client.Fetch(ctx)
		if err != nil {
			return exitWith(exitRemoteRun, err)
		}
		if len(plan.codes) == 0 {
			fmt.Fprintln(a.out, "The remote list has no codes.")
			return nil
		}
	} else {
		a.log.Debug("Running local", zap.Int("codes", len(plan.codes)))
	}

	i := redeem.New(redeem.Options{
		Driver:       d,
		Clipboard:    a.clipboard,
		Cache:        a.cacheStore(m, cfg),
		Instructions: cfg.Instructions,
		Slow:         cfg.Slow || a.opts.slow,
		Progress:     a.progressConsumer(cfg),
		Sleep:        a.sleep,
		Out:          a.out,
		Logger:       a.log.Named("redeem"),
	})

	report, err := i.RedeemMany(plan.codes)
	if err != nil {
		var berr *redeem.BatchError
		if errors.As(err, &berr) {
			fmt.Fprintf(a.out, "Failed to redeem %d of %d codes:\n", len(berr.Failed), len(plan.codes)-len(report.Skipped))
			for _, c := range berr.Failed {
				fmt.Fprintf(a.out, "  %s\n", c)
			}
		}
		return exitWith(exitRunFailed, err)
	}

	if len(report.Redeemed) > 0 {
		fmt.Fprintf(a.out, "Redeemed %d codes.\n", len(report.Redeemed))
	}
	return nil
}
