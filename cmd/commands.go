package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"icredeemer/internal/cache"
)

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Capture the chest dialog button positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			m, err := a.configManager()
			if err != nil {
				return err
			}
			if m.IsSetup() {
				if err := m.Load(); err != nil {
					a.log.Warn("Failed to load existing config, starting over", zap.Error(err))
				}
			}
			if err := a.runSetup(ctx, m); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Config saved to %s\n", m.Path())
			return nil
		},
	}
}

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.configManager()
			if err != nil {
				return exitWith(exitClean, err)
			}

			a.log.Debug("Removing config file", zap.String("path", m.Path()))
			if err := m.Remove(); err != nil {
				return exitWith(exitClean, err)
			}
			fmt.Fprintln(a.out, "Config file removed successfully!")
			return nil
		},
	}
}

func newBustCacheCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bust-cache",
		Short: "Forget which codes were already redeemed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.configManager()
			if err != nil {
				return err
			}

			store := cache.NewFile(m.Dir())
			c, err := store.Load()
			if err != nil {
				a.log.Warn("Failed to read cache", zap.Error(err))
			}
			a.log.Debug("Busting cache", zap.String("path", store.Path), zap.Int("entries", c.Len()))

			c.Bust()
			if err := store.Save(c); err != nil {
				return exitWith(exitConfig, err)
			}
			fmt.Fprintln(a.out, "Cache cleared.")
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "icredeemer version %s\n", version)
		},
	}
}
