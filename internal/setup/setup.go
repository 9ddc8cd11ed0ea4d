// Package setup captures the screen coordinates of the chest dialog by
// asking the user to hover each button in turn.
package setup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"icredeemer/internal/clipboard"
	"icredeemer/internal/config"
	"icredeemer/internal/input"
	"icredeemer/internal/redeem"
)

// DemoCode is redeemed once at the end of setup to show a full cycle. It
// is not a real code, so the game only shows its error dialog.
const DemoCode = "DEMO-REDE-EMER-IDLE"

// ErrAborted is returned when input ends before setup completes
var ErrAborted = errors.New("setup aborted")

// Options configures a setup run
type Options struct {
	In     io.Reader
	Out    io.Writer
	Driver input.Driver
	Config *config.Manager

	// Clipboard is used by the demo redemption
	Clipboard clipboard.Provider

	// SkipDemo disables the demo redemption
	SkipDemo bool

	// Sleep is handed to the demo redemption. Defaults to time.Sleep.
	Sleep redeem.Sleeper

	Logger *zap.Logger
}

type wizard struct {
	opts Options
	in   *bufio.Reader
	out  io.Writer
	log  *zap.Logger
}

// Run walks the user through setup and saves the resulting configuration
func Run(ctx context.Context, opts Options) (*config.Config, error) {
	w := &wizard{
		opts: opts,
		in:   bufio.NewReader(opts.In),
		out:  opts.Out,
		log:  opts.Logger,
	}
	if w.out == nil {
		w.out = io.Discard
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	return w.run(ctx)
}

func (w *wizard) println(a ...any) {
	fmt.Fprintln(w.out, a...)
}

func (w *wizard) awaitEnter(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := w.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			return ErrAborted
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
	return nil
}

func (w *wizard) capture(step int) (config.Coordinates, error) {
	x, y, err := w.opts.Driver.Location()
	if err != nil {
		return config.Coordinates{}, fmt.Errorf("failed to get pointer position: %w", err)
	}
	c := config.Coordinates{X: x, Y: y}
	fmt.Fprintf(w.out, "Step %d: Registered coordinates X:%d, Y:%d\n", step, c.X, c.Y)
	return c, nil
}

func (w *wizard) run(ctx context.Context) (*config.Config, error) {
	m := w.opts.Config
	if err := os.MkdirAll(m.Dir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	w.println("Welcome to the setup!")
	w.println("Please note, you will have to rerun the setup if the mouse coordinates change (for instance, if you drag the Idle Champions window to a different location).")
	w.println("Please navigate to the chest UI in Idle Champions before proceeding. Hit ENTER to continue or CTRL-C to abort.")
	if err := w.awaitEnter(ctx); err != nil {
		return nil, err
	}

	w.println("For the following steps, please move your mouse to the desired location and hit ENTER to proceed, or CTRL-C to abort.")
	w.println("The program will send mouse clicks for you during this stage as you complete a step.")

	w.println("Step 1: Hover your mouse over the chest 'Unlock a Locked Chest' button.")
	w.println("This is located in the bottom left corner of the UI")
	if err := w.awaitEnter(ctx); err != nil {
		return nil, err
	}
	unlock, err := w.capture(1)
	if err != nil {
		return nil, err
	}
	w.println()

	// open the dialog so the next button is visible
	if err := w.opts.Driver.Click(input.ButtonLeft); err != nil {
		return nil, err
	}

	w.println("Step 2: Hover your mouse over the chest '12 Characters' button.")
	w.println("This is located in the bottom left corner of the UI for unlocking chests")
	if err := w.awaitEnter(ctx); err != nil {
		return nil, err
	}
	characterSwitch, err := w.capture(2)
	if err != nil {
		return nil, err
	}

	instructions := config.Instructions{
		UnlockChest:     unlock,
		CharacterSwitch: characterSwitch,
	}

	if err := w.opts.Driver.KeyTap(input.KeyEscape); err != nil {
		return nil, err
	}

	if !w.opts.SkipDemo {
		if err := w.demo(instructions); err != nil {
			w.log.Error("Failed to run demo", zap.Error(err))
		}
	}

	w.println("Step 4: Saving config file.")
	w.println(instructions)

	cfg := *m.Get()
	cfg.DefaultStrategy = config.StrategyLocal
	cfg.Instructions = instructions
	m.Set(&cfg)
	if err := m.Save(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (w *wizard) demo(instructions config.Instructions) error {
	w.println("Step 3: We will now test a full cycle of the program.")
	w.println("This will take about 20 seconds, will open the chest UI, try a demo code, and close the UI.")

	i := redeem.New(redeem.Options{
		Driver:       w.opts.Driver,
		Clipboard:    w.opts.Clipboard,
		Instructions: instructions,
		Slow:         true,
		Sleep:        w.opts.Sleep,
		Out:          w.out,
		Logger:       w.log.Named("demo"),
	})
	return i.Redeem(DemoCode)
}
