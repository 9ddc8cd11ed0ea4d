// Package redeem drives the game's chest unlock dialog to redeem codes.
//
// The interaction is blind: nothing on screen is inspected, so every code
// runs the same fixed key sequence, long enough to get through either the
// reward cards or the error dialog. Dwell times follow the game's animations.
package redeem

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"icredeemer/internal/cache"
	"icredeemer/internal/clipboard"
	"icredeemer/internal/code"
	"icredeemer/internal/config"
	"icredeemer/internal/input"
	"icredeemer/internal/progress"
)

// Step names a stage of a single redemption
type Step string

const (
	StepValidate    Step = "validate"
	StepClipboard   Step = "clipboard"
	StepUnlock      Step = "unlock chest"
	StepPaste       Step = "paste code"
	StepConfirm     Step = "confirm"
	StepFlipCard    Step = "flip card"
	StepDismiss     Step = "dismiss error"
	StepClose       Step = "close chest"
	StepAcknowledge Step = "acknowledge card"
)

// Dwell times in milliseconds
const (
	clickSettle    = 10
	unlockDwell    = 2500
	pasteKeyDwell  = 25
	pasteDwell     = 1500
	confirmDwell   = 5000
	flipDwell      = 10
	flipCount      = 6
	dismissDwell   = 1000
	closeDwell     = 3000
	ackDwell       = 500
	successDwell   = 2600
	failureDwell   = 100
	slowExtraDwell = 500
)

const (
	progressBuffer = 64
	progressDrain  = 2 * time.Second
)

// Sleeper waits for d
type Sleeper func(d time.Duration)

// Options configures an Interactor
type Options struct {
	Driver       input.Driver
	Clipboard    clipboard.Provider
	Cache        cache.Store
	Instructions config.Instructions

	// Slow adds half a second to every dwell
	Slow bool

	// Progress builds the consumer for a batch of total codes. Nil disables
	// progress reporting.
	Progress func(total int) progress.Consumer

	// Sleep defaults to time.Sleep
	Sleep Sleeper

	// Out receives the user facing status lines. Defaults to io.Discard.
	Out io.Writer

	Logger *zap.Logger
}

// Interactor redeems codes one at a time
type Interactor struct {
	driver       input.Driver
	clipboard    clipboard.Provider
	store        cache.Store
	instructions config.Instructions
	slow         bool
	newProgress  func(total int) progress.Consumer
	sleep        Sleeper
	out          io.Writer
	log          *zap.Logger
}

// Report summarizes a batch
type Report struct {
	Requested int
	Skipped   []string
	Redeemed  []string
	Failed    []string
}

// New creates an Interactor
func New(opts Options) *Interactor {
	i := &Interactor{
		driver:       opts.Driver,
		clipboard:    opts.Clipboard,
		store:        opts.Cache,
		instructions: opts.Instructions,
		slow:         opts.Slow,
		newProgress:  opts.Progress,
		sleep:        opts.Sleep,
		out:          opts.Out,
		log:          opts.Logger,
	}
	if i.store == nil {
		i.store = cache.Disabled{}
	}
	if i.sleep == nil {
		i.sleep = time.Sleep
	}
	if i.out == nil {
		i.out = io.Discard
	}
	if i.log == nil {
		i.log = zap.NewNop()
	}
	return i
}

// dwell waits ms milliseconds, plus the slow mode extra
func (i *Interactor) dwell(ms int) {
	if i.slow {
		ms += slowExtraDwell
	}
	i.sleep(time.Duration(ms) * time.Millisecond)
}

// Redeem runs the unlock sequence for a single code. The clipboard is
// restored before Redeem returns, whatever the outcome.
func (i *Interactor) Redeem(raw string) error {
	normalized, err := code.Normalize(raw)
	if err != nil {
		return &RedemptionError{Code: raw, Step: StepValidate, Err: err}
	}

	iso, err := clipboard.Isolate(i.clipboard, normalized, i.log.Named("clipboard"))
	if err != nil {
		return &RedemptionError{Code: raw, Step: StepClipboard, Err: err}
	}
	defer iso.Release()

	fail := func(step Step, err error) error {
		i.log.Debug("Redemption step failed", zap.String("code", raw), zap.String("step", string(step)), zap.Error(err))
		return &RedemptionError{Code: raw, Step: step, Err: err}
	}

	i.log.Debug("Clicking 'Unlock a Locked Chest'", zap.Stringer("at", i.instructions.UnlockChest))
	if err := i.click(i.instructions.UnlockChest); err != nil {
		return fail(StepUnlock, err)
	}
	i.dwell(unlockDwell)

	i.log.Debug("Pasting the code")
	if err := i.paste(); err != nil {
		return fail(StepPaste, err)
	}
	i.dwell(pasteDwell)

	// the opening animation dominates the whole sequence
	i.log.Debug("Redeeming the code")
	if err := i.driver.KeyTap(input.KeyReturn); err != nil {
		return fail(StepConfirm, err)
	}
	i.dwell(confirmDwell)

	// Either reward cards to flip (one or more) or an error dialog. Both are
	// covered in the same time frame: the spaces are no-ops on the dialog and
	// the first escape is a no-op on the cards.
	for n := 1; n <= flipCount; n++ {
		i.log.Debug("Flipping card", zap.Int("card", n))
		if err := i.driver.KeyTap(input.KeySpace); err != nil {
			return fail(StepFlipCard, err)
		}
		i.dwell(flipDwell)
	}

	i.log.Debug("Dismissing error")
	if err := i.driver.KeyTap(input.KeyEscape); err != nil {
		return fail(StepDismiss, err)
	}
	i.dwell(dismissDwell)

	i.log.Debug("Closing the chest UI")
	if err := i.driver.KeyTap(input.KeyEscape); err != nil {
		return fail(StepClose, err)
	}
	i.dwell(closeDwell)

	i.log.Debug("Acknowledging card")
	if err := i.driver.KeyTap(input.KeySpace); err != nil {
		return fail(StepAcknowledge, err)
	}
	i.dwell(ackDwell)

	return nil
}

// click moves to c and clicks. The settle delay is never slowed.
func (i *Interactor) click(c config.Coordinates) error {
	if err := i.driver.MoveTo(c.X, c.Y); err != nil {
		return err
	}
	i.sleep(clickSettle * time.Millisecond)
	return i.driver.Click(input.ButtonLeft)
}

func (i *Interactor) paste() error {
	mod := input.PasteModifier()
	if err := i.driver.KeyDown(mod); err != nil {
		return err
	}
	i.dwell(pasteKeyDwell)

	if err := i.driver.KeyTap(input.KeyV); err != nil {
		// do not leave the modifier held
		if upErr := i.driver.KeyUp(mod); upErr != nil {
			i.log.Warn("Failed to release paste modifier", zap.Error(upErr))
		}
		return err
	}
	i.dwell(pasteKeyDwell)

	return i.driver.KeyUp(mod)
}

// RedeemMany redeems codes in order, skipping the ones already cached. A
// failing code does not stop the batch; failures are returned together as a
// *BatchError. The pointer is put back and the cache saved only when every
// code succeeded.
func (i *Interactor) RedeemMany(codes []string) (Report, error) {
	report := Report{Requested: len(codes)}
	if len(codes) == 0 {
		return report, nil
	}

	c, err := i.store.Load()
	if err != nil {
		i.log.Warn("Failed to read cache, continuing without it", zap.Error(err))
	}
	if c == nil {
		c = cache.New()
	}

	pending := make([]string, 0, len(codes))
	for _, raw := range codes {
		// the cache file is whitespace trimmed on load
		raw = strings.TrimSpace(raw)
		if c.Contains(raw) {
			i.log.Debug("Skipping code, already redeemed", zap.String("code", raw))
			report.Skipped = append(report.Skipped, raw)
			continue
		}
		pending = append(pending, raw)
	}

	if len(pending) == 0 {
		fmt.Fprintln(i.out, "No (new) codes to redeem, all of them have already been cached.")
		fmt.Fprintln(i.out, "If you want to redeem them again, clear the cache (bust-cache) and try again.")
		return report, nil
	}

	x, y, err := i.driver.Location()
	if err != nil {
		i.log.Error("Failed to get pointer position", zap.Error(err))
		return report, fmt.Errorf("%w: %v", ErrPointer, err)
	}

	fmt.Fprintf(i.out, "Redeeming %d codes: %s\n", len(pending), strings.Join(pending, ", "))

	var consumer progress.Consumer
	if i.newProgress != nil {
		consumer = i.newProgress(len(pending))
	}
	events := progress.Start(consumer, progressBuffer, i.log.Named("progress"))

	for _, raw := range pending {
		events.CodeStarted(raw)

		if err := i.Redeem(raw); err != nil {
			i.log.Error("Failed to redeem code", zap.String("code", raw), zap.Error(err))
			report.Failed = append(report.Failed, raw)
			events.Increment()
			i.dwell(failureDwell)
			continue
		}

		events.Increment()
		report.Redeemed = append(report.Redeemed, raw)
		c.Push(raw)
		// the reward claim animation has to finish before the next code
		i.dwell(successDwell)
	}
	events.Finish()
	events.Close()
	if !events.Wait(progressDrain) {
		i.log.Debug("Progress consumer still running")
	}

	if len(report.Failed) > 0 {
		return report, &BatchError{Failed: report.Failed}
	}

	if err := i.driver.MoveTo(x, y); err != nil {
		i.log.Error("Failed to restore pointer position", zap.Error(err))
		return report, fmt.Errorf("%w: %v", ErrPointer, err)
	}

	if err := i.store.Save(c); err != nil {
		i.log.Warn("Failed to write cache", zap.Error(err))
	} else {
		i.log.Debug("Cache written", zap.Int("entries", c.Len()))
	}

	return report, nil
}
