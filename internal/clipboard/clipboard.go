// Package clipboard isolates the user's clipboard while a code is pasted.
//
// An isolation snapshots whatever the user had on the clipboard, replaces it
// with the code and puts the snapshot back on Release. The user's contents are
// never logged.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Provider reads and writes clipboard text
type Provider interface {
	Read() (string, error)
	Write(text string) error
}

// System is the OS clipboard
type System struct{}

// Read returns the current clipboard text
func (System) Read() (string, error) {
	return clipboard.ReadAll()
}

// Write replaces the clipboard text
func (System) Write(text string) error {
	return clipboard.WriteAll(text)
}

// Isolation holds the snapshot of the user's clipboard. Only one should be
// alive at a time.
type Isolation struct {
	provider Provider
	log      *zap.Logger
	previous *string
}

// Isolate snapshots the clipboard and overwrites it with contents. Callers
// must defer Release on the returned isolation. If the overwrite fails the
// snapshot has already been restored.
func Isolate(p Provider, contents string, log *zap.Logger) (*Isolation, error) {
	if log == nil {
		log = zap.NewNop()
	}

	iso := &Isolation{provider: p, log: log}

	log.Debug("Isolating clipboard")
	prev, err := p.Read()
	if err != nil {
		log.Error("Failed to read clipboard", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	iso.previous = &prev

	log.Debug("Writing code to clipboard", zap.String("code", contents))
	if err := p.Write(contents); err != nil {
		log.Error("Failed to write code to clipboard", zap.Error(err))
		iso.Release()
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return iso, nil
}

// Release writes the snapshot back. It never fails; a restore error is only
// logged. Calling Release more than once is a no-op.
func (i *Isolation) Release() {
	if i == nil || i.previous == nil {
		return
	}

	prev := *i.previous
	i.previous = nil

	i.log.Debug("Restoring clipboard")
	if err := i.provider.Write(prev); err != nil {
		i.log.Warn("Failed to restore clipboard", zap.Error(err))
	}
}

// Active reports whether a snapshot is still held
func (i *Isolation) Active() bool {
	return i != nil && i.previous != nil
}
