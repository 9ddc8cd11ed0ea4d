// Package inputtest provides an in-memory input.Driver for tests.
package inputtest

import (
	"fmt"
	"sync"

	"icredeemer/internal/input"
)

// Call is one recorded driver call, rendered like "move 10,20" or "tap Return"
type Call string

// Recorder records every call and moves a virtual pointer. FailOn makes the
// matching call fail.
type Recorder struct {
	mu    sync.Mutex
	X, Y  int
	Calls []Call

	// FailOn returns an error for a call that should fail, nil otherwise
	FailOn func(c Call) error

	// LocationErr is returned by Location when set
	LocationErr error
}

// New creates a recorder with the pointer at x, y
func New(x, y int) *Recorder {
	return &Recorder{X: x, Y: y}
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	r.Calls = append(r.Calls, c)
	fail := r.FailOn
	r.mu.Unlock()

	if fail != nil {
		if err := fail(c); err != nil {
			return &input.ActionError{Action: string(c), Err: err}
		}
	}
	return nil
}

// MoveTo records a move and updates the pointer
func (r *Recorder) MoveTo(x, y int) error {
	if err := r.record(Call(fmt.Sprintf("move %d,%d", x, y))); err != nil {
		return err
	}
	r.mu.Lock()
	r.X, r.Y = x, y
	r.mu.Unlock()
	return nil
}

// Click records a click
func (r *Recorder) Click(b input.Button) error {
	return r.record(Call("click " + b.String()))
}

// KeyTap records a tap
func (r *Recorder) KeyTap(k input.Key) error {
	return r.record(Call("tap " + k.String()))
}

// KeyDown records a key hold
func (r *Recorder) KeyDown(k input.Key) error {
	return r.record(Call("down " + k.String()))
}

// KeyUp records a key release
func (r *Recorder) KeyUp(k input.Key) error {
	return r.record(Call("up " + k.String()))
}

// Location returns the virtual pointer
func (r *Recorder) Location() (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LocationErr != nil {
		return 0, 0, r.LocationErr
	}
	return r.X, r.Y, nil
}

// Recorded returns a copy of the calls so far
func (r *Recorder) Recorded() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.Calls...)
}

// Reset forgets recorded calls
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = nil
}
