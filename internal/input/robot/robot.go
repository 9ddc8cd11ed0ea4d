// Package robot is the portable input driver built on robotgo. It needs
// robotgo's cgo build (X11 and XTest headers on Linux), so it is kept apart
// from the Driver contract.
package robot

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"icredeemer/internal/input"
)

// Robot drives input through robotgo. It works wherever robotgo builds,
// including X11 desktops.
type Robot struct{}

var _ input.Driver = (*Robot)(nil)

// New creates a robotgo backed driver
func New() *Robot {
	return &Robot{}
}

var robotKeys = map[input.Key]string{
	input.KeyReturn:  "enter",
	input.KeySpace:   "space",
	input.KeyEscape:  "esc",
	input.KeyControl: "ctrl",
	input.KeyCommand: "cmd",
	input.KeyV:       "v",
}

var robotButtons = map[input.Button]string{
	input.ButtonLeft:  "left",
	input.ButtonRight: "right",
}

func robotKey(k input.Key) (string, error) {
	name, ok := robotKeys[k]
	if !ok {
		return "", fmt.Errorf("no robotgo mapping for %s", k)
	}
	return name, nil
}

// MoveTo places the pointer at x, y
func (r *Robot) MoveTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// Click presses and releases b
func (r *Robot) Click(b input.Button) error {
	name, ok := robotButtons[b]
	if !ok {
		return &input.ActionError{Action: "click", Err: fmt.Errorf("invalid button %s", b)}
	}
	if err := robotgo.Toggle(name); err != nil {
		return &input.ActionError{Action: "press " + name + " button", Err: err}
	}
	if err := robotgo.Toggle(name, "up"); err != nil {
		return &input.ActionError{Action: "release " + name + " button", Err: err}
	}
	return nil
}

// KeyTap presses and releases k
func (r *Robot) KeyTap(k input.Key) error {
	name, err := robotKey(k)
	if err != nil {
		return &input.ActionError{Action: "press key", Err: err}
	}
	if err := robotgo.KeyTap(name); err != nil {
		return &input.ActionError{Action: "press key " + k.String(), Err: err}
	}
	return nil
}

// KeyDown holds k
func (r *Robot) KeyDown(k input.Key) error {
	name, err := robotKey(k)
	if err != nil {
		return &input.ActionError{Action: "hold key", Err: err}
	}
	if err := robotgo.KeyToggle(name, "down"); err != nil {
		return &input.ActionError{Action: "hold key " + k.String(), Err: err}
	}
	return nil
}

// KeyUp releases k
func (r *Robot) KeyUp(k input.Key) error {
	name, err := robotKey(k)
	if err != nil {
		return &input.ActionError{Action: "release key", Err: err}
	}
	if err := robotgo.KeyToggle(name, "up"); err != nil {
		return &input.ActionError{Action: "release key " + k.String(), Err: err}
	}
	return nil
}

// Location returns the pointer position
func (r *Robot) Location() (int, int, error) {
	x, y := robotgo.Location()
	return x, y, nil
}
