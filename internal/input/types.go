// Package input provides synthetic pointer and keyboard input.
package input

import (
	"errors"
	"fmt"
	"runtime"
)

// Key is a keyboard key the redeemer knows how to send
type Key int

const (
	KeyReturn Key = iota + 1
	KeySpace
	KeyEscape
	KeyControl
	KeyCommand
	KeyV
)

func (k Key) String() string {
	switch k {
	case KeyReturn:
		return "Return"
	case KeySpace:
		return "Space"
	case KeyEscape:
		return "Escape"
	case KeyControl:
		return "Control"
	case KeyCommand:
		return "Command"
	case KeyV:
		return "V"
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

// Button is a mouse button
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// Driver is the capability surface over the OS automation layer. Every call
// may fail with a device-level error.
type Driver interface {
	// MoveTo places the pointer at absolute screen coordinates
	MoveTo(x, y int) error

	// Click presses and releases a button at the current pointer position
	Click(b Button) error

	// KeyTap presses and releases a key
	KeyTap(k Key) error

	// KeyDown presses and holds a key
	KeyDown(k Key) error

	// KeyUp releases a held key
	KeyUp(k Key) error

	// Location returns the current pointer position
	Location() (x, y int, err error)
}

// Backend names accepted by backend.New
const (
	BackendAuto    = "auto"
	BackendNative  = "native"
	BackendRobotgo = "robotgo"
)

var (
	// ErrUnsupported is returned when the native backend is not available on this platform
	ErrUnsupported = errors.New("native input injection not supported on this platform")

	// ErrUnknownBackend is returned for a backend name that is not known
	ErrUnknownBackend = errors.New("unknown input backend")
)

// ActionError wraps a failed device action
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// PasteModifier returns the modifier held for the paste shortcut
func PasteModifier() Key {
	if runtime.GOOS == "darwin" {
		return KeyCommand
	}
	return KeyControl
}
