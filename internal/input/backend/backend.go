// Package backend picks the input driver for a configured backend name.
package backend

import (
	"fmt"
	"runtime"

	"icredeemer/internal/input"
	"icredeemer/internal/input/robot"
)

// New creates the driver for the named backend. "auto" picks the native
// driver on Windows and macOS and robotgo everywhere else.
func New(name string) (input.Driver, error) {
	switch name {
	case input.BackendAuto, "":
		if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
			return input.NewNative()
		}
		return robot.New(), nil
	case input.BackendNative:
		return input.NewNative()
	case input.BackendRobotgo:
		return robot.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", input.ErrUnknownBackend, name)
	}
}
