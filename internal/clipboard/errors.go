package clipboard

import "errors"

var (
	// ErrRead is returned when the clipboard cannot be read
	ErrRead = errors.New("failed to read from clipboard")

	// ErrWrite is returned when the clipboard cannot be written
	ErrWrite = errors.New("failed to write to clipboard")
)
