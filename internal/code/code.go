// Package code normalizes and validates chest codes.
package code

import (
	"errors"
	"fmt"
	"strings"
)

// Accepted lengths once separators are stripped
const (
	LengthShort = 12
	LengthLong  = 16
)

// ErrInvalidLength is returned when a code has neither accepted length
var ErrInvalidLength = errors.New("invalid code length")

// Normalize removes dash separators and checks the remaining length.
func Normalize(raw string) (string, error) {
	normalized := strings.ReplaceAll(raw, "-", "")

	if n := len(normalized); n != LengthShort && n != LengthLong {
		return "", fmt.Errorf("%w: code must be %d or %d characters long, got %d",
			ErrInvalidLength, LengthShort, LengthLong, n)
	}

	return normalized, nil
}
