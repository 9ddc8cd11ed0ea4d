package redeem

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPointer is returned when the pointer position cannot be recorded or
// restored around a batch
var ErrPointer = errors.New("failed to save or restore pointer position")

// RedemptionError describes a single code that could not be redeemed
type RedemptionError struct {
	// Code is the code as it was given, before normalization
	Code string

	// Step is the interaction that failed
	Step Step

	Err error
}

func (e *RedemptionError) Error() string {
	return fmt.Sprintf("failed to redeem code '%s' at %s: %v", e.Code, e.Step, e.Err)
}

func (e *RedemptionError) Unwrap() error {
	return e.Err
}

// BatchError lists the codes of a batch that failed
type BatchError struct {
	Failed []string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("failed to redeem %d code(s): %s", len(e.Failed), strings.Join(e.Failed, ", "))
}
