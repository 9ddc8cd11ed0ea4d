package remote

import (
	"errors"
	"fmt"
)

// Category classifies a failed fetch attempt
type Category string

const (
	CategoryTransport Category = "transport"
	CategoryDecode    Category = "decode"
	CategoryServer    Category = "server"
)

// ErrExhausted is wrapped by FetchError once every attempt failed
var ErrExhausted = errors.New("could not resolve codes within max retries")

// ServerError is the error document returned with a non-2xx status
type ServerError struct {
	Status      int    `json:"-"`
	Code        int    `json:"code"`
	Description string `json:"description"`
}

func (e *ServerError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d (%d) %s", e.Status, e.Code, e.Description)
}

// FetchError is returned when no attempt succeeded. Category and Err describe
// the last attempt.
type FetchError struct {
	Category Category
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to retrieve codes (%s) after %d attempt(s): %v", e.Category, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrExhausted, e.Err}
}
