//go:build !darwin && !windows

package input

// NewNative is not available on this platform
func NewNative() (Driver, error) {
	return nil, ErrUnsupported
}
