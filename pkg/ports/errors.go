package ports

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongDirection is returned when a converter is called in the
	// direction opposite to its construction kind.
	ErrWrongDirection = errors.New("converter called in wrong direction")

	// ErrNotOpen is returned by Finalize when the encoder was never
	// initialized.
	ErrNotOpen = errors.New("encoder not open")

	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")
)

// OpenError reports that an input could not be opened: no video stream,
// no compatible decoder, or an unreadable container.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// InitError reports that an output session could not be initialized:
// unknown codec name or an unopenable container.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize %s: %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// UnsupportedBackendError reports that a requested backend has no usable
// device on this system.
type UnsupportedBackendError struct {
	Backend string
	Err     error
}

func (e *UnsupportedBackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s unavailable: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("backend %s unavailable", e.Backend)
}

func (e *UnsupportedBackendError) Unwrap() error { return e.Err }

// RangeError reports invalid frame range bounds after negative index
// resolution.
type RangeError struct {
	Start int
	End   int
	Msg   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid frame range [%d, %d): %s", e.Start, e.End, e.Msg)
}
