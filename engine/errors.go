// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
)

// ErrDecode matches every *DecodeError through errors.Is.
var ErrDecode = errors.New("audio decode failed")

// DecodeError reports that the engine rejected an encoded payload.
type DecodeError struct {
	// Format is the detected container, empty when detection failed.
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("%s (%s): %v", ErrDecode, e.Format, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// NewDecodeError wraps err unless it already is a *DecodeError.
func NewDecodeError(format string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Format: format, Err: err}
}
