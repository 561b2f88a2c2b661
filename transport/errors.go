// SPDX-License-Identifier: EPL-2.0

package transport

import "errors"

var (
	ErrNilEngine         = errors.New("engine is nil")
	ErrInvalidWindowSize = errors.New("window size must be a power of two between 32 and 32768")
	ErrInvalidSmoothing  = errors.New("smoothing must be within [0,1]")
	ErrNoBuffer          = errors.New("engine returned no buffer")
)
