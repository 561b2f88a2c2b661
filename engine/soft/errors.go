// SPDX-License-Identifier: EPL-2.0

package soft

import "errors"

var (
	ErrUnknownFormat = errors.New("unrecognised audio format")
	ErrEmptyPayload  = errors.New("payload decoded to no audio")
	ErrInvalidStream = errors.New("decoded stream has no sample rate or channels")
)
