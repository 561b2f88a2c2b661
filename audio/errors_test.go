// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidDstSize", ErrInvalidDstSize, "dst size must be multiple of channels"},
		{"ErrInvalidChannels", ErrInvalidChannels, "channel count must be positive"},
		{"ErrSourceTooLarge", ErrSourceTooLarge, "source exceeds sample limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.err.Error() != tt.msg {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.msg)
			}

			wrapped := fmt.Errorf("reading: %w", tt.err)
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("errors.Is(wrapped, %s) = false", tt.name)
			}

			for _, other := range tests {
				if other.name != tt.name && errors.Is(tt.err, other.err) {
					t.Errorf("%s matches %s", tt.name, other.name)
				}
			}
		})
	}
}
