// SPDX-License-Identifier: EPL-2.0

package enginetest

import (
	"bytes"
	"math"

	"github.com/ik5/audtransport/formats/wav"
	"github.com/ik5/audtransport/utils"
)

// SineWAV encodes seconds of a sine at freq Hz and half amplitude as a
// 16-bit PCM WAV payload.
func SineWAV(rate, channels int, seconds, freq float64) []byte {
	frames := int(seconds * float64(rate))
	samples := make([]int16, frames*channels)
	for f := range frames {
		v := 0.5 * math.Sin(2*math.Pi*freq*float64(f)/float64(rate))
		for c := range channels {
			samples[f*channels+c] = utils.Float32ToInt16(float32(v))
		}
	}

	var buf bytes.Buffer
	// writes to a bytes.Buffer do not fail
	_ = wav.Encode16(&buf, rate, channels, samples)
	return buf.Bytes()
}
