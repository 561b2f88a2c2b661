// SPDX-License-Identifier: EPL-2.0

package audtransport

import (
	"context"
	"fmt"
	"io"

	"github.com/ik5/audtransport/audio"
	"github.com/ik5/audtransport/utils"
)

// ResampleToMono16 resamples src to targetRate, averages its channels and
// returns the result as 16-bit PCM. The resampler is skipped when src is
// already at targetRate. ctx is checked between reads.
func ResampleToMono16(ctx context.Context, src audio.Source, targetRate, bufferSize int) ([]int16, error) {
	if src.Channels() <= 0 {
		return nil, audio.ErrInvalidChannels
	}

	var s audio.Source = src
	if s.SampleRate() != targetRate {
		s = audio.NewResampler(s, targetRate)
	}
	mono := audio.NewMonoMixer(s)

	pcm16 := make([]int16, 0, targetRate*2)
	buf := make([]float32, max(bufferSize, 1))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := mono.ReadSamples(buf)
		for _, x := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(x))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("resampling to mono: %w", err)
		}
		if len(pcm16) > audio.MaxSamples {
			return nil, audio.ErrSourceTooLarge
		}
	}

	return pcm16, nil
}
