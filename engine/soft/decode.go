// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/ik5/audtransport/audio"
	"github.com/ik5/audtransport/engine"
)

const (
	sniffLen    = 64
	decodeChunk = 4096
)

// Decode detects the container of data, decodes it and converts it to
// stereo at the engine rate. Every failure is an *engine.DecodeError.
func (e *Engine) Decode(ctx context.Context, data []byte) (engine.Buffer, error) {
	if len(data) == 0 {
		return nil, engine.NewDecodeError("", ErrEmptyPayload)
	}

	format, dec, ok := e.registry.Detect(data[:min(len(data), sniffLen)])
	if !ok {
		return nil, engine.NewDecodeError("", ErrUnknownFormat)
	}

	samples, err := e.decode(ctx, dec, data)
	if err != nil {
		e.logger.Debug("decode failed",
			slog.String("format", format),
			slog.Any("error", err))
		return nil, engine.NewDecodeError(format, err)
	}

	buf := NewBuffer(samples, e.rate)
	e.logger.Debug("decoded",
		slog.String("format", format),
		slog.Float64("duration", buf.Duration()))

	return buf, nil
}

func (e *Engine) decode(ctx context.Context, dec audio.Decoder, data []byte) (samples []float32, err error) {
	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing decoder: %w", cerr)
		}
	}()

	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		return nil, ErrInvalidStream
	}

	var s audio.Source = src
	if s.Channels() > 2 {
		s = audio.NewMonoMixer(s)
	}
	if s.SampleRate() != e.rate {
		s = audio.NewResampler(s, e.rate)
	}

	out, err := audio.ReadAll(ctx, s, decodeChunk)
	if err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrEmptyPayload
	}

	return toStereo(out, s.Channels()), nil
}
