// SPDX-License-Identifier: EPL-2.0

package transport_test

import (
	"context"
	"testing"

	"github.com/ik5/audtransport/engine/soft"
	"github.com/ik5/audtransport/internal/enginetest"
	"github.com/ik5/audtransport/transport"
)

func flat(b []byte, v byte) bool {
	for _, x := range b {
		if x != v {
			return false
		}
	}
	return true
}

func TestSoftEngine_Snapshots(t *testing.T) {
	t.Parallel()

	eng := soft.New(soft.WithSampleRate(8000))
	c, err := transport.New(eng, transport.WithWindowSize(256))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.LoadData(context.Background(), enginetest.SineWAV(8000, 2, 1, 500)); err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}

	if !flat(c.Waveform(), 128) {
		t.Error("Waveform() not flat before Play")
	}

	c.Play(transport.WithEnd(0.5))
	eng.Advance(0.1)

	if flat(c.Waveform(), 128) {
		t.Error("Waveform() flat while playing")
	}
	spectrum := c.Frequency()
	if flat(spectrum[:128], 0) {
		t.Error("Frequency() empty while playing")
	}
	if !flat(spectrum[128:], 0) {
		t.Error("Frequency() past the last bin should be zero")
	}

	eng.Advance(1)
	if !flat(c.Waveform(), 128) {
		t.Error("Waveform() not flat after the segment ended")
	}
	if got := c.Elapsed(); got < 0.5-1e-9 || got > 0.5+1e-9 {
		t.Errorf("Elapsed() = %v, want 0.5", got)
	}
}

func TestSoftEngine_OneActiveSession(t *testing.T) {
	t.Parallel()

	eng := soft.New(soft.WithSampleRate(8000))
	c, err := transport.New(eng)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.LoadData(context.Background(), enginetest.SineWAV(8000, 1, 2, 440)); err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}

	for range 4 {
		c.Play()
		eng.Advance(0.1)
	}

	if got := eng.Active(); got != 1 {
		t.Errorf("Active() = %d, want 1", got)
	}

	c.Pause()
	eng.Advance(0.1)
	if got := eng.Active(); got != 0 {
		t.Errorf("Active() after Pause = %d, want 0", got)
	}
}

func TestSoftEngine_StartZeroHonoured(t *testing.T) {
	t.Parallel()

	eng := soft.New(soft.WithSampleRate(8000))
	c, err := transport.New(eng)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.LoadData(context.Background(), enginetest.SineWAV(8000, 1, 2, 440)); err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}

	c.Play(transport.WithStart(1))
	eng.Advance(0.5)
	c.Pause()

	c.Play(transport.WithStart(0), transport.WithEnd(0.25))
	eng.Advance(1)

	if got := c.Elapsed(); got < 0.25-1e-9 || got > 0.25+1e-9 {
		t.Errorf("Elapsed() = %v, want 0.25", got)
	}
}
