// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ik5/audtransport/engine"
	"github.com/ik5/audtransport/internal/enginetest"
)

const tolerance = 1e-9

func newController(t *testing.T, opts ...Option) (*Controller, *enginetest.Engine) {
	t.Helper()

	eng := enginetest.New()
	c, err := New(eng, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, eng
}

func load(t *testing.T, c *Controller, eng *enginetest.Engine, seconds float64) {
	t.Helper()

	eng.Duration = seconds
	if _, err := c.LoadData(context.Background(), []byte("track")); err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < tolerance }

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		want error
	}{
		{"defaults", nil, nil},
		{"window 32", []Option{WithWindowSize(32)}, nil},
		{"window 2048", []Option{WithWindowSize(2048)}, nil},
		{"window not power of two", []Option{WithWindowSize(1000)}, ErrInvalidWindowSize},
		{"window too small", []Option{WithWindowSize(16)}, ErrInvalidWindowSize},
		{"window too large", []Option{WithWindowSize(65536)}, ErrInvalidWindowSize},
		{"smoothing 0", []Option{WithSmoothing(0)}, nil},
		{"smoothing 1", []Option{WithSmoothing(1)}, nil},
		{"smoothing negative", []Option{WithSmoothing(-0.1)}, ErrInvalidSmoothing},
		{"smoothing above one", []Option{WithSmoothing(1.5)}, ErrInvalidSmoothing},
		{"smoothing NaN", []Option{WithSmoothing(math.NaN())}, ErrInvalidSmoothing},
		{"config zero window", []Option{WithConfig(Config{Smoothing: 0.5})}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(enginetest.New(), tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_NilEngine(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); !errors.Is(err, ErrNilEngine) {
		t.Errorf("New(nil) error = %v, want %v", err, ErrNilEngine)
	}
}

func TestNew_Wiring(t *testing.T) {
	t.Parallel()

	c, eng := newController(t, WithWindowSize(512), WithSmoothing(0.8))

	analysers := eng.Analysers()
	if len(analysers) != 1 {
		t.Fatalf("analysers = %d, want 1", len(analysers))
	}
	a := analysers[0]
	if a.WindowSize != 512 || a.Smoothing != 0.8 {
		t.Errorf("analyser = (%d, %v), want (512, 0.8)", a.WindowSize, a.Smoothing)
	}

	out := eng.OutputNode().ID
	if !a.Connected(out) {
		t.Error("analyser not connected to output")
	}
	taps := eng.Taps()
	if len(taps) != 1 || !taps[0].Connected(out) {
		t.Error("pass-through not connected to output")
	}

	if !c.Paused() {
		t.Error("new controller should be paused")
	}
	if got := len(c.Waveform()); got != 512 {
		t.Errorf("len(Waveform()) = %d, want 512", got)
	}
}

func TestNew_CustomOutput(t *testing.T) {
	t.Parallel()

	eng := enginetest.New()
	sink := eng.NewPassThroughNode(0).(*enginetest.Node)

	if _, err := New(eng, WithOutput(sink)); err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !eng.Analysers()[0].Connected(sink.ID) {
		t.Error("analyser should feed the custom output")
	}
	if eng.Analysers()[0].Connected(eng.OutputNode().ID) {
		t.Error("analyser should not feed the default output")
	}
}

func TestBeforeLoad_NoOps(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	eng.ResetCalls()

	c.Play()
	c.Play(WithStart(1), WithEnd(2))
	c.Pause()
	c.Pause(WithStopDelay(1))

	if d, ok := c.Duration(); ok || d != 0 {
		t.Errorf("Duration() = %v, %v; want 0, false", d, ok)
	}
	if calls := eng.Calls(); len(calls) != 0 {
		t.Errorf("engine saw %d calls before load: %+v", len(calls), calls)
	}
	if !c.Paused() || c.Elapsed() != 0 {
		t.Errorf("state changed: paused=%v elapsed=%v", c.Paused(), c.Elapsed())
	}
}

func TestLoadData(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	eng.Duration = 10

	buf, err := c.LoadData(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}
	if buf.Duration() != 10 {
		t.Errorf("buffer duration = %v, want 10", buf.Duration())
	}
	if d, ok := c.Duration(); !ok || d != 10 {
		t.Errorf("Duration() = %v, %v; want 10, true", d, ok)
	}
}

func TestLoadData_FailureKeepsState(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)
	c.Play(WithStart(3))
	eng.Advance(1)
	c.Pause()

	eng.DecodeErr = errors.New("garbage")
	_, err := c.LoadData(context.Background(), []byte("not audio"))

	var de *engine.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("LoadData() error = %v, want *engine.DecodeError", err)
	}
	if !errors.Is(err, engine.ErrDecode) {
		t.Errorf("errors.Is(err, ErrDecode) = false for %v", err)
	}

	if d, ok := c.Duration(); !ok || d != 10 {
		t.Errorf("Duration() = %v, %v; want 10, true", d, ok)
	}
	if !near(c.Elapsed(), 4) {
		t.Errorf("Elapsed() = %v, want 4", c.Elapsed())
	}
}

func TestLoadData_FailureBeforeAnyLoad(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	eng.DecodeErr = errors.New("bad header")

	if _, err := c.LoadData(context.Background(), []byte("x")); !errors.Is(err, engine.ErrDecode) {
		t.Fatalf("LoadData() error = %v, want ErrDecode", err)
	}
	if _, ok := c.Duration(); ok {
		t.Error("Duration() reported a track after a failed load")
	}
}

// sentinelEngine reports decode failures that only wrap engine.ErrDecode.
type sentinelEngine struct {
	*enginetest.Engine
}

func (sentinelEngine) Decode(context.Context, []byte) (engine.Buffer, error) {
	return nil, fmt.Errorf("host: %w", engine.ErrDecode)
}

func TestLoadData_SentinelOnlyError(t *testing.T) {
	t.Parallel()

	c, err := New(sentinelEngine{enginetest.New()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.LoadData(context.Background(), []byte("x"))

	var de *engine.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("LoadData() error = %v, want *engine.DecodeError", err)
	}
	if !errors.Is(err, engine.ErrDecode) {
		t.Errorf("errors.Is(err, ErrDecode) = false for %v", err)
	}
}

func TestLoadData_Canceled(t *testing.T) {
	t.Parallel()

	c, _ := newController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.LoadData(ctx, []byte("x"))
	if !errors.Is(err, engine.ErrDecode) || !errors.Is(err, context.Canceled) {
		t.Errorf("LoadData() error = %v, want DecodeError wrapping context.Canceled", err)
	}
}

func TestLoadData_ResetsClockAndStopsSession(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)
	c.Play(WithStart(4))
	eng.Advance(2)

	load(t, c, eng, 20)

	if !c.Paused() {
		t.Error("loading a track should pause the running session")
	}
	if c.Elapsed() != 0 {
		t.Errorf("Elapsed() = %v, want 0", c.Elapsed())
	}
	if stops := eng.Playbacks()[0].Stops(); len(stops) != 1 {
		t.Errorf("old session stops = %v, want one stop", stops)
	}

	c.Play()
	r := eng.Playbacks()[1].Ranges()[0]
	if r.Start != 0 || r.Length != 20 {
		t.Errorf("range after reload = %+v, want start 0 length 20", r)
	}
}

func TestPlay_Defaults(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play()

	ps := eng.Playbacks()
	if len(ps) != 1 {
		t.Fatalf("playback nodes = %d, want 1", len(ps))
	}
	ranges := ps[0].Ranges()
	if len(ranges) != 1 {
		t.Fatalf("RenderRange calls = %d, want 1", len(ranges))
	}
	want := enginetest.Range{Delay: 0, Start: 0, Length: 10}
	if ranges[0] != want {
		t.Errorf("RenderRange = %+v, want %+v", ranges[0], want)
	}
	if c.Paused() {
		t.Error("Paused() = true after Play")
	}
}

func TestPlay_ExplicitZeroValues(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play(WithStart(6))
	eng.Advance(1)
	c.Pause()

	// an explicit 0 must not fall back to the elapsed offset
	c.Play(WithStart(0), WithDelay(0.5))

	r := eng.Playbacks()[1].Ranges()[0]
	want := enginetest.Range{Delay: 0.5, Start: 0, Length: 10}
	if r != want {
		t.Errorf("RenderRange = %+v, want %+v", r, want)
	}
}

func TestPlay_InvertedRangePassedThrough(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play(WithStart(5), WithEnd(3))

	r := eng.Playbacks()[0].Ranges()[0]
	if r.Start != 5 || r.Length != -2 {
		t.Errorf("RenderRange = %+v, want start 5 length -2", r)
	}

	eng.Advance(2)
	if got := c.Elapsed(); got != 5 {
		t.Errorf("Elapsed() = %v, want 5 for an empty segment", got)
	}
}

func TestPlay_AtMostOneSession(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	analyser := eng.Analysers()[0].ID
	tap := eng.Taps()[0].ID

	for range 5 {
		c.Play()
		eng.Advance(0.25)
	}

	ps := eng.Playbacks()
	if len(ps) != 5 {
		t.Fatalf("playback nodes = %d, want 5", len(ps))
	}

	connected := 0
	for i, p := range ps {
		if p.Connected(analyser) && p.Connected(tap) {
			connected++
			if i != len(ps)-1 {
				t.Errorf("stale session %s still connected", p.ID)
			}
		}
		if i < len(ps)-1 && len(p.Stops()) != 1 {
			t.Errorf("session %s stops = %v, want exactly one", p.ID, p.Stops())
		}
	}
	if connected != 1 {
		t.Errorf("connected sessions = %d, want 1", connected)
	}
}

func TestPlay_DisconnectBeforeConnect(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play()
	eng.ResetCalls()
	c.Play()

	calls := eng.Calls()
	disconnect, connect := -1, -1
	for i, call := range calls {
		if call.Op == "disconnect" && call.Node == "playback-1" && disconnect < 0 {
			disconnect = i
		}
		if call.Op == "connect" && call.Node == "playback-2" && connect < 0 {
			connect = i
		}
	}
	if disconnect < 0 || connect < 0 || disconnect > connect {
		t.Errorf("want playback-1 disconnected before playback-2 connects, calls = %+v", calls)
	}
}

func TestScenario_PartialRangeResume(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play(WithStart(2), WithEnd(8))
	eng.Advance(3)
	c.Pause()

	if !near(c.Elapsed(), 5) {
		t.Fatalf("Elapsed() after pause = %v, want 5", c.Elapsed())
	}

	c.Play()
	r := eng.Playbacks()[1].Ranges()[0]
	if !near(r.Start, 5) || !near(r.Length, 5) {
		t.Errorf("resumed RenderRange = %+v, want start 5 length 5", r)
	}
}

func TestScenario_DoublePlay(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play()
	c.Play()

	r := eng.Playbacks()[1].Ranges()[0]
	if r.Start != 0 {
		t.Errorf("second Play start = %v, want 0", r.Start)
	}

	eng.Advance(0.5)
	c.Play()
	r = eng.Playbacks()[2].Ranges()[0]
	if !near(r.Start, 0.5) {
		t.Errorf("third Play start = %v, want 0.5", r.Start)
	}
}

func TestPause_Idempotent(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play()
	eng.Advance(2)
	c.Pause(WithStopDelay(0.25))
	once := c.Elapsed()

	eng.Advance(3)
	c.Pause()

	if c.Elapsed() != once {
		t.Errorf("Elapsed() after second Pause = %v, want %v", c.Elapsed(), once)
	}
	stops := eng.Playbacks()[0].Stops()
	if len(stops) != 1 || stops[0] != 0.25 {
		t.Errorf("Stop calls = %v, want [0.25]", stops)
	}
}

func TestElapsed_Monotonic(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	steps := []float64{0.5, 1, 0.25, 3, 2, 4, 1}
	last := 0.0
	for i, d := range steps {
		if i%2 == 0 {
			c.Play()
		} else {
			c.Pause()
		}
		eng.Advance(d)

		got := c.Elapsed()
		if got < last-tolerance {
			t.Fatalf("step %d: Elapsed() went back from %v to %v", i, last, got)
		}
		if got > 10+tolerance {
			t.Fatalf("step %d: Elapsed() = %v exceeds duration", i, got)
		}
		last = got
	}
}

func TestElapsed_HeldAtSegmentEnd(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play(WithStart(1), WithEnd(3))
	eng.Advance(5)

	if got := c.Elapsed(); !near(got, 3) {
		t.Errorf("Elapsed() = %v, want 3", got)
	}
	c.Pause()
	if got := c.Elapsed(); !near(got, 3) {
		t.Errorf("Elapsed() after pause = %v, want 3", got)
	}
}

func TestElapsed_SeekBack(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	load(t, c, eng, 10)

	c.Play(WithStart(5))
	eng.Advance(1)
	c.Pause()
	if got := c.Elapsed(); !near(got, 6) {
		t.Fatalf("Elapsed() = %v, want 6", got)
	}

	// an explicit earlier start restarts the offset there
	c.Play(WithStart(0))
	eng.Advance(0.5)
	c.Pause()
	if got := c.Elapsed(); !near(got, 0.5) {
		t.Errorf("Elapsed() after seeking back = %v, want 0.5", got)
	}

	// plain resume grows from there again
	c.Play()
	eng.Advance(1)
	c.Pause()
	if got := c.Elapsed(); !near(got, 1.5) {
		t.Errorf("Elapsed() after resume = %v, want 1.5", got)
	}
	if r := eng.Playbacks()[2].Ranges()[0]; !near(r.Start, 0.5) {
		t.Errorf("resume start = %v, want 0.5", r.Start)
	}
}

func TestSnapshots_IndependentBuffers(t *testing.T) {
	t.Parallel()

	c, eng := newController(t, WithWindowSize(64))
	eng.TimeValue = 200
	eng.FreqValue = 7

	w := c.Waveform()
	f := c.Frequency()

	if len(w) != 64 || len(f) != 64 {
		t.Fatalf("lengths = %d, %d; want 64, 64", len(w), len(f))
	}
	if w[0] != 200 {
		t.Errorf("Waveform()[0] = %d after Frequency(), want 200", w[0])
	}
	if f[0] != 7 {
		t.Errorf("Frequency()[0] = %d, want 7", f[0])
	}

	eng.TimeValue = 100
	if w2 := c.Waveform(); &w2[0] != &w[0] || w[0] != 100 {
		t.Error("Waveform() should refresh its reused buffer")
	}
}

func TestConnectSource(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	a := eng.NewPassThroughNode(0).(*enginetest.Node)
	b := eng.NewPassThroughNode(0).(*enginetest.Node)
	analyser := eng.Analysers()[0].ID
	tap := eng.Taps()[0].ID

	c.ConnectSource(a)
	if !a.Connected(analyser) || !a.Connected(tap) {
		t.Fatalf("first source outputs = %v", a.Outputs())
	}

	c.ConnectSource(b)
	if len(a.Outputs()) != 0 {
		t.Errorf("replaced source still feeds %v", a.Outputs())
	}
	if !b.Connected(analyser) || !b.Connected(tap) {
		t.Errorf("second source outputs = %v", b.Outputs())
	}

	c.ConnectSource(nil)
	if len(b.Outputs()) != 0 {
		t.Errorf("source still feeds %v after ConnectSource(nil)", b.Outputs())
	}
}

func TestSession_FreshPerPlay(t *testing.T) {
	t.Parallel()

	c, eng := newController(t)
	if c.Session() != "" {
		t.Errorf("Session() = %q before Play, want empty", c.Session())
	}
	load(t, c, eng, 10)

	seen := make(map[string]bool)
	for range 3 {
		c.Play()
		id := c.Session()
		if id == "" || seen[id] {
			t.Fatalf("Session() = %q, want a fresh id per Play", id)
		}
		seen[id] = true
	}
}
