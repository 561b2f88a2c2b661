// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/ik5/audtransport/internal/audiotest"
)

type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(r io.Reader) (Source, error) {
	return audiotest.NewSilentSource(44100, 2, 100), nil
}

func prefix(p string) SniffFunc {
	return func(header []byte) bool {
		return bytes.HasPrefix(header, []byte(p))
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}

	registry.Register("wav", decoder, prefix("RIFF"))

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}
	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}

	if _, ok := registry.Get("flac"); ok {
		t.Error("Registry.Get() returned ok=true for unregistered format")
	}
}

func TestRegistry_Detect(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavDecoder := &mockDecoder{name: "wav"}
	oggDecoder := &mockDecoder{name: "ogg"}
	rawDecoder := &mockDecoder{name: "raw"}

	registry.Register("wav", wavDecoder, prefix("RIFF"))
	registry.Register("ogg", oggDecoder, prefix("OggS"))
	registry.Register("raw", rawDecoder, nil)

	tests := []struct {
		header     string
		wantFormat string
		want       Decoder
		wantOK     bool
	}{
		{"RIFF....WAVE", "wav", wavDecoder, true},
		{"OggS\x00\x02", "ogg", oggDecoder, true},
		{"fLaC", "", nil, false},
		{"", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.wantFormat, func(t *testing.T) {
			format, got, ok := registry.Detect([]byte(tt.header))
			if ok != tt.wantOK {
				t.Fatalf("Registry.Detect(%q) ok = %v, want %v", tt.header, ok, tt.wantOK)
			}
			if format != tt.wantFormat {
				t.Errorf("Registry.Detect(%q) format = %q, want %q", tt.header, format, tt.wantFormat)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("Registry.Detect(%q) returned wrong decoder", tt.header)
			}
		})
	}
}

func TestRegistry_DetectOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := &mockDecoder{name: "first"}
	second := &mockDecoder{name: "second"}

	registry.Register("a", first, prefix("X"))
	registry.Register("b", second, prefix("X"))

	format, got, ok := registry.Detect([]byte("XYZ"))
	if !ok || format != "a" || got != first {
		t.Errorf("Registry.Detect() = %q, %v, %v; want first registered match", format, got, ok)
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder1 := &mockDecoder{name: "first"}
	decoder2 := &mockDecoder{name: "second"}

	registry.Register("wav", decoder1, prefix("RIFF"))
	registry.Register("mp3", decoder1, prefix("ID3"))
	registry.Register("wav", decoder2, prefix("RIFF"))

	got, ok := registry.Get("wav")
	if !ok || got != decoder2 {
		t.Error("Registry.Get() did not return the overwritten decoder")
	}

	want := []string{"wav", "mp3"}
	if formats := registry.Formats(); !slices.Equal(formats, want) {
		t.Errorf("Registry.Formats() = %v, want %v", formats, want)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "test"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Register("format", decoder, prefix("F"))
		}()
		go func() {
			defer wg.Done()
			_, _, _ = registry.Detect([]byte("F"))
		}()
	}
	wg.Wait()

	if got, ok := registry.Get("format"); !ok || got != decoder {
		t.Error("Registry returned wrong decoder after concurrent operations")
	}
	if n := len(registry.Formats()); n != 1 {
		t.Errorf("Registry.Formats() has %d entries, want 1", n)
	}
}
