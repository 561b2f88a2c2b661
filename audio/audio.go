// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// Source is a stream of interleaved PCM samples.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// SniffFunc reports whether header looks like the start of a stream the
// matching decoder understands.
type SniffFunc func(header []byte) bool

type entry struct {
	format  string
	decoder Decoder
	sniff   SniffFunc
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
// Detection walks formats in registration order.
type Registry struct {
	entries []entry

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		mtx: &sync.Mutex{},
	}
}

// Register adds or replaces the decoder for format. sniff may be nil, in
// which case the format is only reachable through Get.
func (r *Registry) Register(format string, d Decoder, sniff SniffFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for i := range r.entries {
		if r.entries[i].format == format {
			r.entries[i].decoder = d
			r.entries[i].sniff = sniff
			return
		}
	}

	r.entries = append(r.entries, entry{format: format, decoder: d, sniff: sniff})
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, e := range r.entries {
		if e.format == format {
			return e.decoder, true
		}
	}
	return nil, false
}

// Detect returns the first registered format whose sniffer accepts header.
func (r *Registry) Detect(header []byte) (string, Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, e := range r.entries {
		if e.sniff != nil && e.sniff(header) {
			return e.format, e.decoder, true
		}
	}
	return "", nil, false
}

// Formats lists registered format keys in registration order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.format)
	}
	return out
}
