// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audtransport/audio"
	"github.com/ik5/audtransport/utils"
)

const (
	canonicalHeaderSize = 44

	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Sniff reports whether header starts with a RIFF/WAVE preamble.
func Sniff(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

// pcm16Source reads interleaved little-endian int16 frames.
type pcm16Source struct {
	r          io.Reader
	sampleRate int
	channels   int
	buf        []byte
}

func (s *pcm16Source) SampleRate() int { return s.sampleRate }
func (s *pcm16Source) Channels() int   { return s.channels }
func (s *pcm16Source) Close() error    { return nil }
func (s *pcm16Source) BufSize() int    { return cap(s.buf) / 2 }

func (s *pcm16Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.r, s.buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("reading wav data: %w", err)
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = float32(v) / 32768.0
	}

	if err != nil {
		return samples, io.EOF
	}
	return samples, nil
}

// Decoder decodes integer PCM WAV. Canonical 44-byte 16-bit files are
// streamed directly; anything else (extra chunks, 8/24/32-bit) goes through
// go-audio/wav.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav: %w", err)
	}

	if !Sniff(data) {
		return nil, ErrNotWavFile
	}

	src, err := decodeCanonical(data)
	switch {
	case err == nil:
		return src, nil
	case errors.Is(err, ErrUnsupportedWavLayout),
		errors.Is(err, ErrUnsupportedWavChunks),
		errors.Is(err, ErrOnlyPCM16bitSupported):
		return decodeChunked(data)
	default:
		return nil, err
	}
}

func decodeCanonical(data []byte) (audio.Source, error) {
	if len(data) < canonicalHeaderSize {
		return nil, ErrUnsupportedWavLayout
	}
	header := data[:canonicalHeaderSize]

	if !bytes.Equal(header[12:16], []byte("fmt ")) ||
		binary.LittleEndian.Uint32(header[16:20]) != 16 {
		return nil, ErrUnsupportedWavLayout
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	channels := int(binary.LittleEndian.Uint16(header[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(header[24:28]))
	bitsPerSample := int(binary.LittleEndian.Uint16(header[34:36]))

	if audioFormat != formatPCM {
		return nil, ErrOnlyPCMSupported
	}
	if bitsPerSample != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}
	if !bytes.Equal(header[36:40], []byte("data")) {
		return nil, ErrUnsupportedWavChunks
	}
	if channels < 1 || sampleRate < 1 {
		return nil, ErrUnsupportedWavLayout
	}

	body := data[canonicalHeaderSize:]
	if size := int(binary.LittleEndian.Uint32(header[40:44])); size < len(body) {
		// ignore trailing chunks after data
		body = body[:size]
	}

	return &pcm16Source{
		r:          bytes.NewReader(body),
		sampleRate: sampleRate,
		channels:   channels,
		buf:        make([]byte, 4096),
	}, nil
}

func decodeChunked(data []byte) (audio.Source, error) {
	dec := gowav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrUnsupportedWavChunks
	}
	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, ErrOnlyPCMSupported
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	channels := int(dec.NumChans)
	samples := intsToFloats(pcm, int(dec.BitDepth))
	samples = samples[:len(samples)-len(samples)%channels]

	return audio.NewSliceSource(samples, int(dec.SampleRate), channels), nil
}

func intsToFloats(buf *goaudio.IntBuffer, bitDepth int) []float32 {
	scale := utils.IntSampleScale(bitDepth)
	out := make([]float32, len(buf.Data))

	for i, v := range buf.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		out[i] = float32(v) / scale
	}
	return out
}
