// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes PCM WAV.
//
// Canonical files (44-byte header, 16-bit PCM) are streamed straight from
// the payload. Files carrying extra chunks or other integer bit depths are
// decoded through github.com/go-audio/wav.
//
//	src, err := wav.Decoder{}.Decode(r)
//
// Sniff recognises the RIFF/WAVE preamble so the decoder can be registered
// for format detection:
//
//	registry.Register("wav", wav.Decoder{}, wav.Sniff)
//
// WriteWAV16 and Encode16 write canonical 16-bit files.
package wav
