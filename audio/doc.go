// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM building blocks the engine decodes with.
//
// Every decoder and processor is a Source producing interleaved float32
// samples in [-1,1], so stages chain:
//
//	src, _ := wav.Decoder{}.Decode(r)
//	stage := audio.NewMonoMixer(audio.NewResampler(src, 16000))
//	samples, err := audio.ReadAll(ctx, stage, 4096)
//
// ReadSamples returns the number of float32 values written, not frames, and
// io.EOF once the stream is done (possibly together with the last values).
//
// # Format Registry
//
// A Registry maps format keys to decoders and can pick one by sniffing the
// first bytes of a payload:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{}, wav.Sniff)
//	registry.Register("mp3", mp3.Decoder{}, mp3.Sniff)
//
//	format, dec, ok := registry.Detect(data[:64])
//
// Detection tries formats in registration order, so loose sniffers belong
// last.
package audio
