// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III through github.com/hajimehoshi/go-mp3.
//
// Output is always 16-bit stereo converted to float32; mono files are
// duplicated across both channels by go-mp3.
package mp3
