// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF and AIFF-C integer PCM through
// github.com/go-audio/aiff. 8, 16, 24 and 32-bit depths are supported.
//
// go-audio needs an io.ReadSeeker; other readers are buffered in memory
// first.
package aiff
