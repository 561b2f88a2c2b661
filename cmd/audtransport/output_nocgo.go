// SPDX-License-Identifier: EPL-2.0

//go:build !((linux && cgo) || windows || darwin)

package main

import (
	"errors"

	"github.com/ik5/audtransport/engine/soft"
)

var errNoAudioOutput = errors.New("audio output requires cgo on Linux; use scope to render offline")

func startOutput(*soft.Engine, int) error { return errNoAudioOutput }

func stopOutput() {}
