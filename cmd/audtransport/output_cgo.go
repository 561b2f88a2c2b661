// SPDX-License-Identifier: EPL-2.0

//go:build (linux && cgo) || windows || darwin

package main

import (
	"fmt"

	"github.com/gopxl/beep/v2/speaker"

	"github.com/ik5/audtransport/engine/soft"
)

// startOutput hands the engine to the speaker, which then drives its clock.
func startOutput(eng *soft.Engine, bufferFrames int) error {
	if err := speaker.Init(eng.Format().SampleRate, bufferFrames); err != nil {
		return fmt.Errorf("initialising speaker: %w", err)
	}
	speaker.Play(eng.Streamer())
	return nil
}

func stopOutput() {
	speaker.Clear()
	speaker.Close()
}
