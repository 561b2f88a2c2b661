// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audtransport/engine/soft"
	"github.com/ik5/audtransport/transport"
)

const statusInterval = 250 * time.Millisecond

func playCmd(a *app) *cobra.Command {
	r := &rangeFlags{}

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a range of the file through the speaker",
		Long: `Play a range of the file through the default audio device, printing the
elapsed offset and a spectrum line while it plays. Ctrl-C pauses and exits.

Audio output needs cgo on Linux.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return a.runPlay(ctx, r.options(cmd), args[0], cmd.OutOrStdout())
		},
	}

	r.register(cmd)

	return cmd
}

func (a *app) runPlay(ctx context.Context, opts []transport.PlayOption, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	eng, c, err := a.newTransport()
	if err != nil {
		return err
	}
	if _, err := c.LoadData(ctx, data); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	bufferFrames := eng.SampleRate() * a.cfg.Engine.BufferMillis / 1000
	if err := startOutput(eng, bufferFrames); err != nil {
		return err
	}
	defer stopOutput()

	c.Play(opts...)
	watch(ctx, eng, c, out)
	c.Pause()

	fmt.Fprintln(out)
	return nil
}

// watch prints status lines until the session ends or ctx is done.
func watch(ctx context.Context, eng *soft.Engine, c *transport.Controller, out io.Writer) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	duration, _ := c.Duration()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		spectrum := c.Frequency()
		fmt.Fprintf(out, "\r%s %s",
			titleStyle.Render(fmt.Sprintf("%6.2fs / %.2fs", c.Elapsed(), duration)),
			specStyle.Render(sparkline(spectrum[:len(spectrum)/2], 48)))

		if eng.Active() == 0 {
			return
		}
	}
}
