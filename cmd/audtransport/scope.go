// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ik5/audtransport"
	"github.com/ik5/audtransport/audio"
	"github.com/ik5/audtransport/formats/wav"
	"github.com/ik5/audtransport/transport"
)

const renderChunk = 1024

// rangeFlags are the playback range flags shared by scope and play. Only
// flags given on the command line are passed to Play, so --start 0 means
// zero rather than "resume".
type rangeFlags struct {
	start float64
	end   float64
	delay float64
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&r.start, "start", 0, "start offset in seconds")
	cmd.Flags().Float64Var(&r.end, "end", 0, "end offset in seconds (default: end of track)")
	cmd.Flags().Float64Var(&r.delay, "delay", 0, "seconds to wait before playback starts")
}

func (r *rangeFlags) options(cmd *cobra.Command) []transport.PlayOption {
	var opts []transport.PlayOption
	if cmd.Flags().Changed("start") {
		opts = append(opts, transport.WithStart(r.start))
	}
	if cmd.Flags().Changed("end") {
		opts = append(opts, transport.WithEnd(r.end))
	}
	if cmd.Flags().Changed("delay") {
		opts = append(opts, transport.WithDelay(r.delay))
	}
	return opts
}

type scopeParams struct {
	rangeFlags
	at       float64
	width    int
	dump     string
	dumpRate int
	watch    bool
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	waveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	specStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func scopeCmd(a *app) *cobra.Command {
	p := &scopeParams{}

	cmd := &cobra.Command{
		Use:   "scope <file>",
		Short: "Render a range offline and print waveform and spectrum snapshots",
		Long: `Render a range of the file offline, without audio output, and print the
analyser snapshots taken --at seconds after playback started.

Examples:
  audtransport scope track.wav --start 2 --end 8 --at 1.5
  audtransport scope track.mp3 --at 3 --dump rendered.wav --dump-rate 16000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.runScope(cmd.Context(), cmd, p, args[0], out); err != nil || !p.watch {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return watchFile(ctx, args[0], a.logger, func() {
				if err := a.runScope(ctx, cmd, p, args[0], out); err != nil {
					a.logger.Error("scope failed", slog.Any("error", err))
				}
			})
		},
	}

	p.register(cmd)
	cmd.Flags().Float64Var(&p.at, "at", 1, "seconds to render before taking the snapshots")
	cmd.Flags().IntVar(&p.width, "width", 64, "bar width in columns")
	cmd.Flags().StringVar(&p.dump, "dump", "", "write the rendered output as a mono 16-bit WAV")
	cmd.Flags().IntVar(&p.dumpRate, "dump-rate", 16000, "sample rate of the --dump file")
	cmd.Flags().BoolVarP(&p.watch, "watch", "w", false, "render again whenever the file changes")

	return cmd
}

func (a *app) runScope(ctx context.Context, cmd *cobra.Command, p *scopeParams, path string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

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

	c.Play(p.options(cmd)...)

	frames := max(int(p.at*float64(eng.SampleRate())), 0)
	var rendered []float32
	if p.dump != "" {
		rendered = make([]float32, 0, frames*2)
	}

	block := make([][2]float64, renderChunk)
	for left := frames; left > 0; {
		n := min(left, renderChunk)
		eng.Render(block[:n])
		if p.dump != "" {
			for _, f := range block[:n] {
				rendered = append(rendered, float32(f[0]), float32(f[1]))
			}
		}
		left -= n
	}

	duration, _ := c.Duration()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s  %.2fs / %.2fs", path, c.Elapsed(), duration)))
	fmt.Fprintln(out, dimStyle.Render("waveform"))
	fmt.Fprintln(out, waveStyle.Render(sparkline(c.Waveform(), p.width)))

	spectrum := c.Frequency()
	fmt.Fprintln(out, dimStyle.Render("spectrum"))
	fmt.Fprintln(out, specStyle.Render(sparkline(spectrum[:len(spectrum)/2], p.width)))

	c.Pause()

	if p.dump != "" {
		return a.dump(ctx, p, audio.NewSliceSource(rendered, eng.SampleRate(), 2), out)
	}
	return nil
}

func (a *app) dump(ctx context.Context, p *scopeParams, src audio.Source, out io.Writer) error {
	pcm, err := audtransport.ResampleToMono16(ctx, src, p.dumpRate, 4096)
	if err != nil {
		return fmt.Errorf("preparing dump: %w", err)
	}

	var buf bytes.Buffer
	if err := wav.WriteWAV16(&buf, p.dumpRate, pcm); err != nil {
		return err
	}
	if err := os.WriteFile(p.dump, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", p.dump, err)
	}

	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("wrote %d samples to %s", len(pcm), p.dump)))
	return nil
}

var levels = []rune(" ▁▂▃▄▅▆▇█")

// sparkline squeezes data into width columns, keeping the peak of each
// column.
func sparkline(data []byte, width int) string {
	if width <= 0 || len(data) == 0 {
		return ""
	}
	width = min(width, len(data))

	out := make([]rune, width)
	for col := range width {
		from := col * len(data) / width
		to := max((col+1)*len(data)/width, from+1)

		var peak byte
		for _, v := range data[from:to] {
			peak = max(peak, v)
		}
		out[col] = levels[int(peak)*(len(levels)-1)/255]
	}
	return string(out)
}
