// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ik5/audtransport/engine/soft"
)

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Show format, layout and duration of audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInfo(cmd.Context(), args, cmd.OutOrStdout())
		},
	}
}

type trackInfo struct {
	format     string
	sampleRate int
	channels   int
	duration   float64
}

func (a *app) runInfo(ctx context.Context, paths []string, out io.Writer) error {
	eng, _, err := a.newTransport()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Format", "Rate", "Channels", "Duration"})

	var failed int
	for _, path := range paths {
		info, err := probe(ctx, eng, path)
		if err != nil {
			a.logger.Error("probe failed", slog.String("file", path), slog.Any("error", err))
			t.AppendRow(table.Row{path, "error", "", "", err.Error()})
			failed++
			continue
		}
		t.AppendRow(table.Row{
			path,
			info.format,
			fmt.Sprintf("%d Hz", info.sampleRate),
			info.channels,
			fmt.Sprintf("%.2fs", info.duration),
		})
	}

	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(paths))
	}
	return nil
}

// probe reports the file's native layout and its duration once decoded by
// the engine.
func probe(ctx context.Context, eng *soft.Engine, path string) (trackInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return trackInfo{}, err
	}

	format, dec, ok := soft.DefaultRegistry().Detect(data)
	if !ok {
		return trackInfo{}, soft.ErrUnknownFormat
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return trackInfo{}, err
	}
	info := trackInfo{
		format:     format,
		sampleRate: src.SampleRate(),
		channels:   src.Channels(),
	}
	if err := src.Close(); err != nil {
		return trackInfo{}, err
	}

	buf, err := eng.Decode(ctx, data)
	if err != nil {
		return trackInfo{}, err
	}
	info.duration = buf.Duration()

	return info, nil
}
