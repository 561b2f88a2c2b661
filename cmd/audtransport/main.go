// SPDX-License-Identifier: EPL-2.0

// Command audtransport loads an audio file into the software engine and
// either renders it offline with waveform and spectrum snapshots (scope) or
// plays it through the speaker (play).
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ik5/audtransport/engine/soft"
	"github.com/ik5/audtransport/internal/config"
	"github.com/ik5/audtransport/transport"
)

type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := rootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "audtransport",
		Short:   "Play and inspect ranges of an audio file",
		Version: appVersion(),
		Long: `Play and inspect ranges of an audio file.

Supported formats: WAV, AIFF, Ogg Vorbis, MP3. The format is detected from
the file contents.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	cmd.AddCommand(scopeCmd(a))
	cmd.AddCommand(playCmd(a))
	cmd.AddCommand(infoCmd(a))

	return cmd
}

func (a *app) setup(logOut io.Writer) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}

	a.cfg = cfg
	a.logger = newLogger(cfg.Logging, logOut)
	return nil
}

// newTransport builds an engine and a controller from the loaded config.
func (a *app) newTransport() (*soft.Engine, *transport.Controller, error) {
	eng := soft.New(
		soft.WithSampleRate(a.cfg.Engine.SampleRate),
		soft.WithLogger(a.logger.With(slog.String("component", "engine"))),
	)

	c, err := transport.New(eng,
		transport.WithWindowSize(a.cfg.Analysis.WindowSize),
		transport.WithSmoothing(a.cfg.Analysis.Smoothing),
		transport.WithLogger(a.logger.With(slog.String("component", "transport"))),
	)
	if err != nil {
		return nil, nil, err
	}

	return eng, c, nil
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func appVersion() string {
	bi, hasBuildInfo := debug.ReadBuildInfo()
	if !hasBuildInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
