// SPDX-License-Identifier: EPL-2.0

// Package cmd implements the aafembed command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/aafembed"
	"github.com/ik5/aafembed/audio"
	"github.com/ik5/aafembed/container"
	"github.com/ik5/aafembed/embed"
	"github.com/ik5/aafembed/internal/config"
	"github.com/ik5/aafembed/internal/observability"
	"github.com/ik5/aafembed/internal/version"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:     "aafembed",
		Short:   "Embed PCM audio into AAF container files",
		Version: version.Short(),
		Long: `aafembed wraps WAVE and AIFF audio into AAF-class container files.

Each input becomes a mob with a PCM essence descriptor and an embedded
essence stream. The container can be inspected and its essence extracted
back to WAVE or AIFF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	// Flags are not bound to viper; they override config and env only when
	// set explicitly.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is .aafembed.yaml in ., $HOME or /etc/aafembed)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")

	root.AddCommand(
		newEmbedCommand(a),
		newInspectCommand(a),
		newExtractCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and logs a failure before returning it.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("aafembed failed", slog.String("error", err.Error()))
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = observability.NewLoggerWithWriter(cfg.Logging, cmd.ErrOrStderr())
	slog.SetDefault(a.log)
	return nil
}

func (a *app) loadRuntime() (*container.Runtime, error) {
	return container.Load(container.Options{
		Compressor:  a.cfg.Container.Compressor,
		SegmentSize: int(a.cfg.Container.SegmentSize.Bytes()),
		Overwrite:   a.cfg.Container.Overwrite,
		Identity: container.Identification{
			ProductName:    version.ApplicationName,
			ProductVersion: version.Version,
		},
		Logger: a.log,
	})
}

func (a *app) options() aafembed.Options {
	return aafembed.Options{
		Embed: embed.Config{
			MobName:      a.cfg.Embed.MobName,
			Compression:  a.cfg.Embed.CompressionMode(),
			StrictFrames: a.cfg.Embed.StrictFrames,
			Locator:      a.cfg.Embed.Locator,
			Metadata:     a.cfg.Embed.Metadata,
			ChunkSize:    a.cfg.Reader.ChunkSize.Bytes(),
		},
		Limits: audio.Limits{
			MaxInMemory:    a.cfg.Reader.MaxInMemory.Bytes(),
			ChunkSize:      a.cfg.Reader.ChunkSize.Bytes(),
			MemoryFraction: a.cfg.Reader.MemoryFraction,
		},
		Logger: a.log,
	}
}
