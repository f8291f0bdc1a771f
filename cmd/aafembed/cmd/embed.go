// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/aafembed"
	"github.com/ik5/aafembed/container"
	"github.com/ik5/aafembed/internal/compress"
	"github.com/ik5/aafembed/internal/observability"
)

var errBatchFailed = errors.New("batch had failures")

type embedFlags struct {
	audio     string
	video     string
	output    string
	mode      string
	mobName   string
	inputDir  string
	outputDir string
}

func newEmbedCommand(a *app) *cobra.Command {
	var fl embedFlags

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed an audio file into a new container file",
		Long: `Embed parses a WAVE or AIFF file and writes a container file holding one
mob with its essence descriptor and the embedded sample data.

With --input-dir every audio file in the directory becomes its own
container in --output-dir. Failures are logged and the remaining files
are still processed.`,
		Example: `  aafembed embed --audio take1.wav
  aafembed embed --audio take1.wav --output reel.aaf --mob-name Take1
  aafembed embed --input-dir ./takes --output-dir ./aaf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.applyEmbedFlags(cmd); err != nil {
				return err
			}
			if fl.inputDir != "" {
				return a.runBatch(cmd, fl)
			}
			return a.runEmbed(cmd, fl)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.audio, "audio", "", "audio file to embed (.wav, .aif, .aiff)")
	f.StringVar(&fl.video, "video", "", "video file to embed (not implemented)")
	f.StringVarP(&fl.output, "output", "o", "", "output container (default: input with .aaf extension)")
	f.StringVar(&fl.mode, "mode", string(aafembed.ModeAudio), "inputs to embed (audio, video, audiovideo)")
	f.StringVar(&fl.mobName, "mob-name", "", "mob name (default from embed.mob_name)")
	f.StringVar(&fl.inputDir, "input-dir", "", "embed every audio file in this directory")
	f.StringVar(&fl.outputDir, "output-dir", "", "directory for batch output (default: --input-dir)")
	f.Bool("no-compression", false, "store essence segments uncompressed")
	f.Bool("strict", false, "reject payloads that end with a partial frame")
	f.Bool("overwrite", false, "replace an existing output file")
	f.String("compressor", compress.Brotli, "segment compressor ("+strings.Join(compress.Names(), ", ")+")")
	cmd.MarkFlagsMutuallyExclusive("audio", "input-dir")
	cmd.MarkFlagsMutuallyExclusive("output", "output-dir")

	return cmd
}

// applyEmbedFlags overrides config values with flags the user set.
func (a *app) applyEmbedFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("no-compression") {
		if v, _ := f.GetBool("no-compression"); v {
			a.cfg.Embed.Compression = container.CompressionDisable.String()
		} else {
			a.cfg.Embed.Compression = container.CompressionEnable.String()
		}
	}
	if f.Changed("strict") {
		a.cfg.Embed.StrictFrames, _ = f.GetBool("strict")
	}
	if f.Changed("overwrite") {
		a.cfg.Container.Overwrite, _ = f.GetBool("overwrite")
	}
	if f.Changed("compressor") {
		a.cfg.Container.Compressor, _ = f.GetString("compressor")
	}
	return a.cfg.Validate()
}

func (a *app) runEmbed(cmd *cobra.Command, fl embedFlags) (err error) {
	mode, err := aafembed.ParseMode(fl.mode)
	if err != nil {
		return err
	}

	rt, err := a.loadRuntime()
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rt.Unload()) }()

	ctx := cmd.Context()
	job := aafembed.Job{Audio: fl.audio, Video: fl.video, Output: fl.output, Mode: mode, MobName: fl.mobName}

	done := observability.TimedOperationWithError(ctx, a.log, "embed", &err)
	defer done()

	report, err := aafembed.Run(ctx, rt, job, a.options())
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

func (a *app) runBatch(cmd *cobra.Command, fl embedFlags) (err error) {
	outDir := fl.outputDir
	if outDir == "" {
		outDir = fl.inputDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	inputs, err := audioFiles(fl.inputDir)
	if err != nil {
		return err
	}

	rt, err := a.loadRuntime()
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rt.Unload()) }()

	ctx := cmd.Context()
	log := observability.WithOperation(a.log, "batch")
	opts := a.options()
	opts.Logger = log

	failed := 0
	for _, in := range inputs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		job := aafembed.Job{
			Audio:   in,
			Output:  filepath.Join(outDir, filepath.Base(aafembed.DefaultOutput(in))),
			MobName: fl.mobName,
		}
		report, err := aafembed.Run(ctx, rt, job, opts)
		if err != nil {
			failed++
			log.Error("embedding failed", slog.String("input", in), slog.String("error", err.Error()))
			continue
		}
		printReport(cmd.OutOrStdout(), report)
	}

	log.Info("batch finished", slog.Int("files", len(inputs)), slog.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errBatchFailed, failed, len(inputs))
	}
	return nil
}

// audioFiles lists the files in dir with a registered audio extension,
// sorted by name.
func audioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	exts := aafembed.NewRegistry().Extensions()
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))
		if slices.Contains(exts, ext) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func printReport(w io.Writer, r *aafembed.Report) {
	for _, res := range r.Results {
		fmt.Fprintf(w, "%s\t%s\tslot %d\t%d frames\n", r.Output, res.MobID, res.Slot, res.SamplesWritten)
	}
}
