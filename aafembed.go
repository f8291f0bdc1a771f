// SPDX-License-Identifier: EPL-2.0

package aafembed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ik5/aafembed/audio"
	"github.com/ik5/aafembed/container"
	"github.com/ik5/aafembed/embed"
	"github.com/ik5/aafembed/formats/aiff"
	"github.com/ik5/aafembed/formats/wav"
)

var (
	ErrNoInput     = errors.New("no input file for the requested mode")
	ErrUnknownMode = errors.New("unknown embed mode")
)

// Mode selects which inputs of a Job are embedded.
type Mode string

const (
	ModeAudio      Mode = "audio"
	ModeVideo      Mode = "video"
	ModeAudioVideo Mode = "audiovideo"
)

// ParseMode accepts the mode names case-insensitively. Empty means audio.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAudio, nil
	case ModeAudio, ModeVideo, ModeAudioVideo:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// NewRegistry returns a registry holding the WAVE and AIFF parsers.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	for _, ext := range []string{"wav", "wave", "bwf"} {
		r.Register(ext, wav.Parser{})
	}
	for _, ext := range []string{"aif", "aiff", "aifc"} {
		r.Register(ext, aiff.Parser{})
	}
	return r
}

// Job is one container file to produce.
type Job struct {
	Audio string
	Video string
	// Output defaults to the primary input with its extension replaced by
	// .aaf.
	Output  string
	Mode    Mode
	MobName string
}

// Options shared by every job of a run.
type Options struct {
	Embed    embed.Config
	Limits   audio.Limits
	Registry *audio.Registry
	Logger   *slog.Logger
}

func (o Options) registry() *audio.Registry {
	if o.Registry == nil {
		return NewRegistry()
	}
	return o.Registry
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Report describes a saved container file.
type Report struct {
	Output  string
	Results []embed.Result
}

// DefaultOutput replaces the extension of path with .aaf.
func DefaultOutput(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".aaf"
}

// Run builds the container for job under rt. The file is saved only when
// every requested asset was embedded; on failure it is closed unsaved and
// nothing appears at the output path.
func Run(ctx context.Context, rt *container.Runtime, job Job, opts Options) (report *Report, err error) {
	mode, err := ParseMode(string(job.Mode))
	if err != nil {
		return nil, err
	}
	wantAudio := mode == ModeAudio || mode == ModeAudioVideo
	wantVideo := mode == ModeVideo || mode == ModeAudioVideo
	if (wantAudio && job.Audio == "") || (wantVideo && job.Video == "") {
		return nil, fmt.Errorf("%w: mode %s", ErrNoInput, mode)
	}

	output := job.Output
	if output == "" {
		if wantAudio {
			output = DefaultOutput(job.Audio)
		} else {
			output = DefaultOutput(job.Video)
		}
	}

	log := opts.logger().With(slog.String("output", output))

	f, err := rt.CreateFile(ctx, output, container.ExistenceNew, container.AccessModify)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			report = nil
		}
	}()

	cfg := opts.Embed
	cfg.Logger = log
	if job.MobName != "" {
		cfg.MobName = job.MobName
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = opts.Limits.ChunkSize
	}
	em := embed.New(cfg)

	report = &Report{Output: f.Path()}

	if wantAudio {
		res, err := EmbedAudioFile(ctx, f, em, job.Audio, opts)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
	}

	if wantVideo {
		_, err := em.Embed(ctx, f, embed.DNxVideo{File: job.Video})
		switch {
		case errors.Is(err, embed.ErrVideoNotImplemented) && mode == ModeAudioVideo:
			log.Warn("video essence skipped", slog.String("video", job.Video))
		case err != nil:
			return nil, err
		}
	}

	if err := f.Save(ctx); err != nil {
		return nil, err
	}
	log.Info("container saved", slog.Int("mobs", len(report.Results)))
	return report, nil
}

// EmbedAudioFile parses the audio file at path with the registered parser
// for its extension and embeds it into f.
func EmbedAudioFile(ctx context.Context, f container.File, em *embed.Embedder, path string, opts Options) (embed.Result, error) {
	p, err := opts.registry().Lookup(path)
	if err != nil {
		return embed.Result{}, err
	}
	hdr, err := p.ParseFile(path)
	if err != nil {
		return embed.Result{}, err
	}

	src, err := OpenSource(ctx, hdr, opts.Limits, opts.logger())
	if err != nil {
		return embed.Result{}, err
	}

	return em.Embed(ctx, f, embed.AssetFor(hdr, src))
}

// OpenSource reads a payload whole when Plan allows it and streams it in
// chunks otherwise.
func OpenSource(ctx context.Context, hdr *audio.Header, limits audio.Limits, log *slog.Logger) (audio.FrameSource, error) {
	strategy := audio.Plan(ctx, hdr.Payload.Length, limits)
	log.Debug("payload read plan",
		slog.String("path", hdr.Path),
		slog.String("size", humanize.IBytes(uint64(hdr.Payload.Length))),
		slog.Bool("in_memory", strategy.InMemory),
	)

	if !strategy.InMemory {
		return audio.OpenPayload(hdr.Path, hdr.Payload, hdr.Format)
	}

	buf, err := audio.ReadPayload(hdr.Path, hdr.Payload, hdr.Format)
	if err != nil {
		return nil, err
	}
	return audio.NewBufferSource(buf), nil
}
