// SPDX-License-Identifier: EPL-2.0

package embed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ik5/aafembed/audio"
	"github.com/ik5/aafembed/container"
)

const (
	DefaultMobName   = "AudioMob"
	DefaultChunkSize = 4 << 20
)

// Config controls how assets are embedded.
type Config struct {
	// MobName names every mob unless the asset overrides it.
	MobName     string
	Compression container.Compression
	// StrictFrames rejects payloads that end in a partial frame instead of
	// dropping the trailing bytes.
	StrictFrames bool
	// Locator records a file:// locator for the source on the descriptor.
	Locator bool
	// Metadata copies broadcast and INFO text into mob comments.
	Metadata bool
	// ChunkSize bounds the bytes handed to each WriteSamples call.
	ChunkSize int64
	Logger    *slog.Logger
}

// Result describes one embedded essence stream.
type Result struct {
	MobID          container.MobID
	MobName        string
	Slot           container.SlotID
	SamplesWritten int64
	// DroppedBytes is the trailing partial frame left out of the essence.
	DroppedBytes int64
}

// Embedder drives the container construction protocol for one asset at a
// time. Slots are numbered per embedded stream starting at 1.
type Embedder struct {
	cfg  Config
	log  *slog.Logger
	next container.SlotID
}

func New(cfg Config) *Embedder {
	if cfg.MobName == "" {
		cfg.MobName = DefaultMobName
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Embedder{
		cfg:  cfg,
		log:  log.With(slog.String("component", "embed")),
		next: 1,
	}
}

// Embed adds a as a new mob with its descriptor and essence stream to f.
// Every handle obtained from f is released before Embed returns and release
// failures are joined into the returned error. Nothing reaches disk until
// f.Save.
func (e *Embedder) Embed(ctx context.Context, f container.File, a Asset) (res Result, err error) {
	st, err := a.essence()
	if err != nil {
		if errors.Is(err, ErrVideoNotImplemented) {
			e.log.Info("video embedding requested", slog.String("path", a.Path()))
		}
		return Result{}, err
	}

	hdr := st.header
	src := st.source
	defer func() {
		if src != nil {
			err = errors.Join(err, src.Close())
		}
	}()

	remainder := hdr.Format.Remainder(hdr.Payload.Length)
	if remainder > 0 && e.cfg.StrictFrames {
		return Result{}, &audio.FormatError{
			Path: hdr.Path,
			Err:  fmt.Errorf("%w: %d trailing bytes", audio.ErrPartialFrame, remainder),
		}
	}
	frames := hdr.Format.Frames(hdr.Payload.Length)

	if src == nil {
		pr, err := audio.OpenPayload(hdr.Path, hdr.Payload, hdr.Format)
		if err != nil {
			return Result{}, err
		}
		src = pr
	}

	name := st.mobName
	if name == "" {
		name = e.cfg.MobName
	}
	release := func(h container.Handle) {
		if rerr := h.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	fail := func(stage Stage, cause error) error {
		return &EmbedError{Stage: stage, Mob: name, Err: cause}
	}

	header, err := f.Header()
	if err != nil {
		return Result{}, &EmbedError{Stage: StageHeaderFetch, Err: err}
	}
	defer release(header)

	mob, err := header.CreateMob()
	if err != nil {
		return Result{}, fail(StageMobCreate, err)
	}
	defer release(mob)

	if err := e.describeMob(mob, name, hdr); err != nil {
		return Result{}, fail(StageMobCreate, err)
	}

	desc, err := createDescriptor(f, st.kind)
	if err != nil {
		return Result{}, fail(StageDescriptorCreate, err)
	}
	defer release(desc)

	if err := e.populate(desc, hdr, frames); err != nil {
		return Result{}, fail(StageDescriptorCreate, err)
	}

	view, err := desc.EssenceDescriptor()
	if err != nil {
		return Result{}, fail(StageDescriptorAttach, err)
	}
	defer release(view)

	if err := mob.AppendEssenceDescriptor(view); err != nil {
		return Result{}, fail(StageDescriptorAttach, err)
	}

	if err := header.AddMob(ctx, mob); err != nil {
		return Result{}, fail(StageMobRegister, err)
	}

	slot := e.next
	access, err := f.CreateEssence(ctx, mob, slot, st.kind.Codec(), container.ContainerAAF, view, e.cfg.Compression)
	if err != nil {
		return Result{}, fail(StageEssenceOpen, err)
	}
	defer release(access)
	e.next++

	res = Result{MobID: mob.ID(), MobName: name, Slot: slot, DroppedBytes: remainder}

	start := time.Now()
	written, err := e.write(ctx, access, src, hdr.Format)
	res.SamplesWritten = written
	if err != nil {
		return res, fail(StageWrite, err)
	}
	if written != frames {
		return res, fail(StageWrite, fmt.Errorf("%w: wrote %d of %d frames", ErrShortEssence, written, frames))
	}

	if remainder > 0 {
		e.log.Warn("partial trailing frame dropped",
			slog.String("path", hdr.Path),
			slog.Int64("dropped_bytes", remainder),
		)
	}
	e.log.Info("essence embedded",
		slog.String("path", hdr.Path),
		slog.String("mob_id", res.MobID.String()),
		slog.String("mob_name", name),
		slog.Uint64("slot", uint64(slot)),
		slog.Int64("frames", written),
		slog.String("size", humanize.IBytes(uint64(written)*uint64(hdr.Format.FrameSize()))),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (e *Embedder) describeMob(mob container.Mob, name string, hdr *audio.Header) error {
	if err := mob.SetName(name); err != nil {
		return err
	}
	if !e.cfg.Metadata {
		return nil
	}
	for _, c := range hdr.Metadata.Comments() {
		if err := mob.AppendComment(c.Name, c.Value); err != nil {
			return err
		}
	}
	return nil
}

func (e *Embedder) populate(desc container.PCMDescriptor, hdr *audio.Header, frames int64) error {
	f := hdr.Format
	setters := []func() error{
		func() error { return desc.SetSummary(hdr.Summary) },
		func() error { return desc.SetSampleRate(f.SampleRate) },
		func() error { return desc.SetBitsPerSample(f.BitsPerSample) },
		func() error { return desc.SetChannels(f.Channels) },
		func() error { return desc.SetLength(frames) },
	}
	if e.cfg.Locator && hdr.Path != "" {
		setters = append(setters, func() error {
			loc, err := Locator(hdr.Path)
			if err != nil {
				return err
			}
			return desc.AppendLocator(loc)
		})
	}

	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}
	return nil
}

// write streams whole frames from src into access in bounded chunks and
// returns the frame count reported by the session.
func (e *Embedder) write(ctx context.Context, access container.EssenceAccess, src audio.FrameSource, f audio.Format) (int64, error) {
	fs := f.FrameSize()
	buf := make([]byte, audio.ChunkBytes(e.cfg.ChunkSize, f))

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := src.ReadFrames(buf)
		if n > 0 {
			want := n / fs
			got, werr := access.WriteSamples(want, buf[:n])
			total += int64(got)
			if werr != nil {
				return total, werr
			}
			if got != want {
				return total, fmt.Errorf("%w: %d of %d", ErrShortWrite, got, want)
			}
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

func createDescriptor(f container.File, kind container.DescriptorKind) (container.PCMDescriptor, error) {
	switch kind {
	case container.KindAIFC:
		return f.CreateAIFCDescriptor()
	default:
		return f.CreateWAVEDescriptor()
	}
}

// Locator returns the file:// URL of path made absolute.
func Locator(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
