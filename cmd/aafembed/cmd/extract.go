// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ik5/aafembed/audio"
	"github.com/ik5/aafembed/container"
	"github.com/ik5/aafembed/formats/aiff"
	"github.com/ik5/aafembed/formats/wav"
)

var (
	errAmbiguousMob = errors.New("more than one mob has that name")
	errNoWriter     = errors.New("output must end in .wav, .aif or .aiff")
)

type extractFlags struct {
	mob    string
	slot   uint32
	output string
}

func newExtractCommand(a *app) *cobra.Command {
	var fl extractFlags

	cmd := &cobra.Command{
		Use:   "extract <file.aaf>",
		Short: "Write the essence of a mob back to a WAVE or AIFF file",
		Example: `  aafembed extract reel.aaf --mob AudioMob --output take1.wav
  aafembed extract reel.aaf --mob urn:smpte:umid:060a2b34... --output take1.aiff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, err := a.loadRuntime()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, rt.Unload()) }()

			buf, err := extract(cmd.Context(), rt, args[0], fl)
			if err != nil {
				return err
			}
			if err := writeAudio(fl.output, buf); err != nil {
				return err
			}

			a.log.Info("essence extracted",
				slog.String("output", fl.output),
				slog.Int64("frames", buf.Frames()),
				slog.String("size", humanize.IBytes(uint64(len(buf.Data)))),
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.mob, "mob", "", "mob name or id")
	f.Uint32Var(&fl.slot, "slot", 0, "essence slot (default: the mob's first)")
	f.StringVarP(&fl.output, "output", "o", "", "output file (.wav, .aif, .aiff)")
	_ = cmd.MarkFlagRequired("mob")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func extract(ctx context.Context, rt *container.Runtime, path string, fl extractFlags) (buf *audio.Buffer, err error) {
	f, err := rt.OpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	hdr, err := f.Header()
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, hdr.Release()) }()

	mob, err := findMob(ctx, hdr, fl.mob)
	if err != nil {
		return nil, err
	}
	if len(mob.Essences) == 0 {
		return nil, fmt.Errorf("%w: mob %s", container.ErrEssenceNotFound, mob.ID)
	}

	slot := container.SlotID(fl.slot)
	if slot == 0 {
		slot = mob.Essences[0].Slot
	}

	r, err := f.OpenEssence(ctx, mob.ID, slot)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, r.Release()) }()

	info := r.Info()
	data := make([]byte, 0, info.Length)
	chunk := make([]byte, audio.ChunkBytes(1<<20, formatOf(info)))
	for {
		n, err := r.ReadSamples(chunk)
		data = append(data, chunk[:n*info.FrameSize()]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	format := formatOf(info)
	format.DataLength = int64(len(data))
	return &audio.Buffer{Format: format, Data: data}, nil
}

// findMob resolves ref as a mob id first and as a unique mob name otherwise.
func findMob(ctx context.Context, hdr container.Header, ref string) (*container.MobInfo, error) {
	if strings.HasPrefix(ref, "urn:smpte:umid:") {
		id, err := container.ParseMobID(ref)
		if err != nil {
			return nil, err
		}
		return hdr.LookupMob(ctx, id)
	}

	mobs, err := hdr.Mobs(ctx)
	if err != nil {
		return nil, err
	}
	var found *container.MobInfo
	for i := range mobs {
		if mobs[i].Name != ref {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %q", errAmbiguousMob, ref)
		}
		found = &mobs[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", container.ErrMobNotFound, ref)
	}
	return found, nil
}

// formatOf describes the stored essence bytes. AIFC essence keeps the
// big-endian order of its source.
func formatOf(info container.EssenceInfo) audio.Format {
	f := audio.Format{
		Tag:           audio.TagPCM,
		Channels:      info.Channels,
		SampleRate:    info.SampleRate,
		BitsPerSample: info.BitsPerSample,
		BlockAlign:    info.FrameSize(),
		ByteRate:      info.FrameSize() * info.SampleRate,
		ByteOrder:     binary.LittleEndian,
	}
	if info.Codec == container.CodecAIFC {
		f.ByteOrder = binary.BigEndian
	}
	return f
}

func writeAudio(path string, buf *audio.Buffer) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return wav.WriteFile(path, buf)
	case ".aif", ".aiff":
		return aiff.WriteFile(path, buf)
	}
	return fmt.Errorf("%w: %s", errNoWriter, path)
}
