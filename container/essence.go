// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/ik5/aafembed/internal/compress"
	"github.com/ik5/aafembed/internal/store"
)

func (f *file) CreateEssence(ctx context.Context, m Mob, slot SlotID, codec Codec, def ContainerDef,
	desc EssenceDescriptor, comp Compression) (EssenceAccess, error) {
	if err := f.checkMutable(); err != nil {
		return nil, err
	}
	mm, err := f.own(m)
	if err != nil {
		return nil, err
	}
	if !mm.registered {
		return nil, fmt.Errorf("%w: %s", ErrMobNotRegistered, mm.id)
	}
	v, ok := desc.(*descriptorView)
	if !ok || v.d.f != f {
		return nil, ErrForeignObject
	}
	if err := v.check(); err != nil {
		return nil, err
	}
	if v.d != mm.desc {
		return nil, fmt.Errorf("%w: %s", ErrDescriptorMismatch, mm.id)
	}
	if slot < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSlot, slot)
	}
	if codec != v.d.kind.Codec() {
		return nil, fmt.Errorf("%w: codec %s, descriptor %s", ErrCodecMismatch, codec, v.d.kind)
	}
	if def != ContainerAAF {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContainer, def)
	}
	if _, err := f.store.EssenceFor(ctx, mm.id.String(), uint32(slot)); err == nil {
		return nil, fmt.Errorf("%w: mob %s slot %d", ErrSlotInUse, mm.id, slot)
	}

	var c compress.Compressor
	if comp == CompressionEnable {
		c = f.rt.comp
	} else {
		c, _ = compress.Lookup(compress.None)
	}

	rec := &store.Essence{
		MobID:         mm.id.String(),
		SlotID:        uint32(slot),
		Codec:         string(codec),
		Container:     string(def),
		Compressor:    c.Name(),
		SampleRate:    v.d.sampleRate,
		Channels:      v.d.channels,
		BitsPerSample: v.d.bitsPerSample,
	}
	if err := f.store.CreateEssence(ctx, rec); err != nil {
		return nil, err
	}

	f.openEssence++
	f.log.Debug("essence opened",
		slog.String("mob_id", mm.id.String()),
		slog.Uint64("slot", uint64(slot)),
		slog.String("codec", string(codec)),
		slog.String("compressor", c.Name()),
	)

	return &essenceWriter{
		handle:    newHandle(f.rt, "essence-access"),
		ctx:       ctx,
		f:         f,
		rec:       rec,
		comp:      c,
		frameSize: v.d.frameSize(),
		segSize:   f.rt.opts.SegmentSize,
	}, nil
}

type essenceWriter struct {
	handle
	// ctx is the context the session was opened with; WriteSamples and
	// Release run their store calls under it.
	ctx       context.Context
	f         *file
	rec       *store.Essence
	comp      compress.Compressor
	frameSize int
	segSize   int

	pending []byte
	seq     int
	stored  int64
	written int64
	failed  bool
}

func (w *essenceWriter) SamplesWritten() int64 { return w.written }

func (w *essenceWriter) WriteSamples(n int, buf []byte) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	if w.failed {
		return 0, errors.New("essence session failed earlier")
	}
	if n < 0 {
		return 0, fmt.Errorf("negative frame count %d", n)
	}
	need := n * w.frameSize
	if len(buf) < need {
		return 0, fmt.Errorf("%w: %d frames need %d bytes, have %d", ErrShortBuffer, n, need, len(buf))
	}
	if err := w.ctx.Err(); err != nil {
		w.failed = true
		return 0, err
	}

	w.pending = append(w.pending, buf[:need]...)
	for len(w.pending) >= w.segSize {
		if err := w.flush(w.pending[:w.segSize]); err != nil {
			w.failed = true
			return 0, err
		}
		w.pending = append(w.pending[:0], w.pending[w.segSize:]...)
	}

	w.written += int64(n)
	return n, nil
}

func (w *essenceWriter) flush(data []byte) error {
	seg := &store.Segment{
		EssenceID: w.rec.ID,
		Seq:       w.seq,
		RawSize:   len(data),
		Data:      append([]byte(nil), data...),
	}
	if w.comp.Name() != compress.None {
		packed, err := w.comp.Compress(data)
		if err != nil {
			return err
		}
		if len(packed) < len(data) {
			seg.Data = packed
			seg.Compressed = true
		}
	}

	if err := w.f.store.AppendSegment(w.ctx, seg); err != nil {
		return err
	}
	w.seq++
	w.stored += int64(len(seg.Data))
	return nil
}

// Release completes the essence. A session that failed is discarded
// instead.
func (w *essenceWriter) Release() error {
	if err := w.release(); err != nil {
		return err
	}
	w.f.openEssence--

	// the session's own context may be cancelled already
	ctx := context.WithoutCancel(w.ctx)

	if w.failed {
		w.f.log.Warn("discarding failed essence",
			slog.String("mob_id", w.rec.MobID),
			slog.Int64("frames_written", w.written),
		)
		return w.f.store.DiscardEssence(ctx, w.rec.ID)
	}

	if len(w.pending) > 0 {
		if err := w.flush(w.pending); err != nil {
			_ = w.f.store.DiscardEssence(ctx, w.rec.ID)
			return err
		}
		w.pending = nil
	}

	w.rec.Frames = w.written
	w.rec.Length = w.written * int64(w.frameSize)
	w.rec.Segments = w.seq
	if err := w.f.store.CompleteEssence(ctx, w.rec); err != nil {
		return err
	}

	w.f.log.Debug("essence completed",
		slog.String("mob_id", w.rec.MobID),
		slog.Int64("frames", w.rec.Frames),
		slog.String("size", humanize.IBytes(uint64(w.rec.Length))),
		slog.String("stored", humanize.IBytes(uint64(w.stored))),
		slog.Int("segments", w.seq),
	)
	return nil
}

func (f *file) OpenEssence(ctx context.Context, id MobID, slot SlotID) (EssenceReader, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}

	rec, err := f.store.EssenceFor(ctx, id.String(), uint32(slot))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: mob %s slot %d", ErrEssenceNotFound, id, slot)
		}
		return nil, err
	}
	c, err := compress.Lookup(rec.Compressor)
	if err != nil {
		return nil, err
	}

	return &essenceReader{
		handle: newHandle(f.rt, "essence-reader"),
		ctx:    ctx,
		f:      f,
		id:     rec.ID,
		info:   essenceInfo(id, rec),
		comp:   c,
	}, nil
}

type essenceReader struct {
	handle
	ctx     context.Context
	f       *file
	id      uint
	info    EssenceInfo
	comp    compress.Compressor
	seq     int
	pending []byte
}

func (r *essenceReader) Release() error    { return r.release() }
func (r *essenceReader) Info() EssenceInfo { return r.info }

func (r *essenceReader) ReadSamples(buf []byte) (int, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	fs := r.info.FrameSize()
	if fs <= 0 {
		return 0, io.EOF
	}
	want := len(buf) / fs * fs
	if want == 0 {
		if len(buf) == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %d bytes is less than one frame", ErrShortBuffer, len(buf))
	}

	n := 0
	for n < want {
		if len(r.pending) == 0 {
			if r.seq >= r.info.Segments {
				break
			}
			if err := r.load(); err != nil {
				return n / fs, err
			}
		}
		c := copy(buf[n:want], r.pending)
		r.pending = r.pending[c:]
		n += c
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n / fs, nil
}

func (r *essenceReader) load() error {
	seg, err := r.f.store.Segment(r.ctx, r.id, r.seq)
	if err != nil {
		return err
	}
	data := seg.Data
	if seg.Compressed {
		if data, err = r.comp.Decompress(seg.Data); err != nil {
			return fmt.Errorf("segment %d: %w", r.seq, err)
		}
	}
	if len(data) != seg.RawSize {
		return fmt.Errorf("segment %d: %d bytes, expected %d", r.seq, len(data), seg.RawSize)
	}
	r.pending = data
	r.seq++
	return nil
}
