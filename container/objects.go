// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ik5/aafembed/internal/store"
)

type header struct {
	handle
	f *file
}

func (h *header) Release() error { return h.release() }

func (h *header) CreateMob() (Mob, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	if err := h.f.checkMutable(); err != nil {
		return nil, err
	}
	return &mob{handle: newHandle(h.f.rt, "mob"), f: h.f, id: NewMobID()}, nil
}

func (h *header) AddMob(ctx context.Context, m Mob) error {
	if err := h.check(); err != nil {
		return err
	}
	if err := h.f.checkMutable(); err != nil {
		return err
	}
	mm, err := h.f.own(m)
	if err != nil {
		return err
	}
	if mm.registered {
		return fmt.Errorf("%w: %s", ErrMobRegistered, mm.id)
	}
	if mm.desc == nil {
		return fmt.Errorf("%w: %s", ErrNoDescriptor, mm.id)
	}
	if err := mm.desc.complete(); err != nil {
		return err
	}

	if err := h.f.store.InsertMob(ctx, mm.record()); err != nil {
		return err
	}
	mm.registered = true

	h.f.log.Debug("mob registered",
		slog.String("mob_id", mm.id.String()),
		slog.String("mob_name", mm.name),
		slog.String("descriptor", string(mm.desc.kind)),
	)
	return nil
}

func (h *header) Mobs(ctx context.Context) ([]MobInfo, error) {
	if err := h.check(); err != nil {
		return nil, err
	}

	rows, err := h.f.store.Mobs(ctx)
	if err != nil {
		return nil, err
	}
	essences, err := h.f.store.Essences(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MobInfo, 0, len(rows))
	for i := range rows {
		info, err := mobInfo(&rows[i], essences)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func (h *header) LookupMob(ctx context.Context, id MobID) (*MobInfo, error) {
	if err := h.check(); err != nil {
		return nil, err
	}

	row, err := h.f.store.Mob(ctx, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMobNotFound, id)
		}
		return nil, err
	}
	essences, err := h.f.store.Essences(ctx)
	if err != nil {
		return nil, err
	}

	info, err := mobInfo(row, essences)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func mobInfo(row *store.Mob, essences []store.Essence) (MobInfo, error) {
	id, err := ParseMobID(row.ID)
	if err != nil {
		return MobInfo{}, err
	}

	info := MobInfo{ID: id, Name: row.Name, Created: row.CreatedAt}
	for _, c := range row.Comments {
		info.Comments = append(info.Comments, Comment{Name: c.Name, Value: c.Value})
	}
	for _, d := range row.Descriptors {
		di := DescriptorInfo{
			Kind:          DescriptorKind(d.Kind),
			SampleRate:    d.SampleRate,
			Channels:      d.Channels,
			BitsPerSample: d.BitsPerSample,
			Length:        d.Length,
			Summary:       d.Summary,
		}
		for _, l := range d.Locators {
			di.Locators = append(di.Locators, l.URL)
		}
		info.Descriptors = append(info.Descriptors, di)
	}
	for i := range essences {
		if essences[i].MobID == row.ID {
			info.Essences = append(info.Essences, essenceInfo(id, &essences[i]))
		}
	}
	return info, nil
}

func essenceInfo(id MobID, e *store.Essence) EssenceInfo {
	return EssenceInfo{
		Mob:           id,
		Slot:          SlotID(e.SlotID),
		Codec:         Codec(e.Codec),
		Container:     ContainerDef(e.Container),
		Compressor:    e.Compressor,
		SampleRate:    e.SampleRate,
		Channels:      e.Channels,
		BitsPerSample: e.BitsPerSample,
		Frames:        e.Frames,
		Length:        e.Length,
		Segments:      e.Segments,
	}
}

type mob struct {
	handle
	f          *file
	id         MobID
	name       string
	comments   []Comment
	desc       *descriptorData
	registered bool
}

func (m *mob) Release() error { return m.release() }
func (m *mob) ID() MobID      { return m.id }
func (m *mob) Name() string   { return m.name }

func (m *mob) mutable() error {
	if err := m.check(); err != nil {
		return err
	}
	if m.registered {
		return fmt.Errorf("%w: %s", ErrMobRegistered, m.id)
	}
	return m.f.checkMutable()
}

func (m *mob) SetName(name string) error {
	if err := m.mutable(); err != nil {
		return err
	}
	m.name = name
	return nil
}

func (m *mob) AppendComment(name, value string) error {
	if err := m.mutable(); err != nil {
		return err
	}
	m.comments = append(m.comments, Comment{Name: name, Value: value})
	return nil
}

func (m *mob) AppendEssenceDescriptor(desc EssenceDescriptor) error {
	if err := m.mutable(); err != nil {
		return err
	}
	v, ok := desc.(*descriptorView)
	if !ok || v.d.f != m.f {
		return ErrForeignObject
	}
	if err := v.check(); err != nil {
		return err
	}
	if m.desc != nil {
		return fmt.Errorf("%w: %s", ErrDescriptorAttached, m.id)
	}
	if v.d.owner != nil {
		return fmt.Errorf("%w: descriptor belongs to mob %s", ErrDescriptorAttached, v.d.owner.id)
	}

	m.desc = v.d
	v.d.owner = m
	return nil
}

func (m *mob) record() *store.Mob {
	rec := &store.Mob{ID: m.id.String(), Name: m.name, Kind: "source"}
	for i, c := range m.comments {
		rec.Comments = append(rec.Comments, store.Comment{Position: i, Name: c.Name, Value: c.Value})
	}

	d := m.desc
	desc := store.Descriptor{
		Kind:          string(d.kind),
		SampleRate:    d.sampleRate,
		Channels:      d.channels,
		BitsPerSample: d.bitsPerSample,
		Length:        d.length,
		Summary:       d.summary,
	}
	for i, url := range d.locators {
		desc.Locators = append(desc.Locators, store.Locator{Position: i, URL: url})
	}
	rec.Descriptors = []store.Descriptor{desc}

	return rec
}

// descriptorData is shared by a format specific descriptor and its generic
// views.
type descriptorData struct {
	f             *file
	kind          DescriptorKind
	summary       []byte
	sampleRate    int
	channels      int
	bitsPerSample int
	length        int64
	locators      []string
	owner         *mob
}

func (d *descriptorData) frozen() bool {
	return d.owner != nil && d.owner.registered
}

func (d *descriptorData) complete() error {
	switch {
	case d.sampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrIncompleteDescriptor, d.sampleRate)
	case d.channels <= 0:
		return fmt.Errorf("%w: channels %d", ErrIncompleteDescriptor, d.channels)
	case d.bitsPerSample <= 0 || d.bitsPerSample%8 != 0:
		return fmt.Errorf("%w: bits per sample %d", ErrIncompleteDescriptor, d.bitsPerSample)
	case len(d.summary) == 0:
		return fmt.Errorf("%w: empty summary", ErrIncompleteDescriptor)
	}
	return nil
}

func (d *descriptorData) frameSize() int {
	return d.bitsPerSample / 8 * d.channels
}

type pcmDescriptor struct {
	handle
	d *descriptorData
}

func (p *pcmDescriptor) Release() error       { return p.release() }
func (p *pcmDescriptor) Kind() DescriptorKind { return p.d.kind }

func (p *pcmDescriptor) set(fn func(d *descriptorData)) error {
	if err := p.check(); err != nil {
		return err
	}
	if p.d.frozen() {
		return fmt.Errorf("%w: %s", ErrMobRegistered, p.d.owner.id)
	}
	fn(p.d)
	return nil
}

func (p *pcmDescriptor) SetSummary(summary []byte) error {
	return p.set(func(d *descriptorData) { d.summary = append([]byte(nil), summary...) })
}

func (p *pcmDescriptor) SetSampleRate(rate int) error {
	return p.set(func(d *descriptorData) { d.sampleRate = rate })
}

func (p *pcmDescriptor) SetBitsPerSample(bits int) error {
	return p.set(func(d *descriptorData) { d.bitsPerSample = bits })
}

func (p *pcmDescriptor) SetChannels(channels int) error {
	return p.set(func(d *descriptorData) { d.channels = channels })
}

func (p *pcmDescriptor) SetLength(frames int64) error {
	return p.set(func(d *descriptorData) { d.length = frames })
}

func (p *pcmDescriptor) AppendLocator(url string) error {
	return p.set(func(d *descriptorData) { d.locators = append(d.locators, url) })
}

func (p *pcmDescriptor) EssenceDescriptor() (EssenceDescriptor, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	return &descriptorView{handle: newHandle(p.d.f.rt, "essence-descriptor"), d: p.d}, nil
}

type descriptorView struct {
	handle
	d *descriptorData
}

func (v *descriptorView) Release() error       { return v.release() }
func (v *descriptorView) Kind() DescriptorKind { return v.d.kind }
func (v *descriptorView) SampleRate() int      { return v.d.sampleRate }
func (v *descriptorView) Channels() int        { return v.d.channels }
func (v *descriptorView) BitsPerSample() int   { return v.d.bitsPerSample }
func (v *descriptorView) Length() int64        { return v.d.length }
