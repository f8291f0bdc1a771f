// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/ik5/aafembed/internal/store"
)

type file struct {
	rt     *Runtime
	log    *slog.Logger
	target string
	// scratch is where a modifiable file is built until Save.
	scratch string
	access  Access
	store   *store.Store

	storeClosed bool
	saved       bool
	closed      bool
	openEssence int
}

// CreateFile creates or opens the container at path as ex and acc allow.
// Modifications go to a scratch file next to path that Save renames over
// it, so a failed run never leaves a partial file at path.
func (rt *Runtime) CreateFile(ctx context.Context, path string, ex Existence, acc Access) (File, error) {
	if err := rt.checkLoaded(); err != nil {
		return nil, err
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	exists := true
	if _, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checking %s: %w", target, err)
		}
		exists = false
	}

	switch ex {
	case ExistenceNew:
		if exists && (acc == AccessRead || !rt.opts.Overwrite) {
			return nil, fmt.Errorf("%w: %s", ErrFileExists, target)
		}
	case ExistenceExisting:
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, target)
		}
	}

	f := &file{
		rt:     rt,
		target: target,
		access: acc,
		log:    rt.log.With(slog.String("file", target)),
	}

	if acc == AccessRead {
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, target)
		}
		if f.store, err = store.Open(ctx, target, f.log); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotContainer, target, err)
		}
		rt.trackFile(1)
		f.log.Debug("container opened", slog.String("access", acc.String()))
		return f, nil
	}

	f.scratch = filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+"."+ulid.Make().String()+".partial")
	if exists && ex != ExistenceNew {
		if err := copyFile(target, f.scratch); err != nil {
			return nil, err
		}
	}
	if f.store, err = store.Open(ctx, f.scratch, f.log); err != nil {
		f.removeScratch()
		if exists && ex != ExistenceNew {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotContainer, target, err)
		}
		return nil, fmt.Errorf("creating container %s: %w", target, err)
	}

	rt.trackFile(1)
	f.log.Debug("container opened",
		slog.String("access", acc.String()),
		slog.String("existence", ex.String()),
		slog.Bool("existed", exists),
	)
	return f, nil
}

// OpenFile opens an existing container read-only.
func (rt *Runtime) OpenFile(ctx context.Context, path string) (File, error) {
	return rt.CreateFile(ctx, path, ExistenceExisting, AccessRead)
}

func (f *file) Path() string   { return f.target }
func (f *file) Access() Access { return f.access }

func (f *file) checkOpen() error {
	if f.closed {
		return ErrFileClosed
	}
	if f.saved {
		return ErrFileSaved
	}
	return nil
}

func (f *file) checkMutable() error {
	if err := f.checkOpen(); err != nil {
		return err
	}
	if f.access == AccessRead {
		return ErrReadOnly
	}
	return nil
}

func (f *file) Header() (Header, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}
	return &header{handle: newHandle(f.rt, "header"), f: f}, nil
}

func (f *file) CreateWAVEDescriptor() (PCMDescriptor, error) {
	return f.createDescriptor(KindWAVE)
}

func (f *file) CreateAIFCDescriptor() (PCMDescriptor, error) {
	return f.createDescriptor(KindAIFC)
}

func (f *file) createDescriptor(kind DescriptorKind) (PCMDescriptor, error) {
	if err := f.checkMutable(); err != nil {
		return nil, err
	}
	d := &descriptorData{f: f, kind: kind}
	return &pcmDescriptor{handle: newHandle(f.rt, "descriptor"), d: d}, nil
}

func (f *file) Identifications(ctx context.Context) ([]Identification, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := f.store.Identifications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Identification, 0, len(rows))
	for _, r := range rows {
		out = append(out, Identification{
			Generation:     r.Generation,
			CompanyName:    r.CompanyName,
			ProductName:    r.ProductName,
			ProductVersion: r.ProductVersion,
			Platform:       r.Platform,
			Date:           r.CreatedAt,
		})
	}
	return out, nil
}

func (f *file) Save(ctx context.Context) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	if f.openEssence > 0 {
		return fmt.Errorf("%w: %d sessions", ErrEssenceOpen, f.openEssence)
	}

	id := f.rt.opts.Identity
	rec := &store.Identification{
		Generation:     ulid.Make().String(),
		CompanyName:    id.CompanyName,
		ProductName:    id.ProductName,
		ProductVersion: id.ProductVersion,
		Platform:       id.Platform,
	}
	if err := f.store.AddIdentification(ctx, rec); err != nil {
		return fmt.Errorf("saving %s: %w", f.target, err)
	}

	f.storeClosed = true
	if err := f.store.Close(); err != nil {
		return fmt.Errorf("saving %s: %w", f.target, err)
	}
	if err := os.Rename(f.scratch, f.target); err != nil {
		return fmt.Errorf("saving %s: %w", f.target, err)
	}
	f.saved = true

	f.log.Info("container saved", slog.String("generation", rec.Generation))
	return nil
}

func (f *file) Close() error {
	if f.closed {
		return ErrFileClosed
	}
	f.closed = true
	f.rt.trackFile(-1)

	var errs []error
	if !f.storeClosed {
		f.storeClosed = true
		errs = append(errs, f.store.Close())
	}
	if f.access == AccessModify && !f.saved {
		f.removeScratch()
		f.log.Debug("container closed without saving, changes discarded")
	}
	return errors.Join(errs...)
}

func (f *file) removeScratch() {
	for _, p := range []string{f.scratch, f.scratch + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.log.Warn("removing scratch file", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}

// own returns the file's own implementation of a mob or an error.
func (f *file) own(m Mob) (*mob, error) {
	mm, ok := m.(*mob)
	if !ok || mm.f != f {
		return nil, ErrForeignObject
	}
	if err := mm.check(); err != nil {
		return nil, err
	}
	return mm, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dst, cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}
