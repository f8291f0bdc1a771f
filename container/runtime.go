// SPDX-License-Identifier: EPL-2.0

package container

import (
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"sync"

	"github.com/ik5/aafembed/internal/compress"
)

// DefaultSegmentSize bounds the bytes stored per essence segment.
const DefaultSegmentSize = 1 << 20

// Options configure a Runtime.
type Options struct {
	// Compressor names the segment compressor used when an essence stream
	// negotiates CompressionEnable. Empty means none.
	Compressor  string
	SegmentSize int
	// Overwrite lets ExistenceNew replace an existing target on Save.
	Overwrite bool
	Identity  Identification
	Logger    *slog.Logger
}

// Runtime is the process scoped state every container operation runs
// under. It is created by Load and must be torn down with Unload.
type Runtime struct {
	opts Options
	comp compress.Compressor
	log  *slog.Logger

	mtx      sync.Mutex
	live     map[string]int
	files    int
	unloaded bool
}

// Load initializes a runtime.
func Load(opts Options) (*Runtime, error) {
	comp, err := compress.Lookup(opts.Compressor)
	if err != nil {
		return nil, fmt.Errorf("loading container runtime: %w", err)
	}
	if opts.SegmentSize <= 0 {
		opts.SegmentSize = DefaultSegmentSize
	}
	if opts.Identity.ProductName == "" {
		opts.Identity.ProductName = "aafembed"
	}
	if opts.Identity.Platform == "" {
		opts.Identity.Platform = runtime.GOOS + "/" + runtime.GOARCH
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	rt := &Runtime{
		opts: opts,
		comp: comp,
		log:  log.With(slog.String("component", "container")),
		live: make(map[string]int),
	}
	rt.log.Debug("container runtime loaded",
		slog.String("compressor", comp.Name()),
		slog.Int("segment_size", opts.SegmentSize),
	)
	return rt, nil
}

// Unload tears the runtime down. It fails with ErrHandlesOutstanding when
// files or handles are still open, but the runtime is unusable afterwards
// either way.
func (rt *Runtime) Unload() error {
	rt.mtx.Lock()
	defer rt.mtx.Unlock()

	if rt.unloaded {
		return ErrRuntimeUnloaded
	}
	rt.unloaded = true

	handles := 0
	for _, n := range rt.live {
		handles += n
	}
	if handles > 0 || rt.files > 0 {
		rt.log.Warn("container runtime unloaded with outstanding objects",
			slog.Int("files", rt.files),
			slog.Any("handles", rt.live),
		)
		return fmt.Errorf("%w: %d files, %d handles", ErrHandlesOutstanding, rt.files, handles)
	}

	rt.log.Debug("container runtime unloaded")
	return nil
}

// LiveHandles reports the outstanding handles by kind.
func (rt *Runtime) LiveHandles() map[string]int {
	rt.mtx.Lock()
	defer rt.mtx.Unlock()

	out := make(map[string]int, len(rt.live))
	maps.Copy(out, rt.live)
	return out
}

// OpenFiles reports how many files are open.
func (rt *Runtime) OpenFiles() int {
	rt.mtx.Lock()
	defer rt.mtx.Unlock()

	return rt.files
}

func (rt *Runtime) checkLoaded() error {
	rt.mtx.Lock()
	defer rt.mtx.Unlock()

	if rt.unloaded {
		return ErrRuntimeUnloaded
	}
	return nil
}

func (rt *Runtime) track(kind string, delta int) {
	rt.mtx.Lock()
	defer rt.mtx.Unlock()

	rt.live[kind] += delta
	if rt.live[kind] == 0 {
		delete(rt.live, kind)
	}
}

func (rt *Runtime) trackFile(delta int) {
	rt.mtx.Lock()
	defer rt.mtx.Unlock()

	rt.files += delta
}

// handle implements the release bookkeeping shared by every object.
type handle struct {
	rt       *Runtime
	kind     string
	released bool
}

func newHandle(rt *Runtime, kind string) handle {
	rt.track(kind, 1)
	return handle{rt: rt, kind: kind}
}

func (h *handle) check() error {
	if h.released {
		return fmt.Errorf("%s: %w", h.kind, ErrReleased)
	}
	return nil
}

func (h *handle) release() error {
	if err := h.check(); err != nil {
		return err
	}
	h.released = true
	h.rt.track(h.kind, -1)
	return nil
}
