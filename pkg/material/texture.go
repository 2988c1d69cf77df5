package material

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/df07/voxel-timelapse/pkg/core"
)

// TextureHandle identifies a texture registered in a TextureStore
type TextureHandle string

// Sampler returns a color for a texture coordinate. UVs outside [0,1) wrap.
type Sampler interface {
	Sample(uv core.Vec2) core.Vec3
}

// maxParallelLoads bounds concurrent texture decodes
const maxParallelLoads = 4

// TextureStore owns every texture in a scene, keyed by opaque handles
type TextureStore struct {
	mu       sync.RWMutex
	samplers map[TextureHandle]Sampler
	byName   map[string]TextureHandle
	logger   core.Logger
}

// NewTextureStore creates an empty store. A nil logger discards output.
func NewTextureStore(logger core.Logger) *TextureStore {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &TextureStore{
		samplers: make(map[TextureHandle]Sampler),
		byName:   make(map[string]TextureHandle),
		logger:   logger,
	}
}

func makeTextureHandle() TextureHandle {
	return TextureHandle(uuid.NewString())
}

// Register adds a sampler under name and returns its handle. Registering an existing
// name replaces the sampler but keeps the handle, so materials stay valid.
func (s *TextureStore) Register(name string, sampler Sampler) TextureHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.byName[name]
	if !ok {
		h = makeTextureHandle()
		s.byName[name] = h
	}
	s.samplers[h] = sampler
	return h
}

// Handle looks up the handle registered for name
func (s *TextureStore) Handle(name string) (TextureHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byName[name]
	return h, ok
}

// Sampler returns the sampler for h, or nil
func (s *TextureStore) Sampler(h TextureHandle) Sampler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samplers[h]
}

// Sample evaluates texture h at uv. Unknown handles sample as white so the
// material albedo passes through unchanged.
func (s *TextureStore) Sample(h TextureHandle, uv core.Vec2) core.Vec3 {
	sampler := s.Sampler(h)
	if sampler == nil {
		return core.NewVec3(1, 1, 1)
	}
	return sampler.Sample(uv)
}

// Snapshot copies the registered samplers into a TextureSet. Later registrations
// do not affect the copy.
func (s *TextureStore) Snapshot() TextureSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(TextureSet, len(s.samplers))
	for h, sampler := range s.samplers {
		set[h] = sampler
	}
	return set
}

// TextureSet is a read-only view of a store's textures. Renders sample it from
// every tile worker without locking.
type TextureSet map[TextureHandle]Sampler

// Sample evaluates texture h at uv. Unknown handles sample as white.
func (t TextureSet) Sample(h TextureHandle, uv core.Vec2) core.Vec3 {
	sampler := t[h]
	if sampler == nil {
		return core.NewVec3(1, 1, 1)
	}
	return sampler.Sample(uv)
}

// Len returns the number of registered textures
func (s *TextureStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samplers)
}

// LoadFiles decodes image files in parallel and registers each under its name.
// A file that fails to load keeps whatever sampler was already registered for the
// name (usually a procedural fallback) and logs a warning. Only cancellation is
// returned as an error.
func (s *TextureStore) LoadFiles(ctx context.Context, files map[string]string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)

	for name, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := LoadImageTexture(path)
			if err != nil {
				if _, ok := s.Handle(name); ok {
					s.logger.Warnf("texture %q: %v, using procedural fallback", name, err)
				} else {
					s.logger.Warnf("texture %q: %v, surface will be untextured", name, err)
				}
				return nil
			}
			s.Register(name, tex)
			s.logger.Debugf("texture %q loaded from %s (%dx%d)", name, path, tex.Width, tex.Height)
			return nil
		})
	}
	return g.Wait()
}
