package scene

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/material"
)

// Epsilon is the minimum hit distance, keeping shadow and reflection rays off their origin surface
const Epsilon = 1e-4

// parallelEpsilon is the direction magnitude below which a ray is treated as parallel to a plane
const parallelEpsilon = 1e-12

// DefaultLightIntensity is the strength of point lights derived from emitter voxels
const DefaultLightIntensity = 2.0

var (
	ErrDuplicateVoxel  = errors.New("voxel cell already occupied")
	ErrUnknownMaterial = errors.New("unknown material")
	ErrSceneFrozen     = errors.New("scene is frozen after Build")
)

// HitKind identifies which kind of surface a ray hit. Lower values win ties.
type HitKind uint8

const (
	KindVoxel HitKind = iota
	KindWater
	KindGround
)

func (k HitKind) String() string {
	switch k {
	case KindVoxel:
		return "voxel"
	case KindWater:
		return "water"
	case KindGround:
		return "ground"
	default:
		return fmt.Sprintf("HitKind(%d)", uint8(k))
	}
}

// Hit describes the nearest surface along a ray
type Hit struct {
	T        float64
	Point    core.Vec3
	Normal   core.Vec3 // Unit, facing the incoming ray
	Material material.ID
	UV       core.Vec2
	Kind     HitKind
	Voxel    int   // Index into the scene's voxels, -1 for planes
	Cell     Coord // Grid cell of the voxel hit
}

// Light is a point light derived from an emitter voxel
type Light struct {
	Position  core.Vec3
	Color     core.Vec3
	Intensity float64
	Voxel     int
}

// Option configures a Scene in New
type Option func(*Scene)

// WithLightIntensity sets the intensity of lights derived from emitter voxels
func WithLightIntensity(intensity float64) Option {
	return func(s *Scene) { s.lightIntensity = intensity }
}

// Scene owns the voxels, the ground and water planes, and the lights derived from
// emitter voxels. It is mutable until Build and read-only afterwards, so any number
// of goroutines may query a built scene.
type Scene struct {
	materials      *material.Table
	voxels         []Voxel
	cells          map[Coord]int
	ground         *Plane
	water          *Plane
	lights         []Light
	lightIntensity float64

	solid     *bvh // Every solid voxel
	occluders *bvh // Solid voxels that do not emit light
	frozen    bool
}

// New creates an empty scene whose voxels reference materials in table
func New(table *material.Table, opts ...Option) *Scene {
	s := &Scene{
		materials:      table,
		cells:          make(map[Coord]int),
		lightIntensity: DefaultLightIntensity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddVoxel places a voxel. Each cell holds at most one voxel.
func (s *Scene) AddVoxel(c Coord, mat material.ID, solid bool) error {
	if s.frozen {
		return ErrSceneFrozen
	}
	if _, ok := s.materials.Get(mat); !ok {
		return fmt.Errorf("%w: id %d at %v", ErrUnknownMaterial, mat, c)
	}
	if _, ok := s.cells[c]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateVoxel, c)
	}
	s.cells[c] = len(s.voxels)
	s.voxels = append(s.voxels, Voxel{Coord: c, Material: mat, Solid: solid})
	return nil
}

// Fill places solid voxels in every cell of the inclusive box [from, to]
func (s *Scene) Fill(from, to Coord, mat material.ID) error {
	for x := min(from.X, to.X); x <= max(from.X, to.X); x++ {
		for y := min(from.Y, to.Y); y <= max(from.Y, to.Y); y++ {
			for z := min(from.Z, to.Z); z <= max(from.Z, to.Z); z++ {
				if err := s.AddVoxel(C(x, y, z), mat, true); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// SetGround sets the ground plane
func (s *Scene) SetGround(p *Plane) error {
	return s.setPlane(&s.ground, p)
}

// SetWater sets the water plane
func (s *Scene) SetWater(p *Plane) error {
	return s.setPlane(&s.water, p)
}

func (s *Scene) setPlane(dst **Plane, p *Plane) error {
	if s.frozen {
		return ErrSceneFrozen
	}
	if p != nil {
		if _, ok := s.materials.Get(p.Material); !ok {
			return fmt.Errorf("%w: plane material %d", ErrUnknownMaterial, p.Material)
		}
	}
	*dst = p
	return nil
}

// Build sorts voxels by coordinate, derives lights from emitter voxels and builds
// the acceleration structures. The scene cannot be modified afterwards.
func (s *Scene) Build() error {
	if s.frozen {
		return ErrSceneFrozen
	}

	sort.Slice(s.voxels, func(i, j int) bool {
		return s.voxels[i].Coord.Less(s.voxels[j].Coord)
	})

	var solid, occluders []int
	s.lights = s.lights[:0]
	for i, v := range s.voxels {
		s.cells[v.Coord] = i
		if !v.Solid {
			continue
		}
		solid = append(solid, i)

		m := s.materials.At(v.Material)
		if m.IsEmissive() {
			s.lights = append(s.lights, Light{
				Position:  v.Center(),
				Color:     m.Emissive,
				Intensity: s.lightIntensity,
				Voxel:     i,
			})
			continue
		}
		occluders = append(occluders, i)
	}

	s.solid = newBVH(s.voxels, solid)
	s.occluders = newBVH(s.voxels, occluders)
	s.frozen = true
	return nil
}

// Intersect returns the nearest surface hit at t > Epsilon. Voxels are only visible
// after Build. Equal distances resolve voxel over water over ground, and among voxels
// to the lowest index.
func (s *Scene) Intersect(ray core.Ray) (Hit, bool) {
	best := Hit{T: math.Inf(1), Voxel: -1}
	found := false

	if s.solid != nil {
		if vh, ok := s.solid.closest(ray, Epsilon, math.Inf(1)); ok {
			v := s.voxels[vh.index]
			point := ray.At(vh.t)
			corner := v.Bounds().Min
			best = Hit{
				T:        vh.t,
				Point:    point,
				Normal:   faceNormal(ray.Direction, vh.axis),
				Material: v.Material,
				UV:       faceUV(point.Subtract(corner), vh.axis),
				Kind:     KindVoxel,
				Voxel:    vh.index,
				Cell:     v.Coord,
			}
			found = true
		}
	}

	// Later candidates must be strictly closer to win
	for _, candidate := range []struct {
		plane *Plane
		kind  HitKind
	}{{s.water, KindWater}, {s.ground, KindGround}} {
		if candidate.plane == nil {
			continue
		}
		t, normal, ok := candidate.plane.Hit(ray, Epsilon, best.T)
		if !ok || t >= best.T {
			continue
		}
		point := ray.At(t)
		best = Hit{
			T:        t,
			Point:    point,
			Normal:   normal,
			Material: candidate.plane.Material,
			UV:       core.NewVec2(point.X, point.Z),
			Kind:     candidate.kind,
			Voxel:    -1,
		}
		found = true
	}

	return best, found
}

// Occluded reports whether anything blocks the ray in (Epsilon, maxDist). Emitter
// voxels are transparent to shadow rays so a light never shadows itself.
func (s *Scene) Occluded(ray core.Ray, maxDist float64) bool {
	if s.occluders != nil && s.occluders.any(ray, Epsilon, maxDist) {
		return true
	}
	for _, p := range []*Plane{s.water, s.ground} {
		if p == nil {
			continue
		}
		if t, _, ok := p.Hit(ray, Epsilon, maxDist); ok && t < maxDist {
			return true
		}
	}
	return false
}

// Lights returns the point lights derived at Build
func (s *Scene) Lights() []Light {
	return s.lights
}

// Materials returns the scene's material table
func (s *Scene) Materials() *material.Table {
	return s.materials
}

// VoxelCount returns the number of stored voxels, solid or not
func (s *Scene) VoxelCount() int {
	return len(s.voxels)
}

// Voxel returns the voxel stored at c
func (s *Scene) Voxel(c Coord) (Voxel, bool) {
	i, ok := s.cells[c]
	if !ok {
		return Voxel{}, false
	}
	return s.voxels[i], true
}

// Frozen reports whether Build has run
func (s *Scene) Frozen() bool {
	return s.frozen
}

// Bounds returns the box around every voxel and bounded plane. Infinite planes are ignored.
func (s *Scene) Bounds() core.AABB {
	var bounds core.AABB
	first := true
	add := func(b core.AABB) {
		if first {
			bounds, first = b, false
			return
		}
		bounds = bounds.Union(b)
	}

	for _, v := range s.voxels {
		add(v.Bounds())
	}
	for _, p := range []*Plane{s.water, s.ground} {
		if p != nil && p.Bounded {
			add(p.Bounds())
		}
	}
	return bounds
}

// Stats summarises the scene for logging
type Stats struct {
	Voxels    int
	Solid     int
	Lights    int
	BVHNodes  int
	BVHDepth  int
	BVHLeaves int
	HasWater  bool
	HasGround bool
	Materials int
}

// Stats returns counts describing the built scene
func (s *Scene) Stats() Stats {
	st := Stats{
		Voxels:    len(s.voxels),
		Lights:    len(s.lights),
		HasWater:  s.water != nil,
		HasGround: s.ground != nil,
		Materials: s.materials.Len(),
	}
	if s.solid != nil {
		b := s.solid.stats()
		st.Solid = b.voxels
		st.BVHNodes = b.totalNodes
		st.BVHDepth = b.maxDepth
		st.BVHLeaves = b.leafNodes
	}
	return st
}
