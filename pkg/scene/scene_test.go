package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/material"
)

type testMaterials struct {
	table *material.Table
	stone material.ID
	grass material.ID
	water material.ID
	torch material.ID
}

func newTestMaterials() testMaterials {
	table := material.NewTable()
	return testMaterials{
		table: table,
		stone: table.MustAdd(material.NewMaterial("stone", core.NewVec3(0.7, 0.7, 0.7))),
		grass: table.MustAdd(material.NewMaterial("grass", core.NewVec3(0.4, 0.7, 0.3))),
		water: table.MustAdd(material.NewMaterial("water", core.NewVec3(0.2, 0.4, 0.9), material.WithReflection(0.35))),
		torch: table.MustAdd(material.NewMaterial("torch", core.NewVec3(1, 0.8, 0.4), material.WithEmissive(core.NewVec3(1, 0.6, 0.3)))),
	}
}

func ray(ox, oy, oz, dx, dy, dz float64) core.Ray {
	return core.MustRay(core.NewVec3(ox, oy, oz), core.NewVec3(dx, dy, dz))
}

func TestScene_AddVoxelErrors(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)

	require.NoError(t, s.AddVoxel(C(0, 0, 0), m.stone, true))
	assert.ErrorIs(t, s.AddVoxel(C(0, 0, 0), m.grass, true), ErrDuplicateVoxel)
	assert.ErrorIs(t, s.AddVoxel(C(1, 0, 0), material.ID(200), true), ErrUnknownMaterial)
	assert.ErrorIs(t, s.SetGround(NewPlane(0, material.ID(99))), ErrUnknownMaterial)

	require.NoError(t, s.Build())
	assert.True(t, s.Frozen())
	assert.ErrorIs(t, s.AddVoxel(C(5, 5, 5), m.stone, true), ErrSceneFrozen)
	assert.ErrorIs(t, s.SetWater(nil), ErrSceneFrozen)
	assert.ErrorIs(t, s.Build(), ErrSceneFrozen)
	assert.Equal(t, 1, s.VoxelCount())
}

func TestScene_IntersectFaces(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	require.NoError(t, s.AddVoxel(C(0, 0, 0), m.stone, true))
	require.NoError(t, s.Build())

	tests := []struct {
		name       string
		ray        core.Ray
		wantT      float64
		wantNormal core.Vec3
		wantUV     core.Vec2
	}{
		{"top", ray(0.5, 5, 0.25, 0, -1, 0), 4, core.NewVec3(0, 1, 0), core.NewVec2(0.5, 0.25)},
		{"bottom", ray(0.5, -3, 0.5, 0, 1, 0), 3, core.NewVec3(0, -1, 0), core.NewVec2(0.5, 0.5)},
		{"left", ray(-2, 0.75, 0.25, 1, 0, 0), 2, core.NewVec3(-1, 0, 0), core.NewVec2(0.25, 0.75)},
		{"right", ray(3, 0.5, 0.5, -1, 0, 0), 2, core.NewVec3(1, 0, 0), core.NewVec2(0.5, 0.5)},
		{"front", ray(0.25, 0.75, 4, 0, 0, -1), 3, core.NewVec3(0, 0, 1), core.NewVec2(0.25, 0.75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := s.Intersect(tt.ray)
			require.True(t, ok)
			assert.Equal(t, KindVoxel, hit.Kind)
			assert.Equal(t, m.stone, hit.Material)
			assert.InDelta(t, tt.wantT, hit.T, 1e-9)
			assert.Equal(t, tt.wantNormal, hit.Normal)
			assert.InDelta(t, tt.wantUV.X, hit.UV.X, 1e-9)
			assert.InDelta(t, tt.wantUV.Y, hit.UV.Y, 1e-9)
		})
	}
}

func TestScene_AxisParallelRaysNeverNaN(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	require.NoError(t, s.Fill(C(0, 0, 0), C(3, 0, 3), m.stone))
	require.NoError(t, s.Build())

	// Grazing along the top face plane and skimming outside the slab
	for _, r := range []core.Ray{
		ray(-1, 1, 0.5, 1, 0, 0),
		ray(-1, 2, 0.5, 1, 0, 0),
		ray(0.5, 0.5, -10, 0, 0, 1),
		ray(10, 10, 10, 0, 1, 0),
	} {
		hit, ok := s.Intersect(r)
		if ok {
			assert.False(t, math.IsNaN(hit.T))
			assert.True(t, hit.Point.IsFinite())
		}
	}

	hit, ok := s.Intersect(ray(0.5, 0.5, -10, 0, 0, 1))
	require.True(t, ok)
	assert.InDelta(t, 10.0, hit.T, 1e-9)
}

func TestScene_MissReturnsFalse(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	require.NoError(t, s.AddVoxel(C(0, 0, 0), m.stone, true))
	require.NoError(t, s.Build())

	_, ok := s.Intersect(ray(0.5, 5, 0.5, 0, 1, 0))
	assert.False(t, ok)
}

func TestScene_NonSolidVoxelsAreInvisible(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	require.NoError(t, s.AddVoxel(C(0, 0, 0), m.stone, false))
	require.NoError(t, s.Build())

	_, ok := s.Intersect(ray(0.5, 5, 0.5, 0, -1, 0))
	assert.False(t, ok)
	v, ok := s.Voxel(C(0, 0, 0))
	assert.True(t, ok)
	assert.False(t, v.Solid)
}

func TestScene_NearestOfManyVoxels(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	// Enough voxels to force interior BVH nodes
	for x := 0; x < 40; x += 2 {
		require.NoError(t, s.AddVoxel(C(x, 0, 0), m.stone, true))
	}
	require.NoError(t, s.Build())

	hit, ok := s.Intersect(ray(100, 0.5, 0.5, -1, 0, 0))
	require.True(t, ok)
	assert.InDelta(t, 61.0, hit.T, 1e-9) // Enters the voxel at x=38 through x=39
	assert.Equal(t, core.NewVec3(1, 0, 0), hit.Normal)

	stats := s.Stats()
	assert.Equal(t, 20, stats.Solid)
	assert.Greater(t, stats.BVHNodes, 1)
}

func TestScene_EqualDistanceVoxelsResolveToLowerIndex(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	// Insertion order is reversed on purpose; Build sorts by coordinate
	require.NoError(t, s.AddVoxel(C(1, 0, 0), m.grass, true))
	require.NoError(t, s.AddVoxel(C(0, 0, 0), m.stone, true))
	require.NoError(t, s.Build())

	// Slanted onto the shared top edge at x=1: both cubes are entered at t=4
	hit, ok := s.Intersect(ray(0, 5, 0.5, 0.25, -1, 0))
	require.True(t, ok)
	assert.Equal(t, 4.0, hit.T)
	assert.Equal(t, 0, hit.Voxel)
	assert.Equal(t, m.stone, hit.Material)
	assert.Equal(t, core.NewVec3(0, 1, 0), hit.Normal)
}

func TestScene_SkimmingRayBelongsToUpperCell(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	require.NoError(t, s.AddVoxel(C(0, 0, 0), m.stone, true))
	require.NoError(t, s.Build())

	// Along the top face plane of the cube: outside [0, 1) on y
	_, ok := s.Intersect(ray(-2, 1, 0.5, 1, 0, 0))
	assert.False(t, ok)

	// Along the bottom face plane: inside
	hit, ok := s.Intersect(ray(-2, 0, 0.5, 1, 0, 0))
	require.True(t, ok)
	assert.InDelta(t, 2.0, hit.T, 1e-12)
	assert.Equal(t, C(0, 0, 0), hit.Cell)
}

func TestScene_TiePrecedence(t *testing.T) {
	m := newTestMaterials()

	t.Run("voxel beats water and ground at equal distance", func(t *testing.T) {
		s := New(m.table)
		require.NoError(t, s.AddVoxel(C(0, -1, 0), m.stone, true))
		require.NoError(t, s.SetWater(NewPlane(0, m.water)))
		require.NoError(t, s.SetGround(NewPlane(0, m.grass)))
		require.NoError(t, s.Build())

		hit, ok := s.Intersect(ray(0.5, 3, 0.5, 0, -1, 0))
		require.True(t, ok)
		assert.Equal(t, KindVoxel, hit.Kind)
	})

	t.Run("water beats ground at equal distance", func(t *testing.T) {
		s := New(m.table)
		require.NoError(t, s.SetGround(NewPlane(0, m.grass)))
		require.NoError(t, s.SetWater(NewPlane(0, m.water)))
		require.NoError(t, s.Build())

		hit, ok := s.Intersect(ray(0.5, 3, 0.5, 0, -1, 0))
		require.True(t, ok)
		assert.Equal(t, KindWater, hit.Kind)
		assert.Equal(t, -1, hit.Voxel)
		assert.Equal(t, core.NewVec2(0.5, 0.5), hit.UV)
	})

	t.Run("strictly closer ground wins", func(t *testing.T) {
		s := New(m.table)
		require.NoError(t, s.SetWater(NewPlane(0, m.water)))
		require.NoError(t, s.SetGround(NewPlane(0.5, m.grass)))
		require.NoError(t, s.Build())

		hit, ok := s.Intersect(ray(0.5, 3, 0.5, 0, -1, 0))
		require.True(t, ok)
		assert.Equal(t, KindGround, hit.Kind)
		assert.InDelta(t, 2.5, hit.T, 1e-12)
	})
}

func TestPlane_Hit(t *testing.T) {
	p := NewBoundedPlane(0, 1, 14, 4.5, 17, 0)

	_, normal, ok := p.Hit(ray(2, 2, 15, 0, -1, 0), Epsilon, math.Inf(1))
	assert.True(t, ok)
	assert.Equal(t, core.NewVec3(0, 1, 0), normal)

	_, normal, ok = p.Hit(ray(2, -2, 15, 0, 1, 0), Epsilon, math.Inf(1))
	assert.True(t, ok)
	assert.Equal(t, core.NewVec3(0, -1, 0), normal)

	_, _, ok = p.Hit(ray(8, 2, 15, 0, -1, 0), Epsilon, math.Inf(1))
	assert.False(t, ok, "outside rectangle")

	_, _, ok = p.Hit(ray(2, 2, 15, 1, 0, 0), Epsilon, math.Inf(1))
	assert.False(t, ok, "parallel ray")

	_, _, ok = p.Hit(ray(2, 2, 15, 0, -1, 0), Epsilon, 1)
	assert.False(t, ok, "beyond tMax")
}

func TestScene_OccludedIgnoresEmitters(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	require.NoError(t, s.AddVoxel(C(0, 0, 0), m.stone, true))
	require.NoError(t, s.AddVoxel(C(0, 3, 0), m.torch, true))
	require.NoError(t, s.Build())

	lights := s.Lights()
	require.Len(t, lights, 1)
	assert.Equal(t, core.NewVec3(0.5, 3.5, 0.5), lights[0].Position)
	assert.Equal(t, DefaultLightIntensity, lights[0].Intensity)

	// From the stone's top face to the torch center: the torch cube itself must not block
	origin := core.NewVec3(0.5, 1+Epsilon*10, 0.5)
	toLight := lights[0].Position.Subtract(origin)
	assert.False(t, s.Occluded(core.MustRay(origin, toLight), toLight.Length()))

	// Through the stone from below
	below := core.NewVec3(0.5, -2, 0.5)
	up := lights[0].Position.Subtract(below)
	assert.True(t, s.Occluded(core.MustRay(below, up), up.Length()))

	// Occluder beyond maxDist does not count
	assert.False(t, s.Occluded(ray(0.5, -2, 0.5, 0, 1, 0), 1.5))
}

func TestScene_OccludedByGround(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	require.NoError(t, s.SetGround(NewPlane(0, m.grass)))
	require.NoError(t, s.Build())

	assert.True(t, s.Occluded(ray(0, 1, 0, 0, -1, 0), math.Inf(1)))
	assert.False(t, s.Occluded(ray(0, 1, 0, 0, 1, 0), math.Inf(1)))
}

func TestScene_Bounds(t *testing.T) {
	m := newTestMaterials()
	s := New(m.table)
	require.NoError(t, s.AddVoxel(C(0, 0, 0), m.stone, true))
	require.NoError(t, s.AddVoxel(C(4, 2, -1), m.stone, true))
	require.NoError(t, s.SetGround(NewPlane(0, m.grass)))
	require.NoError(t, s.Build())

	b := s.Bounds()
	assert.Equal(t, core.NewVec3(0, 0, -1), b.Min)
	assert.Equal(t, core.NewVec3(5, 3, 1), b.Max)
}

func TestNewHouse(t *testing.T) {
	store := material.NewTextureStore(nil)
	s, err := NewHouse(store, DefaultHouseConfig())
	require.NoError(t, err)
	assert.True(t, s.Frozen())

	// Three torches and an eight-cube sun block
	assert.Len(t, s.Lights(), 11)

	_, ok := s.Voxel(C(7, 1, 12))
	assert.False(t, ok, "door opening")

	v, ok := s.Voxel(C(6, 2, 3))
	require.True(t, ok)
	glass, _ := s.Materials().Lookup(Glass)
	assert.Equal(t, glass, v.Material)

	// Looking down at the puddle from above
	hit, ok := s.Intersect(ray(2, 10, 15, 0, -1, 0))
	require.True(t, ok)
	assert.Equal(t, KindWater, hit.Kind)

	// Looking down onto the roof peak
	hit, ok = s.Intersect(ray(7.5, 30, 7.5, 0, -1, 0))
	require.True(t, ok)
	roof, _ := s.Materials().Lookup(Roof)
	assert.Equal(t, roof, hit.Material)
	assert.InDelta(t, 20.0, hit.T, 1e-9)

	assert.Greater(t, store.Len(), 0)
	for _, h := range s.Materials().Textures() {
		assert.NotNil(t, store.Sampler(h))
	}
}
