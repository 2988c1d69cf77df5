package scene

import (
	"fmt"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/material"
)

// Material names used by the house scene. Texture files are looked up by the same names.
const (
	Grass      = "grass"
	Dirt       = "dirt"
	Stone      = "stone"
	Planks     = "planks"
	DarkWood   = "dark_wood"
	Roof       = "roof"
	Glass      = "glass"
	Water      = "water"
	Torch      = "torch"
	TreeLeaves = "tree_leaves"
	Sun        = "sun"
)

// HouseConfig tunes the house scene
type HouseConfig struct {
	LightIntensity float64 // Torch and sun block light strength
	WaterHeight    float64 // Water surface above the ground plane
}

// DefaultHouseConfig returns the standard house settings
func DefaultHouseConfig() HouseConfig {
	return HouseConfig{
		LightIntensity: DefaultLightIntensity,
		WaterHeight:    0.05,
	}
}

// registerHouseTextures installs procedural textures for every textured material.
// Image files loaded later under the same names replace them.
func registerHouseTextures(store *material.TextureStore) map[string]material.TextureHandle {
	return map[string]material.TextureHandle{
		Grass:      store.Register(Grass, material.NewNoiseTexture(16, 0.12, 1)),
		Dirt:       store.Register(Dirt, material.NewNoiseTexture(16, 0.18, 2)),
		Stone:      store.Register(Stone, material.NewNoiseTexture(16, 0.1, 3)),
		Planks:     store.Register(Planks, material.NewPlankTexture(16, 4, 4)),
		Roof:       store.Register(Roof, material.NewCheckerboardTexture(16, 16, 4, core.NewVec3(1, 1, 1), core.NewVec3(0.85, 0.85, 0.85))),
		Glass:      store.Register(Glass, material.NewNoiseTexture(8, 0.03, 5)),
		Water:      store.Register(Water, material.NewRippleTexture(16)),
		TreeLeaves: store.Register(TreeLeaves, material.NewNoiseTexture(16, 0.25, 6)),
	}
}

// NewHouseMaterials creates the material table for the house scene
func NewHouseMaterials(store *material.TextureStore) *material.Table {
	tex := registerHouseTextures(store)
	table := material.NewTable()

	table.MustAdd(material.NewMaterial(Grass, core.NewVec3(0.45, 0.72, 0.35),
		material.WithTexture(tex[Grass]), material.WithUVScale(0.5), material.WithSpecular(0.03)))
	table.MustAdd(material.NewMaterial(Dirt, core.NewVec3(0.55, 0.44, 0.36),
		material.WithTexture(tex[Dirt]), material.WithSpecular(0.02)))
	table.MustAdd(material.NewMaterial(Stone, core.NewVec3(0.72, 0.72, 0.74),
		material.WithTexture(tex[Stone]), material.WithSpecular(0.06)))
	table.MustAdd(material.NewMaterial(Planks, core.NewVec3(0.85, 0.70, 0.52),
		material.WithTexture(tex[Planks]), material.WithSpecular(0.05)))
	table.MustAdd(material.NewMaterial(DarkWood, core.NewVec3(0.35, 0.25, 0.18),
		material.WithTexture(tex[Planks]), material.WithSpecular(0.04)))
	table.MustAdd(material.NewMaterial(Roof, core.NewVec3(0.80, 0.38, 0.32),
		material.WithTexture(tex[Roof]), material.WithSpecular(0.04)))
	table.MustAdd(material.NewMaterial(Glass, core.NewVec3(0.80, 0.88, 0.95),
		material.WithTexture(tex[Glass]), material.WithSpecular(0.6), material.WithShininess(96),
		material.WithReflection(0.25)))
	table.MustAdd(material.NewMaterial(Water, core.NewVec3(0.25, 0.45, 0.95),
		material.WithTexture(tex[Water]), material.WithUVScale(0.75), material.Animated(),
		material.WithSpecular(0.12), material.WithShininess(64), material.WithReflection(0.35)))
	table.MustAdd(material.NewMaterial(Torch, core.NewVec3(1.00, 0.85, 0.45),
		material.WithEmissive(core.NewVec3(1.0, 0.65, 0.3))))
	table.MustAdd(material.NewMaterial(TreeLeaves, core.NewVec3(0.38, 0.62, 0.30),
		material.WithTexture(tex[TreeLeaves]), material.WithSpecular(0.02)))
	table.MustAdd(material.NewMaterial(Sun, core.NewVec3(1.0, 0.95, 0.85),
		material.WithEmissive(core.NewVec3(1.0, 0.9, 0.5))))

	return table
}

// NewHouse builds the timelapse scene: a plank house with a stepped roof on a stone
// floor, glass windows, wall torches, a lamp post, a tree, a water puddle and a sun
// block floating above, all on a bounded grass ground plane at y=0.
func NewHouse(store *material.TextureStore, cfg HouseConfig) (*Scene, error) {
	table := NewHouseMaterials(store)
	s := New(table, WithLightIntensity(cfg.LightIntensity))

	id := func(name string) material.ID {
		m, ok := table.Lookup(name)
		if !ok {
			panic(fmt.Sprintf("house material %q missing", name))
		}
		return m
	}

	b := &houseBuilder{scene: s}

	// Floor and garden
	b.fill(C(3, 0, 3), C(12, 0, 12), id(Stone))
	b.fill(C(0, 0, 5), C(1, 0, 10), id(Dirt))

	// Walls, leaving the door and window openings empty
	for y := 1; y <= 4; y++ {
		for x := 3; x <= 12; x++ {
			for z := 3; z <= 12; z++ {
				if x != 3 && x != 12 && z != 3 && z != 12 {
					continue
				}
				c := C(x, y, z)
				switch {
				case isDoor(c):
					continue
				case isWindow(c):
					b.add(c, id(Glass))
				case y == 3:
					b.add(c, id(DarkWood))
				default:
					b.add(c, id(Planks))
				}
			}
		}
	}

	// Stepped roof
	for step := 0; step < 5; step++ {
		lo, hi := 2+step, 13-step
		b.fill(C(lo, 5+step, lo), C(hi, 5+step, hi), id(Roof))
	}

	// Wall torches either side of the door and a lamp post
	b.add(C(5, 3, 13), id(Torch))
	b.add(C(10, 3, 13), id(Torch))
	b.fill(C(14, 0, 14), C(14, 1, 14), id(DarkWood))
	b.add(C(14, 2, 14), id(Torch))

	// Tree
	b.fill(C(17, 0, 8), C(17, 4, 8), id(DarkWood))
	b.fill(C(16, 5, 7), C(18, 6, 9), id(TreeLeaves))
	for _, c := range []Coord{C(17, 7, 8), C(16, 7, 8), C(18, 7, 8), C(17, 7, 7), C(17, 7, 9), C(17, 8, 8)} {
		b.add(c, id(TreeLeaves))
	}

	// Sun block
	b.fill(C(30, 25, 5), C(31, 26, 6), id(Sun))

	if b.err != nil {
		return nil, b.err
	}

	if err := s.SetGround(NewBoundedPlane(0, -6, -6, 22, 22, id(Grass))); err != nil {
		return nil, err
	}
	if err := s.SetWater(NewBoundedPlane(cfg.WaterHeight, 1, 14, 4.5, 17, id(Water))); err != nil {
		return nil, err
	}

	if err := s.Build(); err != nil {
		return nil, err
	}
	return s, nil
}

func isDoor(c Coord) bool {
	return c.Z == 12 && (c.X == 7 || c.X == 8) && c.Y <= 2
}

func isWindow(c Coord) bool {
	switch {
	case c.Z == 3:
		return c.X >= 6 && c.X <= 9 && c.Y == 2
	case c.Z == 12:
		return (c.X == 5 || c.X == 10) && c.Y == 2
	default:
		return (c.Z == 7 || c.Z == 8) && c.Y == 2
	}
}

// houseBuilder keeps the first placement error so the layout reads as plain data
type houseBuilder struct {
	scene *Scene
	err   error
}

func (b *houseBuilder) add(c Coord, mat material.ID) {
	if b.err == nil {
		b.err = b.scene.AddVoxel(c, mat, true)
	}
}

func (b *houseBuilder) fill(from, to Coord, mat material.ID) {
	if b.err == nil {
		b.err = b.scene.Fill(from, to, mat)
	}
}
