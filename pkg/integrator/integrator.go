package integrator

import (
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/material"
	"github.com/df07/voxel-timelapse/pkg/scene"
)

// Scene is the read-only geometry an integrator shades against. *scene.Scene
// implements it.
type Scene interface {
	Intersect(ray core.Ray) (scene.Hit, bool)
	Occluded(ray core.Ray, maxDist float64) bool
	Lights() []scene.Light
	Materials() *material.Table
}

// TextureSampler resolves texture handles. material.TextureSet implements it
// without locking.
type TextureSampler interface {
	Sample(h material.TextureHandle, uv core.Vec2) core.Vec3
}

// Integrator computes the color seen along a ray with depth reflection bounces left
type Integrator interface {
	RayColor(ray core.Ray, depth int) core.Vec3
}
