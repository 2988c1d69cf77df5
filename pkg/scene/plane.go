package scene

import (
	"math"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/material"
)

// Plane is a horizontal surface at height Y, either infinite or limited to an XZ rectangle
type Plane struct {
	Y        float64
	Material material.ID
	Bounded  bool
	Min      core.Vec2 // XZ corner, used when Bounded
	Max      core.Vec2
}

// NewPlane creates an infinite horizontal plane
func NewPlane(y float64, mat material.ID) *Plane {
	return &Plane{Y: y, Material: mat}
}

// NewBoundedPlane creates a horizontal rectangle spanning [minX,maxX] × [minZ,maxZ]
func NewBoundedPlane(y float64, minX, minZ, maxX, maxZ float64, mat material.ID) *Plane {
	return &Plane{
		Y:        y,
		Material: mat,
		Bounded:  true,
		Min:      core.NewVec2(math.Min(minX, maxX), math.Min(minZ, maxZ)),
		Max:      core.NewVec2(math.Max(minX, maxX), math.Max(minZ, maxZ)),
	}
}

// Hit returns the ray parameter and the normal facing the ray
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (float64, core.Vec3, bool) {
	denominator := ray.Direction.Y

	// Parallel rays never cross a horizontal plane
	if math.Abs(denominator) < parallelEpsilon {
		return 0, core.Vec3{}, false
	}

	t := (p.Y - ray.Origin.Y) / denominator
	if t <= tMin || t > tMax {
		return 0, core.Vec3{}, false
	}

	if p.Bounded {
		hit := ray.At(t)
		if hit.X < p.Min.X || hit.X > p.Max.X || hit.Z < p.Min.Y || hit.Z > p.Max.Y {
			return 0, core.Vec3{}, false
		}
	}

	normal := core.NewVec3(0, 1, 0)
	if denominator > 0 {
		normal = core.NewVec3(0, -1, 0)
	}
	return t, normal, true
}

// Bounds returns a thin box around the plane. Infinite planes have infinite extent in XZ.
func (p *Plane) Bounds() core.AABB {
	const thickness = 1e-3
	if !p.Bounded {
		inf := math.Inf(1)
		return core.NewAABB(core.NewVec3(-inf, p.Y-thickness, -inf), core.NewVec3(inf, p.Y+thickness, inf))
	}
	return core.NewAABB(
		core.NewVec3(p.Min.X, p.Y-thickness, p.Min.Y),
		core.NewVec3(p.Max.X, p.Y+thickness, p.Max.Y),
	)
}
