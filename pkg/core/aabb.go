package core

import "math"

// parallelEpsilon is the direction magnitude below which a ray is treated as parallel to a slab
const parallelEpsilon = 1e-12

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Hit tests if a ray intersects with this AABB within [tMin, tMax]
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	_, _, _, ok := aabb.Slabs(ray, tMin, tMax)
	return ok
}

// Slabs intersects the ray with the box using the slab method and returns the entry
// distance, the exit distance and the axis whose slab produced the entry. The returned
// interval is clipped to [tMin, tMax]. An axis with a near-zero direction component
// places no constraint on t when the origin lies in the half-open slab [lo, hi) and
// rejects the ray otherwise, so no division by zero occurs and a ray skimming the
// shared plane of two stacked cubes belongs to the upper one only.
func (aabb AABB) Slabs(ray Ray, tMin, tMax float64) (tNear, tFar float64, axis int, ok bool) {
	tNear, tFar, axis = tMin, tMax, -1

	for a := 0; a < 3; a++ {
		lo := aabb.Min.Axis(a)
		hi := aabb.Max.Axis(a)
		origin := ray.Origin.Axis(a)
		direction := ray.Direction.Axis(a)

		if math.Abs(direction) < parallelEpsilon {
			if origin < lo || origin >= hi {
				return 0, 0, -1, false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (lo - origin) * invDirection
		t2 := (hi - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		if t1 > tNear {
			tNear = t1
			axis = a
		}
		tFar = math.Min(tFar, t2)

		if tNear > tFar {
			return 0, 0, -1, false
		}
	}

	return tNear, tFar, axis, true
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	min := Vec3{
		X: math.Min(aabb.Min.X, other.Min.X),
		Y: math.Min(aabb.Min.Y, other.Min.Y),
		Z: math.Min(aabb.Min.Z, other.Min.Z),
	}
	max := Vec3{
		X: math.Max(aabb.Max.X, other.Max.X),
		Y: math.Max(aabb.Max.Y, other.Max.Y),
		Z: math.Max(aabb.Max.Z, other.Max.Z),
	}
	return AABB{Min: min, Max: max}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0 // X axis
	}
	if size.Y > size.Z {
		return 1 // Y axis
	}
	return 2 // Z axis
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Contains reports whether p lies inside or on the box
func (aabb AABB) Contains(p Vec3) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}
