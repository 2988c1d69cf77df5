package scene

import (
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/material"
)

// Coord is an integer grid cell
type Coord struct {
	X, Y, Z int
}

// C is shorthand for Coord{x, y, z}
func C(x, y, z int) Coord {
	return Coord{X: x, Y: y, Z: z}
}

// Less orders coords by X, then Y, then Z
func (c Coord) Less(other Coord) bool {
	if c.X != other.X {
		return c.X < other.X
	}
	if c.Y != other.Y {
		return c.Y < other.Y
	}
	return c.Z < other.Z
}

// Voxel is a unit cube occupying [c, c+1) on every axis
type Voxel struct {
	Coord    Coord
	Material material.ID
	Solid    bool
}

// Bounds returns the voxel's world-space box
func (v Voxel) Bounds() core.AABB {
	min := core.NewVec3(float64(v.Coord.X), float64(v.Coord.Y), float64(v.Coord.Z))
	return core.NewAABB(min, min.Add(core.NewVec3(1, 1, 1)))
}

// Center returns the middle of the cube
func (v Voxel) Center() core.Vec3 {
	return core.NewVec3(float64(v.Coord.X)+0.5, float64(v.Coord.Y)+0.5, float64(v.Coord.Z)+0.5)
}

// faceUV projects a point on a voxel face into the face's local [0,1]² coordinates
func faceUV(local core.Vec3, axis int) core.Vec2 {
	switch axis {
	case 0:
		return core.NewVec2(local.Z, local.Y)
	case 1:
		return core.NewVec2(local.X, local.Z)
	default:
		return core.NewVec2(local.X, local.Y)
	}
}

// faceNormal is the outward normal of the face a ray enters through along axis
func faceNormal(direction core.Vec3, axis int) core.Vec3 {
	var n core.Vec3
	sign := -1.0
	if direction.Axis(axis) < 0 {
		sign = 1.0
	}
	switch axis {
	case 0:
		n.X = sign
	case 1:
		n.Y = sign
	default:
		n.Z = sign
	}
	return n
}
