package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/voxel-timelapse/pkg/core"
)

// Orbit moves a camera around a fixed target on a sphere at constant elevation
type Orbit struct {
	Target      core.Vec3
	Up          core.Vec3
	Elevation   float64 // Degrees above the target's horizontal plane
	VFov        float64 // Degrees
	AspectRatio float64

	// Animation driven by At
	BaseRadius    float64
	ZoomAmplitude float64 // Radius swings by this much, twice per turn
	MinRadius     float64
	MaxRadius     float64
	Turns         float64 // Full revolutions over the run
	StartAngle    float64 // Radians
}

// DefaultOrbit circles the house once with a gentle zoom
func DefaultOrbit(aspectRatio float64) Orbit {
	return Orbit{
		Target:        core.NewVec3(8, 3, 8),
		Up:            core.NewVec3(0, 1, 0),
		Elevation:     15.5,
		VFov:          60,
		AspectRatio:   aspectRatio,
		BaseRadius:    18,
		ZoomAmplitude: 2,
		MinRadius:     4,
		MaxRadius:     40,
		Turns:         1,
	}
}

// Position returns the eye point for angle (radians) and radius. Its distance to
// Target is exactly radius.
func (o Orbit) Position(angle, radius float64) core.Vec3 {
	e := mgl64.DegToRad(o.Elevation)
	offset := core.NewVec3(
		math.Cos(e)*math.Cos(angle),
		math.Sin(e),
		math.Cos(e)*math.Sin(angle),
	)
	return o.Target.Add(offset.Multiply(radius))
}

// Pose places the camera at angle and radius, facing Target
func (o Orbit) Pose(angle, radius float64) (*Camera, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: orbit radius %v", ErrDegenerateCamera, radius)
	}
	return New(Config{
		Center:      o.Position(angle, radius),
		LookAt:      o.Target,
		Up:          o.Up,
		VFov:        o.VFov,
		AspectRatio: o.AspectRatio,
	})
}

// AngleAt returns the orbit angle for progress in [0,1] through the run
func (o Orbit) AngleAt(progress float64) float64 {
	return o.StartAngle + 2*math.Pi*o.Turns*progress
}

// RadiusAt returns the zoomed radius for angle, clamped into [MinRadius, MaxRadius]
func (o Orbit) RadiusAt(angle float64) float64 {
	r := o.BaseRadius + o.ZoomAmplitude*math.Sin(2*angle)
	if o.MaxRadius > 0 {
		r = math.Min(r, o.MaxRadius)
	}
	return math.Max(r, o.MinRadius)
}

// At returns the camera for progress in [0,1] through the run
func (o Orbit) At(progress float64) (*Camera, error) {
	angle := o.AngleAt(progress)
	return o.Pose(angle, o.RadiusAt(angle))
}
