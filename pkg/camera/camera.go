package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/voxel-timelapse/pkg/core"
)

// ErrDegenerateCamera is returned when no valid view basis exists: the eye sits on
// the target, or the field of view or aspect ratio is out of range.
var ErrDegenerateCamera = errors.New("degenerate camera")

// parallelThreshold is the |cos| above which forward and up count as parallel
const parallelThreshold = 1 - 1e-9

// Secondary up vectors tried when the requested up is parallel to the view direction
var fallbackUps = []core.Vec3{
	core.NewVec3(0, 0, 1),
	core.NewVec3(1, 0, 0),
}

// Config contains camera configuration parameters
type Config struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera looks at
	Up          core.Vec3 // Up direction, usually (0,1,0)
	VFov        float64   // Vertical field of view in degrees, in (0,180)
	AspectRatio float64   // Width / height
}

// Camera generates primary rays through a pinhole
type Camera struct {
	Position    core.Vec3
	Forward     core.Vec3
	Right       core.Vec3
	Up          core.Vec3
	VFov        float64
	AspectRatio float64

	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
}

// New creates a camera with an orthonormal basis facing LookAt
func New(config Config) (*Camera, error) {
	if !(config.VFov > 0 && config.VFov < 180) {
		return nil, fmt.Errorf("%w: vertical fov %v", ErrDegenerateCamera, config.VFov)
	}
	if !(config.AspectRatio > 0) || math.IsInf(config.AspectRatio, 0) {
		return nil, fmt.Errorf("%w: aspect ratio %v", ErrDegenerateCamera, config.AspectRatio)
	}
	if !config.Center.IsFinite() || !config.LookAt.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite position", ErrDegenerateCamera)
	}

	view := config.LookAt.Subtract(config.Center)
	if view.LengthSquared() < 1e-24 {
		return nil, fmt.Errorf("%w: eye coincides with target", ErrDegenerateCamera)
	}
	forward := view.Normalize()
	up := chooseUp(forward, config.Up)

	// LookAt rows are right, up and -forward
	m := mgl64.LookAtV(config.Center.Mgl(), config.LookAt.Mgl(), up.Mgl())
	right := core.FromMgl(m.Row(0).Vec3()).Normalize()
	trueUp := core.FromMgl(m.Row(1).Vec3()).Normalize()

	viewportHeight := 2 * math.Tan(mgl64.DegToRad(config.VFov)/2)
	viewportWidth := config.AspectRatio * viewportHeight

	horizontal := right.Multiply(viewportWidth)
	vertical := trueUp.Multiply(viewportHeight)
	lowerLeftCorner := config.Center.
		Add(forward).
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5))

	return &Camera{
		Position:        config.Center,
		Forward:         forward,
		Right:           right,
		Up:              trueUp,
		VFov:            config.VFov,
		AspectRatio:     config.AspectRatio,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
	}, nil
}

// chooseUp returns up unless it is zero or parallel to forward, in which case the
// first usable fallback is substituted
func chooseUp(forward, up core.Vec3) core.Vec3 {
	candidates := append([]core.Vec3{up}, fallbackUps...)
	for _, c := range candidates {
		if c.LengthSquared() < 1e-24 || !c.IsFinite() {
			continue
		}
		if math.Abs(forward.Dot(c.Normalize())) < parallelThreshold {
			return c.Normalize()
		}
	}
	// Unreachable: forward cannot be parallel to both fallbacks
	return fallbackUps[0]
}

// GetRay generates a ray for viewport coordinates (s, t) where (0,0) is the bottom left
func (c *Camera) GetRay(s, t float64) core.Ray {
	target := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t))

	return core.Ray{Origin: c.Position, Direction: target.Subtract(c.Position).Normalize()}
}

// RayThrough builds the primary ray through pixel (x, y) of a width×height image at
// sub-pixel offset (sx, sy) in [0,1). Row 0 is the top of the image.
func (c *Camera) RayThrough(x, y, width, height int, sx, sy float64) core.Ray {
	s := (float64(x) + sx) / float64(width)
	t := 1 - (float64(y)+sy)/float64(height)
	return c.GetRay(s, t)
}
