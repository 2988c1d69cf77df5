// Package daynight computes the lighting environment for a time of day. Evaluate is a
// pure function: the same time always yields the same environment.
package daynight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/voxel-timelapse/pkg/core"
)

// Times of day on the normalized cycle
const (
	Midnight = 0.0
	Sunrise  = 0.25
	Noon     = 0.5
	Sunset   = 0.75
)

// Config tunes the model
type Config struct {
	PeakIntensity   float64   // Sun intensity at noon
	Falloff         float64   // Exponent applied to sun elevation
	AmbientFraction float64   // Share of the sky color used as ambient light
	Axis            core.Vec3 // Horizontal axis the sun rotates about
}

// DefaultConfig returns the standard settings
func DefaultConfig() Config {
	return Config{
		PeakIntensity:   0.9,
		Falloff:         0.8,
		AmbientFraction: 0.35,
		Axis:            core.NewVec3(0, 0, 1),
	}
}

// Environment is the lighting for one frame
type Environment struct {
	Time         float64   // Normalized time in [0,1)
	SunDirection core.Vec3 // Unit vector toward the sun
	SunColor     core.Vec3
	SunIntensity float64
	SkyColor     core.Vec3 // Color of rays that escape the scene
	Ambient      core.Vec3 // SkyColor scaled by the ambient fraction
	Zenith       core.Vec3 // Sky overhead, for the procedural background
	Horizon      core.Vec3 // Sky at eye level
}

// Model evaluates environments
type Model struct {
	config Config
	axis   mgl64.Vec3
}

// New creates a model. A zero axis falls back to +Z.
func New(config Config) *Model {
	axis := config.Axis.Mgl()
	if axis.Len() < 1e-12 {
		axis = mgl64.Vec3{0, 0, 1}
	}
	return &Model{config: config, axis: axis.Normalize()}
}

// Wrap maps any time onto [0,1)
func Wrap(t float64) float64 {
	w := t - math.Floor(t)
	if w >= 1 {
		w = 0
	}
	return w
}

// SunDirection rotates the noon direction (straight up) about the model axis by
// 2π(t − 0.5). At sunrise the sun sits on the horizon, at midnight straight down.
func (m *Model) SunDirection(t float64) core.Vec3 {
	angle := 2 * math.Pi * (Wrap(t) - Noon)
	q := mgl64.QuatRotate(angle, m.axis)
	return core.FromMgl(q.Rotate(mgl64.Vec3{0, 1, 0})).Normalize()
}

// Evaluate returns the lighting environment at time of day t
func (m *Model) Evaluate(t float64) Environment {
	t = Wrap(t)
	sun := m.SunDirection(t)
	elevation := math.Max(sun.Y, 0)

	sky := samplePalette(t)
	skyColor := sky.zenith.Multiply(0.55).Add(sky.horizon.Multiply(0.45))

	return Environment{
		Time:         t,
		SunDirection: sun,
		SunColor:     warmSun.Lerp(noonSun, mgl64.Clamp(elevation, 0, 1)),
		SunIntensity: m.config.PeakIntensity * math.Pow(elevation, m.config.Falloff),
		SkyColor:     skyColor,
		Ambient:      skyColor.Multiply(m.config.AmbientFraction),
		Zenith:       sky.zenith,
		Horizon:      sky.horizon,
	}
}

var (
	warmSun = core.NewVec3(1.00, 0.72, 0.40)
	noonSun = core.NewVec3(1.00, 0.95, 0.88)
)

// Sun disk and halo sizes in radians
const (
	sunDiskRadius = 0.008
	sunDiskGain   = 80.0
	sunGlowRadius = 0.10
	sunGlowGain   = 1.5
)

// Background returns the procedural sky seen along dir: a horizon to zenith gradient
// with the sun drawn as a small bright disk inside a wide glow.
func (e Environment) Background(dir core.Vec3) core.Vec3 {
	dir = dir.Normalize()
	up := mgl64.Clamp(dir.Y, -1, 1)

	var sky core.Vec3
	if up >= 0 {
		sky = e.Horizon.Lerp(e.Zenith, math.Sqrt(up))
	} else {
		sky = e.Horizon.Lerp(groundShade.MultiplyVec(e.Horizon), math.Min(1, -up*4))
	}

	if e.SunIntensity > 0 {
		angle := math.Acos(mgl64.Clamp(dir.Dot(e.SunDirection), -1, 1))
		disk := math.Max(sunDiskRadius-angle, 0) * sunDiskGain
		glow := math.Max(sunGlowRadius-angle, 0) * sunGlowGain
		sky = sky.Add(e.SunColor.Multiply((disk + glow) * e.SunIntensity))
	}
	return sky
}

var groundShade = core.NewVec3(0.55, 0.5, 0.45)
