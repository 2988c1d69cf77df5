package integrator

import (
	"math"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/daynight"
	"github.com/df07/voxel-timelapse/pkg/material"
	"github.com/df07/voxel-timelapse/pkg/scene"
)

// Config tunes the shading model
type Config struct {
	AmbientOcclusion bool    // Darken ambient light in creases
	ProceduralSky    bool    // Misses return the sky gradient with a sun disk instead of the flat sky color
	TorchRange       float64 // Point lights reach this far
	TorchGain        float64 // Scale of point light contributions
	WaterScroll      float64 // Texture U offset per second on animated materials
}

// DefaultConfig returns the standard shading settings
func DefaultConfig() Config {
	return Config{
		AmbientOcclusion: true,
		TorchRange:       10,
		TorchGain:        0.8,
		WaterScroll:      0.2,
	}
}

// Ambient occlusion probes
const (
	aoProbes   = 3
	aoStep     = 0.15
	aoReach    = 0.25
	aoStrength = 0.22
	aoFloor    = 0.5
)

// groundTint colors ambient light arriving from below
var groundTint = core.NewVec3(0.45, 0.40, 0.35)

// Frame holds the per-frame inputs of the integrator
type Frame struct {
	Env   daynight.Environment
	Clock float64 // Seconds since the start of the run, drives animated textures
}

// Whitted shades rays with direct sun and torch light behind hard shadow rays, a
// Blinn highlight, self emission and a bounded mirror reflection. It holds only
// read-only references and is safe for concurrent use.
type Whitted struct {
	scene     Scene
	materials *material.Table
	textures  TextureSampler
	frame     Frame
	config    Config
}

// NewWhitted creates an integrator for one frame. textures may be nil.
func NewWhitted(s Scene, textures TextureSampler, frame Frame, config Config) *Whitted {
	return &Whitted{
		scene:     s,
		materials: s.Materials(),
		textures:  textures,
		frame:     frame,
		config:    config,
	}
}

// RayColor returns the color seen along ray. depth is the number of reflection
// bounces still allowed; at zero the scene is intersected exactly once.
func (w *Whitted) RayColor(ray core.Ray, depth int) core.Vec3 {
	hit, ok := w.scene.Intersect(ray)
	if !ok {
		return w.background(ray)
	}

	mat := w.materials.At(hit.Material)
	color := w.shade(ray, hit, mat)

	if depth > 0 && mat.Reflection > 0 {
		mirror := core.Ray{
			Origin:    hit.Point.Add(hit.Normal.Multiply(scene.Epsilon)),
			Direction: ray.Direction.Reflect(hit.Normal).Normalize(),
		}
		reflected := w.RayColor(mirror, depth-1)
		color = color.Lerp(reflected, mat.Reflection).Clamp01()
	}

	return color
}

func (w *Whitted) background(ray core.Ray) core.Vec3 {
	if w.config.ProceduralSky {
		return w.frame.Env.Background(ray.Direction)
	}
	return w.frame.Env.SkyColor
}

// shade computes the local color at a hit without reflection
func (w *Whitted) shade(ray core.Ray, hit scene.Hit, mat *material.Material) core.Vec3 {
	env := w.frame.Env
	albedo := w.albedo(hit, mat)
	n := hit.Normal
	view := ray.Direction.Negate()
	origin := hit.Point.Add(n.Multiply(scene.Epsilon))

	// Hemispheric ambient: full sky for upward faces, tinted bounce from below
	k := math.Max(0, math.Min(1, n.Y*0.5+0.5))
	hemi := env.Ambient.MultiplyVec(groundTint.Lerp(core.NewVec3(1, 1, 1), k))
	color := albedo.MultiplyVec(hemi).Multiply(w.ambientOcclusion(hit.Point, n))

	if env.SunIntensity > 0 {
		l := env.SunDirection
		if nl := n.Dot(l); nl > 0 && !w.scene.Occluded(core.Ray{Origin: origin, Direction: l}, math.Inf(1)) {
			radiance := env.SunColor.Multiply(env.SunIntensity)
			color = color.Add(albedo.MultiplyVec(radiance).Multiply(nl))
			color = color.Add(radiance.Multiply(blinn(n, l, view, mat)))
		}
	}

	for _, light := range w.scene.Lights() {
		toLight := light.Position.Subtract(hit.Point)
		dist := toLight.Length()
		if dist < 1e-6 || dist >= w.config.TorchRange {
			continue
		}
		l := toLight.Multiply(1 / dist)
		nl := n.Dot(l)
		if nl <= 0 {
			continue
		}
		if w.scene.Occluded(core.Ray{Origin: origin, Direction: l}, dist) {
			continue
		}

		falloff := 1 - dist/w.config.TorchRange
		radiance := light.Color.Multiply(light.Intensity * falloff * falloff * w.config.TorchGain)
		color = color.Add(albedo.MultiplyVec(radiance).Multiply(nl))
		color = color.Add(radiance.Multiply(blinn(n, l, view, mat)))
	}

	return color.Add(mat.Emissive).Clamp01()
}

// blinn returns the Blinn-Phong highlight weight for light direction l
func blinn(n, l, view core.Vec3, mat *material.Material) float64 {
	if mat.Specular == 0 {
		return 0
	}
	h := l.Add(view)
	if h.LengthSquared() < 1e-24 {
		return 0
	}
	return mat.Specular * math.Pow(math.Max(0, n.Dot(h.Normalize())), mat.Shininess)
}

// albedo modulates the material color by its texture
func (w *Whitted) albedo(hit scene.Hit, mat *material.Material) core.Vec3 {
	if !mat.HasTexture() || w.textures == nil {
		return mat.Albedo
	}
	uv := core.NewVec2(hit.UV.X*mat.UVScale, hit.UV.Y*mat.UVScale)
	if mat.AnimatedUV {
		uv.X += w.frame.Clock * w.config.WaterScroll
	}
	return mat.Albedo.MultiplyVec(w.textures.Sample(mat.Texture, uv)).Clamp01()
}

// ambientOcclusion probes a short distance along the normal; nearby geometry
// darkens the ambient term down to aoFloor
func (w *Whitted) ambientOcclusion(p, n core.Vec3) float64 {
	if !w.config.AmbientOcclusion {
		return 1
	}
	occlusion := 0.0
	for k := 1; k <= aoProbes; k++ {
		probe := core.Ray{Origin: p.Add(n.Multiply(scene.Epsilon + aoStep*float64(k))), Direction: n}
		if w.scene.Occluded(probe, aoReach) {
			occlusion += 1 / float64(k)
		}
	}
	return math.Max(aoFloor, math.Min(1, 1-aoStrength*occlusion))
}
