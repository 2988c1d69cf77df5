package material

import (
	"github.com/df07/voxel-timelapse/pkg/core"
)

// ID indexes a material in a Table
type ID uint8

// Shininess bounds for the Blinn highlight exponent
const (
	MinShininess     = 1.0
	MaxShininess     = 512.0
	DefaultShininess = 32.0
	DefaultSpecular  = 0.04
)

// Material holds every shading parameter of a surface. One flat struct serves every
// block type; the integrator never switches on material kind.
type Material struct {
	Name       string
	Albedo     core.Vec3     // Diffuse reflectance, [0,1] per channel
	Specular   float64       // Highlight strength, [0,1]
	Shininess  float64       // Blinn exponent, [MinShininess, MaxShininess]
	Emissive   core.Vec3     // Self light, [0,1] per channel
	Reflection float64       // Mirror blend weight, [0,1]
	Texture    TextureHandle // Empty when the surface is untextured
	UVScale    float64       // Texture repeats per world unit
	AnimatedUV bool          // Scroll U with time of day (water)
}

// Option configures a Material in NewMaterial
type Option func(*Material)

// NewMaterial creates a material with the given albedo. Options run before clamping,
// so every coefficient ends up in its valid range regardless of input.
func NewMaterial(name string, albedo core.Vec3, opts ...Option) Material {
	m := Material{
		Name:      name,
		Albedo:    albedo,
		Specular:  DefaultSpecular,
		Shininess: DefaultShininess,
		UVScale:   1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.clamp()
	return m
}

func (m *Material) clamp() {
	m.Albedo = m.Albedo.Clamp01()
	m.Emissive = m.Emissive.Clamp01()
	m.Specular = clampFinite(m.Specular, 0, 1, 0)
	m.Reflection = clampFinite(m.Reflection, 0, 1, 0)
	m.Shininess = clampFinite(m.Shininess, MinShininess, MaxShininess, DefaultShininess)
	if !(m.UVScale > 0) {
		m.UVScale = 1
	}
}

// clampFinite clamps v into [lo, hi]; NaN becomes fallback
func clampFinite(v, lo, hi, fallback float64) float64 {
	if v != v {
		return fallback
	}
	return max(lo, min(hi, v))
}

// IsEmissive reports whether the material emits light
func (m Material) IsEmissive() bool {
	return m.Emissive.X > 0 || m.Emissive.Y > 0 || m.Emissive.Z > 0
}

// HasTexture reports whether the albedo is modulated by a texture
func (m Material) HasTexture() bool {
	return m.Texture != ""
}

func WithSpecular(strength float64) Option {
	return func(m *Material) { m.Specular = strength }
}

func WithShininess(exponent float64) Option {
	return func(m *Material) { m.Shininess = exponent }
}

func WithEmissive(e core.Vec3) Option {
	return func(m *Material) { m.Emissive = e }
}

func WithReflection(r float64) Option {
	return func(m *Material) { m.Reflection = r }
}

func WithTexture(h TextureHandle) Option {
	return func(m *Material) { m.Texture = h }
}

func WithUVScale(s float64) Option {
	return func(m *Material) { m.UVScale = s }
}

// Animated makes the texture scroll along U as time advances
func Animated() Option {
	return func(m *Material) { m.AnimatedUV = true }
}
