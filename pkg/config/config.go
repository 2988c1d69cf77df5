package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/df07/voxel-timelapse/pkg/camera"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/daynight"
	"github.com/df07/voxel-timelapse/pkg/integrator"
	"github.com/df07/voxel-timelapse/pkg/output"
	"github.com/df07/voxel-timelapse/pkg/renderer"
	"github.com/df07/voxel-timelapse/pkg/scene"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Output formats
const (
	FormatBMP = "bmp"
	FormatPNG = "png"
	FormatGIF = "gif"
)

// Config holds every run parameter of a timelapse
type Config struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FPS      float64 `yaml:"fps"`
	Duration float64 `yaml:"duration"` // Seconds of footage
	Frames   int     `yaml:"frames"`   // Overrides FPS × Duration when positive
	Debug    bool    `yaml:"debug"`

	Render   RenderConfig      `yaml:"render"`
	Orbit    OrbitConfig       `yaml:"orbit"`
	Day      DayConfig         `yaml:"day"`
	Shading  ShadingConfig     `yaml:"shading"`
	Scene    SceneConfig       `yaml:"scene"`
	Textures map[string]string `yaml:"textures"` // Material name to image file
	Output   OutputConfig      `yaml:"output"`
}

// RenderConfig controls the tile renderer
type RenderConfig struct {
	TileWidth      int `yaml:"tile_width"`
	TileHeight     int `yaml:"tile_height"`
	Workers        int `yaml:"workers"` // 0 uses every CPU
	MaxDepth       int `yaml:"max_depth"`
	SamplesPerAxis int `yaml:"samples_per_axis"`
}

// OrbitConfig controls the camera path
type OrbitConfig struct {
	Target        [3]float64 `yaml:"target"`
	Elevation     float64    `yaml:"elevation"`
	VFov          float64    `yaml:"vfov"`
	Radius        float64    `yaml:"radius"`
	ZoomAmplitude float64    `yaml:"zoom_amplitude"`
	MinRadius     float64    `yaml:"min_radius"`
	MaxRadius     float64    `yaml:"max_radius"`
	Turns         float64    `yaml:"turns"`
	StartAngle    float64    `yaml:"start_angle"` // Degrees
}

// DayConfig maps run progress onto the day/night cycle
type DayConfig struct {
	Start           float64 `yaml:"start"`  // Normalized time of day of the first frame
	Cycles          float64 `yaml:"cycles"` // Days elapsed over the whole run
	PeakIntensity   float64 `yaml:"peak_intensity"`
	AmbientFraction float64 `yaml:"ambient_fraction"`
}

// ShadingConfig controls the integrator
type ShadingConfig struct {
	AmbientOcclusion bool    `yaml:"ambient_occlusion"`
	ProceduralSky    bool    `yaml:"procedural_sky"`
	TorchRange       float64 `yaml:"torch_range"`
	TorchGain        float64 `yaml:"torch_gain"`
	WaterScroll      float64 `yaml:"water_scroll"`
}

// SceneConfig controls the house scene
type SceneConfig struct {
	LightIntensity float64 `yaml:"light_intensity"`
	WaterHeight    float64 `yaml:"water_height"`
}

// OutputConfig controls frame encoding
type OutputConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`  // GIF holds every frame in memory, about width×height bytes each
	GIFPath string   `yaml:"gif_path"` // Defaults to Dir/timelapse.gif
	Clock   bool     `yaml:"clock"`    // Draw the time of day on every frame
	Gamma   float64  `yaml:"gamma"`
	ToneMap bool     `yaml:"tone_map"`
}

// Default returns a 10 second 960×540 timelapse at 30 fps
func Default() Config {
	orbit := camera.DefaultOrbit(16.0 / 9.0)
	day := daynight.DefaultConfig()
	shading := integrator.DefaultConfig()
	house := scene.DefaultHouseConfig()
	rend := renderer.DefaultConfig()

	return Config{
		Width:    960,
		Height:   540,
		FPS:      30,
		Duration: 10,
		Render: RenderConfig{
			TileWidth:      rend.TileWidth,
			TileHeight:     rend.TileHeight,
			Workers:        rend.NumWorkers,
			MaxDepth:       rend.MaxDepth,
			SamplesPerAxis: 4,
		},
		Orbit: OrbitConfig{
			Target:        [3]float64{orbit.Target.X, orbit.Target.Y, orbit.Target.Z},
			Elevation:     orbit.Elevation,
			VFov:          orbit.VFov,
			Radius:        orbit.BaseRadius,
			ZoomAmplitude: orbit.ZoomAmplitude,
			MinRadius:     orbit.MinRadius,
			MaxRadius:     orbit.MaxRadius,
			Turns:         orbit.Turns,
		},
		Day: DayConfig{
			Start:           daynight.Sunrise,
			Cycles:          6.0 / 7.0,
			PeakIntensity:   day.PeakIntensity,
			AmbientFraction: day.AmbientFraction,
		},
		Shading: ShadingConfig{
			AmbientOcclusion: shading.AmbientOcclusion,
			ProceduralSky:    true,
			TorchRange:       shading.TorchRange,
			TorchGain:        shading.TorchGain,
			WaterScroll:      shading.WaterScroll,
		},
		Scene: SceneConfig{
			LightIntensity: house.LightIntensity,
			WaterHeight:    house.WaterHeight,
		},
		Output: OutputConfig{
			Dir:     "output",
			Formats: []string{FormatBMP},
			Gamma:   output.DefaultGamma,
			ToneMap: true,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// FrameCount returns the number of frames in the run
func (c Config) FrameCount() int {
	if c.Frames > 0 {
		return c.Frames
	}
	return int(c.FPS * c.Duration)
}

// Validate reports every invalid field at once
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	check(c.Width > 0 && c.Height > 0, "image size %dx%d must be positive", c.Width, c.Height)
	check(c.FPS > 0 && finite(c.FPS), "fps %v must be positive", c.FPS)
	check(c.FrameCount() > 0, "run has no frames (fps %v, duration %v, frames %d)", c.FPS, c.Duration, c.Frames)

	check(c.Render.TileWidth > 0 && c.Render.TileHeight > 0, "tile size %dx%d must be positive", c.Render.TileWidth, c.Render.TileHeight)
	check(c.Render.Workers >= 0, "workers %d must not be negative", c.Render.Workers)
	check(c.Render.MaxDepth >= 0, "max depth %d must not be negative", c.Render.MaxDepth)
	check(c.Render.SamplesPerAxis >= 1, "samples per axis %d must be at least 1", c.Render.SamplesPerAxis)

	check(c.Orbit.VFov > 0 && c.Orbit.VFov < 180, "vfov %v must be in (0, 180)", c.Orbit.VFov)
	check(c.Orbit.Elevation > -90 && c.Orbit.Elevation <= 90, "elevation %v must be in (-90, 90]", c.Orbit.Elevation)
	check(c.Orbit.MinRadius > 0, "min radius %v must be positive", c.Orbit.MinRadius)
	check(c.Orbit.MaxRadius <= 0 || c.Orbit.MaxRadius >= c.Orbit.MinRadius,
		"max radius %v is below min radius %v", c.Orbit.MaxRadius, c.Orbit.MinRadius)
	check(finite(c.Orbit.Radius) && finite(c.Orbit.Turns) && finite(c.Orbit.StartAngle), "orbit parameters must be finite")

	check(finite(c.Day.Start) && finite(c.Day.Cycles), "day start and cycles must be finite")
	check(c.Day.PeakIntensity >= 0, "peak intensity %v must not be negative", c.Day.PeakIntensity)
	check(c.Day.AmbientFraction >= 0 && c.Day.AmbientFraction <= 1, "ambient fraction %v must be in [0, 1]", c.Day.AmbientFraction)

	check(c.Shading.TorchRange > 0, "torch range %v must be positive", c.Shading.TorchRange)
	check(c.Shading.TorchGain >= 0, "torch gain %v must not be negative", c.Shading.TorchGain)
	check(c.Scene.LightIntensity >= 0, "light intensity %v must not be negative", c.Scene.LightIntensity)

	check(len(c.Output.Formats) > 0, "no output format selected")
	for _, f := range c.Output.Formats {
		check(f == FormatBMP || f == FormatPNG || f == FormatGIF, "unknown output format %q", f)
	}
	check(c.Output.Dir != "", "output directory must be set")
	check(c.Output.Gamma > 0, "gamma %v must be positive", c.Output.Gamma)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// AspectRatio returns width over height
func (c Config) AspectRatio() float64 {
	return float64(c.Width) / float64(c.Height)
}

// RendererConfig converts the render section
func (c Config) RendererConfig() renderer.Config {
	return renderer.Config{
		TileWidth:      c.Render.TileWidth,
		TileHeight:     c.Render.TileHeight,
		NumWorkers:     c.Render.Workers,
		MaxDepth:       c.Render.MaxDepth,
		SamplesPerAxis: c.Render.SamplesPerAxis,
	}
}

// CameraOrbit converts the orbit section
func (c Config) CameraOrbit() camera.Orbit {
	o := camera.DefaultOrbit(c.AspectRatio())
	o.Target = core.NewVec3(c.Orbit.Target[0], c.Orbit.Target[1], c.Orbit.Target[2])
	o.Elevation = c.Orbit.Elevation
	o.VFov = c.Orbit.VFov
	o.BaseRadius = c.Orbit.Radius
	o.ZoomAmplitude = c.Orbit.ZoomAmplitude
	o.MinRadius = c.Orbit.MinRadius
	o.MaxRadius = c.Orbit.MaxRadius
	o.Turns = c.Orbit.Turns
	o.StartAngle = c.Orbit.StartAngle * math.Pi / 180
	return o
}

// DayNightConfig converts the day section
func (c Config) DayNightConfig() daynight.Config {
	d := daynight.DefaultConfig()
	d.PeakIntensity = c.Day.PeakIntensity
	d.AmbientFraction = c.Day.AmbientFraction
	return d
}

// IntegratorConfig converts the shading section
func (c Config) IntegratorConfig() integrator.Config {
	return integrator.Config{
		AmbientOcclusion: c.Shading.AmbientOcclusion,
		ProceduralSky:    c.Shading.ProceduralSky,
		TorchRange:       c.Shading.TorchRange,
		TorchGain:        c.Shading.TorchGain,
		WaterScroll:      c.Shading.WaterScroll,
	}
}

// HouseConfig converts the scene section
func (c Config) HouseConfig() scene.HouseConfig {
	return scene.HouseConfig{
		LightIntensity: c.Scene.LightIntensity,
		WaterHeight:    c.Scene.WaterHeight,
	}
}

// Converter converts the output section
func (c Config) Converter() output.Converter {
	return output.Converter{Gamma: c.Output.Gamma, ToneMap: c.Output.ToneMap}
}

// HasFormat reports whether format is among the selected outputs
func (c Config) HasFormat(format string) bool {
	for _, f := range c.Output.Formats {
		if f == format {
			return true
		}
	}
	return false
}
