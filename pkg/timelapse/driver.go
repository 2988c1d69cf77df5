package timelapse

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/voxel-timelapse/pkg/camera"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/daynight"
	"github.com/df07/voxel-timelapse/pkg/integrator"
	"github.com/df07/voxel-timelapse/pkg/output"
	"github.com/df07/voxel-timelapse/pkg/renderer"
)

// Settings describes the frame sequence
type Settings struct {
	Width     int
	Height    int
	Frames    int
	FPS       float64
	DayStart  float64 // Normalized time of day of frame 0
	DayCycles float64 // Days elapsed between frame 0 and the end of the run
}

// Progress maps frame index to run progress in [0,1)
func (s Settings) Progress(index int) float64 {
	if s.Frames <= 0 {
		return 0
	}
	return float64(index) / float64(s.Frames)
}

// TimeOfDay returns the normalized time of day shown by frame index
func (s Settings) TimeOfDay(index int) float64 {
	return daynight.Wrap(s.DayStart + s.DayCycles*s.Progress(index))
}

// Clock returns seconds of footage before frame index
func (s Settings) Clock(index int) float64 {
	if s.FPS <= 0 {
		return 0
	}
	return float64(index) / s.FPS
}

// FrameInfo summarizes one finished frame
type FrameInfo struct {
	Index     int
	TimeOfDay float64
	Camera    *camera.Camera
	Stats     renderer.FrameStats
}

// Driver renders a timelapse one frame at a time
type Driver struct {
	scene      integrator.Scene
	textures   integrator.TextureSampler
	orbit      camera.Orbit
	daynight   *daynight.Model
	shading    integrator.Config
	renderer   *renderer.Renderer
	settings   Settings
	logger     core.Logger
	onFrame    func(FrameInfo)
	renderTime time.Duration
}

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the logger
func WithLogger(logger core.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithFrameCallback is called after each frame has been written
func WithFrameCallback(fn func(FrameInfo)) Option {
	return func(d *Driver) { d.onFrame = fn }
}

// NewDriver creates a driver. textures may be nil.
func NewDriver(s integrator.Scene, textures integrator.TextureSampler, orbit camera.Orbit, model *daynight.Model,
	shading integrator.Config, r *renderer.Renderer, settings Settings, opts ...Option) *Driver {
	d := &Driver{
		scene:    s,
		textures: textures,
		orbit:    orbit,
		daynight: model,
		shading:  shading,
		renderer: r,
		settings: settings,
		logger:   core.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Scene returns the scene being rendered
func (d *Driver) Scene() integrator.Scene {
	return d.scene
}

// Settings returns the frame sequence
func (d *Driver) Settings() Settings {
	return d.settings
}

// WithSettings returns a driver sharing the scene and renderer but rendering a
// different frame sequence. The frame callback is reset before opts apply.
func (d *Driver) WithSettings(settings Settings, opts ...Option) *Driver {
	c := *d
	c.settings = settings
	c.orbit.AspectRatio = float64(settings.Width) / float64(settings.Height)
	c.onFrame = nil
	c.renderTime = 0
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// CameraAt returns the orbit camera of frame index
func (d *Driver) CameraAt(index int) (*camera.Camera, error) {
	return d.orbit.At(d.settings.Progress(index))
}

// RenderFrame renders frame index without writing it
func (d *Driver) RenderFrame(ctx context.Context, index int) (*renderer.FrameBuffer, FrameInfo, error) {
	tod := d.settings.TimeOfDay(index)

	cam, err := d.CameraAt(index)
	if err != nil {
		return nil, FrameInfo{}, fmt.Errorf("frame %d: %w", index, err)
	}

	frame := integrator.Frame{Env: d.daynight.Evaluate(tod), Clock: d.settings.Clock(index)}
	job := renderer.Job{
		Camera:     cam,
		Integrator: integrator.NewWhitted(d.scene, d.textures, frame, d.shading),
		Width:      d.settings.Width,
		Height:     d.settings.Height,
	}

	fb, stats, err := d.renderer.Render(ctx, job)
	if err != nil {
		return nil, FrameInfo{}, fmt.Errorf("frame %d: %w", index, err)
	}
	return fb, FrameInfo{Index: index, TimeOfDay: tod, Camera: cam, Stats: stats}, nil
}

// Run renders every frame in order, handing each to w before the next one starts.
// The first failure stops the run. w is not closed.
func (d *Driver) Run(ctx context.Context, w output.FrameWriter) error {
	start := time.Now()
	d.logger.Infof("Rendering %d frames at %dx%d", d.settings.Frames, d.settings.Width, d.settings.Height)

	for i := 0; i < d.settings.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		fb, info, err := d.RenderFrame(ctx, i)
		if err != nil {
			return err
		}
		if err := w.WriteFrame(i, fb); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}

		d.renderTime += info.Stats.Duration
		d.logger.Infof("Frame %d/%d at %s rendered in %v", i+1, d.settings.Frames, output.ClockLabel(info.TimeOfDay), info.Stats.Duration)
		if d.onFrame != nil {
			d.onFrame(info)
		}
	}

	d.logger.Infof("Done: %d frames in %v", d.settings.Frames, time.Since(start))
	return nil
}

// RenderTime returns the time spent in the renderer by Run so far
func (d *Driver) RenderTime() time.Duration {
	return d.renderTime
}
