package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/voxel-timelapse/pkg/camera"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/integrator"
)

// ErrInvalidJob is returned for a job missing its camera or integrator
var ErrInvalidJob = errors.New("invalid render job")

// Config contains configuration for frame rendering
type Config struct {
	TileWidth      int // Tile size in pixels
	TileHeight     int
	NumWorkers     int // Number of parallel workers (0 = use CPU count)
	MaxDepth       int // Reflection bounces per primary ray
	SamplesPerAxis int // Stratified supersampling: SamplesPerAxis² rays per pixel
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileWidth:      32,
		TileHeight:     32,
		NumWorkers:     0,
		MaxDepth:       3,
		SamplesPerAxis: 1,
	}
}

// Job describes one frame to render
type Job struct {
	Camera     *camera.Camera
	Integrator integrator.Integrator
	Width      int
	Height     int
}

// Renderer renders frames tile by tile on a fixed worker pool
type Renderer struct {
	config Config
	logger core.Logger
}

// New creates a renderer. A nil logger discards output.
func New(config Config, logger core.Logger) *Renderer {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Renderer{config: config, logger: logger}
}

// Config returns the renderer configuration
func (r *Renderer) Config() Config {
	return r.config
}

// Render renders job on the configured tile grid
func (r *Renderer) Render(ctx context.Context, job Job) (*FrameBuffer, FrameStats, error) {
	tiles := NewTileGrid(job.Width, job.Height, r.config.TileWidth, r.config.TileHeight)
	return r.RenderTiles(ctx, job, tiles)
}

// RenderTiles renders job over an explicit tile partition. The partition must cover
// the image exactly; this is checked before any pixel is traced. The result is
// identical for any worker count.
func (r *Renderer) RenderTiles(ctx context.Context, job Job, tiles []Tile) (*FrameBuffer, FrameStats, error) {
	if job.Camera == nil || job.Integrator == nil {
		return nil, FrameStats{}, fmt.Errorf("%w: camera and integrator are required", ErrInvalidJob)
	}
	if err := ValidateCoverage(tiles, job.Width, job.Height); err != nil {
		return nil, FrameStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, FrameStats{}, err
	}

	start := time.Now()
	fb := NewFrameBuffer(job.Width, job.Height)
	tr := NewTileRenderer(job.Camera, job.Integrator, job.Width, job.Height, r.config.MaxDepth, r.config.SamplesPerAxis)
	pool := NewWorkerPool(tr, fb, len(tiles), r.config.NumWorkers)

	r.logger.Debugf("Rendering %dx%d in %d tiles on %d workers", job.Width, job.Height, len(tiles), pool.GetNumWorkers())

	pool.Start(ctx)
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i})
	}
	pool.Stop()

	stats := FrameStats{Workers: pool.GetNumWorkers()}
	var firstErr error
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("tile %d: %w", tiles[result.TaskID].ID, result.Error)
			}
			continue
		}
		stats.add(result.Stats)
	}
	if firstErr != nil {
		return nil, FrameStats{}, firstErr
	}

	stats.finalize(fb, time.Since(start))
	r.logger.Debugf("Rendered %d tiles in %v (%.2f samples/pixel)", stats.Tiles, stats.Duration, stats.AverageSamples)
	return fb, stats, nil
}
