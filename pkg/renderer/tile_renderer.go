package renderer

import (
	"image"

	"github.com/df07/voxel-timelapse/pkg/camera"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/integrator"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator.
// It holds no mutable state and may be shared by all workers.
type TileRenderer struct {
	camera         *camera.Camera
	integrator     integrator.Integrator
	width, height  int
	maxDepth       int
	samplesPerAxis int
}

// NewTileRenderer creates a tile renderer for one frame
func NewTileRenderer(cam *camera.Camera, integratorInst integrator.Integrator, width, height, maxDepth, samplesPerAxis int) *TileRenderer {
	return &TileRenderer{
		camera:         cam,
		integrator:     integratorInst,
		width:          width,
		height:         height,
		maxDepth:       maxDepth,
		samplesPerAxis: max(1, samplesPerAxis),
	}
}

// RenderTileBounds renders pixels within bounds into fb. Callers guarantee that no two
// concurrent calls share a pixel.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, fb *FrameBuffer) TileStats {
	var stats TileStats
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			fb.Set(x, y, tr.samplePixel(x, y))
			stats.Pixels++
			stats.Samples += tr.samplesPerAxis * tr.samplesPerAxis
		}
	}
	return stats
}

// samplePixel averages a fixed stratified grid of primary rays through pixel (x, y)
func (tr *TileRenderer) samplePixel(x, y int) core.Vec3 {
	n := tr.samplesPerAxis
	if n == 1 {
		ray := tr.camera.RayThrough(x, y, tr.width, tr.height, 0.5, 0.5)
		return tr.integrator.RayColor(ray, tr.maxDepth)
	}

	var sum core.Vec3
	for sy := 0; sy < n; sy++ {
		for sx := 0; sx < n; sx++ {
			ox := (float64(sx) + 0.5) / float64(n)
			oy := (float64(sy) + 0.5) / float64(n)
			ray := tr.camera.RayThrough(x, y, tr.width, tr.height, ox, oy)
			sum = sum.Add(tr.integrator.RayColor(ray, tr.maxDepth))
		}
	}
	return sum.Multiply(1.0 / float64(n*n))
}
