package output

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/renderer"
)

// GIFWarnBytes is the buffered frame size above which callers should warn. The
// default 300 frame 960×540 run holds about 150 MiB.
const GIFWarnBytes = 64 << 20

// GIFBufferBytes is the memory a GIFWriter holds before Close: one palette index
// per pixel of every frame
func GIFBufferBytes(width, height, frames int) int64 {
	return int64(width) * int64(height) * int64(frames)
}

// GIFWriter collects frames into one looping animated GIF written on Close. Every
// frame stays in memory until then (see GIFBufferBytes).
type GIFWriter struct {
	path      string
	delay     int // 100ths of a second per frame
	converter Converter
	logger    core.Logger
	anim      gif.GIF
}

// NewGIFWriter creates a writer for path playing at fps
func NewGIFWriter(path string, fps int, converter Converter, logger core.Logger) *GIFWriter {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	delay := 10
	if fps > 0 {
		delay = max(1, (100+fps/2)/fps)
	}
	return &GIFWriter{path: path, delay: delay, converter: converter, logger: logger}
}

// WriteFrame quantizes fb to the Plan 9 palette with Floyd-Steinberg dithering
func (w *GIFWriter) WriteFrame(index int, fb *renderer.FrameBuffer) error {
	rgba := w.converter.ToRGBA(index, fb)
	paletted := image.NewPaletted(rgba.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(paletted, paletted.Bounds(), rgba, image.Point{})

	w.anim.Image = append(w.anim.Image, paletted)
	w.anim.Delay = append(w.anim.Delay, w.delay)
	return nil
}

// Frames returns the number of frames collected so far
func (w *GIFWriter) Frames() int {
	return len(w.anim.Image)
}

// Close encodes the collected frames. Nothing is written when no frame arrived.
func (w *GIFWriter) Close() error {
	if len(w.anim.Image) == 0 {
		return nil
	}
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", w.path, err)
	}
	if err := gif.EncodeAll(f, &w.anim); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}

	w.logger.Infof("Wrote %s (%d frames)", w.path, len(w.anim.Image))
	return nil
}
