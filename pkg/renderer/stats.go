package renderer

import "time"

// TileStats contains statistics about a single rendered tile
type TileStats struct {
	Pixels  int // Pixels written
	Samples int // Primary rays traced
}

// FrameStats contains statistics about a rendered frame
type FrameStats struct {
	Tiles            int           // Number of tiles rendered
	Workers          int           // Number of parallel workers
	TotalPixels      int           // Total number of pixels rendered
	TotalSamples     int           // Total number of primary rays traced
	AverageSamples   float64       // Average samples per pixel
	AverageLuminance float64       // Mean luminance of the linear frame
	Duration         time.Duration // Wall time spent rendering
}

// add merges the statistics of one completed tile
func (s *FrameStats) add(tile TileStats) {
	s.Tiles++
	s.TotalPixels += tile.Pixels
	s.TotalSamples += tile.Samples
}

// finalize calculates derived statistics once all tiles have joined
func (s *FrameStats) finalize(fb *FrameBuffer, elapsed time.Duration) {
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
	s.AverageLuminance = fb.AverageLuminance()
	s.Duration = elapsed
}
