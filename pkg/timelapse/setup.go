package timelapse

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/df07/voxel-timelapse/pkg/config"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/daynight"
	"github.com/df07/voxel-timelapse/pkg/material"
	"github.com/df07/voxel-timelapse/pkg/output"
	"github.com/df07/voxel-timelapse/pkg/renderer"
	"github.com/df07/voxel-timelapse/pkg/scene"
)

// SettingsFromConfig derives the frame sequence of cfg
func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Frames:    cfg.FrameCount(),
		FPS:       cfg.FPS,
		DayStart:  cfg.Day.Start,
		DayCycles: cfg.Day.Cycles,
	}
}

// FromConfig validates cfg, builds the house scene, loads texture files and wires a
// driver around them. Texture files that fail to load keep their procedural fallback.
func FromConfig(ctx context.Context, cfg config.Config, logger core.Logger, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = core.NewNopLogger()
	}

	store := material.NewTextureStore(logger)
	house, err := scene.NewHouse(store, cfg.HouseConfig())
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	if err := store.LoadFiles(ctx, cfg.Textures); err != nil {
		return nil, fmt.Errorf("load textures: %w", err)
	}

	stats := house.Stats()
	logger.Infof("Scene: %d voxels, %d lights, %d textures", house.VoxelCount(), len(house.Lights()), store.Len())
	logger.Debugf("Scene BVH: %+v", stats)

	opts = append([]Option{WithLogger(logger)}, opts...)
	// Textures are final once loaded; tile workers share a lock-free copy
	return NewDriver(house, store.Snapshot(), cfg.CameraOrbit(), daynight.New(cfg.DayNightConfig()), cfg.IntegratorConfig(),
		renderer.New(cfg.RendererConfig(), logger), SettingsFromConfig(cfg), opts...), nil
}

// WriterFromConfig builds the frame writers selected in cfg
func WriterFromConfig(cfg config.Config, logger core.Logger) output.FrameWriter {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	settings := SettingsFromConfig(cfg)
	conv := cfg.Converter()
	if cfg.Output.Clock {
		conv.Label = func(index int) string { return output.ClockLabel(settings.TimeOfDay(index)) }
	}

	var writers []output.FrameWriter
	for _, format := range cfg.Output.Formats {
		switch format {
		case config.FormatBMP:
			writers = append(writers, output.NewBMPWriter(cfg.Output.Dir, conv, logger))
		case config.FormatPNG:
			writers = append(writers, output.NewPNGWriter(cfg.Output.Dir, conv, logger))
		case config.FormatGIF:
			path := cfg.Output.GIFPath
			if path == "" {
				path = filepath.Join(cfg.Output.Dir, "timelapse.gif")
			}
			if size := output.GIFBufferBytes(settings.Width, settings.Height, settings.Frames); size > output.GIFWarnBytes {
				logger.Warnf("GIF output keeps %d frames in memory until the run ends (about %d MiB)", settings.Frames, size>>20)
			}
			writers = append(writers, output.NewGIFWriter(path, int(cfg.FPS+0.5), conv, logger))
		}
	}
	return output.NewMultiWriter(writers...)
}
