package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/voxel-timelapse/pkg/config"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg config.Config)
	}{
		{"defaults", nil, func(t *testing.T, cfg config.Config) {
			assert.Equal(t, config.Default(), cfg)
		}},
		{"size and frames", []string{"-width", "64", "-height", "32", "-frames", "5"}, func(t *testing.T, cfg config.Config) {
			assert.Equal(t, 64, cfg.Width)
			assert.Equal(t, 32, cfg.Height)
			assert.Equal(t, 5, cfg.FrameCount())
		}},
		{"render options", []string{"-workers", "2", "-tile", "8", "-depth", "1", "-samples", "2"}, func(t *testing.T, cfg config.Config) {
			assert.Equal(t, 2, cfg.Render.Workers)
			assert.Equal(t, 8, cfg.Render.TileWidth)
			assert.Equal(t, 8, cfg.Render.TileHeight)
			assert.Equal(t, 1, cfg.Render.MaxDepth)
			assert.Equal(t, 2, cfg.Render.SamplesPerAxis)
		}},
		{"formats", []string{"-format", "PNG, gif", "-clock"}, func(t *testing.T, cfg config.Config) {
			assert.Equal(t, []string{"png", "gif"}, cfg.Output.Formats)
			assert.True(t, cfg.Output.Clock)
		}},
		{"explicit zero day start", []string{"-day-start", "0"}, func(t *testing.T, cfg config.Config) {
			assert.Equal(t, 0.0, cfg.Day.Start)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, help, err := parseArgs(tt.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.False(t, help)
			tt.verify(t, cfg)
		})
	}
}

func TestParseArgs_ConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 100\nheight: 50\nfps: 12\n"), 0o644))

	cfg, _, err := parseArgs([]string{"-config", path, "-height", "60"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 60, cfg.Height)
	assert.Equal(t, 12.0, cfg.FPS)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"invalid value", []string{"-width", "-5"}},
		{"bad format", []string{"-format", "tiff"}},
		{"missing config", []string{"-config", "does-not-exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseArgs(tt.args, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-help"}, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "Voxel Timelapse")
}

func TestRun_WritesFrames(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	args := []string{"-width", "16", "-height", "9", "-frames", "2", "-samples", "1", "-out", dir, "-format", "png"}

	require.NoError(t, run(context.Background(), args, &out, &out))

	for _, name := range []string{"frame_0000.png", "frame_0001.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}
	assert.Contains(t, out.String(), "Frames saved in")
}
