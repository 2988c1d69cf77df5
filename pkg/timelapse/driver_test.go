package timelapse

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/voxel-timelapse/pkg/camera"
	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/daynight"
	"github.com/df07/voxel-timelapse/pkg/integrator"
	"github.com/df07/voxel-timelapse/pkg/material"
	"github.com/df07/voxel-timelapse/pkg/renderer"
	"github.com/df07/voxel-timelapse/pkg/scene"
)

// recordingWriter keeps every frame it receives
type recordingWriter struct {
	indices []int
	frames  []*renderer.FrameBuffer
	failAt  int
	err     error
}

func (r *recordingWriter) WriteFrame(index int, fb *renderer.FrameBuffer) error {
	if r.err != nil && index == r.failAt {
		return r.err
	}
	r.indices = append(r.indices, index)
	r.frames = append(r.frames, fb)
	return nil
}

func (r *recordingWriter) Close() error { return nil }

func newTestDriver(t *testing.T, frames int, opts ...Option) *Driver {
	t.Helper()
	store := material.NewTextureStore(nil)
	house, err := scene.NewHouse(store, scene.DefaultHouseConfig())
	require.NoError(t, err)

	settings := Settings{Width: 16, Height: 9, Frames: frames, FPS: 30, DayStart: daynight.Sunrise, DayCycles: 1}
	cfg := renderer.DefaultConfig()
	cfg.TileWidth, cfg.TileHeight = 5, 5
	return NewDriver(house, store.Snapshot(), camera.DefaultOrbit(16.0/9.0), daynight.New(daynight.DefaultConfig()),
		integrator.DefaultConfig(), renderer.New(cfg, nil), settings, opts...)
}

func TestSettings(t *testing.T) {
	s := Settings{Frames: 4, FPS: 2, DayStart: 0.75, DayCycles: 1}

	assert.Equal(t, 0.0, s.Progress(0))
	assert.Equal(t, 0.5, s.Progress(2))
	assert.InDelta(t, 0.75, s.TimeOfDay(0), 1e-12)
	assert.InDelta(t, 0.0, s.TimeOfDay(1), 1e-12)
	assert.InDelta(t, 0.5, s.TimeOfDay(3), 1e-12)
	assert.Equal(t, 1.5, s.Clock(3))

	assert.Equal(t, 0.0, Settings{}.Progress(3))
	assert.Equal(t, 0.0, Settings{}.Clock(3))
}

func TestDriver_RunWritesFramesInOrder(t *testing.T) {
	var infos []FrameInfo
	d := newTestDriver(t, 4, WithFrameCallback(func(info FrameInfo) { infos = append(infos, info) }))

	w := &recordingWriter{}
	require.NoError(t, d.Run(context.Background(), w))

	assert.Equal(t, []int{0, 1, 2, 3}, w.indices)
	require.Len(t, infos, 4)
	for i, info := range infos {
		assert.Equal(t, i, info.Index)
		assert.Equal(t, 16*9, info.Stats.TotalPixels)
		assert.Len(t, w.frames[i].Pixels, 16*9)
	}

	// Sunrise, noon, sunset and midnight all differ, and the camera moves
	assert.InDelta(t, daynight.Noon, infos[1].TimeOfDay, 1e-12)
	assert.NotEqual(t, w.frames[1].Pixels, w.frames[3].Pixels)
	assert.NotEqual(t, infos[0].Camera.Position, infos[2].Camera.Position)
	assert.Greater(t, w.frames[1].AverageLuminance(), w.frames[3].AverageLuminance())
	assert.GreaterOrEqual(t, d.RenderTime(), infos[0].Stats.Duration)
}

func TestDriver_RenderFrameDeterministic(t *testing.T) {
	d := newTestDriver(t, 10)

	a, _, err := d.RenderFrame(context.Background(), 7)
	require.NoError(t, err)
	b, _, err := d.RenderFrame(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, a.Pixels, b.Pixels)
}

func TestDriver_WriteErrorNamesFrame(t *testing.T) {
	errDisk := errors.New("disk full")
	d := newTestDriver(t, 4)

	w := &recordingWriter{failAt: 2, err: errDisk}
	err := d.Run(context.Background(), w)
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "write frame 2")
	assert.Equal(t, []int{0, 1}, w.indices)
}

func TestDriver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &recordingWriter{}
	err := newTestDriver(t, 3).Run(ctx, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.indices)
}

func TestDriver_DegenerateOrbit(t *testing.T) {
	d := newTestDriver(t, 2)
	d.orbit.BaseRadius, d.orbit.ZoomAmplitude, d.orbit.MinRadius = 0, 0, 0

	err := d.Run(context.Background(), &recordingWriter{})
	assert.ErrorIs(t, err, camera.ErrDegenerateCamera)
	assert.Contains(t, err.Error(), "frame 0")
}

func TestDriver_Logs(t *testing.T) {
	var out bytes.Buffer
	logger := core.NewWriterLogger("timelapse", false, &out, &out)
	d := newTestDriver(t, 1, WithLogger(logger))

	require.NoError(t, d.Run(context.Background(), &recordingWriter{}))
	assert.Contains(t, out.String(), "[timelapse] INFO: Frame 1/1 at 06:00")
}

func TestDriver_WithSettings(t *testing.T) {
	d := newTestDriver(t, 4)
	square := d.WithSettings(Settings{Width: 8, Height: 8, Frames: 2, FPS: 1, DayStart: daynight.Noon})

	assert.Equal(t, 4, d.Settings().Frames)
	assert.Equal(t, 2, square.Settings().Frames)
	assert.Same(t, d.Scene(), square.Scene())

	cam, err := square.CameraAt(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cam.AspectRatio)

	fb, info, err := square.RenderFrame(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, fb.Pixels, 64)
	assert.Equal(t, daynight.Noon, info.TimeOfDay)
}
