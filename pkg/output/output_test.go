package output

import (
	"errors"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/renderer"
)

func gradientFrame(w, h int) *renderer.FrameBuffer {
	fb := renderer.NewFrameBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(x) / float64(w-1)
			fb.Set(x, y, core.NewVec3(v, v*0.5, 1-v))
		}
	}
	return fb
}

func TestClockLabel(t *testing.T) {
	tests := []struct {
		timeOfDay float64
		expected  string
	}{
		{0, "00:00"},
		{0.25, "06:00"},
		{0.5, "12:00"},
		{0.75, "18:00"},
		{0.999999, "23:59"},
		{1.5, "12:00"},
		{-0.25, "18:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClockLabel(tt.timeOfDay))
		})
	}
}

func TestConverter_ToRGBA(t *testing.T) {
	fb := renderer.NewFrameBuffer(2, 1)
	fb.Set(1, 0, core.NewVec3(100, 100, 100))

	img := DefaultConverter().ToRGBA(0, fb)
	assert.Equal(t, []uint8{0, 0, 0, 255, 255, 255, 255, 255}, img.Pix)

	// Without tonemapping mid grey is only gamma encoded
	fb.Set(0, 0, core.NewVec3(0.5, 0.5, 0.5))
	plain := Converter{Gamma: 2.2}.ToRGBA(0, fb)
	assert.Equal(t, uint8(186), plain.Pix[0])

	// ACES lifts mid grey and compresses highlights
	mapped := DefaultConverter().ToRGBA(0, fb)
	assert.Equal(t, uint8(205), mapped.Pix[0])

	fb.Set(0, 0, core.NewVec3(0.95, 0.95, 0.95))
	plain = Converter{Gamma: 2.2}.ToRGBA(0, fb)
	mapped = DefaultConverter().ToRGBA(0, fb)
	assert.Less(t, mapped.Pix[0], plain.Pix[0])
}

func TestConverter_Label(t *testing.T) {
	fb := renderer.NewFrameBuffer(64, 24)
	conv := DefaultConverter()
	conv.Label = func(index int) string { return ClockLabel(float64(index) / 24) }

	img := conv.ToRGBA(12, fb)

	lit := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			lit++
		}
	}
	assert.Greater(t, lit, 10, "label pixels drawn")

	conv.Label = func(int) string { return "" }
	assert.Equal(t, fb.Width*fb.Height*4, len(conv.ToRGBA(0, fb).Pix))
}

func TestFileWriters(t *testing.T) {
	dir := t.TempDir()
	fb := gradientFrame(16, 9)

	bmpWriter := NewBMPWriter(filepath.Join(dir, "bmp"), DefaultConverter(), nil)
	pngWriter := NewPNGWriter(filepath.Join(dir, "png"), DefaultConverter(), nil)
	multi := NewMultiWriter(bmpWriter, pngWriter)

	require.NoError(t, multi.WriteFrame(7, fb))
	require.NoError(t, multi.Close())

	f, err := os.Open(filepath.Join(dir, "bmp", "frame_0007.bmp"))
	require.NoError(t, err)
	defer f.Close()
	img, err := bmp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 9, img.Bounds().Dy())

	g, err := os.Open(filepath.Join(dir, "png", "frame_0007.png"))
	require.NoError(t, err)
	defer g.Close()
	pimg, err := png.Decode(g)
	require.NoError(t, err)
	assert.Equal(t, fb.Bounds(), pimg.Bounds())

	// Both encoders are lossless, so they agree on every pixel
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			r1, g1, b1, _ := img.At(x, y).RGBA()
			r2, g2, b2, _ := pimg.At(x, y).RGBA()
			assert.Equal(t, []uint32{r1, g1, b1}, []uint32{r2, g2, b2})
		}
	}
}

func TestFileWriter_CreateFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	w := NewPNGWriter(filepath.Join(blocker, "frames"), DefaultConverter(), nil)
	assert.Error(t, w.WriteFrame(0, gradientFrame(2, 2)))
}

func TestGIFWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim", "timelapse.gif")
	w := NewGIFWriter(path, 30, DefaultConverter(), nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.WriteFrame(i, gradientFrame(8, 8)))
	}
	assert.Equal(t, 3, w.Frames())
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	assert.Equal(t, []int{3, 3, 3}, anim.Delay)
}

func TestGIFWriter_EmptyWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gif")
	require.NoError(t, NewGIFWriter(path, 0, DefaultConverter(), nil).Close())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

type failingWriter struct {
	writes   int
	writeErr error
	closeErr error
}

func (f *failingWriter) WriteFrame(index int, fb *renderer.FrameBuffer) error {
	f.writes++
	return f.writeErr
}

func (f *failingWriter) Close() error { return f.closeErr }

func TestMultiWriter_Errors(t *testing.T) {
	errWrite := errors.New("disk full")
	errClose1 := errors.New("close one")
	errClose2 := errors.New("close two")

	first := &failingWriter{writeErr: errWrite, closeErr: errClose1}
	second := &failingWriter{closeErr: errClose2}
	multi := NewMultiWriter(first, second)

	assert.ErrorIs(t, multi.WriteFrame(0, gradientFrame(2, 2)), errWrite)
	assert.Equal(t, 0, second.writes)

	err := multi.Close()
	assert.ErrorIs(t, err, errClose1)
	assert.ErrorIs(t, err, errClose2)
}

func TestFrameName(t *testing.T) {
	assert.Equal(t, "frame_0000.bmp", FrameName(0, "bmp"))
	assert.Equal(t, "frame_0299.png", FrameName(299, "png"))
	assert.Equal(t, "frame_12345.png", FrameName(12345, "png"))
}

func TestGIFBufferBytes(t *testing.T) {
	assert.Equal(t, int64(960*540*300), GIFBufferBytes(960, 540, 300))
	assert.Greater(t, GIFBufferBytes(960, 540, 300), int64(GIFWarnBytes))
	assert.Less(t, GIFBufferBytes(320, 180, 24), int64(GIFWarnBytes))
}
