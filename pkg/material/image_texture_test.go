package material

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/voxel-timelapse/pkg/core"
)

var (
	white = core.NewVec3(1, 1, 1)
	black = core.NewVec3(0, 0, 0)
)

func TestImageTexture_Sample(t *testing.T) {
	// Layout:
	//   white black
	//   black white
	texture := NewImageTexture(2, 2, []core.Vec3{
		white, black,
		black, white,
	})

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
	}{
		{"bottom left", core.NewVec2(0.1, 0.1), black},
		{"bottom right", core.NewVec2(0.9, 0.1), white},
		{"top left", core.NewVec2(0.1, 0.9), white},
		{"top right", core.NewVec2(0.9, 0.9), black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, texture.Sample(tt.uv))
		})
	}
}

func TestImageTexture_Wrapping(t *testing.T) {
	texture := NewImageTexture(2, 1, []core.Vec3{white, black})

	tests := []struct {
		uv       core.Vec2
		expected core.Vec3
	}{
		{core.NewVec2(0.25, 0.5), white},
		{core.NewVec2(1.25, 0.5), white},
		{core.NewVec2(-0.75, 0.5), white},
		{core.NewVec2(-0.25, 0.5), black},
		{core.NewVec2(3.75, -2.5), black},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, texture.Sample(tt.uv), "uv %v", tt.uv)
	}
}

func TestImageTexture_EmptyIsWhite(t *testing.T) {
	assert.Equal(t, white, NewImageTexture(0, 0, nil).Sample(core.NewVec2(0.3, 0.3)))
}

func TestProceduralTextures_Deterministic(t *testing.T) {
	a := NewNoiseTexture(16, 0.1, 7)
	b := NewNoiseTexture(16, 0.1, 7)
	assert.Equal(t, a.Pixels, b.Pixels)

	for _, p := range a.Pixels {
		assert.InDelta(t, 1.0, p.X, 0.1+1e-9)
	}

	planks := NewPlankTexture(16, 4, 3)
	assert.Len(t, planks.Pixels, 256)

	checker := NewCheckerboardTexture(4, 4, 2, white, black)
	assert.Equal(t, white, checker.Pixels[0])
	assert.Equal(t, black, checker.Pixels[2])
}
