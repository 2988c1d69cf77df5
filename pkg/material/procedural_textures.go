package material

import (
	"math"

	"github.com/df07/voxel-timelapse/pkg/core"
)

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}

	return NewImageTexture(width, height, pixels)
}

// NewNoiseTexture creates a blocky per-texel brightness noise around 1.0, the
// look of low resolution block textures. The same seed always gives the same texture.
func NewNoiseTexture(size int, amplitude float64, seed uint32) *ImageTexture {
	pixels := make([]core.Vec3, size*size)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			n := hash2(uint32(x), uint32(y), seed)
			b := 1 + amplitude*(2*n-1)
			pixels[y*size+x] = core.NewVec3(b, b, b)
		}
	}

	return NewImageTexture(size, size, pixels)
}

// NewPlankTexture creates horizontal boards separated by darker seams
func NewPlankTexture(size, boards int, seed uint32) *ImageTexture {
	pixels := make([]core.Vec3, size*size)
	boardHeight := max(1, size/boards)

	for y := 0; y < size; y++ {
		board := y / boardHeight
		tone := 0.9 + 0.15*hash2(uint32(board), 0, seed)
		seam := y%boardHeight == boardHeight-1
		for x := 0; x < size; x++ {
			grain := 0.06 * hash2(uint32(x), uint32(board), seed+1)
			b := tone - grain
			if seam {
				b *= 0.6
			}
			pixels[y*size+x] = core.NewVec3(b, b, b)
		}
	}

	return NewImageTexture(size, size, pixels)
}

// NewRippleTexture creates soft diagonal bands for water surfaces
func NewRippleTexture(size int) *ImageTexture {
	pixels := make([]core.Vec3, size*size)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			phase := 2 * math.Pi * float64(x+y) / float64(size)
			b := 0.9 + 0.1*math.Sin(phase)
			pixels[y*size+x] = core.NewVec3(b, b, b)
		}
	}

	return NewImageTexture(size, size, pixels)
}

// hash2 maps integer coordinates to [0,1)
func hash2(x, y, seed uint32) float64 {
	h := x*0x27d4eb2d ^ y*0x165667b1 ^ seed*0x9e3779b9
	h ^= h >> 15
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return float64(h) / float64(math.MaxUint32+1)
}
