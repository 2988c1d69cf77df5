package renderer

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name                  string
		width, height         int
		tileWidth, tileHeight int
		expectedTiles         int
	}{
		{"exact fit", 64, 64, 32, 32, 4},
		{"clipped edges", 100, 50, 32, 32, 8},
		{"single tile larger than image", 10, 10, 64, 64, 1},
		{"row strips", 960, 540, 960, 1, 540},
		{"single pixel tiles", 3, 2, 1, 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileWidth, tt.tileHeight)
			assert.Len(t, tiles, tt.expectedTiles)
			require.NoError(t, ValidateCoverage(tiles, tt.width, tt.height))

			for i, tile := range tiles {
				assert.Equal(t, i, tile.ID)
				assert.LessOrEqual(t, tile.Bounds.Dx(), tt.tileWidth)
				assert.LessOrEqual(t, tile.Bounds.Dy(), tt.tileHeight)
			}
		})
	}
}

func TestNewTileGrid_Degenerate(t *testing.T) {
	assert.Empty(t, NewTileGrid(0, 10, 4, 4))
	assert.Empty(t, NewTileGrid(10, 10, 0, 4))
}

func TestValidateCoverage_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		tiles []Tile
	}{
		{"missing pixel", []Tile{
			{ID: 0, Bounds: image.Rect(0, 0, 4, 2)},
			{ID: 1, Bounds: image.Rect(0, 2, 3, 4)},
		}},
		{"overlap", []Tile{
			{ID: 0, Bounds: image.Rect(0, 0, 4, 3)},
			{ID: 1, Bounds: image.Rect(0, 2, 4, 4)},
		}},
		{"outside image", []Tile{
			{ID: 0, Bounds: image.Rect(0, 0, 4, 4)},
			{ID: 1, Bounds: image.Rect(4, 0, 5, 4)},
		}},
		{"empty tile", []Tile{
			{ID: 0, Bounds: image.Rect(0, 0, 4, 4)},
			{ID: 1, Bounds: image.Rect(2, 2, 2, 2)},
		}},
		{"no tiles", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateCoverage(tt.tiles, 4, 4), ErrTileCoverage)
		})
	}
}

func TestValidateCoverage_ZeroSizedImage(t *testing.T) {
	assert.ErrorIs(t, ValidateCoverage(nil, 0, 0), ErrTileCoverage)
}
