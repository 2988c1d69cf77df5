package renderer

import (
	"errors"
	"fmt"
	"image"
)

// ErrTileCoverage is returned when tiles do not cover the image exactly once
var ErrTileCoverage = errors.New("tiles do not cover the image exactly")

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of tiles covering the entire image. Tiles on the right
// and bottom edges are clipped to the image.
func NewTileGrid(width, height, tileWidth, tileHeight int) []Tile {
	if width <= 0 || height <= 0 || tileWidth <= 0 || tileHeight <= 0 {
		return nil
	}

	tilesX := (width + tileWidth - 1) / tileWidth // Ceiling division
	tilesY := (height + tileHeight - 1) / tileHeight

	tiles := make([]Tile, 0, tilesX*tilesY)
	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileWidth
			y0 := tileY * tileHeight
			x1 := min(x0+tileWidth, width)
			y1 := min(y0+tileHeight, height)

			tiles = append(tiles, Tile{ID: len(tiles), Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}

	return tiles
}

// ValidateCoverage checks that tiles lie inside a width×height image and that every
// pixel belongs to exactly one tile
func ValidateCoverage(tiles []Tile, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrTileCoverage, width, height)
	}

	frame := image.Rect(0, 0, width, height)
	owner := make([]int32, width*height)
	for i := range owner {
		owner[i] = -1
	}

	for _, tile := range tiles {
		b := tile.Bounds
		if b.Empty() {
			return fmt.Errorf("%w: tile %d is empty", ErrTileCoverage, tile.ID)
		}
		if !b.In(frame) {
			return fmt.Errorf("%w: tile %d %v lies outside %v", ErrTileCoverage, tile.ID, b, frame)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				i := y*width + x
				if owner[i] >= 0 {
					return fmt.Errorf("%w: pixel (%d,%d) is in tiles %d and %d", ErrTileCoverage, x, y, owner[i], tile.ID)
				}
				owner[i] = int32(tile.ID)
			}
		}
	}

	for i, o := range owner {
		if o < 0 {
			return fmt.Errorf("%w: pixel (%d,%d) is not covered", ErrTileCoverage, i%width, i/width)
		}
	}
	return nil
}
