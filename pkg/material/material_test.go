package material

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/voxel-timelapse/pkg/core"
)

func TestNewMaterial_ClampsCoefficients(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		check func(t *testing.T, m Material)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, m Material) {
				assert.Equal(t, DefaultSpecular, m.Specular)
				assert.Equal(t, DefaultShininess, m.Shininess)
				assert.Equal(t, 1.0, m.UVScale)
				assert.False(t, m.IsEmissive())
			},
		},
		{
			name: "out of range values",
			opts: []Option{WithSpecular(3), WithReflection(-1), WithShininess(1e6), WithUVScale(-2)},
			check: func(t *testing.T, m Material) {
				assert.Equal(t, 1.0, m.Specular)
				assert.Equal(t, 0.0, m.Reflection)
				assert.Equal(t, MaxShininess, m.Shininess)
				assert.Equal(t, 1.0, m.UVScale)
			},
		},
		{
			name: "NaN falls back",
			opts: []Option{WithSpecular(math.NaN()), WithShininess(math.NaN())},
			check: func(t *testing.T, m Material) {
				assert.Equal(t, 0.0, m.Specular)
				assert.Equal(t, DefaultShininess, m.Shininess)
			},
		},
		{
			name: "emissive clamped to unit range",
			opts: []Option{WithEmissive(core.NewVec3(4, 2.6, 1.2))},
			check: func(t *testing.T, m Material) {
				assert.Equal(t, core.NewVec3(1, 1, 1), m.Emissive)
				assert.True(t, m.IsEmissive())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMaterial("test", core.NewVec3(2, 0.5, -1), tt.opts...)
			assert.Equal(t, core.NewVec3(1, 0.5, 0), m.Albedo)
			tt.check(t, m)
		})
	}
}

func TestTable_AddAndLookup(t *testing.T) {
	table := NewTable()

	grass, err := table.Add(NewMaterial("grass", core.NewVec3(0.4, 0.7, 0.3)))
	require.NoError(t, err)
	stone, err := table.Add(NewMaterial("stone", core.NewVec3(0.6, 0.6, 0.6)))
	require.NoError(t, err)

	assert.Equal(t, ID(0), grass)
	assert.Equal(t, ID(1), stone)
	assert.Equal(t, 2, table.Len())

	id, ok := table.Lookup("stone")
	assert.True(t, ok)
	assert.Equal(t, stone, id)

	m, ok := table.Get(grass)
	assert.True(t, ok)
	assert.Equal(t, "grass", m.Name)

	_, ok = table.Get(ID(42))
	assert.False(t, ok)
}

func TestTable_RejectsDuplicateNames(t *testing.T) {
	table := NewTable()
	table.MustAdd(NewMaterial("water", core.NewVec3(0.2, 0.4, 0.9)))

	_, err := table.Add(NewMaterial("water", core.NewVec3(0, 0, 1)))
	assert.ErrorIs(t, err, ErrDuplicateMaterial)
	assert.Equal(t, 1, table.Len())
}

func TestTable_Full(t *testing.T) {
	table := NewTable()
	for i := 0; i < maxMaterials; i++ {
		table.MustAdd(NewMaterial(fmt.Sprintf("block-%d", i), core.NewVec3(1, 1, 1)))
	}
	_, err := table.Add(NewMaterial("one-more", core.NewVec3(1, 1, 1)))
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestTable_TexturesAreDistinct(t *testing.T) {
	store := NewTextureStore(nil)
	planks := store.Register("planks", NewPlankTexture(16, 4, 1))

	table := NewTable()
	table.MustAdd(NewMaterial("planks", core.NewVec3(0.8, 0.7, 0.5), WithTexture(planks)))
	table.MustAdd(NewMaterial("dark_wood", core.NewVec3(0.3, 0.2, 0.2), WithTexture(planks)))
	table.MustAdd(NewMaterial("glass", core.NewVec3(0.9, 0.9, 1)))

	assert.Equal(t, []TextureHandle{planks}, table.Textures())
}
