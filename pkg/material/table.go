package material

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateMaterial is returned when a name is registered twice
	ErrDuplicateMaterial = errors.New("duplicate material")
	// ErrTableFull is returned when every ID is taken
	ErrTableFull = errors.New("material table full")
)

// maxMaterials is the number of distinct IDs
const maxMaterials = 256

// Table maps small integer IDs to materials. It is built once and then only read,
// so concurrent lookups need no locking.
type Table struct {
	materials []Material
	byName    map[string]ID
}

// NewTable creates an empty material table
func NewTable() *Table {
	return &Table{byName: make(map[string]ID)}
}

// Add registers a material and returns its ID
func (t *Table) Add(m Material) (ID, error) {
	if _, exists := t.byName[m.Name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateMaterial, m.Name)
	}
	if len(t.materials) >= maxMaterials {
		return 0, ErrTableFull
	}
	id := ID(len(t.materials))
	t.materials = append(t.materials, m)
	t.byName[m.Name] = id
	return id, nil
}

// MustAdd is Add for static scene data
func (t *Table) MustAdd(m Material) ID {
	id, err := t.Add(m)
	if err != nil {
		panic(err)
	}
	return id
}

// Get returns the material for id
func (t *Table) Get(id ID) (Material, bool) {
	if int(id) >= len(t.materials) {
		return Material{}, false
	}
	return t.materials[id], true
}

// At returns the material for an ID known to be valid
func (t *Table) At(id ID) *Material {
	return &t.materials[id]
}

// Lookup finds a material ID by name
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Len returns the number of materials
func (t *Table) Len() int {
	return len(t.materials)
}

// Textures returns the distinct texture handles referenced by the table
func (t *Table) Textures() []TextureHandle {
	seen := make(map[TextureHandle]bool)
	var handles []TextureHandle
	for _, m := range t.materials {
		if m.HasTexture() && !seen[m.Texture] {
			seen[m.Texture] = true
			handles = append(handles, m.Texture)
		}
	}
	return handles
}
