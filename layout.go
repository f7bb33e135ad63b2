package dome

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tile footprint and spacing, in grid units.
const (
	columnStride = 3 // every third candidate column is kept
	tileSizeX    = 3
	tileSizeY    = 4
)

// Row offsets for retained columns. Odd columns are shifted by half the row
// spacing, giving the staggered honeycomb pattern.
var (
	evenRows = []int{-8, -4, 0, 4, 8}
	oddRows  = []int{-6, -2, 2, 6, 10}
)

// Image is one entry of the image pool.
type Image struct {
	Src string `yaml:"src" json:"src"`
	Alt string `yaml:"alt,omitempty" json:"alt,omitempty"`
}

// UnmarshalYAML accepts either a bare source string or a {src, alt} mapping.
func (im *Image) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		im.Src = value.Value
		im.Alt = ""
		return nil
	case yaml.MappingNode:
		type plain Image
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*im = Image(p)
		return nil
	}
	return fmt.Errorf("image pool entry at line %d: want string or mapping", value.Line)
}

// ParsePool converts bare source strings to pool entries with empty alt text.
func ParsePool(srcs []string) []Image {
	pool := make([]Image, len(srcs))
	for i, s := range srcs {
		pool[i] = Image{Src: s}
	}
	return pool
}

// Tile is an immutable slot on the sphere.
type Tile struct {
	OffsetX, OffsetY int // angular grid indices
	SizeX, SizeY     int // footprint in grid units
	Src, Alt         string
}

// BaseRotateY returns the tile's column angle in degrees.
func (t Tile) BaseRotateY(segments int) float64 {
	if segments <= 0 {
		return 0
	}
	return float64(t.OffsetX) / float64(segments) * 360
}

// BaseRotateX returns the tile's row angle in degrees.
func (t Tile) BaseRotateX(segments int) float64 {
	if segments <= 0 {
		return 0
	}
	return float64(t.OffsetY) / float64(segments) * 180
}

// SlotCount returns the number of tiles BuildLayout produces for segments.
func SlotCount(segments int) int {
	if segments <= 0 {
		return 0
	}
	cols := (segments + columnStride - 1) / columnStride
	return cols * len(evenRows)
}

// BuildLayout places tiles on the sphere for the given angular resolution and
// assigns pool images cyclically. It has no side effects; call it again when
// segments changes.
func BuildLayout(pool []Image, segments int) []Tile {
	n := SlotCount(segments)
	if n == 0 {
		return nil
	}
	tiles := make([]Tile, 0, n)
	first := -segments / 2
	col := 0
	for i := 0; i < segments; i++ {
		if i%columnStride != 0 {
			continue
		}
		rows := evenRows
		if col%2 == 1 {
			rows = oddRows
		}
		for _, y := range rows {
			tiles = append(tiles, Tile{
				OffsetX: first + i,
				OffsetY: y,
				SizeX:   tileSizeX,
				SizeY:   tileSizeY,
			})
		}
		col++
	}
	if len(pool) == 0 {
		return tiles
	}
	for i := range tiles {
		img := pool[i%len(pool)]
		tiles[i].Src = img.Src
		tiles[i].Alt = img.Alt
	}
	return tiles
}
