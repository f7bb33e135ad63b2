package dome

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestSlotCount(t *testing.T) {
	tests := []struct {
		segments int
		want     int
	}{
		{-4, 0},
		{0, 0},
		{1, 5},
		{3, 5},
		{4, 10},
		{24, 40},
		{34, 60},
		{35, 60},
		{36, 60},
	}
	for _, tt := range tests {
		if got := SlotCount(tt.segments); got != tt.want {
			t.Errorf("SlotCount(%d) = %d, want %d", tt.segments, got, tt.want)
		}
		if got := len(BuildLayout(ParsePool([]string{"a"}), tt.segments)); got != tt.want {
			t.Errorf("len(BuildLayout(_, %d)) = %d, want %d", tt.segments, got, tt.want)
		}
	}
}

func TestBuildLayoutSlotCountIgnoresPoolSize(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		srcs := make([]string, n)
		for i := range srcs {
			srcs[i] = string(rune('a' + i%26))
		}
		if got := len(BuildLayout(ParsePool(srcs), 36)); got != 60 {
			t.Errorf("pool of %d: got %d tiles, want 60", n, got)
		}
	}
}

func TestBuildLayoutCyclicAssignment(t *testing.T) {
	pool := []Image{{Src: "a.png", Alt: "A"}, {Src: "b.png"}, {Src: "c.png", Alt: "C"}}
	tiles := BuildLayout(pool, 24)
	for i, tile := range tiles {
		want := pool[i%len(pool)]
		if tile.Src != want.Src || tile.Alt != want.Alt {
			t.Errorf("tile %d = (%q, %q), want (%q, %q)", i, tile.Src, tile.Alt, want.Src, want.Alt)
		}
	}
}

func TestBuildLayoutEmptyPool(t *testing.T) {
	tiles := BuildLayout(nil, 36)
	if len(tiles) != 60 {
		t.Fatalf("got %d tiles, want 60", len(tiles))
	}
	for i, tile := range tiles {
		if tile.Src != "" || tile.Alt != "" {
			t.Errorf("tile %d should be blank, got %+v", i, tile)
		}
	}
}

func TestBuildLayoutColumnsAndRows(t *testing.T) {
	tiles := BuildLayout(nil, 12)
	want := []Tile{
		{OffsetX: -6, OffsetY: -8}, {OffsetX: -6, OffsetY: -4}, {OffsetX: -6, OffsetY: 0}, {OffsetX: -6, OffsetY: 4}, {OffsetX: -6, OffsetY: 8},
		{OffsetX: -3, OffsetY: -6}, {OffsetX: -3, OffsetY: -2}, {OffsetX: -3, OffsetY: 2}, {OffsetX: -3, OffsetY: 6}, {OffsetX: -3, OffsetY: 10},
		{OffsetX: 0, OffsetY: -8}, {OffsetX: 0, OffsetY: -4}, {OffsetX: 0, OffsetY: 0}, {OffsetX: 0, OffsetY: 4}, {OffsetX: 0, OffsetY: 8},
		{OffsetX: 3, OffsetY: -6}, {OffsetX: 3, OffsetY: -2}, {OffsetX: 3, OffsetY: 2}, {OffsetX: 3, OffsetY: 6}, {OffsetX: 3, OffsetY: 10},
	}
	for i := range want {
		want[i].SizeX, want[i].SizeY = 3, 4
	}
	if diff := cmp.Diff(want, tiles); diff != "" {
		t.Errorf("BuildLayout(nil, 12) mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildLayoutNoDuplicateSlots(t *testing.T) {
	for _, seg := range []int{24, 35, 36} {
		seen := make(map[[2]int]bool)
		for _, tile := range BuildLayout(nil, seg) {
			k := [2]int{tile.OffsetX, tile.OffsetY}
			if seen[k] {
				t.Errorf("segments %d: duplicate slot %v", seg, k)
			}
			seen[k] = true
		}
	}
}

func TestBuildLayoutIsPure(t *testing.T) {
	pool := ParsePool([]string{"x", "y"})
	a := BuildLayout(pool, 36)
	b := BuildLayout(pool, 36)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeated BuildLayout differs (-first +second):\n%s", diff)
	}
}

func TestTileBaseRotation(t *testing.T) {
	tile := Tile{OffsetX: 9, OffsetY: -4}
	if got := tile.BaseRotateY(36); got != 90 {
		t.Errorf("BaseRotateY = %v, want 90", got)
	}
	if got := tile.BaseRotateX(36); got != -20 {
		t.Errorf("BaseRotateX = %v, want -20", got)
	}
	if got := tile.BaseRotateY(0); got != 0 {
		t.Errorf("BaseRotateY(0) = %v, want 0", got)
	}
}

func TestImageUnmarshalYAML(t *testing.T) {
	src := `
- plain.jpg
- src: rich.png
  alt: A rich image
- src: noalt.webp
`
	var got []Image
	if err := yaml.Unmarshal([]byte(src), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Image{
		{Src: "plain.jpg"},
		{Src: "rich.png", Alt: "A rich image"},
		{Src: "noalt.webp"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestImageUnmarshalYAMLRejectsSequence(t *testing.T) {
	var got []Image
	if err := yaml.Unmarshal([]byte("- [a, b]\n"), &got); err == nil {
		t.Error("expected error for nested sequence")
	}
}
