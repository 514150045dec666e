package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// TerrainParams configures the blocked-cell field.
type TerrainParams struct {
	HalfExtent     float64 // world spans [-HalfExtent, HalfExtent] on both axes
	CellSize       float64
	Seed           int64
	Frequency      float64
	BlockThreshold float64 // normalized noise above this blocks a cell; >= 1 disables obstacles
}

// Terrain is a square grid of walkable/blocked cells generated from layered
// simplex noise. Positions outside the grid are never walkable.
type Terrain struct {
	half    float64
	cell    float64
	cols    int
	blocked []bool
}

func NewTerrain(p TerrainParams) *Terrain {
	cols := int(math.Ceil(2 * p.HalfExtent / p.CellSize))
	if cols < 1 {
		cols = 1
	}
	t := &Terrain{
		half:    p.HalfExtent,
		cell:    p.CellSize,
		cols:    cols,
		blocked: make([]bool, cols*cols),
	}
	if p.BlockThreshold >= 1 {
		return t
	}
	noise := opensimplex.NewNormalized(p.Seed)
	for r := 0; r < cols; r++ {
		for c := 0; c < cols; c++ {
			x := -p.HalfExtent + (float64(c)+0.5)*p.CellSize
			z := -p.HalfExtent + (float64(r)+0.5)*p.CellSize
			v := octaveNoise(noise, x, z, 3, p.Frequency, 0.5)
			t.blocked[r*cols+c] = v > p.BlockThreshold
		}
	}
	return t
}

// octaveNoise layers several frequencies of normalized noise.
func octaveNoise(noise opensimplex.Noise, x, z float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, z*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}

func (t *Terrain) cellOf(p Vec2) (int, int, bool) {
	c := int(math.Floor((p.X + t.half) / t.cell))
	r := int(math.Floor((p.Z + t.half) / t.cell))
	if c < 0 || r < 0 || c >= t.cols || r >= t.cols {
		return 0, 0, false
	}
	return c, r, true
}

func (t *Terrain) Walkable(p Vec2) bool {
	c, r, ok := t.cellOf(p)
	return ok && !t.blocked[r*t.cols+c]
}

// Carve clears every cell whose center lies within radius of center.
// Scenario setup carves spawn points and leader starts.
func (t *Terrain) Carve(center Vec2, radius float64) {
	for r := 0; r < t.cols; r++ {
		for c := 0; c < t.cols; c++ {
			cc := Vec2{
				X: -t.half + (float64(c)+0.5)*t.cell,
				Z: -t.half + (float64(r)+0.5)*t.cell,
			}
			if cc.Dist(center) <= radius+t.cell/2 {
				t.blocked[r*t.cols+c] = false
			}
		}
	}
}

func (t *Terrain) HalfExtent() float64 { return t.half }

// Blocked returns the number of blocked cells and the total cell count.
func (t *Terrain) Blocked() (blocked, total int) {
	for _, b := range t.blocked {
		if b {
			blocked++
		}
	}
	return blocked, len(t.blocked)
}
