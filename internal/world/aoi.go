package world

import (
	"math"
	"sort"

	"github.com/crowdclash/server/internal/core/ecs"
)

// AOIGrid is a cell-based spatial index of actor positions. Proximity
// queries visit only the cells overlapping the query box; callers do the
// fine-grained distance filtering.
// Accessed only from the game loop goroutine, no locks.
type AOIGrid struct {
	cell  float64
	cells map[cellKey]map[ecs.EntityID]struct{}
}

type cellKey struct {
	cx int32
	cz int32
}

func NewAOIGrid(cellSize float64) *AOIGrid {
	return &AOIGrid{
		cell:  cellSize,
		cells: make(map[cellKey]map[ecs.EntityID]struct{}),
	}
}

func (g *AOIGrid) coord(v float64) int32 {
	return int32(math.Floor(v / g.cell))
}

func (g *AOIGrid) key(p Vec2) cellKey {
	return cellKey{cx: g.coord(p.X), cz: g.coord(p.Z)}
}

func (g *AOIGrid) Add(id ecs.EntityID, p Vec2) {
	k := g.key(p)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

func (g *AOIGrid) Remove(id ecs.EntityID, p Vec2) {
	k := g.key(p)
	if cell := g.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates an actor's cell when its position changes.
func (g *AOIGrid) Move(id ecs.EntityID, from, to Vec2) {
	if g.key(from) == g.key(to) {
		return
	}
	g.Remove(id, from)
	g.Add(id, to)
}

// Query returns the actors in every cell overlapping the square of half
// side radius around p, sorted by handle.
func (g *AOIGrid) Query(p Vec2, radius float64) []ecs.EntityID {
	minX, maxX := g.coord(p.X-radius), g.coord(p.X+radius)
	minZ, maxZ := g.coord(p.Z-radius), g.coord(p.Z+radius)
	var out []ecs.EntityID
	for cx := minX; cx <= maxX; cx++ {
		for cz := minZ; cz <= maxZ; cz++ {
			for id := range g.cells[cellKey{cx: cx, cz: cz}] {
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
