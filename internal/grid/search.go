package grid

import (
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"github.com/talgya/hex-tactics/internal/world"
)

type frontierStep struct {
	coord world.HexCoord
	depth int
}

// floodFill visits every coordinate within radius steps of start exactly
// once, in breadth-first order. The walk covers the whole hex lattice, not
// just registered nodes, so map edges and holes never shrink the disc.
// Work stops once TilesInRange(radius) cells have been visited.
// Callers must hold g.mu.
func floodFill(start world.HexCoord, radius int, visit func(c world.HexCoord)) {
	limit := world.TilesInRange(radius)
	if limit == 0 {
		return
	}

	visited := mapset.New[world.HexCoord]()
	frontier := queue.New[frontierStep]()

	visited.Put(start)
	visit(start)
	frontier.Enqueue(frontierStep{coord: start})

	for !frontier.Empty() && visited.Size() < limit {
		cur := frontier.Dequeue()
		if cur.depth == radius {
			continue
		}
		for _, dir := range world.NeighborOffsets() {
			next := cur.coord.Add(dir)
			if visited.Has(next) {
				continue
			}
			visited.Put(next)
			visit(next)
			frontier.Enqueue(frontierStep{coord: next, depth: cur.depth + 1})
		}
	}
}

// FindOccupantsInRange returns every occupied node within radius steps of
// start, start included. A negative radius yields an empty set.
func (g *Grid) FindOccupantsInRange(start world.HexCoord, radius int) mapset.Set[world.HexCoord] {
	found := mapset.New[world.HexCoord]()

	g.mu.RLock()
	defer g.mu.RUnlock()

	floodFill(start, radius, func(c world.HexCoord) {
		if _, ok := g.occupants[c]; ok {
			found.Put(c)
		}
	})
	return found
}

// NodesInRange returns the registered nodes within radius steps of start,
// in breadth-first order.
func (g *Grid) NodesInRange(start world.HexCoord, radius int) []world.HexCoord {
	var nodes []world.HexCoord

	g.mu.RLock()
	defer g.mu.RUnlock()

	floodFill(start, radius, func(c world.HexCoord) {
		if _, ok := g.positions[c]; ok {
			nodes = append(nodes, c)
		}
	})
	return nodes
}

// WalkableNeighbors returns the walkable nodes adjacent to coord, in
// direction order.
func (g *Grid) WalkableNeighbors(coord world.HexCoord) []world.HexCoord {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]world.HexCoord, 0, world.DirectionCount)
	for _, n := range coord.Neighbors() {
		if g.isWalkableLocked(n) {
			out = append(out, n)
		}
	}
	return out
}
