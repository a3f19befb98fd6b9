// Package tactics derives movement ranges, move/attack targets, and paths
// from a grid. Nothing here mutates the grid.
package tactics

import (
	"slices"
	"sync"

	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"github.com/talgya/hex-tactics/internal/grid"
	"github.com/talgya/hex-tactics/internal/world"
)

// MoveRangeSet is the set of nodes a unit may end its move on, captured when
// the unit's turn or selection starts. It is never updated in place.
type MoveRangeSet struct {
	owner  grid.OccupantID
	origin world.HexCoord
	budget int
	nodes  mapset.Set[world.HexCoord]
}

// ComputeMoveRange walks from origin through walkable nodes, at most budget
// steps. The origin is always part of the range.
func ComputeMoveRange(g *grid.Grid, owner grid.OccupantID, origin world.HexCoord, budget int) *MoveRangeSet {
	nodes := mapset.New[world.HexCoord]()
	nodes.Put(origin)

	type step struct {
		coord world.HexCoord
		cost  int
	}
	frontier := queue.New[step]()
	frontier.Enqueue(step{coord: origin})

	for !frontier.Empty() {
		cur := frontier.Dequeue()
		if cur.cost >= budget {
			continue
		}
		for _, next := range g.WalkableNeighbors(cur.coord) {
			if nodes.Has(next) {
				continue
			}
			nodes.Put(next)
			frontier.Enqueue(step{coord: next, cost: cur.cost + 1})
		}
	}

	return &MoveRangeSet{
		owner:  owner,
		origin: origin,
		budget: budget,
		nodes:  nodes,
	}
}

// Contains reports whether coord is in the range. A nil set contains nothing.
func (s *MoveRangeSet) Contains(coord world.HexCoord) bool {
	if s == nil {
		return false
	}
	return s.nodes.Has(coord)
}

// Len returns the number of nodes in the range.
func (s *MoveRangeSet) Len() int {
	if s == nil {
		return 0
	}
	return s.nodes.Size()
}

// Nodes returns the range ordered by Q, then R.
func (s *MoveRangeSet) Nodes() []world.HexCoord {
	if s == nil {
		return nil
	}
	out := make([]world.HexCoord, 0, s.nodes.Size())
	s.nodes.Each(func(c world.HexCoord) {
		out = append(out, c)
	})
	slices.SortFunc(out, grid.CompareCoords)
	return out
}

// Owner returns the unit the range was computed for.
func (s *MoveRangeSet) Owner() grid.OccupantID {
	if s == nil {
		return grid.NilOccupant
	}
	return s.owner
}

// Origin returns the node the range was computed from.
func (s *MoveRangeSet) Origin() world.HexCoord {
	if s == nil {
		return world.HexCoord{}
	}
	return s.origin
}

// Budget returns the step budget the range was computed with.
func (s *MoveRangeSet) Budget() int {
	if s == nil {
		return 0
	}
	return s.budget
}

// MoveRangeCache holds the latest move range of each unit.
type MoveRangeCache struct {
	mu   sync.RWMutex
	sets map[grid.OccupantID]*MoveRangeSet
}

// NewMoveRangeCache creates an empty cache.
func NewMoveRangeCache() *MoveRangeCache {
	return &MoveRangeCache{sets: make(map[grid.OccupantID]*MoveRangeSet)}
}

// Store replaces the cached range of the set's owner.
func (c *MoveRangeCache) Store(s *MoveRangeSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[s.owner] = s
}

// Get returns the cached range of id, or nil.
func (c *MoveRangeCache) Get(id grid.OccupantID) *MoveRangeSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sets[id]
}

// Invalidate drops the cached range of id.
func (c *MoveRangeCache) Invalidate(id grid.OccupantID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sets, id)
}

// Len returns the number of cached ranges.
func (c *MoveRangeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets)
}
