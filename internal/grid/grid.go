// Package grid is the authoritative spatial index of a battlefield: which
// hexes are nodes, where they sit in the world, and who stands on them.
//
// A Grid is owned by one battle and passed explicitly to every query. It is
// safe for concurrent readers; writes are serialized by an internal lock, but
// the orchestrator is still expected to mutate from a single step per tick.
package grid

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/talgya/hex-tactics/internal/world"
)

// Grid maps node coordinates to world positions and to at most one occupant.
type Grid struct {
	mu        sync.RWMutex
	capacity  int
	positions map[world.HexCoord]world.Position
	occupants map[world.HexCoord]OccupantID
	disposed  bool
}

// New creates an empty grid sized for the expected node count.
func New(capacity int) *Grid {
	capacity = max(capacity, 0)
	return &Grid{
		capacity:  capacity,
		positions: make(map[world.HexCoord]world.Position, capacity),
		occupants: make(map[world.HexCoord]OccupantID, capacity),
	}
}

// Capacity returns the node count the grid was sized for.
func (g *Grid) Capacity() int {
	return g.capacity
}

// NodeCount returns the number of registered nodes.
func (g *Grid) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.positions)
}

// HasNode reports whether coord is a registered node.
func (g *Grid) HasNode(coord world.HexCoord) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.positions[coord]
	return ok
}

// Position returns the world position of a node.
func (g *Grid) Position(coord world.HexCoord) (world.Position, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	pos, ok := g.positions[coord]
	if !ok {
		return world.Position{}, fmt.Errorf("position of %v: %w", coord, ErrNodeNotFound)
	}
	return pos, nil
}

// SetPosition registers coord as a node at pos, overwriting any previous position.
func (g *Grid) SetPosition(coord world.HexCoord, pos world.Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	g.positions[coord] = pos
	return nil
}

// Nodes returns every node coordinate ordered by Q, then R.
func (g *Grid) Nodes() []world.HexCoord {
	g.mu.RLock()
	nodes := make([]world.HexCoord, 0, len(g.positions))
	for c := range g.positions {
		nodes = append(nodes, c)
	}
	g.mu.RUnlock()

	slices.SortFunc(nodes, CompareCoords)
	return nodes
}

// CompareCoords orders coordinates by Q, then R.
func CompareCoords(a, b world.HexCoord) int {
	if c := cmp.Compare(a.Q, b.Q); c != 0 {
		return c
	}
	return cmp.Compare(a.R, b.R)
}

// SetOccupant places id on coord. Placing the same occupant twice is a no-op.
// A different occupant already on coord is an error; callers must remove it first.
func (g *Grid) SetOccupant(coord world.HexCoord, id OccupantID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.setOccupantLocked(coord, id)
}

func (g *Grid) setOccupantLocked(coord world.HexCoord, id OccupantID) error {
	if g.disposed {
		return ErrDisposed
	}
	if id.IsNil() {
		return fmt.Errorf("occupy %v: %w", coord, ErrNilOccupant)
	}
	if _, ok := g.positions[coord]; !ok {
		return fmt.Errorf("occupy %v: %w", coord, ErrNodeNotFound)
	}
	if cur, ok := g.occupants[coord]; ok {
		if cur == id {
			return nil
		}
		return fmt.Errorf("occupy %v with %s: held by %s: %w", coord, id.Short(), cur.Short(), ErrNodeOccupied)
	}
	g.occupants[coord] = id
	return nil
}

// RemoveOccupant clears coord if id holds it. Otherwise nothing changes.
func (g *Grid) RemoveOccupant(coord world.HexCoord, id OccupantID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.occupants[coord]; ok && cur == id {
		delete(g.occupants, coord)
	}
}

// MoveOccupant moves id from one node to another in a single write.
// On error the grid is left unchanged.
func (g *Grid) MoveOccupant(from, to world.HexCoord, id OccupantID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	if cur, ok := g.occupants[from]; !ok || cur != id {
		return fmt.Errorf("move %s from %v: %w", id.Short(), from, ErrNotOccupant)
	}
	if from == to {
		return nil
	}
	if err := g.setOccupantLocked(to, id); err != nil {
		return err
	}
	delete(g.occupants, from)
	return nil
}

// HasOccupant reports whether anything stands on coord.
func (g *Grid) HasOccupant(coord world.HexCoord) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.occupants[coord]
	return ok
}

// Occupant returns the occupant of coord, if any.
func (g *Grid) Occupant(coord world.HexCoord) (OccupantID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.occupants[coord]
	return id, ok
}

// OccupantCount returns the number of occupied nodes.
func (g *Grid) OccupantCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.occupants)
}

// IsWalkable reports whether coord is a node with nothing on it.
func (g *Grid) IsWalkable(coord world.HexCoord) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isWalkableLocked(coord)
}

func (g *Grid) isWalkableLocked(coord world.HexCoord) bool {
	if _, ok := g.positions[coord]; !ok {
		return false
	}
	_, occupied := g.occupants[coord]
	return !occupied
}

// Neighbor returns the coordinate one step from coord in direction d.
// The result may be off the map.
func (g *Grid) Neighbor(coord world.HexCoord, d world.Direction) world.HexCoord {
	return coord.Neighbor(d)
}

// Dispose releases the grid's storage. It blocks until in-flight reads and
// writes finish. Calling it twice returns ErrDisposed.
func (g *Grid) Dispose() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disposed {
		return ErrDisposed
	}
	g.disposed = true
	g.positions = nil
	g.occupants = nil
	return nil
}

// Disposed reports whether Dispose has been called.
func (g *Grid) Disposed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.disposed
}
