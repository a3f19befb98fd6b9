package tactics

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/heap"

	"github.com/talgya/hex-tactics/internal/grid"
	"github.com/talgya/hex-tactics/internal/world"
)

// ErrUnreachable is returned when no walkable route reaches the target.
var ErrUnreachable = errors.New("target unreachable")

// PathRequest asks for a route for the requester to the target node.
type PathRequest struct {
	Requester grid.OccupantID
	Target    world.HexCoord
}

// Pathfinder finds routes over a grid.
type Pathfinder interface {
	// FindPath returns the nodes from `from` to `to`, both included.
	FindPath(g *grid.Grid, from, to world.HexCoord) ([]world.HexCoord, error)
}

// AStar is the default Pathfinder: A* over walkable nodes with the hex
// distance as heuristic. Every step costs 1.
type AStar struct {
	// MaxExpansions bounds the search; zero means no bound.
	MaxExpansions int
}

type openNode struct {
	coord world.HexCoord
	cost  int // steps from start
	score int // cost + heuristic
	seq   int // insertion order, keeps ties deterministic
}

// FindPath implements Pathfinder.
func (a AStar) FindPath(g *grid.Grid, from, to world.HexCoord) ([]world.HexCoord, error) {
	if !g.HasNode(from) {
		return nil, fmt.Errorf("path from %v: %w", from, grid.ErrNodeNotFound)
	}
	if from == to {
		return []world.HexCoord{from}, nil
	}
	if !g.IsWalkable(to) {
		return nil, fmt.Errorf("path %v -> %v: target blocked: %w", from, to, ErrUnreachable)
	}

	open := heap.New[openNode](func(x, y openNode) bool {
		if x.score != y.score {
			return x.score < y.score
		}
		return x.seq < y.seq
	})
	seq := 0
	open.Push(openNode{coord: from, score: world.Distance(from, to)})

	cameFrom := make(map[world.HexCoord]world.HexCoord)
	costSoFar := map[world.HexCoord]int{from: 0}
	expansions := 0

	for open.Size() > 0 {
		cur, _ := open.Pop()
		if cur.coord == to {
			return reconstructPath(cameFrom, from, to), nil
		}
		if cur.cost > costSoFar[cur.coord] {
			continue // stale entry
		}
		expansions++
		if a.MaxExpansions > 0 && expansions > a.MaxExpansions {
			break
		}

		for _, next := range g.WalkableNeighbors(cur.coord) {
			newCost := cur.cost + 1
			if old, seen := costSoFar[next]; seen && newCost >= old {
				continue
			}
			costSoFar[next] = newCost
			cameFrom[next] = cur.coord
			seq++
			open.Push(openNode{
				coord: next,
				cost:  newCost,
				score: newCost + world.Distance(next, to),
				seq:   seq,
			})
		}
	}
	return nil, fmt.Errorf("path %v -> %v: %w", from, to, ErrUnreachable)
}

func reconstructPath(cameFrom map[world.HexCoord]world.HexCoord, from, to world.HexCoord) []world.HexCoord {
	path := []world.HexCoord{to}
	for cur := to; cur != from; {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// UnitPath is a planned route owned by one unit. It is replaced wholesale
// on every request and consumed front to back by movement.
type UnitPath struct {
	nodes []world.HexCoord
	next  int
}

// Replace discards the current route and installs nodes.
func (p *UnitPath) Replace(nodes []world.HexCoord) {
	p.nodes = append(p.nodes[:0], nodes...)
	p.next = 0
}

// Peek returns the next node to consume.
func (p *UnitPath) Peek() (world.HexCoord, bool) {
	if p.Empty() {
		return world.HexCoord{}, false
	}
	return p.nodes[p.next], true
}

// Advance consumes the next node.
func (p *UnitPath) Advance() {
	if !p.Empty() {
		p.next++
	}
}

// Remaining returns the nodes not yet consumed.
func (p *UnitPath) Remaining() []world.HexCoord {
	return p.nodes[p.next:]
}

// Len returns the number of nodes not yet consumed.
func (p *UnitPath) Len() int {
	return len(p.nodes) - p.next
}

// Empty reports whether the route is exhausted.
func (p *UnitPath) Empty() bool {
	return p.next >= len(p.nodes)
}

// Clear drops the route, on completion or cancellation.
func (p *UnitPath) Clear() {
	p.nodes = p.nodes[:0]
	p.next = 0
}

// Resolve answers req by filling buf with the route from the requester's
// node. The requester's own node is dropped from the front, so buf holds
// only the steps still to take. On failure buf is cleared.
func Resolve(g *grid.Grid, pf Pathfinder, req PathRequest, from world.HexCoord, buf *UnitPath) error {
	nodes, err := pf.FindPath(g, from, req.Target)
	if err != nil {
		buf.Clear()
		return fmt.Errorf("resolve path for %s: %w", req.Requester.Short(), err)
	}
	if len(nodes) == 0 || nodes[0] != from {
		buf.Clear()
		return fmt.Errorf("resolve path for %s: route does not start at %v: %w", req.Requester.Short(), from, ErrUnreachable)
	}
	buf.Replace(nodes[1:])
	return nil
}
