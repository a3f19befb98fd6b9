package tactics

import (
	"math"

	"github.com/talgya/hex-tactics/internal/grid"
	"github.com/talgya/hex-tactics/internal/world"
)

// Selection identifies the selected unit and the node it stands on.
type Selection struct {
	ID   grid.OccupantID
	Node world.HexCoord
}

// TargetQuery is one input cycle: the hovered node, the raw cursor position
// in world space, and the current selection with its cached move range.
type TargetQuery struct {
	Hover     world.HexCoord
	Cursor    world.Position
	Selection *Selection    // nil when nothing is selected
	MoveRange *MoveRangeSet // nil when no range is cached
}

// TargetResult holds the targets derived from a query. A nil field means
// there is no valid target this cycle.
type TargetResult struct {
	MoveTarget   *world.HexCoord `json:"move_target,omitempty"`
	AttackTarget *world.HexCoord `json:"attack_target,omitempty"`
}

// Empty reports whether neither target is set.
func (r TargetResult) Empty() bool {
	return r.MoveTarget == nil && r.AttackTarget == nil
}

// TargetResolver turns a hovered node into a move target and an attack target.
type TargetResolver struct {
	grid *grid.Grid
}

// NewTargetResolver creates a resolver reading from g.
func NewTargetResolver(g *grid.Grid) *TargetResolver {
	return &TargetResolver{grid: g}
}

// Resolve derives both targets for one input cycle.
//
// When the hovered node holds a unit, the move target is the neighbor of the
// hovered node closest to the cursor and the attack target is the hovered
// node. Otherwise the hovered node is the move target and that closest
// neighbor is the attack target. A move target outside the move range falls
// back to the selected unit's own node if the hovered node is adjacent to it.
// An attack target must be occupied and must not be the selected node.
func (tr *TargetResolver) Resolve(q TargetQuery) TargetResult {
	sel := q.Selection
	if sel == nil {
		return TargetResult{}
	}
	if q.Hover == sel.Node {
		return TargetResult{}
	}
	if id, ok := tr.grid.Occupant(q.Hover); ok && id == sel.ID {
		return TargetResult{}
	}

	closest, ok := tr.closestNeighbor(q.Hover, q.Cursor)
	if !ok {
		return TargetResult{}
	}

	moveCandidate, attackCandidate := q.Hover, closest
	if tr.grid.HasOccupant(q.Hover) {
		moveCandidate, attackCandidate = closest, q.Hover
	}

	var res TargetResult
	switch {
	case q.MoveRange.Contains(moveCandidate):
		res.MoveTarget = &moveCandidate
	case world.IsNeighbor(sel.Node, q.Hover):
		stay := sel.Node
		res.MoveTarget = &stay
	}

	if attackCandidate != sel.Node && tr.grid.HasOccupant(attackCandidate) {
		res.AttackTarget = &attackCandidate
	}
	return res
}

// ResolveAttack reports only the attack target of a query.
func (tr *TargetResolver) ResolveAttack(q TargetQuery) *world.HexCoord {
	return tr.Resolve(q).AttackTarget
}

// closestNeighbor returns the on-map neighbor of hover whose center is
// nearest the cursor. Ties go to the earlier direction.
func (tr *TargetResolver) closestNeighbor(hover world.HexCoord, cursor world.Position) (world.HexCoord, bool) {
	minDist := math.MaxFloat64
	var closest world.HexCoord
	found := false

	for _, n := range hover.Neighbors() {
		pos, err := tr.grid.Position(n)
		if err != nil {
			continue
		}
		if d := world.DistanceSq(cursor, pos); d < minDist {
			minDist = d
			closest = n
			found = true
		}
	}
	return closest, found
}
