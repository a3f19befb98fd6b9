package engine

import (
	"errors"
	"log/slog"

	"github.com/talgya/hex-tactics/internal/grid"
	"github.com/talgya/hex-tactics/internal/tactics"
	"github.com/talgya/hex-tactics/internal/world"
)

// strikeBias places the scripted cursor just inside the enemy's hex, on the
// line towards the node the attacker should end on.
const strikeBias = 0.45

// Commander plays a turn for whichever team is active, issuing orders through
// the same select, hover, and order cycle a player would use.
type Commander struct {
	Orders int // Orders issued so far
}

// PlayTurn orders every live unit of the active team once. It returns the
// number of orders issued.
func (c *Commander) PlayTurn(b *Battle) (int, error) {
	issued := 0
	for _, u := range b.Units(b.Active) {
		if u.Acted {
			continue
		}
		if err := b.Select(u.ID); err != nil {
			if errors.Is(err, ErrBattleClosed) {
				return issued, err
			}
			continue
		}

		cursor, ok := c.plan(b, u)
		if !ok {
			b.Deselect()
			continue
		}
		b.Hover(cursor)
		if err := b.Order(); err != nil {
			if errors.Is(err, ErrBattleClosed) {
				return issued, err
			}
			slog.Debug("order dropped", "unit", u.ID.Short(), "error", err)
			continue
		}
		issued++
	}
	c.Orders += issued
	return issued, nil
}

// plan picks the cursor position for u: an attack on the nearest enemy it
// can reach this turn, otherwise a step towards the nearest enemy.
func (c *Commander) plan(b *Battle, u *Unit) (world.Position, bool) {
	rng := b.MoveRange(u.ID)

	for _, enemy := range b.Observe(u.ID) {
		approach, ok := approachNode(b.Grid, rng, u.Node, enemy.Node)
		if !ok {
			continue
		}
		from := b.Layout.ToWorld(enemy.Node)
		to := b.Layout.ToWorld(approach)
		return world.Position{
			X: from.X + (to.X-from.X)*strikeBias,
			Y: from.Y + (to.Y-from.Y)*strikeBias,
		}, true
	}

	goal, ok := nearestEnemy(b, u)
	if !ok {
		return world.Position{}, false
	}
	dest := u.Node
	best := world.Distance(u.Node, goal)
	for _, n := range rng.Nodes() {
		if d := world.Distance(n, goal); d < best {
			dest, best = n, d
		}
	}
	if dest == u.Node {
		return world.Position{}, false
	}
	return b.Layout.ToWorld(dest), true
}

// approachNode returns the neighbor of target inside the move range that is
// closest to the unit's node. The unit's own node counts as in range.
func approachNode(g *grid.Grid, rng *tactics.MoveRangeSet, self, target world.HexCoord) (world.HexCoord, bool) {
	var best world.HexCoord
	found := false
	for _, n := range target.Neighbors() {
		if !g.HasNode(n) || (n != self && !rng.Contains(n)) {
			continue
		}
		if !found || world.Distance(self, n) < world.Distance(self, best) {
			best, found = n, true
		}
	}
	return best, found
}

func nearestEnemy(b *Battle, u *Unit) (world.HexCoord, bool) {
	var goal world.HexCoord
	found := false
	for _, e := range b.Units(u.Team.Opponent()) {
		if !found || world.Distance(u.Node, e.Node) < world.Distance(u.Node, goal) {
			goal, found = e.Node, true
		}
	}
	return goal, found
}
