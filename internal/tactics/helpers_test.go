package tactics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/hex-tactics/internal/grid"
	"github.com/talgya/hex-tactics/internal/world"
)

var testLayout = world.DefaultLayout()

// newDiscGrid registers every hex within radius of the origin.
func newDiscGrid(t *testing.T, radius int) *grid.Grid {
	t.Helper()
	g := grid.New(world.TilesInRange(radius))
	for q := -radius; q <= radius; q++ {
		for r := max(-radius, -q-radius); r <= min(radius, -q+radius); r++ {
			c := world.HexCoord{Q: q, R: r}
			require.NoError(t, g.SetPosition(c, testLayout.ToWorld(c)))
		}
	}
	return g
}

// place puts a fresh occupant on c and returns its handle.
func place(t *testing.T, g *grid.Grid, c world.HexCoord) grid.OccupantID {
	t.Helper()
	id := grid.NewOccupantID()
	require.NoError(t, g.SetOccupant(c, id))
	return id
}

func hc(q, r int) world.HexCoord {
	return world.HexCoord{Q: q, R: r}
}

// midpoint returns the world point halfway between two hex centers.
func midpoint(a, b world.HexCoord) world.Position {
	pa, pb := testLayout.ToWorld(a), testLayout.ToWorld(b)
	return world.Position{X: (pa.X + pb.X) / 2, Y: (pa.Y + pb.Y) / 2}
}
