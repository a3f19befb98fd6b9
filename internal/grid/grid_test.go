package grid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/hex-tactics/internal/world"
)

// newDiscGrid registers every hex within radius of the origin.
func newDiscGrid(t *testing.T, radius int) *Grid {
	t.Helper()
	layout := world.DefaultLayout()
	g := New(world.TilesInRange(radius))
	for q := -radius; q <= radius; q++ {
		for r := max(-radius, -q-radius); r <= min(radius, -q+radius); r++ {
			c := world.HexCoord{Q: q, R: r}
			require.NoError(t, g.SetPosition(c, layout.ToWorld(c)))
		}
	}
	return g
}

func TestUnregisteredNode(t *testing.T) {
	g := newDiscGrid(t, 1)
	missing := []world.HexCoord{{Q: 5, R: 5}, {Q: 2, R: 0}, {Q: -2, R: 1}}
	for _, c := range missing {
		assert.False(t, g.HasNode(c))
		_, err := g.Position(c)
		assert.ErrorIs(t, err, ErrNodeNotFound)
	}
}

func TestSetPositionOverwrites(t *testing.T) {
	g := New(1)
	c := world.HexCoord{Q: 1, R: 2}
	require.NoError(t, g.SetPosition(c, world.Position{X: 1, Y: 1}))
	require.NoError(t, g.SetPosition(c, world.Position{X: 3, Y: 4}))

	pos, err := g.Position(c)
	require.NoError(t, err)
	assert.Equal(t, world.Position{X: 3, Y: 4}, pos)
	assert.Equal(t, 1, g.NodeCount())
}

func TestSetOccupantIdempotent(t *testing.T) {
	g := newDiscGrid(t, 1)
	c := world.HexCoord{Q: 1, R: 0}
	a := NewOccupantID()

	require.NoError(t, g.SetOccupant(c, a))
	require.NoError(t, g.SetOccupant(c, a))

	assert.True(t, g.HasOccupant(c))
	assert.Equal(t, 1, g.OccupantCount())
	got, ok := g.Occupant(c)
	assert.True(t, ok)
	assert.Equal(t, a, got)
}

func TestSetOccupantRejectsSecondOccupant(t *testing.T) {
	g := newDiscGrid(t, 1)
	c := world.HexCoord{}
	a, b := NewOccupantID(), NewOccupantID()

	require.NoError(t, g.SetOccupant(c, a))
	err := g.SetOccupant(c, b)
	assert.ErrorIs(t, err, ErrNodeOccupied)

	got, _ := g.Occupant(c)
	assert.Equal(t, a, got, "first occupant must survive")
}

func TestSetOccupantOffMap(t *testing.T) {
	g := newDiscGrid(t, 1)
	err := g.SetOccupant(world.HexCoord{Q: 9, R: 9}, NewOccupantID())
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Zero(t, g.OccupantCount())
}

func TestSetOccupantNil(t *testing.T) {
	g := newDiscGrid(t, 1)
	assert.ErrorIs(t, g.SetOccupant(world.HexCoord{}, NilOccupant), ErrNilOccupant)
}

func TestRemoveOccupant(t *testing.T) {
	g := newDiscGrid(t, 1)
	c := world.HexCoord{Q: 0, R: 1}
	a := NewOccupantID()

	require.NoError(t, g.SetOccupant(c, a))
	g.RemoveOccupant(c, a)
	assert.False(t, g.HasOccupant(c))
	_, ok := g.Occupant(c)
	assert.False(t, ok)
}

func TestRemoveOccupantNeverAdded(t *testing.T) {
	g := newDiscGrid(t, 1)
	c := world.HexCoord{Q: -1, R: 0}
	g.RemoveOccupant(c, NewOccupantID())
	assert.False(t, g.HasOccupant(c))

	a := NewOccupantID()
	require.NoError(t, g.SetOccupant(c, a))
	g.RemoveOccupant(c, NewOccupantID())
	assert.True(t, g.HasOccupant(c), "removing a different occupant is a no-op")
}

func TestMoveOccupant(t *testing.T) {
	g := newDiscGrid(t, 1)
	a, b := NewOccupantID(), NewOccupantID()
	from, to := world.HexCoord{}, world.HexCoord{Q: 1, R: 0}

	require.NoError(t, g.SetOccupant(from, a))
	require.NoError(t, g.MoveOccupant(from, to, a))
	assert.False(t, g.HasOccupant(from))
	got, _ := g.Occupant(to)
	assert.Equal(t, a, got)

	require.NoError(t, g.SetOccupant(from, b))
	err := g.MoveOccupant(from, to, b)
	assert.ErrorIs(t, err, ErrNodeOccupied)
	got, _ = g.Occupant(from)
	assert.Equal(t, b, got, "failed move leaves grid unchanged")

	// An empty node and a node held by someone else are both "not the occupant".
	err = g.MoveOccupant(world.HexCoord{Q: -1, R: 1}, from, a)
	assert.ErrorIs(t, err, ErrNotOccupant)
	assert.NotErrorIs(t, err, ErrNodeNotFound)
	err = g.MoveOccupant(from, world.HexCoord{Q: 0, R: 1}, a)
	assert.ErrorIs(t, err, ErrNotOccupant)

	err = g.MoveOccupant(to, world.HexCoord{Q: 5, R: 5}, a)
	assert.ErrorIs(t, err, ErrNodeNotFound, "destination is not a node")
	got, _ = g.Occupant(to)
	assert.Equal(t, a, got)
}

func TestIsWalkable(t *testing.T) {
	g := newDiscGrid(t, 2)
	id := NewOccupantID()
	require.NoError(t, g.SetOccupant(world.HexCoord{Q: 1, R: 1}, id))

	for q := -4; q <= 4; q++ {
		for r := -4; r <= 4; r++ {
			c := world.HexCoord{Q: q, R: r}
			assert.Equal(t, g.HasNode(c) && !g.HasOccupant(c), g.IsWalkable(c), "%v", c)
		}
	}
	assert.False(t, g.IsWalkable(world.HexCoord{Q: 1, R: 1}))
}

func TestNeighborIsPureArithmetic(t *testing.T) {
	g := New(0)
	c := world.HexCoord{Q: 100, R: -7}
	assert.Equal(t, world.HexCoord{Q: 100, R: -8}, g.Neighbor(c, world.DirNorth))
	assert.Equal(t, world.HexCoord{Q: 101, R: -8}, g.Neighbor(c, world.DirNorthEast))
}

func TestNodesSorted(t *testing.T) {
	g := newDiscGrid(t, 1)
	nodes := g.Nodes()
	require.Len(t, nodes, 7)
	assert.Equal(t, world.HexCoord{Q: -1, R: 0}, nodes[0])
	assert.Equal(t, world.HexCoord{Q: 1, R: 0}, nodes[6])
}

func TestDispose(t *testing.T) {
	g := newDiscGrid(t, 1)
	require.NoError(t, g.SetOccupant(world.HexCoord{}, NewOccupantID()))

	require.NoError(t, g.Dispose())
	assert.True(t, g.Disposed())
	assert.ErrorIs(t, g.Dispose(), ErrDisposed)

	assert.False(t, g.HasNode(world.HexCoord{}))
	assert.False(t, g.HasOccupant(world.HexCoord{}))
	assert.ErrorIs(t, g.SetPosition(world.HexCoord{}, world.Position{}), ErrDisposed)
	assert.ErrorIs(t, g.SetOccupant(world.HexCoord{}, NewOccupantID()), ErrDisposed)
	assert.Zero(t, g.FindOccupantsInRange(world.HexCoord{}, 2).Size())
}

func TestDisposeWaitsForReaders(t *testing.T) {
	g := newDiscGrid(t, 6)
	for _, c := range g.Nodes() {
		if (c.Q+c.R)%3 == 0 {
			require.NoError(t, g.SetOccupant(c, NewOccupantID()))
		}
	}

	eg, _ := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		eg.Go(func() error {
			for j := 0; j < 50; j++ {
				g.FindOccupantsInRange(world.HexCoord{}, 4)
				g.IsWalkable(world.HexCoord{Q: 1, R: 1})
			}
			return nil
		})
	}
	eg.Go(g.Dispose)
	require.NoError(t, eg.Wait())
	assert.True(t, g.Disposed())
}

func TestOccupantID(t *testing.T) {
	a := NewOccupantID()
	assert.False(t, a.IsNil())
	assert.True(t, NilOccupant.IsNil())
	assert.Len(t, a.String(), 36)
	assert.Len(t, a.Short(), 8)
	assert.NotEqual(t, a, NewOccupantID())
}
