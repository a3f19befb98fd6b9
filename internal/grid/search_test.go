package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hex-tactics/internal/world"
)

func TestFloodFillVisitsExactDisc(t *testing.T) {
	for radius := 0; radius <= 6; radius++ {
		start := world.HexCoord{Q: 2, R: -3}
		seen := mapset.New[world.HexCoord]()
		visits := 0
		floodFill(start, radius, func(c world.HexCoord) {
			visits++
			assert.False(t, seen.Has(c), "revisited %v", c)
			seen.Put(c)
			assert.LessOrEqual(t, world.Distance(start, c), radius)
		})
		assert.Equal(t, world.TilesInRange(radius), visits, "radius %d", radius)
	}
}

func TestFloodFillNegativeRadius(t *testing.T) {
	called := false
	floodFill(world.HexCoord{}, -1, func(world.HexCoord) { called = true })
	assert.False(t, called)
}

func TestFindOccupantsInRangeZero(t *testing.T) {
	g := newDiscGrid(t, 2)
	start := world.HexCoord{}

	assert.Zero(t, g.FindOccupantsInRange(start, 0).Size())

	require.NoError(t, g.SetOccupant(world.HexCoord{Q: 1, R: 0}, NewOccupantID()))
	assert.Zero(t, g.FindOccupantsInRange(start, 0).Size(), "neighbors are out of range 0")

	require.NoError(t, g.SetOccupant(start, NewOccupantID()))
	found := g.FindOccupantsInRange(start, 0)
	assert.Equal(t, 1, found.Size())
	assert.True(t, found.Has(start))
}

func TestFindOccupantsInRange(t *testing.T) {
	g := newDiscGrid(t, 4)
	occupied := []world.HexCoord{
		{Q: 0, R: 0},
		{Q: 1, R: 0},
		{Q: 2, R: -1},
		{Q: -3, R: 0},
		{Q: 4, R: -4},
	}
	for _, c := range occupied {
		require.NoError(t, g.SetOccupant(c, NewOccupantID()))
	}

	start := world.HexCoord{Q: 1, R: 0}
	for radius := 0; radius <= 6; radius++ {
		found := g.FindOccupantsInRange(start, radius)
		want := 0
		for _, c := range occupied {
			if world.Distance(start, c) <= radius {
				want++
				assert.True(t, found.Has(c), "radius %d missing %v", radius, c)
			}
		}
		assert.Equal(t, want, found.Size(), "radius %d", radius)
	}
}

// Near the map edge the disc still has its full geometric extent: off-map
// cells are walked through, so occupants across a gap are still found.
func TestFindOccupantsInRangeAcrossHole(t *testing.T) {
	layout := world.DefaultLayout()
	g := New(3)
	a := world.HexCoord{Q: 0, R: 0}
	b := world.HexCoord{Q: 3, R: 0}
	for _, c := range []world.HexCoord{a, b} {
		require.NoError(t, g.SetPosition(c, layout.ToWorld(c)))
	}
	require.NoError(t, g.SetOccupant(b, NewOccupantID()))

	assert.False(t, g.FindOccupantsInRange(a, 2).Has(b))
	assert.True(t, g.FindOccupantsInRange(a, 3).Has(b))
}

func TestNodesInRange(t *testing.T) {
	g := newDiscGrid(t, 2)

	nodes := g.NodesInRange(world.HexCoord{}, 1)
	require.Len(t, nodes, 7)
	assert.Equal(t, world.HexCoord{}, nodes[0], "start comes first")
	for i, dir := range world.NeighborOffsets() {
		assert.Equal(t, dir, nodes[i+1], "neighbors follow direction order")
	}

	// A corner of the disc only sees the part of its range that is on the map.
	corner := world.HexCoord{Q: 2, R: 0}
	edge := g.NodesInRange(corner, 1)
	assert.Len(t, edge, 4)
	for _, c := range edge {
		assert.True(t, g.HasNode(c))
	}
}

func TestWalkableNeighbors(t *testing.T) {
	g := newDiscGrid(t, 1)
	require.NoError(t, g.SetOccupant(world.HexCoord{Q: 1, R: 0}, NewOccupantID()))

	got := g.WalkableNeighbors(world.HexCoord{})
	assert.Len(t, got, 5)
	assert.NotContains(t, got, world.HexCoord{Q: 1, R: 0})

	edge := g.WalkableNeighbors(world.HexCoord{Q: -1, R: 0})
	assert.Len(t, edge, 3)
}
