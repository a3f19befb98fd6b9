package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hex-tactics/internal/world"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "levels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSaveLoadLevel(t *testing.T) {
	c := openTemp(t)
	cfg := world.SmallTestConfig()
	m := world.Generate(cfg)

	require.NoError(t, c.SaveLevel("skirmish", cfg.Seed, m))
	assert.True(t, c.HasLevel("skirmish"))

	got, err := c.LoadLevel("skirmish")
	require.NoError(t, err)
	assert.Equal(t, m.Radius, got.Radius)
	assert.Equal(t, cfg.Seed, got.Seed)
	require.Equal(t, m.TileCount(), got.TileCount())
	for coord, tile := range m.Tiles {
		loaded := got.Get(coord)
		require.NotNil(t, loaded, "tile %v", coord)
		assert.Equal(t, tile.Terrain, loaded.Terrain)
		assert.InDelta(t, tile.Elevation, loaded.Elevation, 1e-9)
		assert.InDelta(t, tile.Moisture, loaded.Moisture, 1e-9)
	}
}

func TestLoadMissingLevel(t *testing.T) {
	c := openTemp(t)
	_, err := c.LoadLevel("nowhere")
	assert.ErrorIs(t, err, ErrLevelNotFound)
	assert.False(t, c.HasLevel("nowhere"))
}

func TestSaveLevelReplaces(t *testing.T) {
	c := openTemp(t)
	big := world.NewMap(2)
	for _, coord := range []world.HexCoord{{Q: 0, R: 0}, {Q: 1, R: 0}, {Q: 0, R: 1}} {
		big.Set(&world.Tile{Coord: coord, Terrain: world.TerrainHills})
	}
	small := world.NewMap(1)
	small.Set(&world.Tile{Coord: world.HexCoord{}, Terrain: world.TerrainWater})

	require.NoError(t, c.SaveLevel("arena", 1, big))
	require.NoError(t, c.SaveLevel("arena", 2, small))

	got, err := c.LoadLevel("arena")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Radius)
	assert.Equal(t, int64(2), got.Seed)
	assert.Equal(t, 1, got.TileCount())
	assert.Equal(t, world.TerrainWater, got.Get(world.HexCoord{}).Terrain)
}

func TestListAndDeleteLevels(t *testing.T) {
	c := openTemp(t)
	levels, err := c.ListLevels()
	require.NoError(t, err)
	assert.Empty(t, levels)

	a := world.NewMap(1)
	a.Set(&world.Tile{Coord: world.HexCoord{}, Terrain: world.TerrainPlains})
	a.Set(&world.Tile{Coord: world.HexCoord{Q: 1}, Terrain: world.TerrainForest})
	require.NoError(t, c.SaveLevel("b-level", 7, a))
	require.NoError(t, c.SaveLevel("a-level", 3, world.NewMap(0)))

	levels, err = c.ListLevels()
	require.NoError(t, err)
	assert.Equal(t, []LevelInfo{
		{Name: "a-level", Seed: 3, Radius: 0, TileCount: 0},
		{Name: "b-level", Seed: 7, Radius: 1, TileCount: 2},
	}, levels)

	require.NoError(t, c.DeleteLevel("b-level"))
	require.NoError(t, c.DeleteLevel("b-level"))
	assert.False(t, c.HasLevel("b-level"))
	_, err = c.LoadLevel("b-level")
	assert.ErrorIs(t, err, ErrLevelNotFound)
}
