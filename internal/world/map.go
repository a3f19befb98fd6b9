package world

import "fmt"

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open ground
	TerrainForest                  // Walkable, slows nothing in this core
	TerrainHills                   // Walkable high ground
	TerrainMountain                // A node, but permanently held by an obstacle
	TerrainWater                   // Not a node at all
)

// IsNode reports whether tiles of this terrain become grid nodes.
func (t Terrain) IsNode() bool {
	return t != TerrainWater
}

// Blocked reports whether a node of this terrain carries an obstacle occupant.
func (t Terrain) Blocked() bool {
	return t == TerrainMountain
}

// Tile represents a single terrain tile on the map.
type Tile struct {
	Coord     HexCoord `json:"coord"`
	Terrain   Terrain  `json:"terrain"`
	Elevation float64  `json:"elevation"` // 0.0 (sea level) to 1.0 (peak)
	Moisture  float64  `json:"moisture"`  // 0.0 (arid) to 1.0 (wet)
}

// Map holds the complete hex tile layout of one level.
type Map struct {
	Tiles  map[HexCoord]*Tile `json:"-"`
	Radius int                `json:"radius"`
	Seed   int64              `json:"seed"` // Noise seed the tiles came from; zero for hand-built maps
}

// NewMap creates an empty map with the given radius.
// A hex map of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Tiles:  make(map[HexCoord]*Tile, TilesInRange(radius)),
		Radius: radius,
	}
}

// Get returns the tile at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord HexCoord) *Tile {
	return m.Tiles[coord]
}

// Set places a tile at its coordinate.
func (m *Map) Set(tile *Tile) {
	m.Tiles[tile.Coord] = tile
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return Distance(coord, HexCoord{}) <= m.Radius
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.Tiles)
}

// NodeCount returns the number of tiles that become grid nodes.
func (m *Map) NodeCount() int {
	n := 0
	for _, t := range m.Tiles {
		if t.Terrain.IsNode() {
			n++
		}
	}
	return n
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, tiles=%d)", m.Radius, m.TileCount())
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range m.Tiles {
		counts[t.Terrain]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainHills:
		return "Hills"
	case TerrainMountain:
		return "Mountain"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}
