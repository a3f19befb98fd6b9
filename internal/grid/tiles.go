package grid

import (
	"fmt"
	"sync"

	"github.com/talgya/hex-tactics/internal/world"
)

// TileDirectory maps each node to the terrain tile on it. It is filled once
// during map load and read-only afterwards.
type TileDirectory struct {
	mu       sync.RWMutex
	tiles    map[world.HexCoord]*world.Tile
	disposed bool
}

// NewTileDirectory creates an empty directory sized for capacity nodes.
func NewTileDirectory(capacity int) *TileDirectory {
	return &TileDirectory{
		tiles: make(map[world.HexCoord]*world.Tile, max(capacity, 0)),
	}
}

// Register records tile as the terrain of coord. A coordinate can be
// registered only once; the first registration is kept.
func (d *TileDirectory) Register(coord world.HexCoord, tile *world.Tile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed {
		return ErrDisposed
	}
	if _, exists := d.tiles[coord]; exists {
		return fmt.Errorf("register tile %v: %w", coord, ErrDuplicateNode)
	}
	d.tiles[coord] = tile
	return nil
}

// Lookup returns the tile registered for coord.
func (d *TileDirectory) Lookup(coord world.HexCoord) (*world.Tile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tile, ok := d.tiles[coord]
	return tile, ok
}

// Len returns the number of registered tiles.
func (d *TileDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tiles)
}

// Dispose releases the directory. Calling it twice returns ErrDisposed.
func (d *TileDirectory) Dispose() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed {
		return ErrDisposed
	}
	d.disposed = true
	d.tiles = nil
	return nil
}
