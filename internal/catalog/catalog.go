// Package catalog provides SQLite-backed storage of level layouts.
// A level is the authored tile map a battle is loaded from.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hex-tactics/internal/world"
)

// ErrLevelNotFound is returned when a level name is not in the catalog.
var ErrLevelNotFound = errors.New("level not found")

// LevelInfo summarizes one stored level.
type LevelInfo struct {
	Name      string `db:"name" json:"name"`
	Seed      int64  `db:"seed" json:"seed"`
	Radius    int    `db:"radius" json:"radius"`
	TileCount int    `db:"tile_count" json:"tile_count"`
}

type tileRow struct {
	Q         int     `db:"q"`
	R         int     `db:"r"`
	Terrain   uint8   `db:"terrain"`
	Elevation float64 `db:"elevation"`
	Moisture  float64 `db:"moisture"`
}

// Catalog wraps a SQLite connection holding level layouts.
type Catalog struct {
	conn *sqlx.DB
}

// Open opens or creates a catalog database at the given path.
func Open(path string) (*Catalog, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	c := &Catalog{conn: conn}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.conn.Close()
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS levels (
		name TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		radius INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS level_tiles (
		level TEXT NOT NULL REFERENCES levels(name) ON DELETE CASCADE,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		elevation REAL NOT NULL,
		moisture REAL NOT NULL,
		PRIMARY KEY (level, q, r)
	);
	`
	_, err := c.conn.Exec(schema)
	return err
}

// SaveLevel writes a level under name, replacing any level already stored
// with that name.
func (c *Catalog) SaveLevel(name string, seed int64, m *world.Map) error {
	tx, err := c.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM level_tiles WHERE level = ?", name); err != nil {
		return fmt.Errorf("clear tiles: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO levels (name, seed, radius) VALUES (?, ?, ?)",
		name, seed, m.Radius,
	); err != nil {
		return fmt.Errorf("save level: %w", err)
	}

	stmt, err := tx.Preparex(
		"INSERT INTO level_tiles (level, q, r, terrain, elevation, moisture) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range m.Tiles {
		if _, err := stmt.Exec(name, t.Coord.Q, t.Coord.R, uint8(t.Terrain), t.Elevation, t.Moisture); err != nil {
			return fmt.Errorf("save tile %v: %w", t.Coord, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("level saved", "name", name, "tiles", humanize.Comma(int64(len(m.Tiles))))
	return nil
}

// LoadLevel reads the level stored under name.
func (c *Catalog) LoadLevel(name string) (*world.Map, error) {
	var info LevelInfo
	err := c.conn.Get(&info, "SELECT name, seed, radius FROM levels WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", name, ErrLevelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}

	var rows []tileRow
	if err := c.conn.Select(&rows,
		"SELECT q, r, terrain, elevation, moisture FROM level_tiles WHERE level = ?",
		name,
	); err != nil {
		return nil, fmt.Errorf("load %q tiles: %w", name, err)
	}

	m := world.NewMap(info.Radius)
	m.Seed = info.Seed
	for _, row := range rows {
		m.Set(&world.Tile{
			Coord:     world.HexCoord{Q: row.Q, R: row.R},
			Terrain:   world.Terrain(row.Terrain),
			Elevation: row.Elevation,
			Moisture:  row.Moisture,
		})
	}
	return m, nil
}

// HasLevel reports whether a level is stored under name.
func (c *Catalog) HasLevel(name string) bool {
	var n int
	if err := c.conn.Get(&n, "SELECT COUNT(*) FROM levels WHERE name = ?", name); err != nil {
		return false
	}
	return n > 0
}

// ListLevels returns every stored level, ordered by name.
func (c *Catalog) ListLevels() ([]LevelInfo, error) {
	var levels []LevelInfo
	err := c.conn.Select(&levels, `
		SELECT l.name, l.seed, l.radius, COUNT(t.q) AS tile_count
		FROM levels l LEFT JOIN level_tiles t ON t.level = l.name
		GROUP BY l.name
		ORDER BY l.name`)
	return levels, err
}

// DeleteLevel removes a level and its tiles. Deleting a missing level is
// not an error.
func (c *Catalog) DeleteLevel(name string) error {
	tx, err := c.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM level_tiles WHERE level = ?", name); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM levels WHERE name = ?", name); err != nil {
		return err
	}
	return tx.Commit()
}
