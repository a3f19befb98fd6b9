// Battle ties the grid, the tile directory, and the tactical queries together
// and runs them each tick.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/hex-tactics/internal/grid"
	"github.com/talgya/hex-tactics/internal/tactics"
	"github.com/talgya/hex-tactics/internal/world"
)

var (
	// ErrUnknownUnit is returned for a handle that is not a live unit.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrNotSelectable is returned when selecting a unit that cannot act now.
	ErrNotSelectable = errors.New("unit not selectable")

	// ErrNoSelection is returned when an order is issued with nothing selected.
	ErrNoSelection = errors.New("no unit selected")

	// ErrBattleClosed is returned by every call after Close.
	ErrBattleClosed = errors.New("battle closed")
)

// BattleConfig holds battle parameters.
type BattleConfig struct {
	Layout      world.Layout
	Movement    int // Default steps per turn for spawned units
	AttackRange int
	Sight       int
	Health      int
	Damage      int
	Workers     int // Parallel move-range computations per tick
}

// DefaultBattleConfig returns a skirmish configuration.
func DefaultBattleConfig() BattleConfig {
	return BattleConfig{
		Layout:      world.DefaultLayout(),
		Movement:    3,
		AttackRange: 1,
		Sight:       5,
		Health:      10,
		Damage:      4,
		Workers:     4,
	}
}

// Event is a notable occurrence in the battle.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "order", "move", "attack", "death", "turn"
}

// Battle holds the complete state of one loaded map. It owns its grid;
// nothing else keeps a reference that outlives Close.
type Battle struct {
	mu sync.Mutex // single writer: Step, orders, selection, Close

	Grid   *grid.Grid
	Tiles  *grid.TileDirectory
	Layout world.Layout

	cfg        BattleConfig
	units      map[grid.OccupantID]*Unit
	order      []*Unit // spawn order, keeps iteration deterministic
	obstacles  map[grid.OccupantID]world.HexCoord
	ranges     *tactics.MoveRangeCache
	resolver   *tactics.TargetResolver
	pathfinder tactics.Pathfinder

	selection *tactics.Selection
	targets   tactics.TargetResult

	Active   Team
	Turn     int
	LastTick uint64
	Events   []Event

	closed bool
}

// NewBattle loads m into a fresh grid: every node tile gets a position and
// a directory entry, and blocked terrain gets an obstacle occupant.
func NewBattle(m *world.Map, cfg BattleConfig) (*Battle, error) {
	capacity := m.NodeCount()
	b := &Battle{
		Grid:       grid.New(capacity),
		Tiles:      grid.NewTileDirectory(capacity),
		Layout:     cfg.Layout,
		cfg:        cfg,
		units:      make(map[grid.OccupantID]*Unit),
		obstacles:  make(map[grid.OccupantID]world.HexCoord),
		ranges:     tactics.NewMoveRangeCache(),
		pathfinder: tactics.AStar{MaxExpansions: capacity * 4},
		Turn:       1,
	}
	b.resolver = tactics.NewTargetResolver(b.Grid)

	coords := make([]world.HexCoord, 0, len(m.Tiles))
	for c := range m.Tiles {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, grid.CompareCoords)

	for _, c := range coords {
		tile := m.Tiles[c]
		if !tile.Terrain.IsNode() {
			continue
		}
		if err := b.Grid.SetPosition(c, cfg.Layout.ToWorld(c)); err != nil {
			return nil, fmt.Errorf("load node %v: %w", c, err)
		}
		if err := b.Tiles.Register(c, tile); err != nil {
			return nil, fmt.Errorf("load tile %v: %w", c, err)
		}
		if tile.Terrain.Blocked() {
			id := grid.NewOccupantID()
			if err := b.Grid.SetOccupant(c, id); err != nil {
				return nil, fmt.Errorf("place obstacle %v: %w", c, err)
			}
			b.obstacles[id] = c
		}
	}

	slog.Info("battle ready",
		"nodes", humanize.Comma(int64(b.Grid.NodeCount())),
		"tiles", humanize.Comma(int64(b.Tiles.Len())),
		"obstacles", len(b.obstacles),
	)
	return b, nil
}

// SetPathfinder swaps the route search used for move orders.
func (b *Battle) SetPathfinder(pf tactics.Pathfinder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pathfinder = pf
}

// Spawn places a new unit of team on node.
func (b *Battle) Spawn(team Team, node world.HexCoord) (*Unit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBattleClosed
	}

	u := &Unit{
		ID:          grid.NewOccupantID(),
		Team:        team,
		Node:        node,
		Movement:    b.cfg.Movement,
		AttackRange: b.cfg.AttackRange,
		Sight:       b.cfg.Sight,
		Health:      b.cfg.Health,
		Alive:       true,
	}
	if err := b.Grid.SetOccupant(node, u.ID); err != nil {
		return nil, fmt.Errorf("spawn %s unit: %w", team, err)
	}
	b.units[u.ID] = u
	b.order = append(b.order, u)
	b.record(b.LastTick, "spawn", fmt.Sprintf("%s unit %s enters at %v", team, u.ID.Short(), node))
	return u, nil
}

// SpawnNear places a unit on the walkable node closest to anchor, searching
// outwards up to maxRadius.
func (b *Battle) SpawnNear(team Team, anchor world.HexCoord, maxRadius int) (*Unit, error) {
	for _, c := range b.Grid.NodesInRange(anchor, maxRadius) {
		if b.Grid.IsWalkable(c) {
			return b.Spawn(team, c)
		}
	}
	return nil, fmt.Errorf("spawn %s unit near %v: %w", team, anchor, grid.ErrNodeOccupied)
}

// Unit returns the unit with the given handle, or nil.
func (b *Battle) Unit(id grid.OccupantID) *Unit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.units[id]
}

// UnitAt returns the live unit standing on c, or nil.
func (b *Battle) UnitAt(c world.HexCoord) *Unit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unitAtLocked(c)
}

func (b *Battle) unitAtLocked(c world.HexCoord) *Unit {
	id, ok := b.Grid.Occupant(c)
	if !ok {
		return nil
	}
	if u := b.units[id]; u != nil && u.Alive {
		return u
	}
	return nil
}

// Units returns the live units of team in spawn order.
func (b *Battle) Units(team Team) []*Unit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.teamLocked(team)
}

func (b *Battle) teamLocked(team Team) []*Unit {
	var out []*Unit
	for _, u := range b.order {
		if u.Alive && u.Team == team {
			out = append(out, u)
		}
	}
	return out
}

// MoveRange returns the cached move range of a unit, or nil.
func (b *Battle) MoveRange(id grid.OccupantID) *tactics.MoveRangeSet {
	return b.ranges.Get(id)
}

// Select makes id the selected unit and caches its move range.
func (b *Battle) Select(id grid.OccupantID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBattleClosed
	}

	u := b.units[id]
	if u == nil || !u.Alive {
		return fmt.Errorf("select %s: %w", id.Short(), ErrUnknownUnit)
	}
	if u.Team != b.Active || u.Acted || !u.Idle() {
		return fmt.Errorf("select %s: %w", id.Short(), ErrNotSelectable)
	}

	b.ranges.Store(tactics.ComputeMoveRange(b.Grid, u.ID, u.Node, u.Movement))
	b.selection = &tactics.Selection{ID: u.ID, Node: u.Node}
	b.targets = tactics.TargetResult{}
	return nil
}

// Deselect clears the selection and the last targets.
func (b *Battle) Deselect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection = nil
	b.targets = tactics.TargetResult{}
}

// Selection returns the current selection, or nil.
func (b *Battle) Selection() *tactics.Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selection
}

// Hover resolves the targets under a cursor position and remembers them for
// the next Order.
func (b *Battle) Hover(cursor world.Position) tactics.TargetResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return tactics.TargetResult{}
	}

	hover := b.Layout.FromWorld(cursor)
	b.targets = tactics.TargetResult{}
	if b.selection == nil || !b.Grid.HasNode(hover) {
		return b.targets
	}

	b.targets = b.resolver.Resolve(tactics.TargetQuery{
		Hover:     hover,
		Cursor:    cursor,
		Selection: b.selection,
		MoveRange: b.ranges.Get(b.selection.ID),
	})
	return b.targets
}

// Order turns the last hovered targets into a move and an attack for the
// selected unit, then clears the selection. An unreachable move target drops
// the whole order.
func (b *Battle) Order() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBattleClosed
	}
	if b.selection == nil {
		return ErrNoSelection
	}
	u := b.units[b.selection.ID]
	targets := b.targets
	b.selection = nil
	b.targets = tactics.TargetResult{}

	if u == nil || !u.Alive || targets.Empty() {
		return nil
	}

	if mt := targets.MoveTarget; mt != nil && *mt != u.Node {
		req := tactics.PathRequest{Requester: u.ID, Target: *mt}
		if err := tactics.Resolve(b.Grid, b.pathfinder, req, u.Node, &u.Path); err != nil {
			b.record(b.LastTick, "order", fmt.Sprintf("%s unit %s has no path to %v", u.Team, u.ID.Short(), *mt))
			return err
		}
	}

	if at := targets.AttackTarget; at != nil {
		if enemy := b.unitAtLocked(*at); enemy != nil && enemy.Team != u.Team {
			target := *at
			u.PendingAttack = &target
		}
	}

	u.Acted = true
	b.record(b.LastTick, "order", fmt.Sprintf("%s unit %s ordered: %d steps, attack=%v",
		u.Team, u.ID.Short(), u.Path.Len(), u.PendingAttack != nil))
	return nil
}

// Step runs one tick: first the single writer phase that applies movement,
// attacks, and deaths to the grid, then the reader phase that recomputes move
// ranges of the active team against the settled grid.
func (b *Battle) Step(ctx context.Context, tick uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBattleClosed
	}
	b.LastTick = tick

	for _, u := range b.order {
		if !u.Alive {
			continue
		}
		b.advance(tick, u)
		if u.Path.Empty() && u.PendingAttack != nil {
			b.strike(tick, u)
		}
	}

	return b.refreshRangesLocked(ctx)
}

// advance moves u one node along its path.
func (b *Battle) advance(tick uint64, u *Unit) {
	next, ok := u.Path.Peek()
	if !ok {
		return
	}
	if err := b.Grid.MoveOccupant(u.Node, next, u.ID); err != nil {
		// Someone stepped in first: cancel the rest of the move and the attack.
		u.Path.Clear()
		u.PendingAttack = nil
		b.record(tick, "move", fmt.Sprintf("%s unit %s blocked at %v", u.Team, u.ID.Short(), u.Node))
		slog.Debug("move blocked", "unit", u.ID.Short(), "at", u.Node, "next", next, "error", err)
		return
	}
	u.Node = next
	u.Path.Advance()
}

// strike resolves the pending attack of u.
func (b *Battle) strike(tick uint64, u *Unit) {
	target := *u.PendingAttack
	u.PendingAttack = nil

	enemy := b.unitAtLocked(target)
	if enemy == nil || enemy.Team == u.Team {
		return
	}
	if world.Distance(u.Node, enemy.Node) > u.AttackRange {
		b.record(tick, "attack", fmt.Sprintf("%s unit %s out of reach of %v", u.Team, u.ID.Short(), target))
		return
	}

	enemy.Health -= b.cfg.Damage
	b.record(tick, "attack", fmt.Sprintf("%s unit %s hits %s unit %s (%d hp left)",
		u.Team, u.ID.Short(), enemy.Team, enemy.ID.Short(), max(enemy.Health, 0)))

	if enemy.Health <= 0 {
		b.kill(tick, enemy)
	}
}

func (b *Battle) kill(tick uint64, u *Unit) {
	u.Alive = false
	u.Path.Clear()
	u.PendingAttack = nil
	b.Grid.RemoveOccupant(u.Node, u.ID)
	b.ranges.Invalidate(u.ID)
	b.record(tick, "death", fmt.Sprintf("%s unit %s falls at %v", u.Team, u.ID.Short(), u.Node))
	slog.Info("unit died", "team", u.Team, "unit", u.ID.Short(), "node", u.Node, "tick", tick)
}

// refreshRangesLocked recomputes the move range of every idle unit of the
// active team. The computations only read the grid, so they run in parallel.
func (b *Battle) refreshRangesLocked(ctx context.Context) error {
	type job struct {
		id     grid.OccupantID
		node   world.HexCoord
		budget int
	}
	var jobs []job
	for _, u := range b.order {
		if u.Alive && u.Team == b.Active && u.Idle() {
			jobs = append(jobs, job{id: u.ID, node: u.Node, budget: u.Movement})
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(b.cfg.Workers, 1))
	for _, j := range jobs {
		j := j
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.ranges.Store(tactics.ComputeMoveRange(b.Grid, j.id, j.node, j.budget))
			return nil
		})
	}
	return eg.Wait()
}

// TeamIdle reports whether every live unit of team has finished executing.
func (b *Battle) TeamIdle(team Team) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.teamLocked(team) {
		if !u.Idle() {
			return false
		}
	}
	return true
}

// EndTurn hands control to the other team and recomputes its move ranges.
func (b *Battle) EndTurn(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBattleClosed
	}

	b.selection = nil
	b.targets = tactics.TargetResult{}
	for _, u := range b.order {
		u.Acted = false
	}
	b.Active = b.Active.Opponent()
	if b.Active == TeamWest {
		b.Turn++
	}
	b.record(b.LastTick, "turn", fmt.Sprintf("turn %d: %s to act", b.Turn, b.Active))
	return b.refreshRangesLocked(ctx)
}

// Observe returns the live enemies within sight of a unit, nearest first.
func (b *Battle) Observe(id grid.OccupantID) []*Unit {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.units[id]
	if u == nil || !u.Alive {
		return nil
	}

	var seen []*Unit
	b.Grid.FindOccupantsInRange(u.Node, u.Sight).Each(func(c world.HexCoord) {
		if other := b.unitAtLocked(c); other != nil && other.Team != u.Team {
			seen = append(seen, other)
		}
	})
	slices.SortFunc(seen, func(x, y *Unit) int {
		dx, dy := world.Distance(u.Node, x.Node), world.Distance(u.Node, y.Node)
		if dx != dy {
			return dx - dy
		}
		return grid.CompareCoords(x.Node, y.Node)
	})
	return seen
}

// Winner returns the surviving team once the other has no live units.
func (b *Battle) Winner() (Team, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	west, east := len(b.teamLocked(TeamWest)), len(b.teamLocked(TeamEast))
	switch {
	case west > 0 && east == 0:
		return TeamWest, true
	case east > 0 && west == 0:
		return TeamEast, true
	}
	return 0, false
}

// Close waits for any in-flight step and releases the grid and the tile
// directory. It may be called once; later calls return ErrBattleClosed.
func (b *Battle) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBattleClosed
	}
	b.closed = true
	b.selection = nil
	return errors.Join(b.Grid.Dispose(), b.Tiles.Dispose())
}

func (b *Battle) record(tick uint64, category, desc string) {
	b.Events = append(b.Events, Event{Tick: tick, Description: desc, Category: category})
}
