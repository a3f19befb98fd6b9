// Package world provides hex geometry, terrain, and map generation.
// Uses axial coordinates (q, r) with flat-top hexes; north is +Y in world space.
package world

import (
	"fmt"
	"math"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Add returns the component-wise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// Direction indexes the neighbor table, clockwise from NorthEast.
type Direction uint8

const (
	DirNorthEast Direction = iota
	DirSouthEast
	DirSouth
	DirSouthWest
	DirNorthWest
	DirNorth
)

// DirectionCount is the number of neighbors of every hex.
const DirectionCount = 6

// hexNeighborDirections defines the six neighbor offsets in axial coordinates.
// Order matters: target resolution breaks distance ties by this order.
var hexNeighborDirections = [DirectionCount]HexCoord{
	{Q: 1, R: -1}, // NorthEast
	{Q: 1, R: 0},  // SouthEast
	{Q: 0, R: 1},  // South
	{Q: -1, R: 1}, // SouthWest
	{Q: -1, R: 0}, // NorthWest
	{Q: 0, R: -1}, // North
}

// NeighborOffset returns the axial offset of direction d.
func NeighborOffset(d Direction) HexCoord {
	return hexNeighborDirections[int(d)%DirectionCount]
}

// NeighborOffsets returns a copy of the neighbor table in direction order.
func NeighborOffsets() [DirectionCount]HexCoord {
	return hexNeighborDirections
}

var directionNames = [DirectionCount]string{
	"NorthEast", "SouthEast", "South", "SouthWest", "NorthWest", "North",
}

func (d Direction) String() string {
	if int(d) >= DirectionCount {
		return fmt.Sprintf("Direction(%d)", d)
	}
	return directionNames[d]
}

// Neighbor returns the adjacent coordinate in the given direction.
// Pure arithmetic: the result may be off the map.
func (h HexCoord) Neighbor(d Direction) HexCoord {
	return h.Add(NeighborOffset(d))
}

// Neighbors returns the six adjacent hex coordinates in direction order.
func (h HexCoord) Neighbors() [DirectionCount]HexCoord {
	var result [DirectionCount]HexCoord
	for i, dir := range hexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	return max(dq, dr, ds)
}

// IsNeighbor reports whether a and b are exactly one step apart.
func IsNeighbor(a, b HexCoord) bool {
	return Distance(a, b) == 1
}

// TilesInRange returns the number of cells within radius steps of a cell,
// the cell itself included: 3r(r+1)+1.
func TilesInRange(radius int) int {
	if radius < 0 {
		return 0
	}
	return 3*radius*(radius+1) + 1
}

// Position is a point on the ground plane of the world.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a position lifted into 3D space.
type Vec3 struct {
	X, Y, Z float64
}

// At embeds the ground position at a fixed height. The ground Y axis
// becomes Z so that Y is up.
func (p Position) At(height float64) Vec3 {
	return Vec3{X: p.X, Y: height, Z: p.Y}
}

// DistanceSq returns the squared euclidean distance between two positions.
func DistanceSq(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Layout converts between hex coordinates and world positions.
type Layout struct {
	Size   float64  // center-to-corner distance of one hex
	Origin Position // world position of hex (0,0)
}

// DefaultLayout returns a unit-sized layout centered on the origin.
func DefaultLayout() Layout {
	return Layout{Size: 1}
}

// ToWorld returns the world position of a hex center.
func (l Layout) ToWorld(h HexCoord) Position {
	x := l.Size * 1.5 * float64(h.Q)
	y := -l.Size * sqrt3 * (float64(h.R) + float64(h.Q)/2)
	return Position{X: x + l.Origin.X, Y: y + l.Origin.Y}
}

// FromWorld returns the hex containing a world position.
func (l Layout) FromWorld(p Position) HexCoord {
	x := (p.X - l.Origin.X) / l.Size
	y := (p.Y - l.Origin.Y) / l.Size
	q := x * 2 / 3
	r := -x/3 - y*sqrt3/3
	return axialRound(q, r)
}

const sqrt3 = 1.7320508075688772935274463415059

// axialRound rounds fractional axial coordinates to the nearest hex
// by rounding in cube space and fixing the component with the largest error.
func axialRound(q, r float64) HexCoord {
	s := -q - r
	rq, rr, rs := math.Round(q), math.Round(r), math.Round(s)
	dq, dr, ds := math.Abs(rq-q), math.Abs(rr-r), math.Abs(rs-s)
	if dq > dr && dq > ds {
		rq = -rr - rs
	} else if dr > ds {
		rr = -rq - rs
	}
	return HexCoord{Q: int(rq), R: int(rr)}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
