package grid

import "errors"

var (
	// ErrNodeNotFound is returned when a coordinate is not a registered node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when a tile is registered twice for one node.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrNodeOccupied is returned when placing an occupant on a node held by another.
	ErrNodeOccupied = errors.New("node occupied")

	// ErrNotOccupant is returned when moving an occupant from a node it does not hold.
	ErrNotOccupant = errors.New("not the occupant")

	// ErrNilOccupant is returned when the zero handle is used as an occupant.
	ErrNilOccupant = errors.New("nil occupant")

	// ErrDisposed is returned by mutations after Dispose.
	ErrDisposed = errors.New("grid disposed")
)
