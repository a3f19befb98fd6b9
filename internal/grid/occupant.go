package grid

import "github.com/google/uuid"

// OccupantID is an opaque handle to whatever holds a node: a unit or an
// obstacle. The grid never dereferences it.
type OccupantID uuid.UUID

// NilOccupant is the zero handle; it never occupies a node.
var NilOccupant OccupantID

// NewOccupantID returns a fresh random handle.
func NewOccupantID() OccupantID {
	return OccupantID(uuid.New())
}

// IsNil reports whether id is the zero handle.
func (id OccupantID) IsNil() bool {
	return id == NilOccupant
}

func (id OccupantID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits, for log lines.
func (id OccupantID) Short() string {
	return id.String()[:8]
}
