package engine

import (
	"github.com/talgya/hex-tactics/internal/grid"
	"github.com/talgya/hex-tactics/internal/tactics"
	"github.com/talgya/hex-tactics/internal/world"
)

// Team is a side in the battle.
type Team uint8

const (
	TeamWest Team = iota
	TeamEast
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamWest {
		return TeamEast
	}
	return TeamWest
}

func (t Team) String() string {
	if t == TeamWest {
		return "west"
	}
	return "east"
}

// Unit is a combatant standing on one grid node.
type Unit struct {
	ID          grid.OccupantID `json:"id"`
	Team        Team            `json:"team"`
	Node        world.HexCoord  `json:"node"`
	Movement    int             `json:"movement"`     // Steps per turn
	AttackRange int             `json:"attack_range"` // Hex distance for attacks
	Sight       int             `json:"sight"`        // Observation radius
	Health      int             `json:"health"`
	Alive       bool            `json:"alive"`
	Acted       bool            `json:"acted"` // Has received an order this turn

	Path          tactics.UnitPath `json:"-"`
	PendingAttack *world.HexCoord  `json:"pending_attack,omitempty"`
}

// Idle reports whether the unit has nothing left to execute.
func (u *Unit) Idle() bool {
	return u.Path.Empty() && u.PendingAttack == nil
}
