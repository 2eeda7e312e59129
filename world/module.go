package world

import "github.com/kreid06/brigantine-core/fixedpoint"

// ModuleKind identifies the behavior a ship module implements. The numeric
// values are NOT the wire typeId (that mapping lives in the snapshot
// package, which is the sole place external bytes are produced); this
// is the internal discriminant used to dispatch interaction and
// simulation behavior.
type ModuleKind int

const (
	ModuleHelm ModuleKind = iota
	ModuleSeat
	ModuleCannon
	ModuleMast
	ModuleLadder
	ModulePlank
	ModuleDeck
	ModuleCustom
)

// Module is a part of a ship: helm, seat, cannon, mast, ladder, plank,
// deck, or a custom placeholder kind. Modules are owned exclusively by
// their ship; destroying the ship destroys all of its modules.
type Module struct {
	ID   EntityID
	Ship EntityID
	Kind ModuleKind

	// Ship-local placement.
	LocalPos fixedpoint.Vec2
	LocalRot fixedpoint.Fixed

	Health    fixedpoint.Fixed
	MaxHealth fixedpoint.Fixed
	Active    bool
	Damaged   bool
	Destroyed bool

	// OccupiedBy is the player mounted on/operating this module, or
	// NoEntity. Helm, seat, and cannon modules can be occupied; mast,
	// ladder, plank, deck, and custom never are (NotInteractive or
	// non-mounting kinds).
	OccupiedBy EntityID

	// Cannon payload.
	AimDirection   fixedpoint.Fixed // ship-local radians
	Ammo           int
	TicksSinceFire int
	ReloadDuration int

	// Mast payload.
	PoleAngle     fixedpoint.Fixed
	SailOpenness  fixedpoint.Fixed // 0..1 in Q16.16
	WindEfficiency fixedpoint.Fixed

	// Helm payload.
	WheelRotation fixedpoint.Fixed

	// Plank payload (Health/MaxHealth above double as the plank's own
	// life total; a plank's own destruction is independent of hull
	// health reaching zero).
}

// IsInteractive reports whether this module kind responds to
// module_interact at all (plank and deck do not).
func (m *Module) IsInteractive() bool {
	switch m.Kind {
	case ModulePlank, ModuleDeck:
		return false
	default:
		return true
	}
}

// Mountable reports whether this module kind can hold an occupant.
func (m *Module) Mountable() bool {
	switch m.Kind {
	case ModuleHelm, ModuleSeat, ModuleCannon:
		return true
	default:
		return false
	}
}
