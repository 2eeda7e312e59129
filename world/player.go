package world

import "github.com/kreid06/brigantine-core/fixedpoint"

// PlayerState is the player's current locomotion mode.
type PlayerState int

const (
	PlayerWalking PlayerState = iota
	PlayerSwimming
	PlayerFalling
	PlayerMounted
)

// Carrier is a weak reference naming the ship and module a player is
// mounted on, plus the player's offset in ship-local space. It is
// resolved by lookup every tick rather than held as a pointer: if the
// ship or module no longer exists, the player is dismounted on the next
// tick.
type Carrier struct {
	Ship   EntityID
	Module EntityID
	Offset fixedpoint.Vec2
}

// HasCarrier reports whether c names a ship at all.
func (c Carrier) HasCarrier() bool {
	return c.Ship != NoEntity
}

// Player is an embodied avatar, free-walking or mounted on a ship module.
type Player struct {
	ID EntityID

	Position fixedpoint.Vec2
	Velocity fixedpoint.Vec2
	Facing   fixedpoint.Fixed
	Radius   fixedpoint.Fixed
	Health   fixedpoint.Fixed
	State    PlayerState

	Carrier Carrier

	// MovementIntent is the last validated movement vector (clamped to
	// the unit disk) applied to free motion; unused while mounted.
	MovementIntent fixedpoint.Vec2
}
