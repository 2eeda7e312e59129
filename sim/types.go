// Package sim implements the fixed-timestep physics and gameplay step:
// ship and player integration, collisions, projectile lifetime, and
// module interaction. It is the only package that mutates world.World
// outside of entity creation/destruction, and it never uses floating
// point — every quantity it touches is a fixedpoint.Fixed.
package sim

import "github.com/kreid06/brigantine-core/fixedpoint"

// ActionBits is the per-tick action bitmask carried by a player's
// pending input.
type ActionBits uint32

const (
	ActionInteract ActionBits = 1 << iota
	ActionFire
	ActionMount
	ActionDismount
	ActionBroadside
)

// Has reports whether bit is set.
func (a ActionBits) Has(bit ActionBits) bool { return a&bit != 0 }

// MoveIntent is the validated, already-clamped per-tick input state for
// one player, as read by the simulation at the start of the tick.
// When the owning player is mounted at a helm, Movement.Y is forward/back
// thrust and Movement.X is turn command, both in [-1,1]; when free, it is a
// normalized direction of travel.
type MoveIntent struct {
	Movement     fixedpoint.Vec2 // clamped to length <= 1
	Facing       fixedpoint.Fixed
	Actions      ActionBits
	CannonAim    fixedpoint.Fixed
	HasCannonAim bool
}

// Physical tuning constants. These are not part of config.Config (which
// exposes session/AOI/timeout tuning, not gameplay constants) — they
// are the rigid-body/drag/clamp model's fixed parameters, a small
// table of the handful of values this simpler physics model needs.
var (
	PlayerMaxSpeed     = fixedpoint.FromFloat(3.0)
	PlayerLinearDrag   = fixedpoint.FromFloat(0.85)
	PlayerAccel        = fixedpoint.FromFloat(6.0)
	PlayerRadius       = fixedpoint.FromFloat(0.5)
	MountEntrySpeed    = fixedpoint.FromFloat(1.0) // max relative speed to auto-mount a deck
	CannonMuzzleSpeed  = fixedpoint.FromFloat(40.0)
	CollisionRestitution = fixedpoint.FromFloat(0.3)
	CollisionSeparationCap = fixedpoint.FromFloat(2.0)
)

// WorldExtent is the world's half-extent on each axis: a projectile whose
// position leaves the box [-X,X]×[-Y,Y] is removed at the start of the
// next tick. A zero extent disables the bound (unbounded world), which
// is what most unit tests run with.
var WorldExtent fixedpoint.Vec2
