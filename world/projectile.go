package world

import "github.com/kreid06/brigantine-core/fixedpoint"

// Projectile is a cannonball with a finite lifetime, destroyed on expiry
// or first collision.
type Projectile struct {
	ID       EntityID
	Owner    EntityID // owning ship id
	Position fixedpoint.Vec2
	Velocity fixedpoint.Vec2
	Damage   fixedpoint.Fixed

	SpawnTick uint64
	Lifetime  int // ticks remaining

	// live is false once a slot has been tombstoned; the dense
	// projectile array reuses tombstoned slots on the next
	// createProjectile rather than compacting every tick.
	live bool
}
