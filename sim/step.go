package sim

import (
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/prng"
	"github.com/kreid06/brigantine-core/world"
)

// Step advances w by exactly one fixed timestep dt: sort for
// determinism, reap projectiles whose lifetime ran out during the
// previous step, apply pending inputs, integrate ships, integrate
// players, integrate projectiles, resolve collisions, then advance the
// tick counter. Calling Step twice with the
// same starting world, dt, intents, and rng state must produce the same
// resulting world bit-for-bit — nothing here may read wall-clock time,
// goroutine scheduling order, or any other non-deterministic input.
func Step(w *world.World, dt fixedpoint.Fixed, intents map[world.EntityID]MoveIntent, rng *prng.Source) {
	w.SortDeterministic()
	w.ExpireProjectiles()

	applyIntents(w, intents, dt)
	integrateShips(w, dt)
	integratePlayers(w, dt)
	integrateProjectiles(w, dt)

	resolveCollisions(w, rng)

	w.Tick++
}
