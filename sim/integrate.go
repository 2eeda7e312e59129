package sim

import (
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/world"
)

// applyIntents folds each player's validated per-tick input into either
// the ship they are manning (if mounted at a helm) or their own free
// motion. Iteration is by ascending player id — the
// caller has already called World.SortDeterministic this tick — so two
// players pushing against the same ship always apply their thrust in the
// same order.
func applyIntents(w *world.World, intents map[world.EntityID]MoveIntent, dt fixedpoint.Fixed) {
	for i := range w.Players() {
		p := &w.Players()[i]
		intent, ok := intents[p.ID]
		if !ok {
			continue
		}
		p.Facing = intent.Facing

		if p.State == world.PlayerMounted && p.Carrier.HasCarrier() {
			applyHelmIntent(w, p, intent, dt)
			continue
		}
		p.MovementIntent = intent.Movement
		accel := fixedpoint.ScaleVec(intent.Movement, fixedpoint.Mul(PlayerAccel, dt))
		p.Velocity = fixedpoint.AddVec(p.Velocity, accel)
	}
}

// applyHelmIntent turns a mounted player's movement intent into thrust on
// the ship they occupy, but only when the occupied module is a helm —
// seats and cannons hold a player in place without granting ship control.
func applyHelmIntent(w *world.World, p *world.Player, intent MoveIntent, dt fixedpoint.Fixed) {
	mod, err := w.LookupModule(p.Carrier.Module)
	if err != nil || mod.Kind != world.ModuleHelm || mod.Destroyed {
		return
	}
	s, err := w.LookupShip(p.Carrier.Ship)
	if err != nil {
		return
	}
	forward := fixedpoint.Vec2{X: fixedpoint.Cos(s.Rotation), Y: fixedpoint.Sin(s.Rotation)}
	thrust := fixedpoint.Mul(intent.Movement.Y, fixedpoint.Mul(s.MaxSpeed, dt))
	s.LinearVelocity = fixedpoint.AddVec(s.LinearVelocity, fixedpoint.ScaleVec(forward, thrust))

	turn := fixedpoint.Mul(intent.Movement.X, fixedpoint.Mul(s.TurnRate, dt))
	s.AngularVelocity = fixedpoint.Add(s.AngularVelocity, turn)
	mod.WheelRotation = intent.Movement.X
}

// integrateShips applies drag, clamps velocity to the ship's stated speed
// and turn-rate bounds, advances position/rotation with the clamped
// velocities, then advances each module's own per-tick state. Only the
// cannon reload timer advances here; a mast's sail openness changes only
// through module interaction.
func integrateShips(w *world.World, dt fixedpoint.Fixed) {
	for i := range w.Ships() {
		s := &w.Ships()[i]
		if s.Destroyed {
			continue
		}
		s.LinearVelocity = fixedpoint.ScaleVec(s.LinearVelocity, s.LinearDrag)
		s.AngularVelocity = fixedpoint.Mul(s.AngularVelocity, s.AngularDrag)

		s.LinearVelocity = fixedpoint.ClampLength(s.LinearVelocity, s.MaxSpeed)
		if s.AngularVelocity > s.TurnRate {
			s.AngularVelocity = s.TurnRate
		} else if s.AngularVelocity < -s.TurnRate {
			s.AngularVelocity = -s.TurnRate
		}

		s.Position = fixedpoint.AddVec(s.Position, fixedpoint.ScaleVec(s.LinearVelocity, dt))
		s.Rotation = fixedpoint.NormalizeAngle(fixedpoint.Add(s.Rotation, fixedpoint.Mul(s.AngularVelocity, dt)))

		for _, mods := range w.ModulesOf(s.ID) {
			integrateModule(mods)
		}
	}
}

func integrateModule(m *world.Module) {
	if m.Destroyed {
		return
	}
	switch m.Kind {
	case world.ModuleCannon:
		if m.TicksSinceFire < m.ReloadDuration {
			m.TicksSinceFire++
		}
	}
}

// integratePlayers recomputes mounted players' world position from their
// carrying ship, and integrates free players' drag/clamp motion exactly
// like a ship's linear terms but with the player's own constants.
func integratePlayers(w *world.World, dt fixedpoint.Fixed) {
	for i := range w.Players() {
		p := &w.Players()[i]
		if p.State == world.PlayerMounted && p.Carrier.HasCarrier() {
			recomputeMountedPosition(w, p)
			continue
		}
		p.Velocity = fixedpoint.ScaleVec(p.Velocity, PlayerLinearDrag)
		p.Velocity = fixedpoint.ClampLength(p.Velocity, PlayerMaxSpeed)
		p.Position = fixedpoint.AddVec(p.Position, fixedpoint.ScaleVec(p.Velocity, dt))
	}
}

// recomputeMountedPosition places a mounted player at the ship's current
// rotation applied to their carrier offset, rather than storing an
// absolute position — this is what makes the Carrier a weak reference:
// if the ship or module has vanished this tick, the player is
// dismounted instead of left floating at a stale position.
func recomputeMountedPosition(w *world.World, p *world.Player) {
	s, err := w.LookupShip(p.Carrier.Ship)
	if err != nil {
		dismount(p)
		return
	}
	mod, err := w.LookupModule(p.Carrier.Module)
	if err != nil || mod.Destroyed || mod.Ship != s.ID {
		dismount(p)
		return
	}
	local := fixedpoint.AddVec(mod.LocalPos, p.Carrier.Offset)
	offset := fixedpoint.Rotate(local, s.Rotation)
	p.Position = fixedpoint.AddVec(s.Position, offset)
	p.Velocity = fixedpoint.AddVec(s.LinearVelocity, fixedpoint.ScaleVec(fixedpoint.Perp(offset), s.AngularVelocity))
}

func dismount(p *world.Player) {
	p.Carrier = world.Carrier{}
	p.State = world.PlayerFalling
}

// integrateProjectiles advances each live projectile and counts down its
// remaining lifetime; ExpireProjectiles reaps the ones that
// reach zero at the start of the next Step.
func integrateProjectiles(w *world.World, dt fixedpoint.Fixed) {
	projectiles := w.Projectiles()
	for i := range projectiles {
		p := &projectiles[i]
		p.Position = fixedpoint.AddVec(p.Position, fixedpoint.ScaleVec(p.Velocity, dt))
		p.Lifetime--
		if outOfBounds(p.Position) {
			p.Lifetime = 0
		}
		if live, err := w.LookupProjectile(p.ID); err == nil {
			*live = *p
		}
	}
}

func outOfBounds(pos fixedpoint.Vec2) bool {
	if WorldExtent.X == 0 && WorldExtent.Y == 0 {
		return false
	}
	return fixedpoint.Abs(pos.X) > WorldExtent.X || fixedpoint.Abs(pos.Y) > WorldExtent.Y
}
