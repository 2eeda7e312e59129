package sim

import (
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/prng"
	"github.com/kreid06/brigantine-core/world"
)

// resolveCollisions runs the three collision passes in a fixed order:
// ship-versus-ship hull overlap (broad phase by bounding radius, narrow
// phase by separating-axis test on the hull polygons),
// projectile-versus-ship hits (point-in-polygon against the ship-local
// hull), then free-player-versus-deck boarding transitions. rng is
// reserved for future glancing-hit/splinter-damage jitter and is not yet
// consumed.
func resolveCollisions(w *world.World, rng *prng.Source) {
	resolveShipShipCollisions(w)
	resolveProjectileHits(w)
	resolveBoardingTransitions(w)
}

// resolveShipShipCollisions separates overlapping hulls and applies a
// simple impulse restitution along the collision normal. Pairs are
// iterated in ascending-id order (the caller already sorted the ships
// array this tick) so the outcome does not depend on map iteration order.
func resolveShipShipCollisions(w *world.World) {
	ships := w.Ships()
	for i := 0; i < len(ships); i++ {
		a := &ships[i]
		if a.Destroyed {
			continue
		}
		for j := i + 1; j < len(ships); j++ {
			b := &ships[j]
			if b.Destroyed {
				continue
			}
			if !boundingCirclesOverlap(a, b) {
				continue
			}
			axis, depth, ok := satOverlap(a, b)
			if !ok {
				continue
			}
			separate(a, b, axis, depth)
		}
	}
}

func boundingCirclesOverlap(a, b *world.Ship) bool {
	r := fixedpoint.Add(a.BoundingRadius(), b.BoundingRadius())
	return fixedpoint.Distance(a.Position, b.Position) <= r
}

// worldHull returns a's hull transformed into world space.
func worldHull(a *world.Ship) []fixedpoint.Vec2 {
	out := make([]fixedpoint.Vec2, len(a.Hull))
	for i, v := range a.Hull {
		out[i] = fixedpoint.AddVec(a.Position, fixedpoint.Rotate(v, a.Rotation))
	}
	return out
}

// satOverlap runs the separating-axis test against both hulls' edge
// normals and returns the minimum-penetration axis (pointing from a
// toward b) if every axis shows overlap.
func satOverlap(a, b *world.Ship) (axis fixedpoint.Vec2, depth fixedpoint.Fixed, overlap bool) {
	ha := worldHull(a)
	hb := worldHull(b)
	if len(ha) < 3 || len(hb) < 3 {
		return axis, depth, false
	}

	minDepth := fixedpoint.Max
	var minAxis fixedpoint.Vec2
	found := false

	test := func(hull []fixedpoint.Vec2) bool {
		for i := range hull {
			edge := fixedpoint.SubVec(hull[(i+1)%len(hull)], hull[i])
			normal := fixedpoint.Vec2{X: fixedpoint.Sub(0, edge.Y), Y: edge.X}
			if fixedpoint.LengthSq(normal) == 0 {
				continue
			}
			length := fixedpoint.Length(normal)
			normal = fixedpoint.ScaleVec(normal, fixedpoint.Div(fixedpoint.FromInt(1), length))

			aMin, aMax := projectHull(ha, normal)
			bMin, bMax := projectHull(hb, normal)
			if aMax < bMin || bMax < aMin {
				return false
			}
			overlapDepth := fixedpoint.Sub(minFixed(aMax, bMax), maxFixed(aMin, bMin))
			if overlapDepth < minDepth {
				minDepth = overlapDepth
				minAxis = normal
				found = true
			}
		}
		return true
	}

	if !test(ha) || !test(hb) {
		return axis, depth, false
	}
	if !found {
		return axis, depth, false
	}

	centerDelta := fixedpoint.SubVec(b.Position, a.Position)
	if fixedpoint.Dot(centerDelta, minAxis) < 0 {
		minAxis = fixedpoint.ScaleVec(minAxis, fixedpoint.FromInt(-1))
	}
	return minAxis, minDepth, true
}

func projectHull(hull []fixedpoint.Vec2, axis fixedpoint.Vec2) (min, max fixedpoint.Fixed) {
	min = fixedpoint.Dot(hull[0], axis)
	max = min
	for _, v := range hull[1:] {
		d := fixedpoint.Dot(v, axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

func minFixed(a, b fixedpoint.Fixed) fixedpoint.Fixed {
	if a < b {
		return a
	}
	return b
}

func maxFixed(a, b fixedpoint.Fixed) fixedpoint.Fixed {
	if a > b {
		return a
	}
	return b
}

// separate pushes both ships apart along axis by depth (split evenly) and
// applies a simple restitution impulse, capped so a single overlapping
// tick can never eject a ship at an unreasonable speed.
func separate(a, b *world.Ship, axis fixedpoint.Vec2, depth fixedpoint.Fixed) {
	if depth > CollisionSeparationCap {
		depth = CollisionSeparationCap
	}
	half := fixedpoint.Div(depth, fixedpoint.FromInt(2))
	a.Position = fixedpoint.SubVec(a.Position, fixedpoint.ScaleVec(axis, half))
	b.Position = fixedpoint.AddVec(b.Position, fixedpoint.ScaleVec(axis, half))

	relVel := fixedpoint.SubVec(b.LinearVelocity, a.LinearVelocity)
	closing := fixedpoint.Dot(relVel, axis)
	if closing >= 0 {
		return
	}
	impulse := fixedpoint.ScaleVec(axis, fixedpoint.Mul(closing, CollisionRestitution))
	a.LinearVelocity = fixedpoint.AddVec(a.LinearVelocity, impulse)
	b.LinearVelocity = fixedpoint.SubVec(b.LinearVelocity, impulse)
}

// ProjectileGraceTicks is the collision grace window after a projectile
// spawns during which it cannot hit its own ship, so a cannonball leaving
// the muzzle never detonates against the hull that fired it. A second at
// the default tick rate is long enough to clear the widest hull at
// muzzle speed. After the window the owner is a valid target like any
// other ship.
const ProjectileGraceTicks = 30

// resolveProjectileHits tests each live projectile against every ship's
// hull via point-in-polygon in ship-local space, applying damage and
// destroying the projectile on first hit. Ships whose hull health
// reaches zero this pass are destroyed after iteration completes, which
// cascades to their modules (mounted players dismount on the next tick
// via the weak carrier reference).
func resolveProjectileHits(w *world.World) {
	projectiles := w.Projectiles()
	ships := w.Ships()
	var sunk []world.EntityID
	for i := range projectiles {
		p := &projectiles[i]
		for j := range ships {
			s := &ships[j]
			if s.Destroyed {
				continue
			}
			if s.ID == p.Owner && w.Tick-p.SpawnTick < ProjectileGraceTicks {
				continue
			}
			if !pointInPolygonWorld(p.Position, s) {
				continue
			}
			s.HullHealth = fixedpoint.Sub(s.HullHealth, p.Damage)
			if s.HullHealth <= 0 {
				s.HullHealth = 0
				s.Destroyed = true
				sunk = append(sunk, s.ID)
			}
			damageNearestPlank(w, s, p.Position, p.Damage)
			_ = w.Destroy(p.ID)
			break
		}
	}
	for _, id := range sunk {
		_ = w.Destroy(id)
	}
}

// resolveBoardingTransitions mounts a free player to a ship's deck
// module when they are inside the hull polygon with low velocity
// relative to the ship. Mounted players leaving a removed module are
// handled by the integrator's stale-carrier dismount, not here.
func resolveBoardingTransitions(w *world.World) {
	players := w.Players()
	ships := w.Ships()
	for i := range players {
		p := &players[i]
		if p.State == world.PlayerMounted {
			continue
		}
		for j := range ships {
			s := &ships[j]
			if s.Destroyed || !pointInPolygonWorld(p.Position, s) {
				continue
			}
			rel := fixedpoint.SubVec(p.Velocity, s.LinearVelocity)
			if fixedpoint.LengthSq(rel) > fixedpoint.Mul(MountEntrySpeed, MountEntrySpeed) {
				continue
			}
			deck := deckModule(w, s.ID)
			if deck == nil {
				continue
			}
			p.State = world.PlayerMounted
			p.Carrier = mountCarrier(p, s, deck)
			break
		}
	}
}

func deckModule(w *world.World, ship world.EntityID) *world.Module {
	for _, mod := range w.ModulesOf(ship) {
		if mod.Kind == world.ModuleDeck && !mod.Destroyed {
			return mod
		}
	}
	return nil
}

// damageNearestPlank applies a projectile's damage to the plank module
// closest to the hit point ("apply ... to the nearest
// plank module"). A ship with no plank modules takes hull damage only.
func damageNearestPlank(w *world.World, s *world.Ship, hitWorld fixedpoint.Vec2, damage fixedpoint.Fixed) {
	var nearest *world.Module
	var nearestDist fixedpoint.Fixed
	for _, mod := range w.ModulesOf(s.ID) {
		if mod.Kind != world.ModulePlank || mod.Destroyed {
			continue
		}
		worldPos := fixedpoint.AddVec(s.Position, fixedpoint.Rotate(mod.LocalPos, s.Rotation))
		dist := fixedpoint.Distance(hitWorld, worldPos)
		if nearest == nil || dist < nearestDist {
			nearest, nearestDist = mod, dist
		}
	}
	if nearest == nil {
		return
	}
	nearest.Health = fixedpoint.Sub(nearest.Health, damage)
	if nearest.Health <= 0 {
		nearest.Health = 0
		nearest.Destroyed = true
	}
}

// pointInPolygonWorld tests a world-space point against ship's hull by
// transforming the point into ship-local space (inverse rotate/translate)
// and running a standard ray-cast point-in-polygon test.
func pointInPolygonWorld(point fixedpoint.Vec2, s *world.Ship) bool {
	local := fixedpoint.Rotate(fixedpoint.SubVec(point, s.Position), fixedpoint.Sub(0, s.Rotation))
	hull := s.Hull
	if len(hull) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(hull)-1; i < len(hull); j, i = i, i+1 {
		vi, vj := hull[i], hull[j]
		if (vi.Y > local.Y) != (vj.Y > local.Y) {
			slopeNum := fixedpoint.Mul(fixedpoint.Sub(vj.X, vi.X), fixedpoint.Sub(local.Y, vi.Y))
			slopeDen := fixedpoint.Sub(vj.Y, vi.Y)
			xCross := fixedpoint.Add(vi.X, fixedpoint.Div(slopeNum, slopeDen))
			if local.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}
