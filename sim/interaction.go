package sim

import (
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/world"
)

// InteractReason names why a module_interact request succeeded or
// failed. The tick loop puts String()'s code into the reason field of
// the module_interact_failure reply; sim itself never touches the
// network.
type InteractReason int

const (
	InteractOK InteractReason = iota
	InteractNotOnShip
	InteractShipNotFound
	InteractModuleNotFound
	InteractOutOfRange
	InteractModuleDestroyed
	InteractModuleOccupied
	InteractNotInteractive
)

func (r InteractReason) String() string {
	switch r {
	case InteractOK:
		return "ok"
	case InteractNotOnShip:
		return "not_on_ship"
	case InteractShipNotFound:
		return "ship_not_found"
	case InteractModuleNotFound:
		return "module_not_found"
	case InteractOutOfRange:
		return "out_of_range"
	case InteractModuleDestroyed:
		return "module_destroyed"
	case InteractModuleOccupied:
		return "module_occupied"
	case InteractNotInteractive:
		return "not_interactive"
	default:
		return "unknown"
	}
}

// InteractRange is the maximum distance between a free-walking player
// and a module for module_interact to succeed. A mounted player is
// always in range of every module on the ship carrying them.
var InteractRange = fixedpoint.FromFloat(50.0)

// Interact attempts to have player operate module on ship, returning a
// typed failure reason on rejection. Mounting (ModuleHelm/Seat/Cannon) occupies the
// module and sets the player's Carrier; interacting with a mast, ladder,
// or custom module toggles/advances its own state without mounting;
// plank and deck are never interactive.
func Interact(w *world.World, playerID, shipID, moduleID world.EntityID) InteractReason {
	p, err := w.LookupPlayer(playerID)
	if err != nil {
		return InteractShipNotFound
	}
	s, err := w.LookupShip(shipID)
	if err != nil {
		return InteractShipNotFound
	}
	mod, err := w.LookupModule(moduleID)
	if err != nil || mod.Ship != shipID {
		return InteractModuleNotFound
	}
	if mod.Destroyed {
		return InteractModuleDestroyed
	}
	if !mod.IsInteractive() {
		return InteractNotInteractive
	}
	if !withinInteractRange(w, p, s, mod) {
		return InteractOutOfRange
	}

	if mod.Mountable() {
		return mountPlayer(w, p, s, mod)
	}
	advanceModule(mod)
	return InteractOK
}

// Dismount releases player from whatever module currently carries them.
// It is always legal, including against a Carrier that has already
// gone stale (the player simply returns to PlayerFalling, matching
// integrate.go's own stale-carrier handling).
func Dismount(w *world.World, playerID world.EntityID) InteractReason {
	p, err := w.LookupPlayer(playerID)
	if err != nil {
		return InteractShipNotFound
	}
	if !p.Carrier.HasCarrier() {
		return InteractNotOnShip
	}
	if mod, err := w.LookupModule(p.Carrier.Module); err == nil && mod.OccupiedBy == playerID {
		mod.OccupiedBy = world.NoEntity
	}
	dismount(p)
	return InteractOK
}

func withinInteractRange(w *world.World, p *world.Player, s *world.Ship, mod *world.Module) bool {
	if p.State == world.PlayerMounted && p.Carrier.Ship == s.ID {
		return true
	}
	worldModulePos := fixedpoint.AddVec(s.Position, fixedpoint.Rotate(mod.LocalPos, s.Rotation))
	return fixedpoint.DistanceSq(p.Position, worldModulePos) <= fixedpoint.Mul(InteractRange, InteractRange)
}

func mountPlayer(w *world.World, p *world.Player, s *world.Ship, mod *world.Module) InteractReason {
	if mod.OccupiedBy != world.NoEntity && mod.OccupiedBy != p.ID {
		return InteractModuleOccupied
	}
	if p.Carrier.HasCarrier() && p.Carrier.Module != mod.ID {
		if prev, err := w.LookupModule(p.Carrier.Module); err == nil && prev.OccupiedBy == p.ID {
			prev.OccupiedBy = world.NoEntity
		}
	}
	mod.OccupiedBy = p.ID
	p.State = world.PlayerMounted
	p.Carrier = mountCarrier(p, s, mod)
	return InteractOK
}

// mountCarrier builds the weak carrier reference for a player mounting
// mod: the stored offset is the player's ship-local position relative to
// the module's own local position, so the integrator can recompute the
// world position as ship.position + rotate(module.localPos + offset,
// ship.rotation) every tick.
func mountCarrier(p *world.Player, s *world.Ship, mod *world.Module) world.Carrier {
	local := fixedpoint.Rotate(fixedpoint.SubVec(p.Position, s.Position), fixedpoint.Sub(0, s.Rotation))
	return world.Carrier{
		Ship:   s.ID,
		Module: mod.ID,
		Offset: fixedpoint.SubVec(local, mod.LocalPos),
	}
}

// advanceModule handles the non-mounting interactive kinds: mast trim
// toggles sail openness between closed and full, ladder/custom have no
// persistent state beyond being marked active.
func advanceModule(mod *world.Module) {
	switch mod.Kind {
	case world.ModuleMast:
		if mod.SailOpenness >= fixedpoint.FromFloat(1.0) {
			mod.SailOpenness = 0
		} else {
			mod.SailOpenness = fixedpoint.FromFloat(1.0)
		}
	case world.ModuleLadder, world.ModuleCustom:
		mod.Active = !mod.Active
	}
}

// FireCannon attempts to fire the cannon module a player occupies,
// spawning a projectile along the cannon's aim direction if reload and
// ammo allow it. It returns false (and spawns nothing) when the module is
// not a ready, occupied cannon.
func FireCannon(w *world.World, playerID, moduleID world.EntityID) (*world.Projectile, bool) {
	p, err := w.LookupPlayer(playerID)
	if err != nil || p.Carrier.Module != moduleID {
		return nil, false
	}
	mod, err := w.LookupModule(moduleID)
	if err != nil || mod.Kind != world.ModuleCannon || mod.Destroyed {
		return nil, false
	}
	if mod.OccupiedBy != playerID {
		return nil, false
	}
	if mod.Ammo <= 0 || mod.TicksSinceFire < mod.ReloadDuration {
		return nil, false
	}
	s, err := w.LookupShip(mod.Ship)
	if err != nil {
		return nil, false
	}
	return fireModule(w, s, mod)
}

// fireModule spawns one projectile from a ready cannon: muzzle at the
// cannon's world position, velocity = ship velocity + muzzle speed along
// ship.rotation + aim (the aim direction is ship-local).
func fireModule(w *world.World, s *world.Ship, mod *world.Module) (*world.Projectile, bool) {
	worldAngle := fixedpoint.Add(s.Rotation, mod.AimDirection)
	muzzlePos := fixedpoint.AddVec(s.Position, fixedpoint.Rotate(mod.LocalPos, s.Rotation))
	direction := fixedpoint.Vec2{X: fixedpoint.Cos(worldAngle), Y: fixedpoint.Sin(worldAngle)}
	velocity := fixedpoint.AddVec(s.LinearVelocity, fixedpoint.ScaleVec(direction, CannonMuzzleSpeed))

	proj, err := w.CreateProjectile(muzzlePos, velocity, s.ID, fixedpoint.FromFloat(10), 90)
	if err != nil {
		return nil, false
	}
	mod.Ammo--
	mod.TicksSinceFire = 0
	return proj, true
}

// FireOneCannon fires the first ready cannon (ascending module id) on
// the ship carrying player — the cannon_fire path with fire_all false
// and no explicit cannon ids names no module, so one gun answers the
// request rather than the whole broadside.
func FireOneCannon(w *world.World, playerID world.EntityID) (*world.Projectile, bool) {
	p, err := w.LookupPlayer(playerID)
	if err != nil || !p.Carrier.HasCarrier() {
		return nil, false
	}
	s, err := w.LookupShip(p.Carrier.Ship)
	if err != nil {
		return nil, false
	}
	for _, mod := range w.ModulesOf(s.ID) {
		if mod.Kind != world.ModuleCannon || mod.Destroyed {
			continue
		}
		if mod.Ammo <= 0 || mod.TicksSinceFire < mod.ReloadDuration {
			continue
		}
		return fireModule(w, s, mod)
	}
	return nil, false
}

// AimCannons applies a ship-local aim angle from player's pending input:
// a player occupying a cannon aims that cannon alone; a player mounted
// anywhere else on the ship (helm authority) aims every cannon aboard.
func AimCannons(w *world.World, playerID world.EntityID, aim fixedpoint.Fixed) {
	p, err := w.LookupPlayer(playerID)
	if err != nil || !p.Carrier.HasCarrier() {
		return
	}
	if mod, err := w.LookupModule(p.Carrier.Module); err == nil && mod.Kind == world.ModuleCannon && !mod.Destroyed {
		mod.AimDirection = aim
		return
	}
	for _, mod := range w.ModulesOf(p.Carrier.Ship) {
		if mod.Kind == world.ModuleCannon && !mod.Destroyed {
			mod.AimDirection = aim
		}
	}
}

// FireShipCannons fires every ready cannon aboard ship, regardless of
// which player (if any) currently occupies it — the "broadside" action
// (cannon_fire's fire_all flag) abstracts away the need for one gunner
// per gun. Cannons with no ammo or still reloading are skipped rather
// than failing the whole broadside.
func FireShipCannons(w *world.World, shipID world.EntityID) []*world.Projectile {
	s, err := w.LookupShip(shipID)
	if err != nil {
		return nil
	}
	var fired []*world.Projectile
	for _, mod := range w.ModulesOf(shipID) {
		if mod.Kind != world.ModuleCannon || mod.Destroyed {
			continue
		}
		if mod.Ammo <= 0 || mod.TicksSinceFire < mod.ReloadDuration {
			continue
		}
		if proj, ok := fireModule(w, s, mod); ok {
			fired = append(fired, proj)
		}
	}
	return fired
}
