package sim

import (
	"testing"

	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/prng"
	"github.com/kreid06/brigantine-core/world"
)

func stepOnce(t *testing.T, w *world.World, intents map[world.EntityID]MoveIntent) {
	t.Helper()
	dt := fixedpoint.Div(fixedpoint.FromInt(1), fixedpoint.FromInt(30))
	Step(w, dt, intents, prng.New(9))
}

func TestFreePlayerBoardsDeckOnContact(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)
	deck, _ := w.CreateModule(s.ID, world.ModuleDeck, fixedpoint.Vec2{}, 0)
	deck.Active = true

	p, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(10)}, world.Carrier{})
	stepOnce(t, w, nil)

	got, _ := w.LookupPlayer(p.ID)
	if got.State != world.PlayerMounted {
		t.Fatalf("player state = %v, want PlayerMounted after stepping onto the deck", got.State)
	}
	if got.Carrier.Ship != s.ID || got.Carrier.Module != deck.ID {
		t.Errorf("carrier = %+v, want ship %d module %d", got.Carrier, s.ID, deck.ID)
	}
}

func TestFastPlayerDoesNotBoard(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)
	deck, _ := w.CreateModule(s.ID, world.ModuleDeck, fixedpoint.Vec2{}, 0)
	deck.Active = true

	p, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(10)}, world.Carrier{})
	pl, _ := w.LookupPlayer(p.ID)
	pl.Velocity = fixedpoint.Vec2{X: fixedpoint.FromFloat(3.0)}
	stepOnce(t, w, nil)

	got, _ := w.LookupPlayer(p.ID)
	if got.State == world.PlayerMounted {
		t.Errorf("player moving faster than the mount entry speed should not auto-board")
	}
}

func TestMountedPositionFollowsShipRotation(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)
	seat, _ := w.CreateModule(s.ID, world.ModuleSeat, fixedpoint.Vec2{X: fixedpoint.FromFloat(100)}, 0)
	p, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(100)}, world.Carrier{Ship: s.ID, Module: seat.ID})

	halfPi := fixedpoint.Div(fixedpoint.Pi, fixedpoint.FromInt(2))
	s.Rotation = halfPi
	stepOnce(t, w, nil)

	got, _ := w.LookupPlayer(p.ID)
	// Module local (100,0) rotated a quarter turn lands near (0,100).
	if fixedpoint.Abs(got.Position.X) > fixedpoint.FromFloat(2.0) ||
		fixedpoint.Abs(fixedpoint.Sub(got.Position.Y, fixedpoint.FromFloat(100))) > fixedpoint.FromFloat(2.0) {
		t.Errorf("mounted position = %+v, want roughly (0, 100)", got.Position)
	}
}

func TestProjectileSparesOwnerDuringGraceWindow(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)

	// Spawned dead center inside the owner's hull.
	w.CreateProjectile(fixedpoint.Vec2{}, fixedpoint.Vec2{}, s.ID, fixedpoint.FromFloat(25), 300)
	stepOnce(t, w, nil)

	ship, _ := w.LookupShip(s.ID)
	if ship.HullHealth != ship.MaxHullHealth {
		t.Fatalf("owner took damage inside the grace window: %v of %v", ship.HullHealth, ship.MaxHullHealth)
	}

	for i := 0; i < ProjectileGraceTicks+1; i++ {
		stepOnce(t, w, nil)
	}
	ship, _ = w.LookupShip(s.ID)
	if ship.HullHealth >= ship.MaxHullHealth {
		t.Errorf("a stalled projectile past the grace window should hit its owner")
	}
}

func TestSunkShipCascadesToModules(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)
	s.MaxHullHealth = fixedpoint.FromFloat(10)
	s.HullHealth = s.MaxHullHealth
	helm, _ := w.CreateModule(s.ID, world.ModuleHelm, fixedpoint.Vec2{}, 0)

	w.CreateProjectile(fixedpoint.Vec2{}, fixedpoint.Vec2{}, world.NoEntity, fixedpoint.FromFloat(25), 300)
	stepOnce(t, w, nil)

	if _, err := w.LookupShip(s.ID); err == nil {
		t.Fatalf("ship with zero hull health should be removed from the world")
	}
	mod, err := w.LookupModule(helm.ID)
	if err == nil && !mod.Destroyed {
		t.Errorf("sinking the ship should destroy its modules")
	}
}

func TestProjectileRemovedWhenLeavingWorldBounds(t *testing.T) {
	old := WorldExtent
	WorldExtent = fixedpoint.Vec2{X: fixedpoint.FromFloat(100), Y: fixedpoint.FromFloat(100)}
	defer func() { WorldExtent = old }()

	w := world.New()
	pr, _ := w.CreateProjectile(
		fixedpoint.Vec2{X: fixedpoint.FromFloat(99)},
		fixedpoint.Vec2{X: fixedpoint.FromFloat(90)},
		world.NoEntity, fixedpoint.FromFloat(5), 10000,
	)
	id := pr.ID
	stepOnce(t, w, nil) // crosses the bound, lifetime forced to zero
	stepOnce(t, w, nil) // reaped at the start of the next step

	if _, err := w.LookupProjectile(id); err == nil {
		t.Errorf("projectile past the world bound should be removed")
	}
}

func TestAimCannonsFromHelmRetargetsBroadside(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)
	helm, _ := w.CreateModule(s.ID, world.ModuleHelm, fixedpoint.Vec2{}, 0)
	cannon, _ := w.CreateModule(s.ID, world.ModuleCannon, fixedpoint.Vec2{X: fixedpoint.FromFloat(50)}, 0)
	cannon.Ammo = 5
	cannon.ReloadDuration = 10
	cannon.TicksSinceFire = 10
	p, _ := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{Ship: s.ID, Module: helm.ID})

	aim := fixedpoint.Div(fixedpoint.Pi, fixedpoint.FromInt(4))
	AimCannons(w, p.ID, aim)
	if got, _ := w.LookupModule(cannon.ID); got.AimDirection != aim {
		t.Fatalf("cannon aim = %v, want %v", got.AimDirection, aim)
	}

	proj, ok := FireOneCannon(w, p.ID)
	if !ok {
		t.Fatalf("FireOneCannon failed with a ready cannon aboard")
	}
	if proj.Velocity.X <= 0 || proj.Velocity.Y <= 0 {
		t.Errorf("projectile velocity %+v, want both components positive for a pi/4 aim", proj.Velocity)
	}
}
