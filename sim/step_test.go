package sim

import (
	"testing"

	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/prng"
	"github.com/kreid06/brigantine-core/world"
)

func newTestShip(t *testing.T, w *world.World) *world.Ship {
	t.Helper()
	s, err := w.CreateShip(fixedpoint.Vec2{}, 0)
	if err != nil {
		t.Fatalf("CreateShip: %v", err)
	}
	s.MaxSpeed = fixedpoint.FromFloat(5.0)
	s.TurnRate = fixedpoint.FromFloat(1.0)
	s.LinearDrag = fixedpoint.FromFloat(0.98)
	s.AngularDrag = fixedpoint.FromFloat(0.9)
	s.Mass = fixedpoint.FromFloat(1000)
	s.MaxHullHealth = fixedpoint.FromFloat(100)
	s.HullHealth = s.MaxHullHealth
	s.Hull = world.BrigantineHull()
	return s
}

func TestStepIsDeterministicAcrossRepeatedRuns(t *testing.T) {
	run := func() fixedpoint.Vec2 {
		w := world.New()
		s := newTestShip(t, w)
		helm, _ := w.CreateModule(s.ID, world.ModuleHelm, fixedpoint.Vec2{}, 0)
		pl, _ := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{Ship: s.ID, Module: helm.ID})

		dt := fixedpoint.Div(fixedpoint.FromInt(1), fixedpoint.FromInt(30))
		rng := prng.New(42)
		intents := map[world.EntityID]MoveIntent{
			pl.ID: {Movement: fixedpoint.Vec2{X: 0, Y: fixedpoint.FromFloat(1.0)}},
		}
		for i := 0; i < 60; i++ {
			Step(w, dt, intents, rng)
		}
		ship, _ := w.LookupShip(s.ID)
		return ship.Position
	}

	a := run()
	b := run()
	if a != b {
		t.Fatalf("Step is not deterministic: %+v != %+v", a, b)
	}
}

func TestHelmThrustMovesShipForward(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)
	helm, _ := w.CreateModule(s.ID, world.ModuleHelm, fixedpoint.Vec2{}, 0)
	pl, _ := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{Ship: s.ID, Module: helm.ID})

	dt := fixedpoint.Div(fixedpoint.FromInt(1), fixedpoint.FromInt(30))
	rng := prng.New(1)
	intents := map[world.EntityID]MoveIntent{
		pl.ID: {Movement: fixedpoint.Vec2{X: 0, Y: fixedpoint.FromFloat(1.0)}},
	}
	for i := 0; i < 30; i++ {
		Step(w, dt, intents, rng)
	}
	ship, _ := w.LookupShip(s.ID)
	if ship.Position.X <= 0 {
		t.Errorf("expected ship to move forward along +X, position = %+v", ship.Position)
	}
}

func TestShipVelocityNeverExceedsMaxSpeed(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)
	helm, _ := w.CreateModule(s.ID, world.ModuleHelm, fixedpoint.Vec2{}, 0)
	pl, _ := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{Ship: s.ID, Module: helm.ID})

	dt := fixedpoint.Div(fixedpoint.FromInt(1), fixedpoint.FromInt(30))
	rng := prng.New(2)
	intents := map[world.EntityID]MoveIntent{
		pl.ID: {Movement: fixedpoint.Vec2{X: 0, Y: fixedpoint.FromFloat(1.0)}},
	}
	for i := 0; i < 300; i++ {
		Step(w, dt, intents, rng)
		ship, _ := w.LookupShip(s.ID)
		if fixedpoint.Length(ship.LinearVelocity) > s.MaxSpeed+fixedpoint.FromFloat(0.01) {
			t.Fatalf("tick %d: velocity %+v exceeded max speed %v", i, ship.LinearVelocity, s.MaxSpeed)
		}
	}
}

func TestDriftingShipSlowsUnderDrag(t *testing.T) {
	w := world.New()
	s := newTestShip(t, w)
	s.LinearVelocity = fixedpoint.Vec2{X: fixedpoint.FromFloat(2.0)}

	dt := fixedpoint.Div(fixedpoint.FromInt(1), fixedpoint.FromInt(30))
	rng := prng.New(3)
	before := fixedpoint.Length(s.LinearVelocity)
	Step(w, dt, nil, rng)
	ship, _ := w.LookupShip(s.ID)
	after := fixedpoint.Length(ship.LinearVelocity)
	if after >= before {
		t.Errorf("expected drag to reduce speed: before=%v after=%v", before, after)
	}
}

func TestProjectileHitsShipAndAppliesDamage(t *testing.T) {
	w := world.New()
	target := newTestShip(t, w)
	target.Position = fixedpoint.Vec2{X: fixedpoint.FromFloat(1000)}

	w.CreateProjectile(
		fixedpoint.Vec2{X: fixedpoint.FromFloat(900)},
		fixedpoint.Vec2{X: fixedpoint.FromFloat(400)},
		world.NoEntity,
		fixedpoint.FromFloat(25),
		90,
	)

	dt := fixedpoint.Div(fixedpoint.FromInt(1), fixedpoint.FromInt(30))
	rng := prng.New(4)
	for i := 0; i < 3; i++ {
		Step(w, dt, nil, rng)
	}
	hit, _ := w.LookupShip(target.ID)
	if hit.HullHealth >= hit.MaxHullHealth {
		t.Errorf("expected hull health to drop after projectile impact, got %v of %v", hit.HullHealth, hit.MaxHullHealth)
	}
}

func TestOverlappingShipsAreSeparated(t *testing.T) {
	w := world.New()
	a := newTestShip(t, w)
	b := newTestShip(t, w)
	b.Position = fixedpoint.Vec2{X: fixedpoint.FromFloat(10)}

	before := fixedpoint.Distance(a.Position, b.Position)
	dt := fixedpoint.Div(fixedpoint.FromInt(1), fixedpoint.FromInt(30))
	rng := prng.New(5)
	Step(w, dt, nil, rng)

	sa, _ := w.LookupShip(a.ID)
	sb, _ := w.LookupShip(b.ID)
	after := fixedpoint.Distance(sa.Position, sb.Position)
	if after <= before {
		t.Errorf("expected overlapping hulls to separate: before=%v after=%v", before, after)
	}
}
