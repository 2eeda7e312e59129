package world

import "github.com/kreid06/brigantine-core/fixedpoint"

// SpawnBrigantine creates the stock "brigantine" ship — the default hull
// with a starter module layout — at position/rotation. The layout (one
// helm, two broadside cannons, one mast, a deck, a ladder, and two hull
// planks) covers every module kind this world model defines except seat
// and custom.
func SpawnBrigantine(w *World, position fixedpoint.Vec2, rotation fixedpoint.Fixed) (*Ship, error) {
	s, err := w.CreateShip(position, rotation)
	if err != nil {
		return nil, err
	}
	s.Mass = fixedpoint.FromFloat(2000)
	s.MomentOfInertia = fixedpoint.FromFloat(4000)
	s.MaxSpeed = fixedpoint.FromFloat(6.0)
	s.TurnRate = fixedpoint.FromFloat(0.8)
	s.LinearDrag = fixedpoint.FromFloat(0.985)
	s.AngularDrag = fixedpoint.FromFloat(0.9)
	s.Hull = BrigantineHull()
	s.MaxHullHealth = fixedpoint.FromFloat(500)
	s.HullHealth = s.MaxHullHealth

	helm, err := w.CreateModule(s.ID, ModuleHelm, fixedpoint.Vec2{X: fixedpoint.FromFloat(-150)}, 0)
	if err != nil {
		return s, err
	}
	helm.Health, helm.MaxHealth = fixedpoint.FromFloat(50), fixedpoint.FromFloat(50)
	helm.Active = true

	portCannon, err := w.CreateModule(s.ID, ModuleCannon, fixedpoint.Vec2{X: fixedpoint.FromFloat(50), Y: fixedpoint.FromFloat(-110)}, fixedpoint.NormalizeAngle(fixedpoint.Sub(0, fixedpoint.Div(fixedpoint.Pi, fixedpoint.FromInt(2)))))
	if err != nil {
		return s, err
	}
	configureCannon(portCannon)

	starboardCannon, err := w.CreateModule(s.ID, ModuleCannon, fixedpoint.Vec2{X: fixedpoint.FromFloat(50), Y: fixedpoint.FromFloat(110)}, fixedpoint.NormalizeAngle(fixedpoint.Div(fixedpoint.Pi, fixedpoint.FromInt(2))))
	if err != nil {
		return s, err
	}
	configureCannon(starboardCannon)

	mast, err := w.CreateModule(s.ID, ModuleMast, fixedpoint.Vec2{X: fixedpoint.FromFloat(20)}, 0)
	if err != nil {
		return s, err
	}
	mast.Health, mast.MaxHealth = fixedpoint.FromFloat(80), fixedpoint.FromFloat(80)
	mast.WindEfficiency = fixedpoint.FromFloat(1.0)
	mast.Active = true

	deck, err := w.CreateModule(s.ID, ModuleDeck, fixedpoint.Vec2{}, 0)
	if err != nil {
		return s, err
	}
	deck.Active = true

	ladder, err := w.CreateModule(s.ID, ModuleLadder, fixedpoint.Vec2{X: fixedpoint.FromFloat(-50)}, 0)
	if err != nil {
		return s, err
	}
	ladder.Active = true

	for _, y := range []float64{-130, 130} {
		plank, err := w.CreateModule(s.ID, ModulePlank, fixedpoint.Vec2{X: fixedpoint.FromFloat(100), Y: fixedpoint.FromFloat(y)}, 0)
		if err != nil {
			return s, err
		}
		plank.Health, plank.MaxHealth = fixedpoint.FromFloat(60), fixedpoint.FromFloat(60)
		plank.Active = true
	}

	return s, nil
}

func configureCannon(mod *Module) {
	mod.Health, mod.MaxHealth = fixedpoint.FromFloat(40), fixedpoint.FromFloat(40)
	mod.Active = true
	mod.Ammo = 20
	mod.ReloadDuration = 60 // 2s at 30Hz
	mod.TicksSinceFire = mod.ReloadDuration
	// A fresh gun points out of its port until the gunner aims it.
	mod.AimDirection = mod.LocalRot
}
