package world

import (
	"math"

	"github.com/kreid06/brigantine-core/fixedpoint"
)

// Ship is a rigid body composed of modules.
type Ship struct {
	ID EntityID

	Position       fixedpoint.Vec2
	Rotation       fixedpoint.Fixed
	LinearVelocity fixedpoint.Vec2
	AngularVelocity fixedpoint.Fixed

	Mass            fixedpoint.Fixed
	MomentOfInertia fixedpoint.Fixed
	MaxSpeed        fixedpoint.Fixed
	TurnRate        fixedpoint.Fixed
	LinearDrag      fixedpoint.Fixed // (0,1)
	AngularDrag     fixedpoint.Fixed // (0,1)

	// Hull is the ship-local, counter-clockwise hull polygon used for
	// SAT collision and point-in-polygon projectile hits.
	Hull []fixedpoint.Vec2

	HullHealth    fixedpoint.Fixed
	MaxHullHealth fixedpoint.Fixed
	Destroyed     bool

	// Modules owned by this ship, in the order they were created. The
	// ship does not hold Module values directly (modules are looked up
	// by id in the World's dense module array) so that module storage
	// stays in one place regardless of which ship owns it.
	Modules []EntityID
}

// BoundingRadius returns the radius of the smallest circle, centered at
// the ship's local origin, that contains its hull — used for the
// collision broad phase.
func (s *Ship) BoundingRadius() fixedpoint.Fixed {
	var max fixedpoint.Fixed
	for _, v := range s.Hull {
		if l := fixedpoint.Length(v); l > max {
			max = l
		}
	}
	return max
}

// BrigantineHull returns the default ~49-point counter-clockwise hull
// polygon used by the world loader for the stock "brigantine" ship, a
// tapered-ellipse approximation of a tall-ship hull scaled to an
// 800-unit length — comfortably inside Q16.16 range, so there is no
// reason to scale units internally at this size.
func BrigantineHull() []fixedpoint.Vec2 {
	const points = 49
	hull := make([]fixedpoint.Vec2, points)
	halfLength := 400.0
	halfBeam := 140.0
	for i := 0; i < points; i++ {
		t := float64(i) / float64(points)
		// Parametrize a tapered hull: pointed bow (t=0), full beam
		// amidships, blunt stern (t~0.5 wrapped), walked counter-clockwise
		// starting at the bow.
		angle := t * 2 * math.Pi
		x := halfLength * math.Cos(angle)
		taper := 1.0
		if x > 0 {
			taper = 0.55 + 0.45*(1-x/halfLength)
		} else {
			taper = 0.85 + 0.15*(1+x/halfLength)
		}
		y := halfBeam * taper * math.Sin(angle)
		hull[i] = fixedpoint.Vec2{X: fixedpoint.FromFloat(x), Y: fixedpoint.FromFloat(y)}
	}
	return hull
}
