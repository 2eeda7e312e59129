package fixedpoint

import "math/bits"

// Vec2 is a two-component Q16.16 vector, used for every position and
// velocity in the simulation.
type Vec2 struct {
	X, Y Fixed
}

// AddVec adds two vectors component-wise, saturating per component.
func AddVec(a, b Vec2) Vec2 {
	return Vec2{Add(a.X, b.X), Add(a.Y, b.Y)}
}

// SubVec subtracts b from a component-wise, saturating per component.
func SubVec(a, b Vec2) Vec2 {
	return Vec2{Sub(a.X, b.X), Sub(a.Y, b.Y)}
}

// ScaleVec multiplies a vector by a scalar.
func ScaleVec(v Vec2, s Fixed) Vec2 {
	return Vec2{Mul(v.X, s), Mul(v.Y, s)}
}

// Dot returns the dot product of two vectors.
func Dot(a, b Vec2) Fixed {
	return Add(Mul(a.X, b.X), Mul(a.Y, b.Y))
}

// LengthSq returns the squared length, avoiding the Sqrt call when only
// a relative comparison is needed. The result is a Fixed, so it
// saturates at Max once the length passes about 181.
func LengthSq(v Vec2) Fixed {
	return Dot(v, v)
}

// Length returns the scalar length of the vector. The squared length is
// summed in 64 bits rather than through LengthSq, so it does not
// saturate for long vectors.
func Length(v Vec2) Fixed {
	x, y := int64(v.X), int64(v.Y)
	sq := uint64(x*x) + uint64(y*y)
	if sq == 0 {
		return 0
	}
	// Integer Newton's method from a first guess no smaller than the root.
	guess := uint64(1) << ((bits.Len64(sq) + 1) / 2)
	for {
		next := (guess + sq/guess) / 2
		if next >= guess {
			break
		}
		guess = next
	}
	return saturate64(int64(guess))
}

// Rotate rotates v by angle (radians, Q16.16) using the table-backed
// Sin/Cos below — never a platform trig call.
func Rotate(v Vec2, angle Fixed) Vec2 {
	s := Sin(angle)
	c := Cos(angle)
	return Vec2{
		X: Sub(Mul(v.X, c), Mul(v.Y, s)),
		Y: Add(Mul(v.X, s), Mul(v.Y, c)),
	}
}

// Perp returns the 2D perpendicular (90-degree CCW rotation), used to turn
// a module's ship-local offset into the linear velocity contribution from
// the ship's angular velocity (v = omega x r).
func Perp(v Vec2) Vec2 {
	return Vec2{X: Sub(0, v.Y), Y: v.X}
}

// ClampLength scales v down, if necessary, so its length does not exceed
// max. Component-wise scaling (not a hard clamp per axis) keeps direction
// intact.
func ClampLength(v Vec2, max Fixed) Vec2 {
	length := Length(v)
	if length <= max || length == 0 {
		return v
	}
	scale := Div(max, length)
	return ScaleVec(v, scale)
}

// DistanceSq returns the squared distance between two points.
func DistanceSq(a, b Vec2) Fixed {
	return LengthSq(SubVec(a, b))
}

// Distance returns the scalar distance between two points.
func Distance(a, b Vec2) Fixed {
	return Length(SubVec(a, b))
}
