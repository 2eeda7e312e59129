package fixedpoint

import "math"

// TableSize is the resolution of the sin/cos lookup table across one full
// turn. Every transcendental that enters the simulation goes through this
// table — interpolated linearly between entries — rather than a platform
// math.Sin/math.Cos call, so that two processes built from the same source
// produce identical angles regardless of libm differences.
const TableSize = 1024

// Pi and TwoPi are the Q16.16 constants used throughout the simulation for
// angle wrapping; computed once here so callers never need math.Pi.
var (
	Pi    = FromFloat(math.Pi)
	TwoPi = FromFloat(2 * math.Pi)
)

// sinTable[i] holds sin(i * 2*Pi / TableSize) in Q16.16, built once at
// package initialization. This is a one-time bootstrap of the table data,
// not a per-tick dependency: the simulation's Sin/Cos below only ever read
// and interpolate this slice, never call math.Sin again.
var sinTable [TableSize]Fixed

func init() {
	for i := 0; i < TableSize; i++ {
		theta := 2 * math.Pi * float64(i) / float64(TableSize)
		sinTable[i] = FromFloat(math.Sin(theta))
	}
}

// tableIndex returns the fractional table index for angle (Q16.16
// radians), wrapped into [0, TableSize*one).
func tableIndex(angle Fixed) (idx int, frac Fixed) {
	// angle mod 2*Pi, expressed as a non-negative remainder.
	wrapped := angle % TwoPi
	if wrapped < 0 {
		wrapped = Add(wrapped, TwoPi)
	}
	// Scale into table-entry units: pos = wrapped / TwoPi * TableSize.
	scaled := Mul(wrapped, FromInt(TableSize))
	pos := Div(scaled, TwoPi)
	idx = pos.Int()
	if idx >= TableSize {
		idx = TableSize - 1
	}
	frac = Sub(pos, FromInt(idx))
	return idx, frac
}

func interpolate(idx int, frac Fixed) Fixed {
	next := (idx + 1) % TableSize
	lo := sinTable[idx]
	hi := sinTable[next]
	return Add(lo, Mul(Sub(hi, lo), frac))
}

// Sin returns sin(angle) read from the lookup table with linear
// interpolation between entries.
func Sin(angle Fixed) Fixed {
	idx, frac := tableIndex(angle)
	return interpolate(idx, frac)
}

// Cos returns cos(angle) by reading the sin table a quarter turn ahead —
// cos(x) == sin(x + Pi/2) — so only one table is ever stored.
func Cos(angle Fixed) Fixed {
	return Sin(Add(angle, Div(Pi, FromInt(2))))
}

// NormalizeAngle wraps angle into (-Pi, Pi], matching the ingress
// validation rule applied to rotation fields.
func NormalizeAngle(angle Fixed) Fixed {
	for angle > Pi {
		angle = Sub(angle, TwoPi)
	}
	for angle <= Sub(0, Pi) {
		angle = Add(angle, TwoPi)
	}
	return angle
}
