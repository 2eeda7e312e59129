// Package snapshot implements the baseline/delta encoder: field-level
// quantization to a frozen wire layout, a baseline-vs-delta decision
// per session per tick, and the binary header/checksum both transports
// share.
package snapshot

import "github.com/kreid06/brigantine-core/fixedpoint"

// Quantization scales, frozen for every wire consumer: position in
// 1/512 m steps, velocity in 1/256 m/s steps, rotation in 2π/1024 rad
// steps, health and state flags as plain 8-bit values.
var (
	positionScale = fixedpoint.FromInt(512)
	velocityScale = fixedpoint.FromInt(256)
	rotationSteps = fixedpoint.FromInt(1024)
)

// QuantizePosition encodes a coordinate as a 16-bit unsigned offset from
// origin. Values outside the representable 16-bit range saturate rather
// than wrap, so a runaway coordinate degrades gracefully instead of
// aliasing onto an unrelated position.
func QuantizePosition(value, origin fixedpoint.Fixed) uint16 {
	// One 1/512 step is 2^7 raw Q16.16 units; the offset is taken in
	// int64 so it does not saturate before the 16-bit clamp.
	scaled := (int64(value) - int64(origin)) >> 7
	return saturateU16(int(scaled))
}

// DequantizePosition is the inverse of QuantizePosition, used by the
// round-trip idempotence check and by any test harness that needs to
// decode a wire frame back into world units.
func DequantizePosition(q uint16, origin fixedpoint.Fixed) fixedpoint.Fixed {
	return fixedpoint.Add(fixedpoint.Fixed(int32(q)<<7), origin)
}

// QuantizeVelocity encodes a velocity component as a 16-bit signed value
// in 1/256 m/s steps.
func QuantizeVelocity(value fixedpoint.Fixed) int16 {
	scaled := fixedpoint.Mul(value, velocityScale).Int()
	return saturateI16(scaled)
}

// DequantizeVelocity is the inverse of QuantizeVelocity.
func DequantizeVelocity(q int16) fixedpoint.Fixed {
	return fixedpoint.Div(fixedpoint.FromInt(int(q)), velocityScale)
}

// QuantizeRotation encodes an angle in (-π,π] as a 10-bit step count
// stored in 16 bits, wrapping first so the input need not already be
// normalized.
func QuantizeRotation(angle fixedpoint.Fixed) uint16 {
	normalized := fixedpoint.NormalizeAngle(angle)
	// Shift into [0, 2π) before scaling so the step count is non-negative.
	if normalized < 0 {
		normalized = fixedpoint.Add(normalized, fixedpoint.TwoPi)
	}
	scaled := fixedpoint.Mul(normalized, rotationSteps)
	steps := fixedpoint.Div(scaled, fixedpoint.TwoPi).Int()
	if steps >= 1024 {
		steps = 1023
	}
	return uint16(steps)
}

// DequantizeRotation is the inverse of QuantizeRotation.
func DequantizeRotation(q uint16) fixedpoint.Fixed {
	step := fixedpoint.FromInt(int(q))
	return fixedpoint.NormalizeAngle(fixedpoint.Div(fixedpoint.Mul(step, fixedpoint.TwoPi), rotationSteps))
}

// QuantizeHealth encodes a health/maxHealth ratio as an 8-bit value.
func QuantizeHealth(health, max fixedpoint.Fixed) uint8 {
	if max <= 0 {
		return 0
	}
	ratio := fixedpoint.Div(health, max)
	scaled := fixedpoint.Mul(ratio, fixedpoint.FromInt(255)).Int()
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}

func saturateU16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}

func saturateI16(v int) int16 {
	if v < -0x8000 {
		return -0x8000
	}
	if v > 0x7FFF {
		return 0x7FFF
	}
	return int16(v)
}

// Checksum16 computes a one's-complement fold checksum over an
// arbitrary payload, the same algorithm the classic Internet checksum
// uses: sum 16-bit words, fold carries back in, complement the result.
func Checksum16(data []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(data); i += 2 {
		sum += uint32(data[i])<<8 | uint32(data[i+1])
	}
	if len(data)%2 == 1 {
		sum += uint32(data[len(data)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}
