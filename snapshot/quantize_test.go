package snapshot

import (
	"testing"

	"github.com/kreid06/brigantine-core/fixedpoint"
)

func TestQuantizePositionRoundTrip(t *testing.T) {
	cases := []float64{0, 1.5, -10, 500.25, 63.999}
	for _, v := range cases {
		original := fixedpoint.FromFloat(v)
		origin := fixedpoint.FromInt(0)
		q := QuantizePosition(original, origin)
		back := DequantizePosition(q, origin)
		diff := fixedpoint.Abs(fixedpoint.Sub(original, back))
		if diff > fixedpoint.FromFloat(1.0/512) {
			t.Errorf("position %v round-trip = %v, diff %v exceeds one quantization step", v, back.ToFloat(), diff.ToFloat())
		}
	}
}

func TestQuantizeRotationRoundTrip(t *testing.T) {
	cases := []float64{0, 1.0, -1.0, 3.0, -3.0}
	for _, v := range cases {
		original := fixedpoint.NormalizeAngle(fixedpoint.FromFloat(v))
		q := QuantizeRotation(original)
		back := DequantizeRotation(q)
		diff := fixedpoint.Abs(fixedpoint.Sub(original, back))
		step := fixedpoint.Div(fixedpoint.TwoPi, fixedpoint.FromInt(1024))
		if diff > step {
			t.Errorf("rotation %v round-trip = %v, diff %v exceeds one step %v", v, back.ToFloat(), diff.ToFloat(), step.ToFloat())
		}
	}
}

func TestQuantizeIsIdempotentOnReEncode(t *testing.T) {
	original := fixedpoint.FromFloat(123.456)
	origin := fixedpoint.FromInt(0)
	q1 := QuantizePosition(original, origin)
	back := DequantizePosition(q1, origin)
	q2 := QuantizePosition(back, origin)
	if q1 != q2 {
		t.Errorf("quantize not idempotent on decode/re-encode: %d != %d", q1, q2)
	}
}

func TestQuantizeHealthClampsToByteRange(t *testing.T) {
	max := fixedpoint.FromInt(100)
	if got := QuantizeHealth(max, max); got != 255 {
		t.Errorf("full health quantized to %d, want 255", got)
	}
	if got := QuantizeHealth(0, max); got != 0 {
		t.Errorf("zero health quantized to %d, want 0", got)
	}
}

func TestChecksum16DetectsCorruption(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7}
	sum := Checksum16(data)
	corrupted := append([]byte(nil), data...)
	corrupted[2] ^= 0xFF
	if Checksum16(corrupted) == sum {
		t.Errorf("checksum did not change after corrupting a byte")
	}
}
