package fixedpoint

import (
	"math"
	"testing"
)

func TestSinCosTableApproximation(t *testing.T) {
	angles := []float64{0, math.Pi / 6, math.Pi / 2, math.Pi, 3 * math.Pi / 2, -math.Pi / 4}
	for _, a := range angles {
		fa := FromFloat(a)
		gotSin := Sin(fa).ToFloat()
		gotCos := Cos(fa).ToFloat()
		wantSin := math.Sin(a)
		wantCos := math.Cos(a)
		// Table resolution is 2*Pi/1024 with linear interpolation; tolerate
		// the quantization error that introduces.
		if math.Abs(gotSin-wantSin) > 0.01 {
			t.Errorf("Sin(%v) = %v, want ~%v", a, gotSin, wantSin)
		}
		if math.Abs(gotCos-wantCos) > 0.01 {
			t.Errorf("Cos(%v) = %v, want ~%v", a, gotCos, wantCos)
		}
	}
}

func TestNormalizeAngleRange(t *testing.T) {
	cases := []float64{0, math.Pi, -math.Pi, 3 * math.Pi, -3 * math.Pi, 0.1}
	for _, a := range cases {
		n := NormalizeAngle(FromFloat(a)).ToFloat()
		if n > math.Pi+1e-3 || n <= -math.Pi-1e-3 {
			t.Errorf("NormalizeAngle(%v) = %v, out of (-Pi,Pi]", a, n)
		}
	}
}

func TestRotateIdentityAtZero(t *testing.T) {
	v := Vec2{X: FromInt(5), Y: FromInt(7)}
	got := Rotate(v, 0)
	if math.Abs(got.X.ToFloat()-5) > 0.01 || math.Abs(got.Y.ToFloat()-7) > 0.01 {
		t.Errorf("Rotate(v,0) = %+v, want unchanged %+v", got, v)
	}
}

func TestRotateFullTurnReturnsToStart(t *testing.T) {
	v := Vec2{X: FromInt(10), Y: FromInt(0)}
	got := Rotate(v, TwoPi)
	if math.Abs(got.X.ToFloat()-10) > 0.05 || math.Abs(got.Y.ToFloat()) > 0.05 {
		t.Errorf("Rotate(v,2*Pi) = %+v, want ~%+v", got, v)
	}
}
