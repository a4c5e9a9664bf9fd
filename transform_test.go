package colorbook

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func TestScaleTranslate(t *testing.T) {
	m := scaleTranslate(2, 10, -5)
	assertMatrix(t, "scaleTranslate", m, [6]float64{2, 0, 0, 2, 10, -5})

	x, y := transformPoint(m, 3, 4)
	assertNear(t, "x", x, 16)
	assertNear(t, "y", y, 3)
}

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0.5, -1, 3, 7, 9}
	assertMatrix(t, "I*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*I", multiplyAffine(m, identityTransform), m)
}

func TestMultiplyAffineOrder(t *testing.T) {
	// Scale then translate: the child is applied first.
	scale := scaleTranslate(2, 0, 0)
	move := scaleTranslate(1, 10, 20)
	got := multiplyAffine(move, scale)
	x, y := transformPoint(got, 1, 1)
	assertNear(t, "x", x, 12)
	assertNear(t, "y", y, 22)

	got = multiplyAffine(scale, move)
	x, y = transformPoint(got, 1, 1)
	assertNear(t, "x", x, 22)
	assertNear(t, "y", y, 42)
}

func TestInvertAffine(t *testing.T) {
	m := [6]float64{2, 1, -1, 3, 7, 9}
	inv := invertAffine(m)
	assertMatrix(t, "m*inv", multiplyAffine(m, inv), identityTransform)

	x, y := transformPoint(m, 5, -2)
	bx, by := transformPoint(inv, x, y)
	assertNear(t, "x", bx, 5)
	assertNear(t, "y", by, -2)
}

func TestInvertAffineSingular(t *testing.T) {
	got := invertAffine([6]float64{0, 0, 0, 0, 4, 4})
	assertMatrix(t, "singular", got, identityTransform)
}

func TestGeoMMatchesAffine(t *testing.T) {
	m := [6]float64{1.5, 0, 0, 1.5, -30, 12}
	g := geoM(m)
	gx, gy := g.Apply(10, 20)
	x, y := transformPoint(m, 10, 20)
	assertNear(t, "x", gx, x)
	assertNear(t, "y", gy, y)
}

func TestAff3Layout(t *testing.T) {
	a := aff3([6]float64{1, 2, 3, 4, 5, 6})
	want := [6]float64{1, 3, 5, 2, 4, 6}
	for i := range want {
		if a[i] != want[i] {
			t.Errorf("aff3[%d] = %v, want %v", i, a[i], want[i])
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !isFinite(0, -1, 1e300) {
		t.Error("finite values reported as non-finite")
	}
	if isFinite(1, math.NaN()) {
		t.Error("NaN reported as finite")
	}
	if isFinite(math.Inf(-1)) {
		t.Error("-Inf reported as finite")
	}
}
