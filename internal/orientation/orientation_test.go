package orientation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func axisAngle(ax, ay, az, angle float64) Quat {
	n := math.Sqrt(ax*ax + ay*ay + az*az)
	s := math.Sin(angle / 2)
	return Quat{X: ax / n * s, Y: ay / n * s, Z: az / n * s, W: math.Cos(angle / 2)}
}

func randomUnit(r *rand.Rand) Quat {
	q := Quat{X: r.NormFloat64(), Y: r.NormFloat64(), Z: r.NormFloat64(), W: r.NormFloat64()}
	n := q.Norm()
	return Quat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

func TestMultiply_InverseIsIdentity(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		q := randomUnit(r)
		inv, err := Inverse(q)
		require.NoError(t, err)

		got := Multiply(q, inv)
		assert.True(t, ApproxEqual(got, Identity, tol), "q=%+v q*q^-1=%+v", q, got)

		got = Multiply(inv, q)
		assert.True(t, ApproxEqual(got, Identity, tol), "q=%+v q^-1*q=%+v", q, got)
	}
}

func TestMultiply_HamiltonBasis(t *testing.T) {
	i := Quat{X: 1}
	j := Quat{Y: 1}
	k := Quat{Z: 1}

	assert.Equal(t, k, Multiply(i, j))
	assert.Equal(t, Quat{Z: -1}, Multiply(j, i))
	assert.Equal(t, i, Multiply(j, k))
	assert.Equal(t, Quat{W: -1}, Multiply(i, i))
}

func TestMultiply_ComposesRotationsRightFirst(t *testing.T) {
	// Two quarter turns about z compose to a half turn.
	qz := axisAngle(0, 0, 1, math.Pi/2)
	got := Multiply(qz, qz)
	assert.True(t, ApproxEqual(got, axisAngle(0, 0, 1, math.Pi), tol), "%+v", got)
}

func TestInverse_NonUnitDividesNorm(t *testing.T) {
	q := Quat{X: 0, Y: 0, Z: 0, W: 2}
	inv, err := Inverse(q)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, inv.W, tol)
	assert.True(t, ApproxEqual(Multiply(q, inv), Identity, tol))
}

func TestInverse_Degenerate(t *testing.T) {
	_, err := Inverse(Quat{})
	assert.ErrorIs(t, err, ErrDegenerateQuaternion)
}

func TestComponentOrders(t *testing.T) {
	q := FromWXYZ(1, 2, 3, 4)
	assert.Equal(t, Quat{X: 2, Y: 3, Z: 4, W: 1}, q)
	assert.Equal(t, [4]float64{2, 3, 4, 1}, q.XYZW())
	assert.Equal(t, [4]float64{1, 2, 3, 4}, q.WXYZ())
	assert.Equal(t, q, FromXYZW(2, 3, 4, 1))
}

func TestConj(t *testing.T) {
	q := FromXYZW(0.1, -0.2, 0.3, 0.9)
	assert.Equal(t, FromXYZW(-0.1, 0.2, -0.3, 0.9), q.Conj())
}

func TestVec3(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	assert.Equal(t, Vec3{X: 1.5, Y: 2.5, Z: 3.5}, a.Add(b))
	assert.Equal(t, Vec3{X: 0.5, Y: 1.5, Z: 2.5}, a.Sub(b))
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 6}, a.Scale(2))
	assert.Equal(t, [3]float64{1, 2, 3}, a.Array())
	assert.True(t, Vec3{X: math.NaN()}.IsNaN())
	assert.True(t, Quat{W: math.NaN()}.IsNaN())
}
