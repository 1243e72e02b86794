package orientation

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// ErrDegenerateQuaternion is returned when a zero-norm quaternion is inverted.
var ErrDegenerateQuaternion = errors.New("degenerate quaternion: zero norm")

// Quat is a rotation quaternion stored in (x, y, z, w) order, the canonical
// order for frames and for the wire. Sources that use (w, x, y, z) must go
// through FromWXYZ.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity is the no-rotation quaternion.
var Identity = Quat{W: 1}

// Vec3 is a position or acceleration vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromWXYZ builds a Quat from scalar-first components.
func FromWXYZ(w, x, y, z float64) Quat {
	return Quat{X: x, Y: y, Z: z, W: w}
}

// FromXYZW builds a Quat from scalar-last components.
func FromXYZW(x, y, z, w float64) Quat {
	return Quat{X: x, Y: y, Z: z, W: w}
}

// XYZW returns the components scalar-last, the transport order.
func (q Quat) XYZW() [4]float64 {
	return [4]float64{q.X, q.Y, q.Z, q.W}
}

// WXYZ returns the components scalar-first, the raw sensor order.
func (q Quat) WXYZ() [4]float64 {
	return [4]float64{q.W, q.X, q.Y, q.Z}
}

func (q Quat) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quat {
	return Quat{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Multiply returns the Hamilton product q1 ∘ q2: the rotation q2 followed by q1.
func Multiply(q1, q2 Quat) Quat {
	return fromNumber(quat.Mul(q1.number(), q2.number()))
}

// Inverse returns conj(q)/|q|². Callers pass unit quaternions in practice,
// but the squared norm is still divided out.
func Inverse(q Quat) (Quat, error) {
	if q.Norm() == 0 {
		return Quat{}, ErrDegenerateQuaternion
	}
	return fromNumber(quat.Inv(q.number())), nil
}

// Conj returns the conjugate of q.
func (q Quat) Conj() Quat {
	return fromNumber(quat.Conj(q.number()))
}

// Norm returns |q|.
func (q Quat) Norm() float64 {
	return quat.Abs(q.number())
}

// IsNaN reports whether any component is NaN.
func (q Quat) IsNaN() bool {
	return math.IsNaN(q.X) || math.IsNaN(q.Y) || math.IsNaN(q.Z) || math.IsNaN(q.W)
}

// ApproxEqual compares component-wise within tol. q and -q are treated as
// different values.
func ApproxEqual(a, b Quat, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol &&
		math.Abs(a.W-b.W) <= tol
}

// Array returns the vector as a fixed array.
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// IsNaN reports whether any component is NaN.
func (v Vec3) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}
