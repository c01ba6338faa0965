package box

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Transform is a rigid 4x4 homogeneous matrix, e.g. ego2map.
type Transform struct {
	m *mat.Dense
}

// Identity returns the transform that leaves poses unchanged
func Identity() *Transform {
	return &Transform{m: mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})}
}

// NewTransform builds a homogeneous matrix from a translation and a rotation quaternion.
// The quaternion is normalised; a zero quaternion is treated as no rotation.
func NewTransform(position r3.Vector, rotation quat.Number) *Transform {
	r := rotationMatrix(rotation)
	return &Transform{m: mat.NewDense(4, 4, []float64{
		r[0][0], r[0][1], r[0][2], position.X,
		r[1][0], r[1][1], r[1][2], position.Y,
		r[2][0], r[2][1], r[2][2], position.Z,
		0, 0, 0, 1,
	})}
}

// Inverse returns the inverse transform
func (t *Transform) Inverse() (*Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(t.m); err != nil {
		return nil, errors.Wrap(err, "can't invert transform")
	}
	return &Transform{m: &inv}, nil
}

// Compose returns t * other, i.e. other is applied first.
func (t *Transform) Compose(other *Transform) *Transform {
	var out mat.Dense
	out.Mul(t.m, other.m)
	return &Transform{m: &out}
}

// Translation returns the translation column
func (t *Transform) Translation() r3.Vector {
	return r3.Vector{X: t.m.At(0, 3), Y: t.m.At(1, 3), Z: t.m.At(2, 3)}
}

// Rotation extracts the rotation block as a unit quaternion.
func (t *Transform) Rotation() quat.Number {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = t.m.At(i, j)
		}
	}
	return matrixToQuat(r)
}

// Apply maps a pose (position + orientation) through the transform.
func (t *Transform) Apply(position r3.Vector, rotation quat.Number) (r3.Vector, quat.Number) {
	out := t.Compose(NewTransform(position, rotation))
	return out.Translation(), out.Rotation()
}

// Matrix exposes a copy of the underlying 4x4 matrix.
func (t *Transform) Matrix() *mat.Dense {
	return mat.DenseCopyOf(t.m)
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

func rotationMatrix(q quat.Number) [3][3]float64 {
	q = normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return [3][3]float64{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}

// matrixToQuat converts a rotation matrix with Shepperd's method.
func matrixToQuat(r [3][3]float64) quat.Number {
	trace := r[0][0] + r[1][1] + r[2][2]
	var q quat.Number
	switch {
	case trace > 0:
		s := 2 * math.Sqrt(trace+1)
		q = quat.Number{Real: s / 4, Imag: (r[2][1] - r[1][2]) / s, Jmag: (r[0][2] - r[2][0]) / s, Kmag: (r[1][0] - r[0][1]) / s}
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := 2 * math.Sqrt(1+r[0][0]-r[1][1]-r[2][2])
		q = quat.Number{Real: (r[2][1] - r[1][2]) / s, Imag: s / 4, Jmag: (r[0][1] + r[1][0]) / s, Kmag: (r[0][2] + r[2][0]) / s}
	case r[1][1] > r[2][2]:
		s := 2 * math.Sqrt(1+r[1][1]-r[0][0]-r[2][2])
		q = quat.Number{Real: (r[0][2] - r[2][0]) / s, Imag: (r[0][1] + r[1][0]) / s, Jmag: s / 4, Kmag: (r[1][2] + r[2][1]) / s}
	default:
		s := 2 * math.Sqrt(1+r[2][2]-r[0][0]-r[1][1])
		q = quat.Number{Real: (r[1][0] - r[0][1]) / s, Imag: (r[0][2] + r[2][0]) / s, Jmag: (r[1][2] + r[2][1]) / s, Kmag: s / 4}
	}
	return normalize(q)
}

// YawFromQuat returns rotation about the z axis in (-pi, pi].
func YawFromQuat(q quat.Number) float64 {
	q = normalize(q)
	return math.Atan2(2*(q.Real*q.Kmag+q.Imag*q.Jmag), 1-2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag))
}

// QuatFromYaw returns a rotation about the z axis.
func QuatFromYaw(yaw float64) quat.Number {
	return quat.Number{Real: math.Cos(yaw / 2), Kmag: math.Sin(yaw / 2)}
}

// WrapAngle maps an absolute angle difference onto [0, pi] by reflecting values above pi.
func WrapAngle(diff float64) float64 {
	diff = math.Mod(math.Abs(diff), 2*math.Pi)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff
}
