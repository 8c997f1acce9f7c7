package gooey

import "math"

// Affine is a 2D affine matrix [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// ComposeAffine builds the matrix for
//
//	Translate(-pivotX, -pivotY) -> Scale -> Rotate -> Translate(x, y)
//
// rotation is in radians.
func ComposeAffine(x, y, rotation, scale, pivotX, pivotY float64) Affine {
	sin, cos := math.Sincos(rotation)
	a := cos * scale
	b := sin * scale
	c := -sin * scale
	d := cos * scale
	preTx := -pivotX
	preTy := -pivotY
	return Affine{
		a, b, c, d,
		a*preTx + c*preTy + x,
		b*preTx + d*preTy + y,
	}
}

// Mul returns m * c: c is applied first.
func (m Affine) Mul(c Affine) Affine {
	return Affine{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert returns the inverse matrix, or the identity if m is singular.
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// FlipY returns the matrix that maps physics space (Y up) onto a screen of
// the given height (Y down).
func FlipY(height float64) Affine {
	return Affine{1, 0, 0, -1, 0, height}
}
