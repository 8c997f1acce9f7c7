package gooey

import "math"

// NormalizeAngle maps an angle in degrees onto (-180, 180]. Non-finite input
// yields 0.
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	a := math.Mod(deg, 360)
	switch {
	case a > 180:
		a -= 360
	case a <= -180:
		a += 360
	}
	if a == 0 {
		return 0 // drop negative zero
	}
	return a
}

// AngleDiff returns the signed shortest rotation in degrees from current to
// target, in (-180, 180].
func AngleDiff(target, current float64) float64 {
	return NormalizeAngle(target - current)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
