package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

const (
	K_PI float32 = 3.14159265358979323846
	// K_PI_2 is two times PI.
	K_PI_2               float32 = 2.0 * K_PI
	K_HALF_PI            float32 = 0.5 * K_PI
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	// K_FLOAT_EPSILON is the smallest positive number where 1.0 + K_FLOAT_EPSILON != 1.0
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Max returns the larger of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func ksin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func kcos(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// NearlyEqual reports whether a and b differ by at most tolerance.
func NearlyEqual(a, b, tolerance float32) bool {
	return kabs(a-b) <= tolerance
}
