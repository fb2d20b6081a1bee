package utils

// IsNaN32 reports whether f is a single-precision NaN
func IsNaN32(f float32) bool {
	return f != f
}

// Widen copies float32 values into dst as float64, growing dst as needed.
// Ordering and NaN-ness are preserved.
func Widen(dst []float64, src []float32) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
