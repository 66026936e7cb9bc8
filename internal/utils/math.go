package utils

import "math"

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percent returns part/total*100 rounded to two decimals. A zero total
// yields 0.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

// SafeDiv divides and yields 0 when the denominator is 0.
func SafeDiv(num float64, den int64) float64 {
	if den == 0 {
		return 0
	}
	return num / float64(den)
}
