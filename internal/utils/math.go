package utils

import "math"

// ClampFloat bounds v to the [min, max] interval.
func ClampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RoundToInt rounds half to even so .5 scores don't drift upward.
func RoundToInt(v float64) int {
	return int(math.RoundToEven(v))
}

// RoundTo2Decimals keeps rate metrics at two decimal places.
func RoundTo2Decimals(v float64) float64 {
	return math.Round(v*100) / 100
}
