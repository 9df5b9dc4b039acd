package pricing

import "math"

// NormCDF computes the cumulative distribution function of the standard
// normal distribution using the error function:
//
//	Φ(x) = (1 + erf(x/√2)) / 2
//
// It is defined for every finite x and saturates to 0 and 1 for large |x|.
func NormCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
