package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidAxis is returned when a sweep axis cannot be built.
var ErrInvalidAxis = errors.New("grid: invalid axis")

// volEpsilon absorbs the rounding left by center-k*step at the zero
// crossing; a residue like 1e-17 would otherwise reach the lattice as a
// tiny positive volatility.
const volEpsilon = 1e-12

// StrikeRange describes Count strikes linearly spaced from Min to Max,
// both ends included.
type StrikeRange struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Axis returns the strike values in ascending order.
func (r StrikeRange) Axis() ([]float64, error) {
	switch {
	case r.Count < 1:
		return nil, fmt.Errorf("strike count %d: %w", r.Count, ErrInvalidAxis)
	case math.IsNaN(r.Min) || math.IsInf(r.Min, 0) || math.IsNaN(r.Max) || math.IsInf(r.Max, 0):
		return nil, fmt.Errorf("strike bounds must be finite: %w", ErrInvalidAxis)
	case r.Min <= 0:
		return nil, fmt.Errorf("strike min %g must be > 0: %w", r.Min, ErrInvalidAxis)
	case r.Max < r.Min:
		return nil, fmt.Errorf("strike max %g below min %g: %w", r.Max, r.Min, ErrInvalidAxis)
	}

	if r.Count == 1 {
		return []float64{r.Min}, nil
	}
	return floats.Span(make([]float64, r.Count), r.Min, r.Max), nil
}

// VolBand describes Count volatilities spaced by Step around Center.
// The band starts Count/2 steps below Center, so ten steps of 0.02
// cover Center-0.10 .. Center+0.08. Values below zero are floored.
type VolBand struct {
	Center     float64 `json:"center"`
	Step       float64 `json:"step"`
	Count      int     `json:"count"`
	Descending bool    `json:"descending,omitempty"` // highest volatility first, for display
}

// Axis returns the volatility values, ascending unless Descending is set.
func (b VolBand) Axis() ([]float64, error) {
	switch {
	case b.Count < 1:
		return nil, fmt.Errorf("volatility count %d: %w", b.Count, ErrInvalidAxis)
	case math.IsNaN(b.Center) || math.IsInf(b.Center, 0) || math.IsNaN(b.Step) || math.IsInf(b.Step, 0):
		return nil, fmt.Errorf("volatility center and step must be finite: %w", ErrInvalidAxis)
	case b.Step < 0:
		return nil, fmt.Errorf("volatility step %g must be >= 0: %w", b.Step, ErrInvalidAxis)
	}

	half := b.Count / 2
	out := make([]float64, b.Count)
	for i := range out {
		v := b.Center + float64(i-half)*b.Step
		if v < volEpsilon {
			v = 0
		}
		out[i] = v
	}
	if b.Descending {
		floats.Reverse(out)
	}
	return out, nil
}

// Sweep is the full two-axis configuration of a grid build.
type Sweep struct {
	Strikes StrikeRange `json:"strikes"`
	Vols    VolBand     `json:"vols"`
}
