package pricing

import "errors"

// Sentinel errors returned by the pricing functions. Callers match them
// with errors.Is; the returned errors usually wrap one of these with the
// offending field or value.
var (
	// ErrInvalidParameter is returned when a market parameter is out of
	// its domain (spot, strike or maturity not positive, negative
	// volatility, non-finite values, lattice steps below one).
	ErrInvalidParameter = errors.New("pricing: invalid parameter")

	// ErrNumericOverflow is returned when an intermediate or final value
	// is no longer finite, e.g. the lattice up factor overflows for a
	// very large sigma*sqrt(dt).
	ErrNumericOverflow = errors.New("pricing: numeric overflow")

	// ErrUnstableLattice is returned when the lattice risk-neutral
	// probability falls outside [0,1]. More steps usually fixes it.
	ErrUnstableLattice = errors.New("pricing: risk-neutral probability outside [0,1]")

	// ErrUnknownModel is returned for an unsupported model selector.
	ErrUnknownModel = errors.New("pricing: unknown model")
)
