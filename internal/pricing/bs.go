package pricing

import (
	"fmt"
	"math"
)

// BlackScholesPrice prices a European call/put pair with the
// Black-Scholes-Merton closed form, including a continuous dividend
// yield.
//
// Parameters:
//   - p: validated market parameters; Steps is ignored
//
// Returns:
//
//	The call and put prices, each clamped to >= 0. For zero volatility the
//	deterministic limit (discounted-forward intrinsic value) is returned
//	instead of evaluating d1/d2.
//
// Errors:
//   - ErrInvalidParameter if p fails validation
//   - ErrNumericOverflow if the result is not finite
func BlackScholesPrice(p MarketParameters) (PriceResult, error) {
	if err := p.Validate(); err != nil {
		return PriceResult{}, err
	}
	if p.Volatility == 0 {
		return zeroVolatilityPrice(p), nil
	}

	sqrtT := math.Sqrt(p.TimeToMaturity)
	volSqrtT := p.Volatility * sqrtT

	d1 := (math.Log(p.Spot/p.Strike) + (p.RiskFreeRate-p.DividendYield+0.5*p.Volatility*p.Volatility)*p.TimeToMaturity) / volSqrtT
	d2 := d1 - volSqrtT

	fwdSpot, fwdStrike := p.discountedForwards()
	call := fwdSpot*NormCDF(d1) - fwdStrike*NormCDF(d2)
	put := fwdStrike*NormCDF(-d2) - fwdSpot*NormCDF(-d1)

	if !finite(call, put) {
		return PriceResult{}, fmt.Errorf("black-scholes call=%g put=%g: %w", call, put, ErrNumericOverflow)
	}
	return newPriceResult(call, put), nil
}

// zeroVolatilityPrice is the sigma -> 0 limit shared by both models:
// with no diffusion the underlying grows deterministically, so each side
// is worth its discounted-forward intrinsic value.
func zeroVolatilityPrice(p MarketParameters) PriceResult {
	fwdSpot, fwdStrike := p.discountedForwards()
	return newPriceResult(fwdSpot-fwdStrike, fwdStrike-fwdSpot)
}
