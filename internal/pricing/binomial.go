package pricing

import (
	"fmt"
	"math"
)

// BinomialPrice prices one side of a European option on a
// Cox-Ross-Rubinstein recombining tree with p.Steps steps.
//
// The tree uses u = e^(σ√dt), d = 1/u and the risk-neutral up
// probability (e^((r-q)dt) - d) / (u - d). Terminal values live in a
// single buffer of Steps+1 nodes that is rolled back in place, so memory
// is O(N) and time is O(N²). Steps is not capped here.
//
// Zero volatility returns the same deterministic limit as
// BlackScholesPrice.
func BinomialPrice(p MarketParameters, side OptionSide) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if err := p.validateSteps(); err != nil {
		return 0, err
	}
	if side != Call && side != Put {
		return 0, fmt.Errorf("%s: %w", side, ErrInvalidParameter)
	}
	if p.Volatility == 0 {
		return zeroVolatilityPrice(p).Side(side), nil
	}

	n := p.Steps
	dt := p.TimeToMaturity / float64(n)
	move := p.Volatility * math.Sqrt(dt)
	u := math.Exp(move)
	d := 1 / u
	if !finite(u) || u == d {
		return 0, fmt.Errorf("up factor %g for sigma*sqrt(dt)=%g: %w", u, move, ErrNumericOverflow)
	}

	prob := (math.Exp((p.RiskFreeRate-p.DividendYield)*dt) - d) / (u - d)
	if !finite(prob) {
		return 0, fmt.Errorf("probability %g: %w", prob, ErrNumericOverflow)
	}
	if prob < 0 || prob > 1 {
		return 0, fmt.Errorf("p=%g with %d steps: %w", prob, n, ErrUnstableLattice)
	}
	disc := math.Exp(-p.RiskFreeRate * dt)

	// values[i] holds the node reached with i down moves.
	values := make([]float64, n+1)
	for i := range values {
		st := p.Spot * math.Exp(float64(n-2*i)*move)
		values[i] = payoff(side, st, p.Strike)
	}

	for j := n - 1; j >= 0; j-- {
		for i := 0; i <= j; i++ {
			values[i] = disc * (prob*values[i] + (1-prob)*values[i+1])
		}
	}

	if !finite(values[0]) {
		return 0, fmt.Errorf("binomial %s value %g: %w", side, values[0], ErrNumericOverflow)
	}
	return clampPrice(values[0]), nil
}

func payoff(side OptionSide, spot, strike float64) float64 {
	if side == Put {
		return math.Max(0, strike-spot)
	}
	return math.Max(0, spot-strike)
}
