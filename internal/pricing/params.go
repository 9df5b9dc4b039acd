package pricing

import (
	"fmt"
	"math"
	"strings"
)

// OptionSide selects the payoff of a vanilla option.
type OptionSide int

const (
	Call OptionSide = iota
	Put
)

func (s OptionSide) String() string {
	switch s {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionSide(%d)", int(s))
	}
}

// ParseOptionSide accepts "call", "c", "put" or "p" in any case.
func ParseOptionSide(s string) (OptionSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("option side %q: %w", s, ErrInvalidParameter)
}

// MarketParameters holds the inputs of a single pricing call.
//
// Rates and yields are continuously compounded, annualised decimals
// (0.05 for 5%). Steps is used only by the binomial model.
type MarketParameters struct {
	Spot           float64 `json:"spot"`             // current underlying price (S)
	Strike         float64 `json:"strike"`           // option strike (K)
	TimeToMaturity float64 `json:"time_to_maturity"` // years to expiry (T)
	RiskFreeRate   float64 `json:"risk_free_rate"`   // r
	Volatility     float64 `json:"volatility"`       // sigma
	DividendYield  float64 `json:"dividend_yield"`   // q
	Steps          int     `json:"steps,omitempty"`  // binomial tree steps (N)
}

// Validate reports the first parameter that is outside its domain.
// The steps requirement is checked by the binomial pricer only.
func (p MarketParameters) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"spot", p.Spot},
		{"strike", p.Strike},
		{"time_to_maturity", p.TimeToMaturity},
		{"risk_free_rate", p.RiskFreeRate},
		{"volatility", p.Volatility},
		{"dividend_yield", p.DividendYield},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite: %w", f.name, ErrInvalidParameter)
		}
	}

	switch {
	case p.Spot <= 0:
		return fmt.Errorf("spot must be > 0, got %g: %w", p.Spot, ErrInvalidParameter)
	case p.Strike <= 0:
		return fmt.Errorf("strike must be > 0, got %g: %w", p.Strike, ErrInvalidParameter)
	case p.TimeToMaturity <= 0:
		return fmt.Errorf("time_to_maturity must be > 0, got %g: %w", p.TimeToMaturity, ErrInvalidParameter)
	case p.Volatility < 0:
		return fmt.Errorf("volatility must be >= 0, got %g: %w", p.Volatility, ErrInvalidParameter)
	}
	return nil
}

func (p MarketParameters) validateSteps() error {
	if p.Steps < 1 {
		return fmt.Errorf("steps must be >= 1, got %d: %w", p.Steps, ErrInvalidParameter)
	}
	return nil
}

// WithStrike returns a copy of p priced at strike k.
func (p MarketParameters) WithStrike(k float64) MarketParameters {
	p.Strike = k
	return p
}

// WithVolatility returns a copy of p with volatility v floored at zero.
func (p MarketParameters) WithVolatility(v float64) MarketParameters {
	p.Volatility = math.Max(v, 0)
	return p
}

// discountedForwards returns S*e^(-qT) and K*e^(-rT).
func (p MarketParameters) discountedForwards() (spot, strike float64) {
	return p.Spot * math.Exp(-p.DividendYield*p.TimeToMaturity),
		p.Strike * math.Exp(-p.RiskFreeRate*p.TimeToMaturity)
}

// PriceResult is a call/put price pair. Both sides are >= 0.
type PriceResult struct {
	Call float64 `json:"call"`
	Put  float64 `json:"put"`
}

// newPriceResult is the only constructor of PriceResult; negative values
// coming from floating point cancellation are clamped to zero.
func newPriceResult(call, put float64) PriceResult {
	return PriceResult{Call: clampPrice(call), Put: clampPrice(put)}
}

// Side projects the result onto one option side.
func (r PriceResult) Side(side OptionSide) float64 {
	if side == Put {
		return r.Put
	}
	return r.Call
}

func clampPrice(v float64) float64 {
	return math.Max(v, 0)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
