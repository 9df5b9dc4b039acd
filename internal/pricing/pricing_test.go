package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	atm = MarketParameters{
		Spot:           100,
		Strike:         100,
		TimeToMaturity: 1,
		RiskFreeRate:   0.05,
		Volatility:     0.2,
		Steps:          100,
	}

	heatmapDefaults = MarketParameters{
		Spot:           100.42,
		Strike:         93.45,
		TimeToMaturity: 1,
		RiskFreeRate:   0.05,
		Volatility:     0.2,
		Steps:          100,
	}

	withDividend = MarketParameters{
		Spot:           100,
		Strike:         95,
		TimeToMaturity: 0.5,
		RiskFreeRate:   0.03,
		Volatility:     0.25,
		DividendYield:  0.02,
		Steps:          100,
	}
)

func TestBlackScholesPrice_ReferenceCases(t *testing.T) {
	tests := []struct {
		name      string
		params    MarketParameters
		call, put float64
	}{
		{"atm", atm, 10.450583572185565, 5.573526022256971},
		{"heatmap defaults", heatmapDefaults, 14.656552078618361, 3.128941798210093},
		{"dividend", withDividend, 9.831948725700414, 4.412599613074562},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := BlackScholesPrice(test.params)
			require.NoError(t, err)
			assert.InDelta(t, test.call, res.Call, 1e-9)
			assert.InDelta(t, test.put, res.Put, 1e-9)
		})
	}
}

func TestBlackScholesPrice_PutCallParity(t *testing.T) {
	cases := []MarketParameters{
		atm,
		heatmapDefaults,
		withDividend,
		{Spot: 50, Strike: 80, TimeToMaturity: 0.25, RiskFreeRate: 0.01, Volatility: 0.6},
		{Spot: 250, Strike: 120, TimeToMaturity: 3, RiskFreeRate: -0.005, Volatility: 0.15, DividendYield: 0.04},
		{Spot: 10, Strike: 10.5, TimeToMaturity: 1.0 / 365, RiskFreeRate: 0.07, Volatility: 1.2},
	}

	for _, p := range cases {
		res, err := BlackScholesPrice(p)
		require.NoError(t, err)

		fwdSpot, fwdStrike := p.discountedForwards()
		assert.InDelta(t, fwdSpot-fwdStrike, res.Call-res.Put, 1e-6, "params=%+v", p)
	}
}

func TestBinomialPrice_OneStepByHand(t *testing.T) {
	p := atm
	p.Steps = 1

	u := math.Exp(0.2)
	d := 1 / u
	prob := (math.Exp(0.05) - d) / (u - d)
	disc := math.Exp(-0.05)
	wantCall := disc * prob * (100*u - 100)
	wantPut := disc * (1 - prob) * (100 - 100*d)

	call, err := BinomialPrice(p, Call)
	require.NoError(t, err)
	put, err := BinomialPrice(p, Put)
	require.NoError(t, err)

	assert.InDelta(t, wantCall, call, 1e-9)
	assert.InDelta(t, wantPut, put, 1e-9)
	assert.InDelta(t, 12.162284964623943, call, 1e-9)
	assert.InDelta(t, 7.285227414695337, put, 1e-9)
}

func TestBinomialPrice_ConvergesToBlackScholes(t *testing.T) {
	tests := []struct {
		steps int
		tol   float64
	}{
		{100, 0.05},
		{500, 0.01},
		{1000, 0.005},
	}

	for _, base := range []MarketParameters{atm, heatmapDefaults, withDividend} {
		analytic, err := BlackScholesPrice(base)
		require.NoError(t, err)

		for _, test := range tests {
			p := base
			p.Steps = test.steps
			lattice, err := Price(ModelBinomial, p)
			require.NoError(t, err)

			assert.InDelta(t, analytic.Call, lattice.Call, test.tol, "call N=%d params=%+v", test.steps, base)
			assert.InDelta(t, analytic.Put, lattice.Put, test.tol, "put N=%d params=%+v", test.steps, base)
		}
	}
}

func TestPrice_NonNegative(t *testing.T) {
	cases := []MarketParameters{
		{Spot: 50, Strike: 200, TimeToMaturity: 0.05, RiskFreeRate: 0.05, Volatility: 0.1, Steps: 50},
		{Spot: 200, Strike: 50, TimeToMaturity: 0.05, RiskFreeRate: 0.05, Volatility: 0.1, Steps: 50},
		{Spot: 100, Strike: 100, TimeToMaturity: 10, RiskFreeRate: 0.2, Volatility: 0.9, Steps: 200},
		{Spot: 1, Strike: 1e4, TimeToMaturity: 1, RiskFreeRate: 0, Volatility: 0.3, Steps: 25},
	}

	for _, model := range Models {
		for _, p := range cases {
			res, err := Price(model, p)
			require.NoError(t, err, "model=%s params=%+v", model, p)
			assert.GreaterOrEqual(t, res.Call, 0.0)
			assert.GreaterOrEqual(t, res.Put, 0.0)
		}
	}
}

func TestPrice_ZeroVolatilityBothModelsAgree(t *testing.T) {
	p := MarketParameters{
		Spot:           100,
		Strike:         90,
		TimeToMaturity: 1,
		RiskFreeRate:   0.05,
		DividendYield:  0.01,
		Steps:          40,
	}
	fwdSpot := 100 * math.Exp(-0.01)
	fwdStrike := 90 * math.Exp(-0.05)

	for _, model := range Models {
		res, err := Price(model, p)
		require.NoError(t, err)
		assert.InDelta(t, fwdSpot-fwdStrike, res.Call, 1e-12, model)
		assert.Equal(t, 0.0, res.Put, model)
	}

	analytic, _ := Price(ModelBlackScholes, p.WithStrike(110))
	lattice, _ := Price(ModelBinomial, p.WithStrike(110))
	assert.Equal(t, analytic, lattice)
	assert.Equal(t, 0.0, analytic.Call)
	assert.InDelta(t, 110*math.Exp(-0.05)-fwdSpot, analytic.Put, 1e-12)
}

func TestPrice_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MarketParameters)
		models []Model
	}{
		{"zero spot", func(p *MarketParameters) { p.Spot = 0 }, Models},
		{"negative strike", func(p *MarketParameters) { p.Strike = -1 }, Models},
		{"zero maturity", func(p *MarketParameters) { p.TimeToMaturity = 0 }, Models},
		{"negative volatility", func(p *MarketParameters) { p.Volatility = -0.01 }, Models},
		{"nan rate", func(p *MarketParameters) { p.RiskFreeRate = math.NaN() }, Models},
		{"inf dividend", func(p *MarketParameters) { p.DividendYield = math.Inf(1) }, Models},
		{"zero steps", func(p *MarketParameters) { p.Steps = 0 }, []Model{ModelBinomial}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := atm
			test.mutate(&p)
			for _, model := range test.models {
				_, err := Price(model, p)
				assert.ErrorIs(t, err, ErrInvalidParameter, model)
			}
		})
	}
}

func TestBlackScholesPrice_IgnoresSteps(t *testing.T) {
	p := atm
	p.Steps = 0
	_, err := Price(ModelBlackScholes, p)
	assert.NoError(t, err)
}

func TestBinomialPrice_Overflow(t *testing.T) {
	p := atm
	p.Volatility = 800
	p.Steps = 1

	_, err := BinomialPrice(p, Call)
	assert.ErrorIs(t, err, ErrNumericOverflow)
}

func TestBinomialPrice_TerminalNodeOverflow(t *testing.T) {
	// u is finite but the top terminal node S*u^N is not.
	p := atm
	p.Volatility = 30
	p.Steps = 1000

	_, err := BinomialPrice(p, Call)
	assert.ErrorIs(t, err, ErrNumericOverflow)

	put, err := BinomialPrice(p, Put)
	require.NoError(t, err)
	assert.Greater(t, put, 0.0)
	assert.LessOrEqual(t, put, p.Strike)

	_, err = Price(ModelBinomial, p)
	assert.ErrorIs(t, err, ErrNumericOverflow)
}

func TestBinomialPrice_UnstableProbability(t *testing.T) {
	p := atm
	p.Volatility = 0.01
	p.Steps = 1

	_, err := Price(ModelBinomial, p)
	assert.ErrorIs(t, err, ErrUnstableLattice)

	p.Steps = 1000
	_, err = Price(ModelBinomial, p)
	assert.NoError(t, err)
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		in       string
		expected Model
	}{
		{"black-scholes", ModelBlackScholes},
		{"BS", ModelBlackScholes},
		{" analytic ", ModelBlackScholes},
		{"binomial", ModelBinomial},
		{"CRR", ModelBinomial},
		{"lattice", ModelBinomial},
	}
	for _, test := range tests {
		got, err := ParseModel(test.in)
		require.NoError(t, err)
		assert.Equal(t, test.expected, got)
	}

	_, err := ParseModel("heston")
	assert.True(t, errors.Is(err, ErrUnknownModel))

	_, err = Price(Model("monte-carlo"), atm)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestParseOptionSide(t *testing.T) {
	side, err := ParseOptionSide("PUT")
	require.NoError(t, err)
	assert.Equal(t, Put, side)

	side, err = ParseOptionSide("c")
	require.NoError(t, err)
	assert.Equal(t, Call, side)
	assert.Equal(t, "call", side.String())

	_, err = ParseOptionSide("straddle")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestPriceSide_MatchesPrice(t *testing.T) {
	for _, model := range Models {
		res, err := Price(model, heatmapDefaults)
		require.NoError(t, err)

		put, err := PriceSide(model, heatmapDefaults, Put)
		require.NoError(t, err)
		assert.Equal(t, res.Put, put)
	}
}

func TestWithVolatility_FloorsAtZero(t *testing.T) {
	assert.Equal(t, 0.0, atm.WithVolatility(-0.3).Volatility)
	assert.Equal(t, 0.35, atm.WithVolatility(0.35).Volatility)
	assert.Equal(t, 0.2, atm.Volatility, "receiver is not modified")
}
