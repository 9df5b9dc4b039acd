package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-heatmap/internal/pricing"
)

var (
	base = pricing.MarketParameters{
		Spot:           100.42,
		Strike:         93.45,
		TimeToMaturity: 1,
		RiskFreeRate:   0.05,
		Volatility:     0.2,
		Steps:          50,
	}

	sweep = Sweep{
		Strikes: StrikeRange{Min: 80, Max: 120, Count: 10},
		Vols:    VolBand{Center: 0.2, Step: 0.02, Count: 10, Descending: true},
	}
)

func TestBuild_ShapeAndCellsMatchEngine(t *testing.T) {
	for _, model := range pricing.Models {
		t.Run(string(model), func(t *testing.T) {
			g, err := Build(context.Background(), model, base, sweep)
			require.NoError(t, err)

			require.Equal(t, 10, g.Rows())
			require.Equal(t, 10, g.Cols())
			require.Len(t, g.Call, 10)
			require.Len(t, g.Put, 10)
			assert.Equal(t, model, g.Model)

			for i, vol := range g.Vols {
				require.Len(t, g.Call[i], 10)
				require.Len(t, g.Put[i], 10)
				for j, strike := range g.Strikes {
					want, err := pricing.Price(model, base.WithStrike(strike).WithVolatility(vol))
					require.NoError(t, err)
					assert.Equal(t, want.Call, g.Call[i][j], "call [%d][%d]", i, j)
					assert.Equal(t, want.Put, g.Put[i][j], "put [%d][%d]", i, j)
				}
			}
		})
	}
}

func TestBuild_PointPriceMatchesCell(t *testing.T) {
	p := base.WithStrike(100)
	point, err := pricing.Price(pricing.ModelBinomial, p)
	require.NoError(t, err)

	g, err := Evaluate(context.Background(), pricing.ModelBinomial, base, []float64{90, 100, 110}, []float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.Equal(t, point.Call, g.Call[1][1])
	assert.Equal(t, point.Put, g.Put[1][1])
}

func TestBuild_WorkerCountDoesNotChangeResult(t *testing.T) {
	serial, err := Build(context.Background(), pricing.ModelBinomial, base, sweep, WithWorkers(1))
	require.NoError(t, err)
	parallel, err := Build(context.Background(), pricing.ModelBinomial, base, sweep, WithWorkers(8))
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestBuild_ZeroVolatilityRowsAgreeAcrossModels(t *testing.T) {
	low := Sweep{
		Strikes: StrikeRange{Min: 80, Max: 120, Count: 5},
		Vols:    VolBand{Center: 0.02, Step: 0.02, Count: 10},
	}

	analytic, err := Build(context.Background(), pricing.ModelBlackScholes, base, low)
	require.NoError(t, err)
	lattice, err := Build(context.Background(), pricing.ModelBinomial, base, low)
	require.NoError(t, err)

	// Rows 0..4 are floored to zero volatility.
	for i := 0; i < 5; i++ {
		require.Equal(t, 0.0, analytic.Vols[i])
		assert.Equal(t, analytic.Call[i], lattice.Call[i], "row %d", i)
		assert.Equal(t, analytic.Put[i], lattice.Put[i], "row %d", i)
	}
}

func TestEvaluate_CellFailureFailsGrid(t *testing.T) {
	p := base
	p.Steps = 1

	g, err := Evaluate(context.Background(), pricing.ModelBinomial, p, []float64{90, 100}, []float64{0.2, 800})
	require.Error(t, err)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, pricing.ErrNumericOverflow)

	var cellErr *CellError
	require.True(t, errors.As(err, &cellErr))
	assert.Equal(t, 1, cellErr.Row)
	assert.Equal(t, 800.0, cellErr.Volatility)
}

func TestEvaluate_InvalidBaseParameters(t *testing.T) {
	p := base
	p.Spot = 0

	_, err := Build(context.Background(), pricing.ModelBlackScholes, p, sweep)
	assert.ErrorIs(t, err, pricing.ErrInvalidParameter)

	_, err = Build(context.Background(), pricing.Model("heston"), base, sweep)
	assert.ErrorIs(t, err, pricing.ErrUnknownModel)
}

func TestEvaluate_EmptyAxis(t *testing.T) {
	_, err := Evaluate(context.Background(), pricing.ModelBlackScholes, base, nil, []float64{0.2})
	assert.ErrorIs(t, err, ErrInvalidAxis)
}

func TestEvaluate_CanceledBeforeFirstCell(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Pricing even one cell at this depth would take minutes.
	p := base
	p.Steps = 5_000_000

	g, err := Evaluate(ctx, pricing.ModelBinomial, p, []float64{100}, []float64{0.2})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, g)
}

func TestEvaluate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := Build(ctx, pricing.ModelBinomial, base, sweep)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, g)
}
