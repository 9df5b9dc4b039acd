// Package grid sweeps a pricing model over a strike × volatility grid and
// returns the call and put value matrices consumed by heatmap renderers.
//
// Rows are indexed by volatility and columns by strike:
//
//	Call[i][j] = pricing.Price(model, base.WithStrike(Strikes[j]).WithVolatility(Vols[i])).Call
//
// Cells are independent, so rows are priced concurrently on a bounded
// worker pool. A failing cell fails the whole build; no partially
// populated grid is ever returned.
package grid

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-heatmap/internal/logger"
	"github.com/contactkeval/option-heatmap/internal/pricing"
)

// PriceGrid holds the call and put matrices of a sweep together with the
// axis values they were computed on.
type PriceGrid struct {
	Model   pricing.Model `json:"model"`
	Strikes []float64     `json:"strikes"`
	Vols    []float64     `json:"vols"`
	Call    [][]float64   `json:"call"`
	Put     [][]float64   `json:"put"`
}

// Rows returns the number of volatility rows.
func (g *PriceGrid) Rows() int { return len(g.Vols) }

// Cols returns the number of strike columns.
func (g *PriceGrid) Cols() int { return len(g.Strikes) }

// CellError reports the grid cell whose pricing failed.
type CellError struct {
	Row, Col   int
	Strike     float64
	Volatility float64
	Err        error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("grid cell [%d][%d] strike=%g vol=%g: %v", e.Row, e.Col, e.Strike, e.Volatility, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

type options struct {
	workers int
}

// Option configures a grid build.
type Option func(*options)

// WithWorkers bounds the number of rows priced concurrently. Values below
// one select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Build constructs both axes from sweep and evaluates the grid.
func Build(ctx context.Context, model pricing.Model, base pricing.MarketParameters, sweep Sweep, opts ...Option) (*PriceGrid, error) {
	strikes, err := sweep.Strikes.Axis()
	if err != nil {
		return nil, err
	}
	vols, err := sweep.Vols.Axis()
	if err != nil {
		return nil, err
	}
	return Evaluate(ctx, model, base, strikes, vols, opts...)
}

// Evaluate prices every (vol, strike) pair of the given axes. The axes may
// be in any order; the result is aligned with them.
//
// The cost is len(vols)·len(strikes) pricer calls, each O(N²) for the
// binomial model.
func Evaluate(ctx context.Context, model pricing.Model, base pricing.MarketParameters, strikes, vols []float64, opts ...Option) (*PriceGrid, error) {
	if len(strikes) == 0 || len(vols) == 0 {
		return nil, fmt.Errorf("empty axis (%d strikes, %d vols): %w", len(strikes), len(vols), ErrInvalidAxis)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Fail fast on bad base parameters or an unknown model before any
	// goroutine is started.
	if _, err := pricing.Price(model, base.WithStrike(strikes[0]).WithVolatility(vols[0])); err != nil {
		return nil, &CellError{Row: 0, Col: 0, Strike: strikes[0], Volatility: vols[0], Err: err}
	}

	o := options{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	g := &PriceGrid{
		Model:   model,
		Strikes: append([]float64(nil), strikes...),
		Vols:    append([]float64(nil), vols...),
		Call:    make([][]float64, len(vols)),
		Put:     make([][]float64, len(vols)),
	}

	start := time.Now()
	logger.Debugf("grid build: model=%s rows=%d cols=%d steps=%d workers=%d",
		model, len(vols), len(strikes), base.Steps, o.workers)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)

	for i, vol := range g.Vols {
		eg.Go(func() error {
			calls := make([]float64, len(g.Strikes))
			puts := make([]float64, len(g.Strikes))
			rowParams := base.WithVolatility(vol)

			for j, strike := range g.Strikes {
				if err := egCtx.Err(); err != nil {
					return err
				}
				res, err := pricing.Price(model, rowParams.WithStrike(strike))
				if err != nil {
					return &CellError{Row: i, Col: j, Strike: strike, Volatility: vol, Err: err}
				}
				calls[j] = res.Call
				puts[j] = res.Put
			}

			// Each goroutine owns row i exclusively.
			g.Call[i] = calls
			g.Put[i] = puts
			logger.Tracef("grid row %d vol=%.4f done", i, vol)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		logger.Debugf("grid build failed after %v: %v", time.Since(start), err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debugf("grid build finished in %v", time.Since(start))
	return g, nil
}
