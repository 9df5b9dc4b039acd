// Package report writes a point price and its heatmap grid to disk
// (JSON and long-format CSV) and renders the grid as a text matrix.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-heatmap/internal/grid"
	"github.com/contactkeval/option-heatmap/internal/pricing"
)

const (
	jsonFile = "heatmap.json"
	csvFile  = "heatmap.csv"
)

// GridReport is one pricing run: the point price at the configured strike
// and volatility plus the surrounding grid.
type GridReport struct {
	ID          string                   `json:"id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Model       pricing.Model            `json:"model"`
	Params      pricing.MarketParameters `json:"params"`
	Point       pricing.PriceResult      `json:"point"`
	Grid        *grid.PriceGrid          `json:"grid"`
}

// NewGridReport stamps a report with a fresh ID and the current time.
func NewGridReport(model pricing.Model, params pricing.MarketParameters, point pricing.PriceResult, g *grid.PriceGrid) *GridReport {
	return &GridReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Model:       model,
		Params:      params,
		Point:       point,
		Grid:        g,
	}
}

// cellRow is one grid cell in the CSV export.
type cellRow struct {
	Volatility float64 `csv:"volatility"`
	Strike     float64 `csv:"strike"`
	Call       float64 `csv:"call"`
	Put        float64 `csv:"put"`
}

func WriteJSON(rep *GridReport, outdir string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, jsonFile), b, 0644)
}

// WriteCSV writes one row per cell, volatility-major in grid order.
func WriteCSV(rep *GridReport, outdir string) error {
	if rep.Grid == nil {
		return fmt.Errorf("report %s has no grid", rep.ID)
	}
	g := rep.Grid
	rows := make([]*cellRow, 0, g.Rows()*g.Cols())
	for i, vol := range g.Vols {
		for j, strike := range g.Strikes {
			rows = append(rows, &cellRow{
				Volatility: vol,
				Strike:     strike,
				Call:       g.Call[i][j],
				Put:        g.Put[i][j],
			})
		}
	}

	f, err := os.Create(filepath.Join(outdir, csvFile))
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(&rows, f)
}

// Summary is the one-line headline shown above the heatmaps.
func Summary(rep *GridReport) string {
	p := rep.Params
	return fmt.Sprintf("%s Call Price: %s and Put Price: %s for K=%s, T=%s years, σ=%s, S=%s",
		rep.Model, money(rep.Point.Call), money(rep.Point.Put),
		num(p.Strike), num(p.TimeToMaturity), num(p.Volatility), num(p.Spot))
}

// RenderTable writes values as a matrix with volatilities down the left
// and strikes across the top. Cells are rounded to cents.
func RenderTable(w io.Writer, title string, strikes, vols []float64, values [][]float64) error {
	const width = 9

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteByte('\n')

	fmt.Fprintf(&sb, "%*s", width, "vol\\K")
	for _, k := range strikes {
		fmt.Fprintf(&sb, "%*s", width, money(k))
	}
	sb.WriteByte('\n')

	for i, vol := range vols {
		if i >= len(values) || len(values[i]) != len(strikes) {
			return fmt.Errorf("row %d does not match %d strikes", i, len(strikes))
		}
		fmt.Fprintf(&sb, "%*s", width, money(vol))
		for _, v := range values[i] {
			fmt.Fprintf(&sb, "%*s", width, money(v))
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// money rounds half away from zero to two decimals.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func num(v float64) string {
	return decimal.NewFromFloat(v).String()
}
