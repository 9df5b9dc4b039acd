package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/contactkeval/option-heatmap/internal/grid"
	"github.com/contactkeval/option-heatmap/internal/logger"
	"github.com/contactkeval/option-heatmap/internal/pricing"
)

// errTooLarge marks requests rejected by the resource guards.
var errTooLarge = errors.New("server: request exceeds limits")

// PricingHandler serves point prices and heatmap grids.
type PricingHandler struct {
	maxSteps int
	maxCells int
	timeout  time.Duration
	workers  int
}

// PriceRequest is the body of POST /api/v1/pricing/price.
type PriceRequest struct {
	Model  string                   `json:"model" binding:"required"`
	Params pricing.MarketParameters `json:"params"`
}

// PriceResponse carries a single call/put pair.
type PriceResponse struct {
	Model pricing.Model `json:"model"`
	Call  float64       `json:"call"`
	Put   float64       `json:"put"`
}

// GridRequest is the body of POST /api/v1/pricing/grid.
type GridRequest struct {
	Model   string                   `json:"model" binding:"required"`
	Params  pricing.MarketParameters `json:"params"`
	Strikes grid.StrikeRange         `json:"strikes"`
	Vols    grid.VolBand             `json:"vols"`
}

// GridResponse is a priced grid tagged with a request ID.
type GridResponse struct {
	ID string `json:"id"`
	*grid.PriceGrid
}

// RegisterRoutes binds the pricing endpoints under /api/v1/pricing.
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/pricing")
	{
		api.POST("/price", h.Price)
		api.POST("/grid", h.Grid)
	}
}

// Price computes the theoretical value of one call/put pair.
func (h *PricingHandler) Price(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	model, err := pricing.ParseModel(req.Model)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.checkSteps(model, req.Params); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	res, err := pricing.Price(model, req.Params)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, PriceResponse{Model: model, Call: res.Call, Put: res.Put})
}

// Grid sweeps the model over the requested strike and volatility axes.
func (h *PricingHandler) Grid(c *gin.Context) {
	var req GridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	model, err := pricing.ParseModel(req.Model)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.checkSteps(model, req.Params); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if exceedsCells(req.Strikes.Count, req.Vols.Count, h.maxCells) {
		fail(c, http.StatusBadRequest, fmt.Errorf("%d strikes x %d vols, max %d cells: %w",
			req.Strikes.Count, req.Vols.Count, h.maxCells, errTooLarge))
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	start := time.Now()
	g, err := grid.Build(ctx, model, req.Params, grid.Sweep{Strikes: req.Strikes, Vols: req.Vols}, grid.WithWorkers(h.workers))
	if err != nil {
		logger.Debugf("grid %s failed: %v", id, err)
		fail(c, statusFor(err), err)
		return
	}
	logger.Infof("grid %s: model=%s %dx%d in %v", id, model, g.Rows(), g.Cols(), time.Since(start))

	c.JSON(http.StatusOK, GridResponse{ID: id, PriceGrid: g})
}

func (h *PricingHandler) checkSteps(model pricing.Model, p pricing.MarketParameters) error {
	if model == pricing.ModelBinomial && p.Steps > h.maxSteps {
		return fmt.Errorf("steps %d, max %d: %w", p.Steps, h.maxSteps, errTooLarge)
	}
	return nil
}

// exceedsCells reports whether strikes*vols > limit without computing the
// product. Non-positive counts are left to the axis validation.
func exceedsCells(strikes, vols, limit int) bool {
	if strikes <= 0 || vols <= 0 {
		return false
	}
	return strikes > limit/vols
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidParameter),
		errors.Is(err, pricing.ErrUnknownModel),
		errors.Is(err, grid.ErrInvalidAxis),
		errors.Is(err, errTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, pricing.ErrNumericOverflow),
		errors.Is(err, pricing.ErrUnstableLattice):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
