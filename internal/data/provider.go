// Package data supplies the underlying spot price used to seed a pricing
// run when a ticker is configured instead of a literal spot.
package data

import (
	"context"
	"errors"
	"os"
)

// ErrNoData is returned when a provider has no price for the ticker.
var ErrNoData = errors.New("data: no price available")

// SpotProvider supplies the latest close of an underlying.
type SpotProvider interface {
	LatestClose(ctx context.Context, underlying string) (float64, error)
	Name() string
}

// APIKeyFromEnv returns the Massive API key, accepting the legacy
// Polygon variable name as well.
func APIKeyFromEnv() string {
	if k := os.Getenv("MASSIVE_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("POLYGON_API_KEY")
}

// NewProvider returns the Massive provider when an API key is available
// and the synthetic provider otherwise.
func NewProvider(apiKey string, seed int64) SpotProvider {
	if apiKey != "" {
		return NewMassiveDataProvider(apiKey)
	}
	return NewSyntheticProvider(seed)
}
