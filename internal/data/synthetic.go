package data

import (
	"context"
	"math/rand"
	"strings"
	"sync"
)

// synthDataProvider produces reproducible pseudo-random closes for offline
// runs. The same seed and ticker always give the same price.
type synthDataProvider struct {
	mu     sync.Mutex
	seed   int64
	prices map[string]float64
}

func NewSyntheticProvider(seed int64) SpotProvider {
	return &synthDataProvider{seed: seed, prices: make(map[string]float64)}
}

func (synthDataProv *synthDataProvider) Name() string { return "synthetic" }

// LatestClose returns a price in [100, 300) rounded to cents.
func (synthDataProv *synthDataProvider) LatestClose(ctx context.Context, underlying string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ticker := strings.ToUpper(strings.TrimSpace(underlying))

	synthDataProv.mu.Lock()
	defer synthDataProv.mu.Unlock()

	if p, ok := synthDataProv.prices[ticker]; ok {
		return p, nil
	}

	var h int64
	for _, c := range ticker {
		h = h*31 + int64(c)
	}
	rng := rand.New(rand.NewSource(synthDataProv.seed ^ h))
	price := float64(int((100+rng.Float64()*200)*100)) / 100

	synthDataProv.prices[ticker] = price
	return price, nil
}
