package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/contactkeval/option-heatmap/internal/logger"
)

// massiveDataProvider fetches prices from the Massive (formerly Polygon)
// aggregates API over plain HTTP.
type massiveDataProvider struct {
	// APIKey used for authenticating requests with Massive.
	APIKey string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// BaseURL is the root endpoint for Massive APIs
	// (e.g., https://api.massive.com).
	BaseURL string
}

// massivePrevCloseResp models the previous-day aggregate response.
type massivePrevCloseResp struct {
	Ticker       string `json:"ticker"`
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		Open      float64 `json:"o"`
		Close     float64 `json:"c"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Volume    float64 `json:"v"`
		Timestamp int64   `json:"t"` // epoch millis
	} `json:"results"`
}

// NewMassiveDataProvider constructs a Massive-backed spot provider.
//
// It initializes an HTTP client with sensible defaults for:
//   - timeouts
//   - connection pooling
//   - HTTP/2 support
//   - gzip decompression
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	return &massiveDataProvider{
		APIKey: apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    false, // must be false to enable gzip auto-decompression
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		BaseURL: "https://api.massive.com",
	}
}

func (massiveDataProv *massiveDataProvider) Name() string { return "massive" }

// LatestClose returns the previous session's adjusted close.
//
// Errors:
//   - non-200 responses, with the API message when present
//   - ErrNoData when the response carries no result
func (massiveDataProv *massiveDataProvider) LatestClose(ctx context.Context, underlying string) (float64, error) {
	ticker := strings.ToUpper(strings.TrimSpace(underlying))
	if ticker == "" {
		return 0, fmt.Errorf("empty ticker: %w", ErrNoData)
	}

	reqURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev?adjusted=true&apiKey=%s",
		massiveDataProv.BaseURL, url.PathEscape(ticker), url.QueryEscape(massiveDataProv.APIKey))
	logger.Debugf("previous close request: %s", ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+massiveDataProv.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := massiveDataProv.Client.Do(req)
	if err != nil {
		logger.Errorf("previous close request failed: %v", err)
		return 0, fmt.Errorf("massive api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	if resp.StatusCode != http.StatusOK {
		var dbg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &dbg)

		logger.Errorf("massive prev close API error status=%d message=%s", resp.StatusCode, dbg.Message)
		return 0, fmt.Errorf("massive returned status %d: %s", resp.StatusCode, dbg.Message)
	}

	var prev massivePrevCloseResp
	if err := json.Unmarshal(body, &prev); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	if len(prev.Results) == 0 || prev.Results[0].Close <= 0 {
		return 0, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}

	last := prev.Results[0].Close
	logger.Tracef("previous close %s=%.4f at %s", ticker, last,
		time.UnixMilli(prev.Results[0].Timestamp).UTC().Format("2006-01-02"))
	return last, nil
}
