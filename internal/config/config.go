// Package config loads the JSON configuration shared by the CLI and the
// HTTP server: the market parameters of the point price, the heatmap
// sweep, output and server settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/contactkeval/option-heatmap/internal/grid"
	"github.com/contactkeval/option-heatmap/internal/pricing"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is one heatmap run: the point-price inputs, the strike and
// volatility sweep, output and logging settings, and the REST server
// limits used in -rest mode.
type Config struct {
	Model      string `json:"model,omitempty" validate:"required"` // "black-scholes" or "binomial"
	Underlying string `json:"underlying,omitempty"`                // optional ticker used to fetch spot

	Spot           float64 `json:"spot" validate:"gt=0"`             // S
	Strike         float64 `json:"strike" validate:"gt=0"`           // K for the point price
	TimeToMaturity float64 `json:"time_to_maturity" validate:"gt=0"` // T in years
	RiskFreeRate   float64 `json:"risk_free_rate"`                   // r
	Volatility     float64 `json:"volatility" validate:"gte=0"`      // sigma, also the vol band center
	DividendYield  float64 `json:"dividend_yield"`                   // q
	Steps          int     `json:"steps,omitempty" validate:"gte=1"` // binomial steps

	StrikeMin     float64 `json:"strike_min" validate:"gt=0"`
	StrikeMax     float64 `json:"strike_max" validate:"gtefield=StrikeMin"`
	StrikeCount   int     `json:"strike_count,omitempty" validate:"gte=1"`
	VolCount      int     `json:"vol_count,omitempty" validate:"gte=1"`
	VolStep       float64 `json:"vol_step,omitempty" validate:"gte=0"`
	VolDescending *bool   `json:"vol_descending,omitempty"` // default true: highest vol on top

	Workers   int    `json:"workers,omitempty" validate:"gte=0"`         // 0 = GOMAXPROCS
	OutputDir string `json:"output_dir,omitempty"`                       // report directory
	Verbosity int    `json:"verbosity,omitempty" validate:"gte=0,lte=3"` // 0=errors,1=info,2=debug,3=trace
	Seed      int64  `json:"seed,omitempty"`                             // synthetic spot seed

	Server ServerConfig `json:"server"`
}

// ServerConfig holds the HTTP API settings and resource guards.
type ServerConfig struct {
	Addr     string   `json:"addr,omitempty"`
	MaxSteps int      `json:"max_steps,omitempty" validate:"gte=1"` // largest accepted binomial step count
	MaxCells int      `json:"max_cells,omitempty" validate:"gte=1"` // largest accepted rows*cols
	Timeout  Duration `json:"timeout,omitempty"`                    // per-request grid budget
}

// Duration is a time.Duration read from a JSON string such as "30s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	descending := true
	return &Config{
		Model:          string(pricing.ModelBlackScholes),
		Spot:           100,
		Strike:         100,
		TimeToMaturity: 1,
		RiskFreeRate:   0.05,
		Volatility:     0.2,
		Steps:          100,
		StrikeMin:      80,
		StrikeMax:      120,
		StrikeCount:    10,
		VolCount:       10,
		VolStep:        0.02,
		VolDescending:  &descending,
		OutputDir:      "out",
		Verbosity:      1,
		Server: ServerConfig{
			Addr:     ":8080",
			MaxSteps: 5000,
			MaxCells: 2500,
			Timeout:  Duration(30 * time.Second),
		},
	}
}

// Load reads path and overlays it on Default. The result is validated.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(b)
}

// Parse decodes a JSON document over Default and validates it.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges, the model name and that the point strike
// lies inside the heatmap strike range.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), ErrInvalidConfig)
		}
		return fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	if _, err := pricing.ParseModel(c.Model); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}
	if c.Strike < c.StrikeMin || c.Strike > c.StrikeMax {
		return fmt.Errorf("strike %g must be between strike_min %g and strike_max %g: %w",
			c.Strike, c.StrikeMin, c.StrikeMax, ErrInvalidConfig)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server timeout must not be negative: %w", ErrInvalidConfig)
	}
	return nil
}

// PricingModel returns the parsed model. Validate has already checked it.
func (c *Config) PricingModel() pricing.Model {
	m, _ := pricing.ParseModel(c.Model)
	return m
}

// MarketParameters returns the point-price inputs.
func (c *Config) MarketParameters() pricing.MarketParameters {
	return pricing.MarketParameters{
		Spot:           c.Spot,
		Strike:         c.Strike,
		TimeToMaturity: c.TimeToMaturity,
		RiskFreeRate:   c.RiskFreeRate,
		Volatility:     c.Volatility,
		DividendYield:  c.DividendYield,
		Steps:          c.Steps,
	}
}

// Sweep returns the heatmap axes; the volatility band is centered on the
// configured volatility.
func (c *Config) Sweep() grid.Sweep {
	descending := c.VolDescending == nil || *c.VolDescending
	return grid.Sweep{
		Strikes: grid.StrikeRange{Min: c.StrikeMin, Max: c.StrikeMax, Count: c.StrikeCount},
		Vols:    grid.VolBand{Center: c.Volatility, Step: c.VolStep, Count: c.VolCount, Descending: descending},
	}
}
