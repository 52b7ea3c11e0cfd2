// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

// Package config loads the run configuration from YAML, fills defaults and
// validates hyperparameters before any estimation starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"bvarsv/internal/bvar"
)

// Config is the full run configuration.
type Config struct {
	Data     Data     `yaml:"data"`
	Model    Model    `yaml:"model"`
	Prior    Prior    `yaml:"prior"`
	Sampler  Sampler  `yaml:"sampler"`
	Forecast Forecast `yaml:"forecast"`
	Output   Output   `yaml:"output"`
	Logging  Logging  `yaml:"logging"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Data points at the prepared series.
type Data struct {
	// CSV with a header row of variable names
	Path string `yaml:"path"`
}

// Model selects the lag order and the error model.
type Model struct {
	Lags int `yaml:"lags" default:"1" validate:"gte=1"`
	// Common stochastic volatility instead of a constant Σ
	StochasticVolatility bool `yaml:"stochastic_volatility"`
}

// Prior holds the Minnesota and log-volatility hyperparameters.
type Prior struct {
	// Lag shrinkage, coefficient variance on lag l is kappa1 / l^2
	Kappa1 float64 `yaml:"kappa1" default:"0.0004" validate:"gt=0"`
	// Intercept variance
	Kappa2 float64 `yaml:"kappa2" default:"100" validate:"gt=0"`

	H0Mean      float64 `yaml:"h0_mean" default:"0"`
	H0Var       float64 `yaml:"h0_var" default:"1" validate:"gt=0"`
	SigmaVScale float64 `yaml:"sigma_v_scale" default:"1" validate:"gt=0"`
	SigmaVDf    float64 `yaml:"sigma_v_df" default:"1" validate:"gt=0"`
}

// Sampler sizes the posterior simulation.
type Sampler struct {
	Draws  int `yaml:"draws" default:"1000" validate:"gte=1"`
	BurnIn int `yaml:"burn_in" default:"100" validate:"gte=0"`
	Chains int `yaml:"chains" default:"1" validate:"gte=1"`
	// 0 means one worker per CPU
	Workers int `yaml:"workers" default:"0" validate:"gte=0"`
	// 0 means seed from the clock; the chosen seed is logged
	Seed uint64 `yaml:"seed" default:"0"`
}

// Forecast controls the predictive simulation.
type Forecast struct {
	Horizon     int     `yaml:"horizon" default:"8" validate:"gte=1"`
	Credibility float64 `yaml:"credibility" default:"0.68" validate:"gt=0,lte=1"`
	// Random-walk log-volatility over the horizon, SV model only
	VolatilityPath bool `yaml:"volatility_path"`
}

// Output controls what gets written and where.
type Output struct {
	Dir        string `yaml:"dir" default:"out" validate:"required"`
	WriteDraws bool   `yaml:"write_draws" default:"true"`
}

// Logging configures zap.
type Logging struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

// Metrics configures the Prometheus endpoint. Empty Addr disables it.
type Metrics struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path" default:"/metrics" validate:"startswith=/"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		// Only reachable with a malformed default tag.
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return c
}

// Load reads a YAML file over the defaults and validates the result.
// Keys missing from the file keep their default.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks every field against its validate tag. Failures wrap
// bvar.ErrConfiguration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", bvar.ErrConfiguration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", bvar.ErrConfiguration, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// SVPrior returns the log-volatility hyperparameters.
func (c *Config) SVPrior() bvar.SVPrior {
	return bvar.SVPrior{
		H0Mean:      c.Prior.H0Mean,
		H0Var:       c.Prior.H0Var,
		SigmaVScale: c.Prior.SigmaVScale,
		SigmaVDf:    c.Prior.SigmaVDf,
	}
}

// SVConfig returns the chain length settings.
func (c *Config) SVConfig() bvar.SVConfig {
	return bvar.SVConfig{Draws: c.Sampler.Draws, BurnIn: c.Sampler.BurnIn}
}

// ResolveSeed replaces a zero seed with one taken from the clock and
// returns the seed in use.
func (s *Sampler) ResolveSeed(now time.Time) uint64 {
	if s.Seed == 0 {
		s.Seed = uint64(now.UnixNano())
	}
	return s.Seed
}
