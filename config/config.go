// Package config loads the application configuration from YAML, fills
// defaults from struct tags, applies environment overrides and validates the
// result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CRYPTO_PREDICT_"

// DefaultPath is read when no path is given and CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		DisableCORS     bool          `yaml:"disable_cors"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Disabled bool   `yaml:"disabled"`
		Path     string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	MarketData struct {
		BaseURL string        `yaml:"base_url" default:"https://api.binance.com" validate:"url"`
		Timeout time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"market_data"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// PipelineConfig tunes the forecasting pipeline.
type PipelineConfig struct {
	MinObservations int           `yaml:"min_observations" default:"100" validate:"min=1"`
	Imputation      string        `yaml:"imputation" default:"mean" validate:"oneof=mean ffill linear"`
	Stationarity    string        `yaml:"stationarity_test" default:"adf" validate:"oneof=adf kpss pp"`
	StationAlpha    float64       `yaml:"stationarity_alpha" default:"0.05" validate:"gt=0,lt=1"`
	MaxD            int           `yaml:"max_d" default:"2" validate:"min=1,max=3"`
	SeasonalPeriod  int           `yaml:"seasonal_period" default:"12" validate:"min=2"`
	MaxIterations   int           `yaml:"max_iterations" default:"500" validate:"min=1"`
	Horizon         int           `yaml:"horizon" default:"30" validate:"min=1,max=500"`
	Alpha           float64       `yaml:"alpha" default:"0.05" validate:"gt=0,lt=1"`
	FitTimeout      time.Duration `yaml:"fit_timeout" default:"30s"`
}

var validate = validator.New()

// Default returns the configuration built from struct tag defaults only.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. Fields absent from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(b)
}

func parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. An empty path falls back to CONFIG_PATH and then DefaultPath; a
// missing default file yields the built-in defaults.
func LoadWithEnv(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path, explicit = v, true
		} else {
			path = DefaultPath
		}
	}

	c, err := Load(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if c, err = Default(); err != nil {
			return nil, err
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPrefix + "ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv(EnvPrefix + "PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.MarketData.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "SEASONAL_PERIOD"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSEASONAL_PERIOD: %w", EnvPrefix, err)
		}
		c.Pipeline.SeasonalPeriod = m
	}
	if v := os.Getenv(EnvPrefix + "FIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sFIT_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Pipeline.FitTimeout = d
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
