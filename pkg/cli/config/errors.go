package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrMissingThreshold   = goerr.New("both low and medium thresholds are required")
	ErrInvalidRiskProfile = goerr.New("invalid risk profile")
	ErrInvalidServer      = goerr.New("invalid server configuration")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FormulaKey    = "formula"
)
