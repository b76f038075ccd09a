package model

import "github.com/m-mizutani/goerr/v2"

// Calculation errors. Concrete failures wrap one of these so callers can
// classify them with errors.Is.
var (
	ErrInvalidInput  = goerr.New("invalid input")
	ErrInvalidConfig = goerr.New("invalid config")
)

// Context keys for error values
const (
	FieldKey     = "field"
	ValueKey     = "value"
	ThresholdKey = "thresholds"
)
