// Package engine implements the risk scoring pipeline shared by the HTTP API,
// the browser form and the CLI: validate input, validate configuration, score,
// classify and explain. Every function here is pure and safe for concurrent use.
package engine

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/domain/types"
)

// Formula is a rule set the engine runs: how an input is validated, scored and
// explained, and which configuration applies when the caller gives none.
type Formula[I any] interface {
	Name() types.FormulaName
	Validate(input I) error
	Score(input I) float64
	Explain(score float64, category types.Category) string
	DefaultConfig() model.Config
}

// Engine runs a Formula through the validate -> score -> classify -> explain pipeline
type Engine[I any] struct {
	formula Formula[I]
}

// New creates an engine for the given formula
func New[I any](formula Formula[I]) *Engine[I] {
	return &Engine[I]{formula: formula}
}

// Name returns the name of the underlying formula
func (e *Engine[I]) Name() types.FormulaName {
	return e.formula.Name()
}

// DefaultConfig returns a copy of the formula's default configuration
func (e *Engine[I]) DefaultConfig() model.Config {
	return e.formula.DefaultConfig().Clone()
}

// Calculate validates input and config and returns the assessment.
// A nil config selects the formula default. Input is validated before config,
// and the first failing check is returned.
func (e *Engine[I]) Calculate(input I, cfg *model.Config) (*model.Output, error) {
	if err := e.formula.Validate(input); err != nil {
		return nil, err
	}

	c := e.formula.DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if err := ValidateConfig(c); err != nil {
		return nil, err
	}

	raw := e.formula.Score(input)
	// in-range factors can still overflow (huge expense over tiny income)
	if math.IsInf(raw, 0) || math.IsNaN(raw) {
		return nil, goerr.Wrap(model.ErrInvalidInput, "score out of range",
			goerr.V(model.ValueKey, raw))
	}
	category := Classify(raw, c.Thresholds)
	score := Round(raw)

	return &model.Output{
		Score:       score,
		Category:    category,
		Explanation: e.formula.Explain(score, category),
	}, nil
}

// ValidateConfig checks the threshold invariants: low >= 0 and medium >= low
func ValidateConfig(cfg model.Config) error {
	th := cfg.Thresholds
	if !(th.Low >= 0) {
		return goerr.Wrap(model.ErrInvalidConfig, "low threshold negative",
			goerr.V(model.ThresholdKey, th))
	}
	if !(th.Medium >= th.Low) {
		return goerr.Wrap(model.ErrInvalidConfig, "medium threshold below low threshold",
			goerr.V(model.ThresholdKey, th))
	}
	return nil
}

// Classify maps an unrounded score to a category. Both thresholds are inclusive
// on the lower category's side.
func Classify(score float64, th model.Thresholds) types.Category {
	switch {
	case score <= th.Low:
		return types.CategoryLow
	case score <= th.Medium:
		return types.CategoryMedium
	default:
		return types.CategoryHigh
	}
}

// Round rounds to two decimal places, halves away from zero (0.125 -> 0.13)
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func inRange(v, lo, hi float64) bool {
	// written so that NaN fails
	return v >= lo && v <= hi
}

func rangeError(field string, v float64) error {
	return goerr.Wrap(model.ErrInvalidInput, field+" out of range",
		goerr.V(model.FieldKey, field),
		goerr.V(model.ValueKey, v),
	)
}
