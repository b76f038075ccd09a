package model

import "github.com/secmon-lab/riskcalc/pkg/domain/types"

// SecurityInput holds the four factors of a security risk assessment.
// Each factor is expected in [0, 10]. Mitigation is optional and treated as 0
// when nil.
type SecurityInput struct {
	Vulnerabilities float64
	Threats         float64
	Impact          float64
	Mitigation      *float64
}

// FinancialInput holds the factors of a financial risk profile.
// AdjustmentFactor is optional and treated as 1 when nil.
type FinancialInput struct {
	Income           float64
	Expense          float64
	Age              float64
	AdjustmentFactor *float64
}

// Thresholds separates the three categories. A score equal to a threshold
// belongs to the lower category.
type Thresholds struct {
	Low    float64 `json:"low" toml:"low"`
	Medium float64 `json:"medium" toml:"medium"`
}

// Config is the per-calculation configuration.
//
// Weights are accepted and carried along but are not applied by any formula.
// Whether they should multiply the individual factors is an open product
// question, so they stay inert.
type Config struct {
	Thresholds Thresholds         `json:"thresholds" toml:"thresholds"`
	Weights    map[string]float64 `json:"weights,omitempty" toml:"weights,omitempty"`
}

// Clone returns a deep copy so callers can't mutate a shared default
func (c Config) Clone() Config {
	out := Config{Thresholds: c.Thresholds}
	if c.Weights != nil {
		out.Weights = make(map[string]float64, len(c.Weights))
		for k, v := range c.Weights {
			out.Weights[k] = v
		}
	}
	return out
}

// Output is the result of one calculation
type Output struct {
	Score       float64        `json:"score"`
	Category    types.Category `json:"category"`
	Explanation string         `json:"explanation"`
}

// DefaultSecurityConfig returns the default thresholds and weights for the security formula
func DefaultSecurityConfig() Config {
	return Config{
		Thresholds: Thresholds{Low: 0.3, Medium: 0.7},
		Weights: map[string]float64{
			"vulnerabilityWeight": 1.0,
			"threatWeight":        1.0,
			"impactWeight":        1.0,
			"mitigationWeight":    1.0,
		},
	}
}

// DefaultFinancialConfig returns the default thresholds and weights for the financial formula
func DefaultFinancialConfig() Config {
	return Config{
		Thresholds: Thresholds{Low: 0.1, Medium: 0.3},
		Weights: map[string]float64{
			"incomeWeight":     1.0,
			"expenseWeight":    1.0,
			"ageWeight":        1.0,
			"adjustmentWeight": 1.0,
		},
	}
}
