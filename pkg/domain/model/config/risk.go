package config

import (
	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/domain/types"
)

// RiskProfile holds the server-wide default configuration of each formula.
// A request that carries its own config overrides the matching entry for
// that request only.
type RiskProfile struct {
	Security  model.Config
	Financial model.Config
}

// DefaultRiskProfile returns the built-in defaults of every formula
func DefaultRiskProfile() *RiskProfile {
	return &RiskProfile{
		Security:  model.DefaultSecurityConfig(),
		Financial: model.DefaultFinancialConfig(),
	}
}

// For returns the config of the named formula
func (p *RiskProfile) For(name types.FormulaName) (model.Config, bool) {
	switch name {
	case types.FormulaSecurity:
		return p.Security, true
	case types.FormulaFinancial:
		return p.Financial, true
	default:
		return model.Config{}, false
	}
}
