package engine

import (
	"fmt"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/domain/types"
)

const (
	factorMin = 0
	factorMax = 10
)

// Security scores vulnerabilities, threats and impact, discounted by mitigation:
//
//	((vulnerabilities * threats * impact) / 1000) * (1 - mitigation/10)
type Security struct{}

var _ Formula[model.SecurityInput] = Security{}

// NewSecurity returns an engine running the security formula
func NewSecurity() *Engine[model.SecurityInput] {
	return New[model.SecurityInput](Security{})
}

func (Security) Name() types.FormulaName {
	return types.FormulaSecurity
}

func (Security) DefaultConfig() model.Config {
	return model.DefaultSecurityConfig()
}

func (Security) Validate(in model.SecurityInput) error {
	if !inRange(in.Vulnerabilities, factorMin, factorMax) {
		return rangeError("vulnerabilities", in.Vulnerabilities)
	}
	if !inRange(in.Threats, factorMin, factorMax) {
		return rangeError("threats", in.Threats)
	}
	if !inRange(in.Impact, factorMin, factorMax) {
		return rangeError("impact", in.Impact)
	}
	if in.Mitigation != nil && !inRange(*in.Mitigation, factorMin, factorMax) {
		return rangeError("mitigation", *in.Mitigation)
	}
	return nil
}

func (Security) Score(in model.SecurityInput) float64 {
	var mitigation float64
	if in.Mitigation != nil {
		mitigation = *in.Mitigation
	}

	baseScore := (in.Vulnerabilities * in.Threats * in.Impact) / 1000
	mitigationFactor := 1 - (mitigation / 10)
	return baseScore * mitigationFactor
}

func (Security) Explain(score float64, category types.Category) string {
	switch category {
	case types.CategoryLow:
		return fmt.Sprintf("Risk is LOW (%.2f). Good protective controls; identified threats are minimal.", score)
	case types.CategoryMedium:
		return fmt.Sprintf("Risk is MEDIUM (%.2f). Review identified vulnerabilities and strengthen mitigation.", score)
	default:
		return fmt.Sprintf("Risk is HIGH (%.2f). Immediate attention required to reduce vulnerabilities and improve protections.", score)
	}
}
