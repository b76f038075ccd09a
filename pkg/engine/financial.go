package engine

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/domain/types"
)

const (
	minAge = 18
	maxAge = 100
)

// Financial scores the expense ratio weighted by age and an adjustment factor:
//
//	(expense / income) * (age / 100) * adjustmentFactor
type Financial struct{}

var _ Formula[model.FinancialInput] = Financial{}

// NewFinancial returns an engine running the financial formula
func NewFinancial() *Engine[model.FinancialInput] {
	return New[model.FinancialInput](Financial{})
}

func (Financial) Name() types.FormulaName {
	return types.FormulaFinancial
}

func (Financial) DefaultConfig() model.Config {
	return model.DefaultFinancialConfig()
}

func (Financial) Validate(in model.FinancialInput) error {
	if !(in.Income > 0) {
		return invalidInput("income", in.Income, "income must be greater than 0")
	}
	if !(in.Expense >= 0) {
		return invalidInput("expense", in.Expense, "expense must not be negative")
	}
	if !inRange(in.Age, minAge, maxAge) {
		return invalidInput("age", in.Age, "age must be between 18 and 100")
	}
	if in.AdjustmentFactor != nil && !(*in.AdjustmentFactor > 0) {
		return invalidInput("adjustmentFactor", *in.AdjustmentFactor, "adjustment factor must be greater than 0")
	}
	return nil
}

func (Financial) Score(in model.FinancialInput) float64 {
	adjustment := 1.0
	if in.AdjustmentFactor != nil {
		adjustment = *in.AdjustmentFactor
	}
	return (in.Expense / in.Income) * (in.Age / 100) * adjustment
}

func (Financial) Explain(score float64, category types.Category) string {
	switch category {
	case types.CategoryLow:
		return fmt.Sprintf("Your risk profile is LOW (%.2f). Your expenses are well covered by your income.", score)
	case types.CategoryMedium:
		return fmt.Sprintf("Your risk profile is MEDIUM (%.2f). Review your expenses and keep a safety margin.", score)
	default:
		return fmt.Sprintf("Your risk profile is HIGH (%.2f). Reduce expenses or increase income before taking on new commitments.", score)
	}
}

func invalidInput(field string, v float64, msg string) error {
	return goerr.Wrap(model.ErrInvalidInput, msg,
		goerr.V(model.FieldKey, field),
		goerr.V(model.ValueKey, v),
	)
}
