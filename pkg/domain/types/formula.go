package types

import "github.com/m-mizutani/goerr/v2"

// FormulaName identifies a scoring formula the engine can run
type FormulaName string

const (
	FormulaSecurity  FormulaName = "security"
	FormulaFinancial FormulaName = "financial"
)

// AllFormulaNames returns all known formula names
func AllFormulaNames() []FormulaName {
	return []FormulaName{
		FormulaSecurity,
		FormulaFinancial,
	}
}

// IsValid checks if the formula name is known
func (f FormulaName) IsValid() bool {
	switch f {
	case FormulaSecurity, FormulaFinancial:
		return true
	default:
		return false
	}
}

// String returns the string representation of the formula name
func (f FormulaName) String() string {
	return string(f)
}

// ParseFormulaName parses a string into a FormulaName
func ParseFormulaName(s string) (FormulaName, error) {
	f := FormulaName(s)
	if !f.IsValid() {
		return "", goerr.New("unknown formula", goerr.V("formula", s))
	}
	return f, nil
}
