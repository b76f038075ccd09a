package engine_test

import (
	"math"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/domain/types"
	"github.com/secmon-lab/riskcalc/pkg/engine"
)

func ptr(v float64) *float64 {
	return &v
}

func TestSecurity_Calculate(t *testing.T) {
	tests := []struct {
		name     string
		input    model.SecurityInput
		score    float64
		category types.Category
		label    string
	}{
		{
			name:     "heavy mitigation keeps risk low",
			input:    model.SecurityInput{Vulnerabilities: 2, Threats: 3, Impact: 4, Mitigation: ptr(8)},
			score:    0,
			category: types.CategoryLow,
			label:    "LOW",
		},
		{
			name:     "mid-range factors",
			input:    model.SecurityInput{Vulnerabilities: 5, Threats: 6, Impact: 7, Mitigation: ptr(3)},
			score:    0.15,
			category: types.CategoryLow,
			label:    "LOW",
		},
		{
			name:     "high factors with little mitigation",
			input:    model.SecurityInput{Vulnerabilities: 8, Threats: 9, Impact: 10, Mitigation: ptr(1)},
			score:    0.65,
			category: types.CategoryMedium,
			label:    "MEDIUM",
		},
		{
			name:     "mitigation omitted rounds half up",
			input:    model.SecurityInput{Vulnerabilities: 5, Threats: 5, Impact: 5},
			score:    0.13,
			category: types.CategoryLow,
			label:    "LOW",
		},
		{
			name:     "mitigation applied",
			input:    model.SecurityInput{Vulnerabilities: 5, Threats: 5, Impact: 5, Mitigation: ptr(5)},
			score:    0.06,
			category: types.CategoryLow,
			label:    "LOW",
		},
		{
			name:     "maximum factors",
			input:    model.SecurityInput{Vulnerabilities: 10, Threats: 10, Impact: 10, Mitigation: ptr(0)},
			score:    1,
			category: types.CategoryHigh,
			label:    "HIGH",
		},
		{
			name:     "admin sample",
			input:    model.SecurityInput{Vulnerabilities: 3, Threats: 4, Impact: 5, Mitigation: ptr(2)},
			score:    0.05,
			category: types.CategoryLow,
			label:    "LOW",
		},
	}

	eng := engine.NewSecurity()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := eng.Calculate(tt.input, nil)
			gt.NoError(t, err).Required()
			gt.Value(t, out.Score).Equal(tt.score)
			gt.Value(t, out.Category).Equal(tt.category)
			gt.String(t, out.Explanation).Contains(tt.label)
		})
	}
}

func TestSecurity_Explanation(t *testing.T) {
	eng := engine.NewSecurity()

	out, err := eng.Calculate(model.SecurityInput{Vulnerabilities: 5, Threats: 5, Impact: 5}, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Explanation).Equal("Risk is LOW (0.13). Good protective controls; identified threats are minimal.")

	out, err = eng.Calculate(model.SecurityInput{Vulnerabilities: 8, Threats: 9, Impact: 10, Mitigation: ptr(1)}, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Explanation).Equal("Risk is MEDIUM (0.65). Review identified vulnerabilities and strengthen mitigation.")

	out, err = eng.Calculate(model.SecurityInput{Vulnerabilities: 10, Threats: 10, Impact: 9}, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Explanation).Equal("Risk is HIGH (0.90). Immediate attention required to reduce vulnerabilities and improve protections.")
}

func TestSecurity_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input model.SecurityInput
		msg   string
	}{
		{
			name:  "vulnerabilities above range",
			input: model.SecurityInput{Vulnerabilities: 11, Threats: 5, Impact: 5},
			msg:   "vulnerabilities out of range",
		},
		{
			name:  "vulnerabilities reported before other fields",
			input: model.SecurityInput{Vulnerabilities: 11, Threats: -3, Impact: 99, Mitigation: ptr(42)},
			msg:   "vulnerabilities out of range",
		},
		{
			name:  "negative threats",
			input: model.SecurityInput{Vulnerabilities: 5, Threats: -1, Impact: 5},
			msg:   "threats out of range",
		},
		{
			name:  "impact above range",
			input: model.SecurityInput{Vulnerabilities: 5, Threats: 5, Impact: 15},
			msg:   "impact out of range",
		},
		{
			name:  "mitigation above range",
			input: model.SecurityInput{Vulnerabilities: 5, Threats: 5, Impact: 5, Mitigation: ptr(11)},
			msg:   "mitigation out of range",
		},
		{
			name:  "NaN is rejected",
			input: model.SecurityInput{Vulnerabilities: math.NaN(), Threats: 5, Impact: 5},
			msg:   "vulnerabilities out of range",
		},
	}

	eng := engine.NewSecurity()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := eng.Calculate(tt.input, nil)
			gt.Bool(t, out == nil).True()
			gt.Value(t, err).NotNil()
			gt.Error(t, err).Is(model.ErrInvalidInput)
			gt.String(t, err.Error()).Contains(tt.msg)
		})
	}
}

func TestCalculate_InvalidConfig(t *testing.T) {
	valid := model.SecurityInput{Vulnerabilities: 5, Threats: 5, Impact: 5}

	tests := []struct {
		name string
		cfg  model.Config
		msg  string
	}{
		{
			name: "negative low threshold",
			cfg:  model.Config{Thresholds: model.Thresholds{Low: -0.1, Medium: 0.7}},
			msg:  "low threshold negative",
		},
		{
			name: "medium below low",
			cfg: model.Config{
				Thresholds: model.Thresholds{Low: 0.5, Medium: 0.3},
				Weights:    map[string]float64{"vulnerabilityWeight": 2},
			},
			msg: "medium threshold below low threshold",
		},
		{
			name: "NaN medium",
			cfg:  model.Config{Thresholds: model.Thresholds{Low: 0.1, Medium: math.NaN()}},
			msg:  "medium threshold below low threshold",
		},
	}

	eng := engine.NewSecurity()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			_, err := eng.Calculate(valid, &cfg)
			gt.Value(t, err).NotNil()
			gt.Error(t, err).Is(model.ErrInvalidConfig)
			gt.String(t, err.Error()).Contains(tt.msg)
		})
	}

	t.Run("input errors win over config errors", func(t *testing.T) {
		cfg := model.Config{Thresholds: model.Thresholds{Low: 0.5, Medium: 0.3}}
		_, err := eng.Calculate(model.SecurityInput{Vulnerabilities: 11}, &cfg)
		gt.Error(t, err).Is(model.ErrInvalidInput)
	})
}

func TestCalculate_CategoryBoundaries(t *testing.T) {
	eng := engine.NewSecurity()

	// 10*10*3/1000 is exactly the default low threshold
	out, err := eng.Calculate(model.SecurityInput{Vulnerabilities: 10, Threats: 10, Impact: 3}, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Category).Equal(types.CategoryLow)

	// 10*10*7/1000 is exactly the default medium threshold
	out, err = eng.Calculate(model.SecurityInput{Vulnerabilities: 10, Threats: 10, Impact: 7}, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Category).Equal(types.CategoryMedium)

	out, err = eng.Calculate(model.SecurityInput{Vulnerabilities: 10, Threats: 10, Impact: 7.01}, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Category).Equal(types.CategoryHigh)
}

func TestCalculate_ClassifiesUnroundedScore(t *testing.T) {
	// 0.125 rounds to 0.13 for display but classifies against 0.125
	cfg := model.Config{Thresholds: model.Thresholds{Low: 0.125, Medium: 0.5}}
	out, err := engine.NewSecurity().Calculate(model.SecurityInput{Vulnerabilities: 5, Threats: 5, Impact: 5}, &cfg)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Score).Equal(0.13)
	gt.Value(t, out.Category).Equal(types.CategoryLow)
}

func TestCalculate_CustomThresholds(t *testing.T) {
	cfg := model.Config{Thresholds: model.Thresholds{Low: 0.1, Medium: 0.2}}
	out, err := engine.NewSecurity().Calculate(model.SecurityInput{Vulnerabilities: 5, Threats: 5, Impact: 5}, &cfg)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Score).Equal(0.13)
	gt.Value(t, out.Category).Equal(types.CategoryMedium)
}

func TestCalculate_WeightsAreInert(t *testing.T) {
	// Weights are accepted but never applied to the formula. If product
	// decides they should scale the factors, this test must change.
	eng := engine.NewSecurity()
	input := model.SecurityInput{Vulnerabilities: 6, Threats: 7, Impact: 8, Mitigation: ptr(2)}

	plain, err := eng.Calculate(input, nil)
	gt.NoError(t, err).Required()

	cfg := model.DefaultSecurityConfig()
	cfg.Weights = map[string]float64{
		"vulnerabilityWeight": 3.5,
		"threatWeight":        0,
		"impactWeight":        10,
		"mitigationWeight":    0.1,
	}
	weighted, err := eng.Calculate(input, &cfg)
	gt.NoError(t, err).Required()
	gt.Value(t, *weighted).Equal(*plain)
}

func TestCalculate_DefaultMitigation(t *testing.T) {
	eng := engine.NewSecurity()
	for _, v := range []float64{0, 1.5, 4, 7.25, 10} {
		omitted, err := eng.Calculate(model.SecurityInput{Vulnerabilities: v, Threats: 6, Impact: 9}, nil)
		gt.NoError(t, err).Required()
		zero, err := eng.Calculate(model.SecurityInput{Vulnerabilities: v, Threats: 6, Impact: 9, Mitigation: ptr(0)}, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, *omitted).Equal(*zero)
	}
}

func TestCalculate_Properties(t *testing.T) {
	eng := engine.NewSecurity()
	sec := engine.Security{}
	steps := []float64{0, 0.5, 1, 2.5, 3, 5, 7.5, 9, 10}

	t.Run("deterministic and in range", func(t *testing.T) {
		for _, v := range steps {
			for _, m := range steps {
				in := model.SecurityInput{Vulnerabilities: v, Threats: 10 - v, Impact: 7, Mitigation: ptr(m)}
				a, err := eng.Calculate(in, nil)
				gt.NoError(t, err).Required()
				b, err := eng.Calculate(in, nil)
				gt.NoError(t, err).Required()
				gt.Value(t, *a).Equal(*b)

				raw := sec.Score(in)
				gt.Bool(t, raw >= 0 && raw <= 1).True()
			}
		}
	})

	t.Run("mitigation never increases the score", func(t *testing.T) {
		prev := math.Inf(1)
		for _, m := range steps {
			raw := sec.Score(model.SecurityInput{Vulnerabilities: 7, Threats: 8, Impact: 9, Mitigation: ptr(m)})
			gt.Bool(t, raw <= prev).True()
			prev = raw
		}
	})

	t.Run("factors never decrease the score", func(t *testing.T) {
		prevV, prevT, prevI := -1.0, -1.0, -1.0
		for _, x := range steps {
			v := sec.Score(model.SecurityInput{Vulnerabilities: x, Threats: 4, Impact: 6, Mitigation: ptr(3)})
			th := sec.Score(model.SecurityInput{Vulnerabilities: 4, Threats: x, Impact: 6, Mitigation: ptr(3)})
			i := sec.Score(model.SecurityInput{Vulnerabilities: 4, Threats: 6, Impact: x, Mitigation: ptr(3)})
			gt.Bool(t, v >= prevV).True()
			gt.Bool(t, th >= prevT).True()
			gt.Bool(t, i >= prevI).True()
			prevV, prevT, prevI = v, th, i
		}
	})
}

func TestEngine_DefaultConfigIsCopied(t *testing.T) {
	eng := engine.NewSecurity()
	cfg := eng.DefaultConfig()
	cfg.Weights["vulnerabilityWeight"] = 99
	cfg.Thresholds.Low = 5

	again := eng.DefaultConfig()
	gt.Value(t, again.Weights["vulnerabilityWeight"]).Equal(1.0)
	gt.Value(t, again.Thresholds.Low).Equal(0.3)
	gt.Value(t, eng.Name()).Equal(types.FormulaSecurity)
}

func TestValidateConfig(t *testing.T) {
	gt.NoError(t, engine.ValidateConfig(model.DefaultSecurityConfig()))
	gt.NoError(t, engine.ValidateConfig(model.DefaultFinancialConfig()))
	gt.NoError(t, engine.ValidateConfig(model.Config{Thresholds: model.Thresholds{Low: 0, Medium: 0}}))
	gt.Error(t, engine.ValidateConfig(model.Config{Thresholds: model.Thresholds{Low: -1, Medium: 0}})).Is(model.ErrInvalidConfig)
}

func TestCalculate_RoundsShortestDecimal(t *testing.T) {
	out, err := engine.NewSecurity().Calculate(model.SecurityInput{Vulnerabilities: 1.45, Threats: 10, Impact: 10}, nil)
	gt.NoError(t, err).Required()
	gt.Value(t, out.Score).Equal(0.15)
	gt.Value(t, out.Explanation).Equal("Risk is LOW (0.15). Good protective controls; identified threats are minimal.")
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.125, 0.13},
		{0.0048, 0},
		{0.147, 0.15},
		{0.648, 0.65},
		{1, 1},
		{0.405, 0.41},
		// stored as 0.14499999999999999; rounding works on the shortest
		// decimal form "0.145", so it goes up
		{0.145, 0.15},
	}
	for _, tt := range tests {
		gt.Value(t, engine.Round(tt.in)).Equal(tt.want)
	}
}
