package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/domain/model/config"
	"github.com/secmon-lab/riskcalc/pkg/engine"
	"github.com/secmon-lab/riskcalc/pkg/metrics"
	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
)

// sampleInput is the fixed smoke-test assessment served by the admin endpoint
var sampleInput = model.SecurityInput{
	Vulnerabilities: 3,
	Threats:         4,
	Impact:          5,
	Mitigation:      func() *float64 { v := 2.0; return &v }(),
}

type RiskUseCase struct {
	security  *engine.Engine[model.SecurityInput]
	financial *engine.Engine[model.FinancialInput]
	profile   *config.RiskProfile
	metrics   *metrics.Metrics
}

func NewRiskUseCase(profile *config.RiskProfile, m *metrics.Metrics) *RiskUseCase {
	if profile == nil {
		profile = config.DefaultRiskProfile()
	}
	return &RiskUseCase{
		security:  engine.NewSecurity(),
		financial: engine.NewFinancial(),
		profile:   profile,
		metrics:   m,
	}
}

// CalculateSecurity scores a security assessment. A nil cfg falls back to the
// profile's security config.
func (uc *RiskUseCase) CalculateSecurity(ctx context.Context, input model.SecurityInput, cfg *model.Config) (*model.Output, error) {
	return calculate(ctx, uc.security, input, cfg, uc.profile.Security, uc.metrics)
}

// CalculateFinancial scores a financial risk profile. A nil cfg falls back to
// the profile's financial config.
func (uc *RiskUseCase) CalculateFinancial(ctx context.Context, input model.FinancialInput, cfg *model.Config) (*model.Output, error) {
	return calculate(ctx, uc.financial, input, cfg, uc.profile.Financial, uc.metrics)
}

// Sample scores the fixed sample assessment with the default security config
func (uc *RiskUseCase) Sample(ctx context.Context) (*model.Output, error) {
	out, err := uc.CalculateSecurity(ctx, sampleInput, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to calculate sample assessment")
	}
	return out, nil
}

// SecurityConfig returns a copy of the default security config
func (uc *RiskUseCase) SecurityConfig() model.Config {
	return uc.profile.Security.Clone()
}

// FinancialConfig returns a copy of the default financial config
func (uc *RiskUseCase) FinancialConfig() model.Config {
	return uc.profile.Financial.Clone()
}

func calculate[I any](ctx context.Context, eng *engine.Engine[I], input I, cfg *model.Config, fallback model.Config, m *metrics.Metrics) (*model.Output, error) {
	logger := logging.From(ctx)

	c := fallback
	if cfg != nil {
		c = *cfg
	}

	out, err := eng.Calculate(input, &c)
	if err != nil {
		m.ObserveFailure(eng.Name(), failureKind(err))
		logger.Debug("risk calculation rejected", "formula", eng.Name(), "error", err.Error())
		return nil, err
	}

	m.ObserveCalculation(eng.Name(), out.Category, out.Score)
	logger.Debug("risk calculated",
		"formula", eng.Name(),
		"score", out.Score,
		"category", out.Category,
		"custom_config", cfg != nil,
	)
	return out, nil
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return metrics.KindInvalidInput
	case errors.Is(err, model.ErrInvalidConfig):
		return metrics.KindInvalidConfig
	default:
		return metrics.KindInternal
	}
}
