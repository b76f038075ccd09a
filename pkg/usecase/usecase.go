package usecase

import (
	"github.com/secmon-lab/riskcalc/pkg/domain/model/config"
	"github.com/secmon-lab/riskcalc/pkg/metrics"
)

type UseCases struct {
	profile *config.RiskProfile
	metrics *metrics.Metrics
	Risk    *RiskUseCase
}

type Option func(*UseCases)

// WithRiskProfile replaces the built-in default thresholds and weights
func WithRiskProfile(profile *config.RiskProfile) Option {
	return func(uc *UseCases) {
		uc.profile = profile
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

func New(opts ...Option) *UseCases {
	uc := &UseCases{
		profile: config.DefaultRiskProfile(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Risk = NewRiskUseCase(uc.profile, uc.metrics)

	return uc
}
