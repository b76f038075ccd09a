package config

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	domainConfig "github.com/secmon-lab/riskcalc/pkg/domain/model/config"
	"github.com/secmon-lab/riskcalc/pkg/domain/types"
	"github.com/secmon-lab/riskcalc/pkg/engine"
)

// RiskProfile points at an optional TOML file overriding the default
// thresholds and weights of each formula
type RiskProfile struct {
	path string
}

// Flags returns CLI flags for risk profile configuration
func (x *RiskProfile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "risk-config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML risk profile (thresholds and weights per formula)",
			Sources:     cli.EnvVars("RISKCALC_RISK_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path, empty when none was given
func (x *RiskProfile) Path() string {
	return x.path
}

// LogValue implements slog.LogValuer
func (x RiskProfile) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the profile file, or returns the built-in defaults when no
// path is configured
func (x *RiskProfile) Configure() (*domainConfig.RiskProfile, error) {
	if x.path == "" {
		return domainConfig.DefaultRiskProfile(), nil
	}
	return LoadRiskProfile(x.path)
}

type riskProfileFile struct {
	Security  *formulaSection `toml:"security"`
	Financial *formulaSection `toml:"financial"`
}

type formulaSection struct {
	Thresholds *thresholdsSection `toml:"thresholds"`
	Weights    map[string]float64 `toml:"weights"`
}

type thresholdsSection struct {
	Low    *float64 `toml:"low"`
	Medium *float64 `toml:"medium"`
}

// LoadRiskProfile reads a TOML risk profile. Formulas absent from the file
// keep their defaults; a present [<formula>.thresholds] table must set both
// thresholds, and a present [<formula>.weights] table replaces the default
// weights entirely.
func LoadRiskProfile(path string) (*domainConfig.RiskProfile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read risk profile", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read risk profile", goerr.V(ConfigPathKey, path))
	}

	var file riskProfileFile
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse risk profile",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	profile := domainConfig.DefaultRiskProfile()
	if profile.Security, err = file.Security.apply(profile.Security, types.FormulaSecurity); err != nil {
		return nil, goerr.Wrap(err, "invalid risk profile", goerr.V(ConfigPathKey, path))
	}
	if profile.Financial, err = file.Financial.apply(profile.Financial, types.FormulaFinancial); err != nil {
		return nil, goerr.Wrap(err, "invalid risk profile", goerr.V(ConfigPathKey, path))
	}

	return profile, nil
}

func (s *formulaSection) apply(base model.Config, formula types.FormulaName) (model.Config, error) {
	if s == nil {
		return base, nil
	}

	if s.Thresholds != nil {
		if s.Thresholds.Low == nil || s.Thresholds.Medium == nil {
			return base, goerr.Wrap(ErrMissingThreshold, "incomplete thresholds", goerr.V(FormulaKey, formula))
		}
		base.Thresholds = model.Thresholds{Low: *s.Thresholds.Low, Medium: *s.Thresholds.Medium}
	}
	if s.Weights != nil {
		base.Weights = s.Weights
	}

	if err := engine.ValidateConfig(base); err != nil {
		return base, goerr.Wrap(ErrInvalidRiskProfile, err.Error(), goerr.V(FormulaKey, formula))
	}
	return base, nil
}
