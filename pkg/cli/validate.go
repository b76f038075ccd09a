package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/riskcalc/pkg/cli/config"
	"github.com/secmon-lab/riskcalc/pkg/domain/types"
	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var riskCfg config.RiskProfile
	var formula string

	flags := riskCfg.Flags()
	flags = append(flags, &cli.StringFlag{
		Name:        "formula",
		Usage:       "Only report the given formula [security|financial]",
		Destination: &formula,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a risk profile file",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if riskCfg.Path() == "" {
				return goerr.New("--risk-config is required")
			}

			formulas := types.AllFormulaNames()
			if formula != "" {
				f, err := types.ParseFormulaName(formula)
				if err != nil {
					return err
				}
				formulas = []types.FormulaName{f}
			}

			profile, err := riskCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "risk profile validation failed")
			}

			logger := logging.Default()
			w := c.Root().Writer
			for _, f := range formulas {
				cfg, ok := profile.For(f)
				if !ok {
					return goerr.New("risk profile has no config for formula", goerr.V(config.FormulaKey, f))
				}
				logger.Info("Formula config validated",
					"formula", f,
					"low", cfg.Thresholds.Low,
					"medium", cfg.Thresholds.Medium,
					"weights", len(cfg.Weights),
				)
				if _, err := fmt.Fprintf(w, "%s: low=%g medium=%g\n", f, cfg.Thresholds.Low, cfg.Thresholds.Medium); err != nil {
					return goerr.Wrap(err, "failed to write output")
				}
			}

			if _, err := fmt.Fprintf(w, "%s: ok\n", riskCfg.Path()); err != nil {
				return goerr.Wrap(err, "failed to write output")
			}
			return nil
		},
	}
}
