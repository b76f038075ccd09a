package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/riskcalc/pkg/cli/config"
	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/domain/types"
	"github.com/secmon-lab/riskcalc/pkg/usecase"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// calcOptions holds the flags shared by every calc subcommand
type calcOptions struct {
	format  string
	noColor bool
	low     float64
	medium  float64
}

func (x *calcOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format [text|json]",
			Value:       formatText,
			Destination: &x.format,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored text output",
			Destination: &x.noColor,
		},
		&cli.FloatFlag{
			Name:        "low",
			Usage:       "Override the low threshold (requires --medium)",
			Category:    "Thresholds",
			Destination: &x.low,
		},
		&cli.FloatFlag{
			Name:        "medium",
			Usage:       "Override the medium threshold (requires --low)",
			Category:    "Thresholds",
			Destination: &x.medium,
		},
	}
}

func (x *calcOptions) validate() error {
	if x.format != formatText && x.format != formatJSON {
		return goerr.New("invalid output format", goerr.V("format", x.format))
	}
	return nil
}

// thresholds returns a config when both threshold flags are set, nil when
// neither is, and an error otherwise
func (x *calcOptions) thresholds(c *cli.Command, base model.Config) (*model.Config, error) {
	lowSet, mediumSet := c.IsSet("low"), c.IsSet("medium")
	switch {
	case !lowSet && !mediumSet:
		return nil, nil
	case lowSet != mediumSet:
		return nil, goerr.Wrap(model.ErrInvalidInput, "--low and --medium must be set together")
	}

	cfg := base.Clone()
	cfg.Thresholds = model.Thresholds{Low: x.low, Medium: x.medium}
	return &cfg, nil
}

func (x *calcOptions) print(w io.Writer, formula types.FormulaName, out *model.Output) error {
	if x.format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Formula     string  `json:"formula"`
			Score       float64 `json:"score"`
			Category    string  `json:"category"`
			Explanation string  `json:"explanation"`
		}{
			Formula:     formula.String(),
			Score:       out.Score,
			Category:    out.Category.String(),
			Explanation: out.Explanation,
		}); err != nil {
			return goerr.Wrap(err, "failed to encode output")
		}
		return nil
	}

	label := categoryColor(out.Category)
	if x.noColor {
		label.DisableColor()
	}
	if _, err := fmt.Fprintf(w, "%s risk: %s (%.2f)\n", formula, label.Sprint(out.Category.Label()), out.Score); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	if _, err := fmt.Fprintln(w, out.Explanation); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}

func categoryColor(category types.Category) *color.Color {
	switch category {
	case types.CategoryLow:
		return color.New(color.FgGreen, color.Bold)
	case types.CategoryMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func cmdCalc() *cli.Command {
	return &cli.Command{
		Name:    "calc",
		Aliases: []string{"c"},
		Usage:   "Calculate a risk score in-process",
		Commands: []*cli.Command{
			cmdCalcSecurity(),
			cmdCalcFinancial(),
		},
	}
}

func cmdCalcSecurity() *cli.Command {
	var riskCfg config.RiskProfile
	var opts calcOptions
	var input model.SecurityInput
	var mitigation float64

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "vulnerabilities",
			Usage:       "Vulnerabilities rating [0-10]",
			Required:    true,
			Destination: &input.Vulnerabilities,
		},
		&cli.FloatFlag{
			Name:        "threats",
			Usage:       "Threats rating [0-10]",
			Required:    true,
			Destination: &input.Threats,
		},
		&cli.FloatFlag{
			Name:        "impact",
			Usage:       "Impact rating [0-10]",
			Required:    true,
			Destination: &input.Impact,
		},
		&cli.FloatFlag{
			Name:        "mitigation",
			Usage:       "Mitigation rating [0-10], 0 when omitted",
			Destination: &mitigation,
		},
	}
	flags = append(flags, opts.flags()...)
	flags = append(flags, riskCfg.Flags()...)

	return &cli.Command{
		Name:  "security",
		Usage: "Score vulnerabilities, threats, impact and mitigation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if c.IsSet("mitigation") {
				input.Mitigation = &mitigation
			}

			uc, err := newCalcUseCase(&riskCfg)
			if err != nil {
				return err
			}
			cfg, err := opts.thresholds(c, uc.Risk.SecurityConfig())
			if err != nil {
				return err
			}

			out, err := uc.Risk.CalculateSecurity(ctx, input, cfg)
			if err != nil {
				return goerr.Wrap(err, "failed to calculate security risk")
			}
			return opts.print(c.Root().Writer, types.FormulaSecurity, out)
		},
	}
}

func cmdCalcFinancial() *cli.Command {
	var riskCfg config.RiskProfile
	var opts calcOptions
	var input model.FinancialInput
	var adjustment float64

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "income",
			Usage:       "Income, greater than 0",
			Required:    true,
			Destination: &input.Income,
		},
		&cli.FloatFlag{
			Name:        "expense",
			Usage:       "Expense, 0 or more",
			Required:    true,
			Destination: &input.Expense,
		},
		&cli.FloatFlag{
			Name:        "age",
			Usage:       "Age [18-100]",
			Required:    true,
			Destination: &input.Age,
		},
		&cli.FloatFlag{
			Name:        "adjustment-factor",
			Usage:       "Adjustment factor, greater than 0 (1 when omitted)",
			Destination: &adjustment,
		},
	}
	flags = append(flags, opts.flags()...)
	flags = append(flags, riskCfg.Flags()...)

	return &cli.Command{
		Name:  "financial",
		Usage: "Score income, expense and age",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if c.IsSet("adjustment-factor") {
				input.AdjustmentFactor = &adjustment
			}

			uc, err := newCalcUseCase(&riskCfg)
			if err != nil {
				return err
			}
			cfg, err := opts.thresholds(c, uc.Risk.FinancialConfig())
			if err != nil {
				return err
			}

			out, err := uc.Risk.CalculateFinancial(ctx, input, cfg)
			if err != nil {
				return goerr.Wrap(err, "failed to calculate financial risk")
			}
			return opts.print(c.Root().Writer, types.FormulaFinancial, out)
		},
	}
}

func newCalcUseCase(riskCfg *config.RiskProfile) (*usecase.UseCases, error) {
	profile, err := riskCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load risk profile")
	}
	return usecase.New(usecase.WithRiskProfile(profile)), nil
}
