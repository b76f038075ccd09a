package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/riskcalc/pkg/cli/config"
	httpctrl "github.com/secmon-lab/riskcalc/pkg/controller/http"
	"github.com/secmon-lab/riskcalc/pkg/metrics"
	"github.com/secmon-lab/riskcalc/pkg/usecase"
	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
)

func cmdServe(version string) *cli.Command {
	var serverCfg config.Server
	var riskCfg config.RiskProfile
	var sentryCfg config.Sentry

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, riskCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := serverCfg.Validate(); err != nil {
				return err
			}

			profile, err := riskCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load risk profile")
			}

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return goerr.Wrap(err, "failed to configure sentry")
			}
			defer flush()

			ucOpts := []usecase.Option{
				usecase.WithRiskProfile(profile),
			}
			httpOpts := []httpctrl.Options{
				httpctrl.WithCORSOrigins(serverCfg.CORSOrigins()),
				httpctrl.WithRateLimit(serverCfg.RateLimit(), serverCfg.RateBurst()),
				httpctrl.WithUI(serverCfg.UIEnabled()),
			}

			if serverCfg.MetricsEnabled() {
				m := metrics.New()
				ucOpts = append(ucOpts, usecase.WithMetrics(m))
				httpOpts = append(httpOpts, httpctrl.WithMetrics(m.Handler()))
			}

			uc := usecase.New(ucOpts...)

			httpHandler, err := httpctrl.New(uc.Risk, httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              serverCfg.Addr(),
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
				BaseContext: func(_ net.Listener) context.Context {
					return logging.With(context.Background(), logger)
				},
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logger.Info("Starting HTTP server",
					"server", serverCfg,
					"risk_profile", riskCfg,
					"sentry", sentryCfg,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", serverCfg.Addr()))
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logger.Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout())
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logger.Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}
