package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Server holds HTTP server configuration
type Server struct {
	addr            string
	corsOrigins     []string
	rateLimit       float64
	rateBurst       int
	enableMetrics   bool
	enableUI        bool
	shutdownTimeout time.Duration
}

// Flags returns CLI flags for the HTTP server
func (x *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":4000",
			Sources:     cli.EnvVars("RISKCALC_ADDR"),
			Destination: &x.addr,
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Allowed CORS origin (repeatable, or comma separated in env)",
			Value:       []string{"http://localhost:3000"},
			Sources:     cli.EnvVars("RISKCALC_CORS_ORIGINS"),
			Destination: &x.corsOrigins,
		},
		&cli.FloatFlag{
			Name:        "rate-limit",
			Usage:       "Requests per second allowed per client address (0 disables)",
			Sources:     cli.EnvVars("RISKCALC_RATE_LIMIT"),
			Destination: &x.rateLimit,
		},
		&cli.IntFlag{
			Name:        "rate-burst",
			Usage:       "Burst size of the per-client rate limiter",
			Value:       20,
			Sources:     cli.EnvVars("RISKCALC_RATE_BURST"),
			Destination: &x.rateBurst,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics on /metrics",
			Value:       true,
			Sources:     cli.EnvVars("RISKCALC_METRICS"),
			Destination: &x.enableMetrics,
		},
		&cli.BoolFlag{
			Name:        "ui",
			Usage:       "Serve the browser form on /",
			Value:       true,
			Sources:     cli.EnvVars("RISKCALC_UI"),
			Destination: &x.enableUI,
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Grace period for in-flight requests on shutdown",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("RISKCALC_SHUTDOWN_TIMEOUT"),
			Destination: &x.shutdownTimeout,
		},
	}
}

// Validate checks the flag values that cli can't check by type alone
func (x *Server) Validate() error {
	if x.addr == "" {
		return goerr.Wrap(ErrInvalidServer, "address is required")
	}
	if x.rateLimit < 0 {
		return goerr.Wrap(ErrInvalidServer, "rate limit must not be negative", goerr.V("rate_limit", x.rateLimit))
	}
	if x.rateLimit > 0 && x.rateBurst < 1 {
		return goerr.Wrap(ErrInvalidServer, "rate burst must be at least 1", goerr.V("rate_burst", x.rateBurst))
	}
	return nil
}

func (x *Server) Addr() string                   { return x.addr }
func (x *Server) CORSOrigins() []string          { return x.corsOrigins }
func (x *Server) RateLimit() float64             { return x.rateLimit }
func (x *Server) RateBurst() int                 { return x.rateBurst }
func (x *Server) MetricsEnabled() bool           { return x.enableMetrics }
func (x *Server) UIEnabled() bool                { return x.enableUI }
func (x *Server) ShutdownTimeout() time.Duration { return x.shutdownTimeout }

// LogValue implements slog.LogValuer
func (x Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", x.addr),
		slog.Any("cors_origins", x.corsOrigins),
		slog.Float64("rate_limit", x.rateLimit),
		slog.Int("rate_burst", x.rateBurst),
		slog.Bool("metrics", x.enableMetrics),
		slog.Bool("ui", x.enableUI),
	)
}
