package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
)

// Logger holds the process-wide logging configuration
type Logger struct {
	level      string
	format     string
	output     string
	noColor    bool
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
}

// Flags returns CLI flags for logger configuration
func (x *Logger) Flags() []cli.Flag {
	const category = "Logging"
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Aliases:     []string{"l"},
			Usage:       "Log level [debug|info|warn|error]",
			Category:    category,
			Value:       "info",
			Sources:     cli.EnvVars("RISKCALC_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format [console|json]",
			Category:    category,
			Value:       "console",
			Sources:     cli.EnvVars("RISKCALC_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output [stdout|stderr|<file path>]. Files are rotated",
			Category:    category,
			Value:       "stderr",
			Sources:     cli.EnvVars("RISKCALC_LOG_OUTPUT"),
			Destination: &x.output,
		},
		&cli.BoolFlag{
			Name:        "log-no-color",
			Usage:       "Disable colored console logs",
			Category:    category,
			Sources:     cli.EnvVars("RISKCALC_LOG_NO_COLOR"),
			Destination: &x.noColor,
		},
		&cli.IntFlag{
			Name:        "log-max-size",
			Usage:       "Maximum size in megabytes of a log file before rotation",
			Category:    category,
			Value:       10,
			Sources:     cli.EnvVars("RISKCALC_LOG_MAX_SIZE"),
			Destination: &x.maxSizeMB,
		},
		&cli.IntFlag{
			Name:        "log-max-backups",
			Usage:       "Maximum number of rotated log files to keep",
			Category:    category,
			Value:       14,
			Sources:     cli.EnvVars("RISKCALC_LOG_MAX_BACKUPS"),
			Destination: &x.maxBackups,
		},
		&cli.IntFlag{
			Name:        "log-max-age",
			Usage:       "Maximum number of days to retain rotated log files",
			Category:    category,
			Value:       30,
			Sources:     cli.EnvVars("RISKCALC_LOG_MAX_AGE"),
			Destination: &x.maxAgeDays,
		},
		&cli.BoolFlag{
			Name:        "log-compress",
			Usage:       "Gzip rotated log files",
			Category:    category,
			Value:       true,
			Sources:     cli.EnvVars("RISKCALC_LOG_COMPRESS"),
			Destination: &x.compress,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}

// Configure builds the slog handler and installs it as the default logger.
// The returned function closes the log file, if any.
func (x *Logger) Configure() (func(), error) {
	levelMap := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	level, ok := levelMap[strings.ToLower(x.level)]
	if !ok {
		return nil, goerr.New("invalid log level", goerr.V("level", x.level))
	}

	closer := func() {}
	var w io.Writer
	toFile := false
	switch x.output {
	case "stdout", "-", "":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(filepath.Clean(x.output)), 0o750); err != nil {
			return nil, goerr.Wrap(err, "failed to create log directory", goerr.V("output", x.output))
		}
		rotator := &lumberjack.Logger{
			Filename:   filepath.Clean(x.output),
			MaxSize:    x.maxSizeMB,
			MaxBackups: x.maxBackups,
			MaxAge:     x.maxAgeDays,
			Compress:   x.compress,
		}
		w = rotator
		toFile = true
		closer = func() {
			_ = rotator.Close()
		}
	}

	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldPrefix("secret_"),
	)

	var handler slog.Handler
	switch x.format {
	case "console":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
			clog.WithSource(true),
			clog.WithColor(!x.noColor && !toFile),
		)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		closer()
		return nil, goerr.New("invalid log format", goerr.V("format", x.format))
	}

	logging.SetDefault(slog.New(handler))
	return closer, nil
}
