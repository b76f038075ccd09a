package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:      level,
		format:     format,
		output:     output,
		noColor:    true,
		maxSizeMB:  1,
		maxBackups: 1,
		maxAgeDays: 1,
	}
}

// NewServerForTest creates a Server config for testing purposes
func NewServerForTest(addr string, rateLimit float64, rateBurst int) *Server {
	return &Server{
		addr:      addr,
		rateLimit: rateLimit,
		rateBurst: rateBurst,
	}
}

// NewRiskProfileForTest creates a RiskProfile config for testing purposes
func NewRiskProfileForTest(path string) *RiskProfile {
	return &RiskProfile{path: path}
}

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn, environment string) *Sentry {
	return &Sentry{dsn: dsn, environment: environment}
}
