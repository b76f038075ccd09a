package http

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/riskcalc/pkg/utils/errutil"
	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
)

// serviceName is reported by the process-level health endpoint
const serviceName = "riskcalc"

type Server struct {
	router         *chi.Mux
	riskUC         RiskUseCase
	corsOrigins    []string
	rateLimit      float64
	rateBurst      int
	metricsHandler http.Handler
	enableUI       bool
	page           *template.Template
}

type Options func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser
func WithCORSOrigins(origins []string) Options {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithRateLimit enables per-client rate limiting. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Options {
	return func(s *Server) {
		s.rateLimit = rps
		s.rateBurst = burst
	}
}

// WithMetrics mounts the handler on /metrics
func WithMetrics(handler http.Handler) Options {
	return func(s *Server) {
		s.metricsHandler = handler
	}
}

// WithUI serves the browser form on /
func WithUI(enabled bool) Options {
	return func(s *Server) {
		s.enableUI = enabled
	}
}

func New(riskUC RiskUseCase, opts ...Options) (*Server, error) {
	if riskUC == nil {
		return nil, goerr.New("risk use case is required")
	}

	r := chi.NewRouter()

	s := &Server{
		router:      r,
		riskUC:      riskUC,
		corsOrigins: []string{"http://localhost:3000"},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.enableUI {
		page, err := parsePage()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse UI template")
		}
		s.page = page
	}

	// Middleware
	r.Use(requestID)
	r.Use(accessLogger)
	r.Use(recoverer)
	r.Use(middleware.Compress(5))
	r.Use(securityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Forwarded-For", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if s.rateLimit > 0 {
		r.Use(newRateLimiter(s.rateLimit, s.rateBurst).middleware)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler)
		r.Get("/test", loggerTestHandler)

		r.Route("/risk", func(r chi.Router) {
			r.Post("/calculate", calculateSecurityHandler(s.riskUC))
			r.Post("/financial/calculate", calculateFinancialHandler(s.riskUC))
			r.Get("/health", riskHealthHandler)
			r.Get("/admin/test", adminTestHandler(s.riskUC))
		})
	})

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	if s.enableUI {
		r.Get("/", uiFormHandler(s.riskUC, s.page))
		r.Post("/", uiSubmitHandler(s.riskUC, s.page))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errutil.HandleHTTP(r.Context(), w, r, goerr.New("Cannot "+r.Method+" "+r.URL.Path), http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errutil.HandleHTTP(r.Context(), w, r, goerr.New("Method "+r.Method+" not allowed on "+r.URL.Path), http.StatusMethodNotAllowed)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
