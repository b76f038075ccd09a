package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unrolled/secure"
	"golang.org/x/time/rate"

	"github.com/secmon-lab/riskcalc/pkg/utils/errutil"
	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
)

const (
	requestIDHeader   = "X-Request-Id"
	maxRequestIDBytes = 128
)

// requestID reuses the caller's X-Request-Id or assigns a new UUID, echoes it
// back and attaches it to the request logger
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDBytes {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := logging.From(r.Context()).With("request_id", id)
		ctx := logging.With(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoverer turns a panic into a 500 with the standard error body
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			var err error
			switch e := rec.(type) {
			case error:
				err = goerr.Wrap(e, "panic in handler")
			default:
				err = goerr.New("panic in handler", goerr.V("panic", rec))
			}
			errutil.HandleHTTP(r.Context(), w, r, err, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

// securityHeaders sets the usual hardening headers on every response
func securityHeaders() func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'",
		STSSeconds:            15552000,
		STSIncludeSubdomains:  true,
	})
	return s.Handler
}

// rateLimiter keeps one token bucket per client address
type rateLimiter struct {
	rps       rate.Limit
	burst     int
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	limiterIdleTTL       = 3 * time.Minute
	limiterSweepInterval = time.Minute
)

func newRateLimiter(rps float64, burst int) *rateLimiter {
	return &rateLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

func (x *rateLimiter) allow(key string, now time.Time) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if now.Sub(x.lastSweep) > limiterSweepInterval {
		for k, c := range x.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(x.clients, k)
			}
		}
		x.lastSweep = now
	}

	c, ok := x.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(x.rps, x.burst)}
		x.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (x *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !x.allow(clientKey(r), time.Now()) {
			errutil.HandleHTTP(r.Context(), w, r, goerr.New("Too many requests"), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
