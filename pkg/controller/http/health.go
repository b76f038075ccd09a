package http

import (
	"net/http"
	"time"

	"github.com/secmon-lab/riskcalc/pkg/utils/errutil"
	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
)

type riskHealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type healthResponse struct {
	OK        bool   `json:"ok"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func now() string {
	return time.Now().UTC().Format(errutil.TimestampLayout)
}

// healthHandler reports process liveness
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		OK:        true,
		Service:   serviceName,
		Timestamp: now(),
	})
}

// riskHealthHandler reports liveness of the risk API
func riskHealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, riskHealthResponse{
		Status:    "healthy",
		Timestamp: now(),
	})
}

// loggerTestHandler writes one line per level so operators can check that
// log shipping and rotation work end to end
func loggerTestHandler(w http.ResponseWriter, r *http.Request) {
	logger := logging.From(r.Context())
	logger.Info("logger test", "level", "info")
	logger.Warn("logger test", "level", "warn")
	logger.Error("logger test", "level", "error")

	writeJSON(w, r, http.StatusOK, okResponse{OK: true})
}
