package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/utils/errutil"
	"github.com/secmon-lab/riskcalc/pkg/utils/safe"
)

// RiskUseCase is what the HTTP layer needs from the risk use case
type RiskUseCase interface {
	CalculateSecurity(ctx context.Context, input model.SecurityInput, cfg *model.Config) (*model.Output, error)
	CalculateFinancial(ctx context.Context, input model.FinancialInput, cfg *model.Config) (*model.Output, error)
	Sample(ctx context.Context) (*model.Output, error)
	SecurityConfig() model.Config
}

func calculateSecurityHandler(uc RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req securityRequest
		if err := decodeRequest(w, r, &req); err != nil {
			errutil.HandleHTTP(r.Context(), w, r, err, http.StatusBadRequest)
			return
		}

		out, err := uc.CalculateSecurity(r.Context(), req.toModel(), req.Config.toModel())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, r, err, errutil.StatusCode(err))
			return
		}

		writeJSON(w, r, http.StatusOK, toOutputResponse(out))
	}
}

func calculateFinancialHandler(uc RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req financialRequest
		if err := decodeRequest(w, r, &req); err != nil {
			errutil.HandleHTTP(r.Context(), w, r, err, http.StatusBadRequest)
			return
		}

		out, err := uc.CalculateFinancial(r.Context(), req.toModel(), req.Config.toModel())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, r, err, errutil.StatusCode(err))
			return
		}

		writeJSON(w, r, http.StatusOK, toOutputResponse(out))
	}
}

// adminTestHandler serves the fixed sample assessment for smoke tests
func adminTestHandler(uc RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := uc.Sample(r.Context())
		if err != nil {
			// the sample is fixed, so any failure here is ours
			errutil.HandleHTTP(r.Context(), w, r, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, r, http.StatusOK, toOutputResponse(out))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, r, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
