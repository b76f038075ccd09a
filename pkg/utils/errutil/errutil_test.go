package errutil_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/utils/errutil"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", goerr.Wrap(model.ErrInvalidInput, "threats out of range"), http.StatusBadRequest},
		{"invalid config", goerr.Wrap(model.ErrInvalidConfig, "low threshold negative"), http.StatusBadRequest},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, errutil.StatusCode(tt.err)).Equal(tt.want)
		})
	}
}

func TestClientMessage(t *testing.T) {
	gt.Value(t, errutil.ClientMessage(goerr.Wrap(model.ErrInvalidInput, "threats out of range"))).
		Equal("threats out of range")
	gt.Value(t, errutil.ClientMessage(goerr.Wrap(model.ErrInvalidConfig, "low threshold negative"))).
		Equal("low threshold negative")
	gt.Value(t, errutil.ClientMessage(errors.New("boom"))).Equal("boom")
}

func TestHandleHTTP(t *testing.T) {
	t.Run("client error keeps message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/calculate?x=1", nil)
		rec := httptest.NewRecorder()
		err := goerr.Wrap(model.ErrInvalidInput, "impact out of range")

		errutil.HandleHTTP(req.Context(), rec, req, err, http.StatusBadRequest)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("application/json")

		var body errutil.ErrorResponse
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body.StatusCode).Equal(http.StatusBadRequest)
		gt.Value(t, body.Message).Equal("impact out of range")
		gt.Value(t, body.Path).Equal("/api/v1/risk/calculate?x=1")

		_, pErr := time.Parse(time.RFC3339, body.Timestamp)
		gt.NoError(t, pErr)
	})

	t.Run("server error hides message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/risk/admin/test", nil)
		rec := httptest.NewRecorder()

		errutil.HandleHTTP(req.Context(), rec, req, goerr.New("secret detail"), http.StatusInternalServerError)

		var body errutil.ErrorResponse
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body.StatusCode).Equal(http.StatusInternalServerError)
		gt.Value(t, body.Message).Equal("Internal server error")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		errutil.HandleHTTP(req.Context(), rec, req, nil, http.StatusBadRequest)
		gt.Value(t, rec.Body.Len()).Equal(0)
	})
}
