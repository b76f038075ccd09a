package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
	"github.com/secmon-lab/riskcalc/pkg/utils/safe"
)

// TimestampLayout is the timestamp format used in every JSON response (RFC 3339, milliseconds)
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// internalErrorMessage hides details of unexpected failures from clients
const internalErrorMessage = "Internal server error"

// ErrorResponse is the JSON body written for every failed request
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Path       string `json:"path"`
	Timestamp  string `json:"timestamp"`
}

// StatusCode maps an error to the HTTP status it should produce.
// Validation failures are the caller's fault, anything else is ours.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage renders a validation failure for clients without the sentinel
// suffix, e.g. "impact out of range" instead of "impact out of range: invalid input"
func ClientMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{model.ErrInvalidInput, model.ErrInvalidConfig} {
		if errors.Is(err, sentinel) {
			msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
		}
	}
	return msg
}

// Handle logs the error with a message and returns it unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	return err
}

// HandleHTTP logs the error and writes the JSON error body. 5xx errors are
// logged with their stack and reported to Sentry, their message is replaced
// with a generic one.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)
	message := ClientMessage(err)

	if statusCode >= http.StatusInternalServerError {
		var ge *goerr.Error
		if errors.As(err, &ge) {
			logger.Error("HTTP error",
				"status", statusCode,
				"method", r.Method,
				"path", r.URL.Path,
				"error", err.Error(),
				"values", ge.Values(),
				"stack", ge.Stacks(),
			)
		} else {
			logger.Error("HTTP error",
				"status", statusCode,
				"method", r.Method,
				"path", r.URL.Path,
				"error", err.Error(),
			)
		}

		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(r)
		hub.CaptureException(err)

		message = internalErrorMessage
	} else {
		logger.Warn("HTTP request rejected",
			"status", statusCode,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
	}

	resp := ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
		Path:       r.URL.RequestURI(),
		Timestamp:  time.Now().UTC().Format(TimestampLayout),
	}
	data, mErr := json.Marshal(resp)
	if mErr != nil {
		http.Error(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(ctx, w, data)
}
