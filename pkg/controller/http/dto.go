package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
)

// maxBodyBytes bounds request bodies; a valid request is well under 1 KiB
const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type thresholdsRequest struct {
	Low    *float64 `json:"low" validate:"required"`
	Medium *float64 `json:"medium" validate:"required"`
}

type configRequest struct {
	Thresholds *thresholdsRequest `json:"thresholds" validate:"required"`
	Weights    map[string]float64 `json:"weights,omitempty"`
}

func (x *configRequest) toModel() *model.Config {
	if x == nil {
		return nil
	}
	return &model.Config{
		Thresholds: model.Thresholds{Low: *x.Thresholds.Low, Medium: *x.Thresholds.Medium},
		Weights:    x.Weights,
	}
}

type securityRequest struct {
	Vulnerabilities *float64       `json:"vulnerabilities" validate:"required"`
	Threats         *float64       `json:"threats" validate:"required"`
	Impact          *float64       `json:"impact" validate:"required"`
	Mitigation      *float64       `json:"mitigation,omitempty"`
	Config          *configRequest `json:"config,omitempty"`
}

func (x *securityRequest) toModel() model.SecurityInput {
	return model.SecurityInput{
		Vulnerabilities: *x.Vulnerabilities,
		Threats:         *x.Threats,
		Impact:          *x.Impact,
		Mitigation:      x.Mitigation,
	}
}

type financialRequest struct {
	Income           *float64       `json:"income" validate:"required"`
	Expense          *float64       `json:"expense" validate:"required"`
	Age              *float64       `json:"age" validate:"required"`
	AdjustmentFactor *float64       `json:"adjustmentFactor,omitempty"`
	Config           *configRequest `json:"config,omitempty"`
}

func (x *financialRequest) toModel() model.FinancialInput {
	return model.FinancialInput{
		Income:           *x.Income,
		Expense:          *x.Expense,
		Age:              *x.Age,
		AdjustmentFactor: x.AdjustmentFactor,
	}
}

type outputResponse struct {
	Score       float64 `json:"score"`
	Category    string  `json:"category"`
	Explanation string  `json:"explanation"`
}

func toOutputResponse(out *model.Output) outputResponse {
	return outputResponse{
		Score:       out.Score,
		Category:    out.Category.String(),
		Explanation: out.Explanation,
	}
}

// decodeRequest reads a JSON body into dst, rejecting unknown fields, and
// checks the struct tags. Every failure wraps model.ErrInvalidInput.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return goerr.Wrap(model.ErrInvalidInput, "request body is empty")
		case errors.As(err, &typeErr):
			return goerr.Wrap(model.ErrInvalidInput, typeErr.Field+" must be a number",
				goerr.V(model.FieldKey, typeErr.Field))
		case errors.As(err, &maxErr):
			return goerr.Wrap(model.ErrInvalidInput, "request body is too large")
		default:
			return goerr.Wrap(model.ErrInvalidInput, "malformed request body: "+err.Error())
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerr.Wrap(model.ErrInvalidInput, "request body must contain a single JSON object")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return goerr.Wrap(model.ErrInvalidInput, fieldMessage(verrs[0]),
				goerr.V(model.FieldKey, verrs[0].Namespace()))
		}
		return goerr.Wrap(model.ErrInvalidInput, "invalid request body")
	}
	return nil
}

// fieldMessage renders a validation failure with the dotted JSON path of the
// field minus the root struct name, e.g. "config.thresholds.low is required"
func fieldMessage(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	if fe.Tag() == "required" {
		return path + " is required"
	}
	return path + " failed " + fe.Tag() + " validation"
}
