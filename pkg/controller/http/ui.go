package http

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/riskcalc/pkg/domain/model"
	"github.com/secmon-lab/riskcalc/pkg/utils/errutil"
	"github.com/secmon-lab/riskcalc/pkg/utils/logging"
	"github.com/secmon-lab/riskcalc/pkg/utils/safe"
)

//go:embed templates/index.html
var indexTemplate string

// formValues echoes what the user typed back into the form
type formValues struct {
	Vulnerabilities string
	Threats         string
	Impact          string
	Mitigation      string
	Low             string
	Medium          string
}

type pageData struct {
	Form     formValues
	Defaults model.Thresholds
	Result   *outputResponse
	Error    string
}

func parsePage() (*template.Template, error) {
	page, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse index template")
	}
	return page, nil
}

func uiFormHandler(uc RiskUseCase, page *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, r, page, http.StatusOK, pageData{
			Defaults: uc.SecurityConfig().Thresholds,
		})
	}
}

func uiSubmitHandler(uc RiskUseCase, page *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			renderPage(w, r, page, http.StatusBadRequest, pageData{
				Defaults: uc.SecurityConfig().Thresholds,
				Error:    "could not read the submitted form",
			})
			return
		}

		form := formValues{
			Vulnerabilities: strings.TrimSpace(r.PostFormValue("vulnerabilities")),
			Threats:         strings.TrimSpace(r.PostFormValue("threats")),
			Impact:          strings.TrimSpace(r.PostFormValue("impact")),
			Mitigation:      strings.TrimSpace(r.PostFormValue("mitigation")),
			Low:             strings.TrimSpace(r.PostFormValue("low")),
			Medium:          strings.TrimSpace(r.PostFormValue("medium")),
		}
		data := pageData{
			Form:     form,
			Defaults: uc.SecurityConfig().Thresholds,
		}

		input, cfg, err := form.parse()
		if err != nil {
			data.Error = errutil.ClientMessage(err)
			renderPage(w, r, page, http.StatusBadRequest, data)
			return
		}

		out, err := uc.CalculateSecurity(r.Context(), input, cfg)
		if err != nil {
			status := errutil.StatusCode(err)
			if status >= http.StatusInternalServerError {
				errutil.Handle(r.Context(), err, "failed to calculate risk from form")
				data.Error = "Internal server error"
			} else {
				data.Error = errutil.ClientMessage(err)
			}
			renderPage(w, r, page, status, data)
			return
		}

		resp := toOutputResponse(out)
		data.Result = &resp
		renderPage(w, r, page, http.StatusOK, data)
	}
}

func (f formValues) parse() (model.SecurityInput, *model.Config, error) {
	var input model.SecurityInput
	var err error

	if input.Vulnerabilities, err = parseNumber("vulnerabilities", f.Vulnerabilities); err != nil {
		return input, nil, err
	}
	if input.Threats, err = parseNumber("threats", f.Threats); err != nil {
		return input, nil, err
	}
	if input.Impact, err = parseNumber("impact", f.Impact); err != nil {
		return input, nil, err
	}
	if f.Mitigation != "" {
		m, err := parseNumber("mitigation", f.Mitigation)
		if err != nil {
			return input, nil, err
		}
		input.Mitigation = &m
	}

	// threshold overrides are all or nothing
	if f.Low == "" && f.Medium == "" {
		return input, nil, nil
	}
	if f.Low == "" || f.Medium == "" {
		return input, nil, goerr.Wrap(model.ErrInvalidInput, "set both thresholds or neither")
	}
	low, err := parseNumber("low threshold", f.Low)
	if err != nil {
		return input, nil, err
	}
	medium, err := parseNumber("medium threshold", f.Medium)
	if err != nil {
		return input, nil, err
	}
	return input, &model.Config{Thresholds: model.Thresholds{Low: low, Medium: medium}}, nil
}

func parseNumber(field, raw string) (float64, error) {
	if raw == "" {
		return 0, goerr.Wrap(model.ErrInvalidInput, field+" is required", goerr.V(model.FieldKey, field))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, goerr.Wrap(model.ErrInvalidInput, field+" must be a number",
			goerr.V(model.FieldKey, field), goerr.V(model.ValueKey, raw))
	}
	return v, nil
}

func renderPage(w http.ResponseWriter, r *http.Request, page *template.Template, status int, data pageData) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		errutil.HandleHTTP(r.Context(), w, r, goerr.Wrap(err, "failed to render page"), http.StatusInternalServerError)
		return
	}
	if data.Error != "" {
		logging.From(r.Context()).Debug("form rejected", "error", data.Error)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, buf.Bytes())
}
