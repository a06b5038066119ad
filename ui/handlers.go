package ui

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"statcalc/adapters/excel"
	"statcalc/adapters/text"
	"statcalc/domain/calculation"
	"statcalc/domain/stats"
	"statcalc/internal/report"
)

// formValues echoes the submission back into the form.
// Nothing is kept between requests: the observations travel with every submission.
type formValues struct {
	Data      string
	Column    string
	Sheet     string
	Level     stats.ConfidenceLevel
	MeanError string
	Sigma     string
	P         string
	N         string
	PropError string
}

type kindOption struct {
	Kind    calculation.Kind
	Label   string
	Checked bool
}

type pageData struct {
	Levels []stats.ConfidenceLevel
	Kinds  []kindOption
	Form   formValues
	Report template.HTML
	Error  string
}

func (a *App) page(form formValues, selected map[calculation.Kind]bool) pageData {
	if form.Level == "" {
		form.Level = stats.DefaultLevel
	}
	kinds := make([]kindOption, 0, len(calculation.Kinds()))
	for _, k := range calculation.Kinds() {
		kinds = append(kinds, kindOption{Kind: k, Label: k.Label(), Checked: selected[k]})
	}
	return pageData{Levels: stats.Levels(), Kinds: kinds, Form: form}
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "calculator.html", a.page(formValues{}, map[calculation.Kind]bool{
		calculation.KindDescribe:     true,
		calculation.KindMeanInterval: true,
	}))
}

func (a *App) handleCalculate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxUpload)
	if err := r.ParseMultipartForm(a.config.MaxUpload); err != nil && err != http.ErrNotMultipart {
		a.renderTemplate(w, http.StatusBadRequest, "calculator.html", pageData{Error: "invalid form: " + err.Error()})
		return
	}

	form := formValues{
		Data:      r.FormValue("data"),
		Column:    r.FormValue("column"),
		Sheet:     r.FormValue("sheet"),
		Level:     stats.ConfidenceLevel(r.FormValue("level")),
		MeanError: r.FormValue("mean_error"),
		Sigma:     r.FormValue("sigma"),
		P:         r.FormValue("p"),
		N:         r.FormValue("n"),
		PropError: r.FormValue("prop_error"),
	}
	selected := make(map[calculation.Kind]bool)
	for _, k := range r.Form["calc"] {
		selected[calculation.Kind(k)] = true
	}

	data := a.page(form, selected)
	if len(selected) == 0 {
		data.Error = "select at least one calculation"
		a.renderTemplate(w, http.StatusBadRequest, "calculator.html", data)
		return
	}

	rep := report.New("Results")
	observations, source, loadErr := a.loadObservations(r, form)
	if loadErr == nil {
		rep.N = len(observations)
		rep.Source = source
	}

	for _, kind := range calculation.Kinds() {
		if !selected[kind] {
			continue
		}
		req, err := buildRequest(kind, form, observations, loadErr)
		if err != nil {
			rep.Add(kind, nil, err)
			continue
		}
		result, err := a.calculator.Evaluate(r.Context(), req)
		rep.Add(kind, result, err)
	}

	data.Report = template.HTML(rep.HTML())
	a.renderTemplate(w, http.StatusOK, "calculator.html", data)
}

// loadObservations prefers an uploaded file over the text area
func (a *App) loadObservations(r *http.Request, form formValues) ([]float64, string, error) {
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["file"]; len(files) > 0 && files[0].Size > 0 {
			return a.loadUpload(r.Context(), r, form)
		}
	}
	if strings.TrimSpace(form.Data) == "" {
		return nil, "", fmt.Errorf("no data entered")
	}
	values, err := text.Source{Input: form.Data, Strict: a.config.StrictParsing}.Load(r.Context())
	if err != nil {
		return nil, "", err
	}
	return values, "", nil
}

func (a *App) loadUpload(ctx context.Context, r *http.Request, form formValues) ([]float64, string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		return nil, "", fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", ext)
	}

	tmp, err := os.CreateTemp(a.config.UploadDir, "upload-*"+ext)
	if err != nil {
		return nil, "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return nil, "", err
	}
	tmp.Close()

	cfg := excel.DefaultExcelConfig()
	cfg.FilePath = tmp.Name()
	cfg.Column = form.Column
	cfg.Sheet = form.Sheet
	cfg.Strict = a.config.StrictParsing

	values, err := excel.NewSource(cfg).Load(ctx)
	if err != nil {
		return nil, "", err
	}
	return values, header.Filename, nil
}

func buildRequest(kind calculation.Kind, form formValues, observations []float64, loadErr error) (calculation.Request, error) {
	req := calculation.Request{Kind: kind, Level: form.Level}

	if kind.NeedsObservations() {
		if loadErr != nil {
			return req, loadErr
		}
		req.Observations = observations
		return req, nil
	}

	var err error
	switch kind {
	case calculation.KindSampleSizeMean:
		if req.DesiredError, err = parseField("desired margin of error", form.MeanError); err != nil {
			return req, err
		}
		if req.Sigma, err = parseField("standard deviation", form.Sigma); err != nil {
			return req, err
		}
	case calculation.KindProportionInterval:
		p, err := parseField("p", form.P)
		if err != nil {
			return req, err
		}
		req.Proportion = &p
		if req.N, err = strconv.Atoi(strings.TrimSpace(form.N)); err != nil {
			return req, fmt.Errorf("n must be a whole number")
		}
	case calculation.KindSampleSizeProportion:
		p, err := parseField("p", form.P)
		if err != nil {
			return req, err
		}
		req.Proportion = &p
		if req.DesiredError, err = parseField("desired margin of error", form.PropError); err != nil {
			return req, err
		}
	}
	return req, nil
}

func parseField(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}
