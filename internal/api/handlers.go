package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	remote "statcalc/adapters/api"
	"statcalc/adapters/excel"
	"statcalc/adapters/stats/reference"
	"statcalc/adapters/text"
	"statcalc/app"
	"statcalc/domain/calculation"
	"statcalc/domain/core"
	"statcalc/domain/stats"
	"statcalc/internal/errors"
	"statcalc/ports"

	"github.com/gin-gonic/gin"
)

// Pinger reports database health
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HandlerConfig carries the surface-level input rules
type HandlerConfig struct {
	StrictParsing bool
	RemoteTimeout time.Duration
	UploadDir     string
}

// Handler serves the JSON API
type Handler struct {
	calculator *app.CalculatorService
	datasets   *app.DatasetService
	batch      *app.BatchService
	hub        *SSEHub
	db         Pinger
	config     HandlerConfig
}

// NewHandler creates the API handler; datasets, hub and db may be nil
func NewHandler(calculator *app.CalculatorService, datasets *app.DatasetService, batch *app.BatchService, hub *SSEHub, db Pinger, config HandlerConfig) *Handler {
	if config.RemoteTimeout <= 0 {
		config.RemoteTimeout = 10 * time.Second
	}
	return &Handler{
		calculator: calculator,
		datasets:   datasets,
		batch:      batch,
		hub:        hub,
		db:         db,
		config:     config,
	}
}

// calcBody is the shared body of the computation endpoints.
// Observations come inline, as free text in data, or by dataset_id.
type calcBody struct {
	Observations []float64 `json:"observations"`
	Data         string    `json:"data"`
	DatasetID    string    `json:"dataset_id"`
	Level        string    `json:"level"`
	P            *float64  `json:"p"`
	N            int       `json:"n"`
	DesiredError float64   `json:"desired_error"`
	Sigma        float64   `json:"sigma"`
}

func (h *Handler) toRequest(ctx context.Context, kind calculation.Kind, body calcBody) (calculation.Request, error) {
	req := calculation.Request{
		Kind:         kind,
		Observations: body.Observations,
		Level:        stats.ConfidenceLevel(body.Level),
		Proportion:   body.P,
		N:            body.N,
		DesiredError: body.DesiredError,
		Sigma:        body.Sigma,
	}

	if strings.TrimSpace(body.Data) != "" {
		if len(body.Observations) > 0 {
			return req, errors.InvalidInput("give observations or data, not both")
		}
		values, err := text.Source{Input: body.Data, Strict: h.config.StrictParsing}.Load(ctx)
		if err != nil {
			return req, errors.InvalidInputf(err, "invalid data")
		}
		req.Observations = values
	}

	if body.DatasetID != "" {
		id, err := core.ParseDatasetID(body.DatasetID)
		if err != nil {
			return req, errors.InvalidInputf(err, "invalid dataset_id")
		}
		req.DatasetID = id
	}
	return req, nil
}

func (h *Handler) compute(kind calculation.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body calcBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, errors.InvalidInputf(err, "invalid request body"))
			return
		}
		req, err := h.toRequest(c.Request.Context(), kind, body)
		if err != nil {
			respondError(c, err)
			return
		}

		result, err := h.calculator.Evaluate(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type levelInfo struct {
	Level stats.ConfidenceLevel `json:"level"`
	Z     float64               `json:"z"`
	T     map[string]float64    `json:"t"`
}

// GetLevels lists the supported levels with their tabulated critical values
func (h *Handler) GetLevels(c *gin.Context) {
	out := make([]levelInfo, 0, len(stats.Levels()))
	for _, level := range stats.Levels() {
		info := levelInfo{Level: level, Z: stats.ZValue(level), T: make(map[string]float64)}
		for _, df := range stats.DFBuckets() {
			info.T[strconv.Itoa(df)] = stats.TValue(level, df)
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"levels": out, "default": stats.DefaultLevel})
}

// VerifyTables compares the tables with exact quantiles
func (h *Handler) VerifyTables(c *gin.Context) {
	tolerance := 0.01
	if raw := c.Query("tolerance"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			respondError(c, errors.InvalidInput(fmt.Sprintf("invalid tolerance %q", raw)))
			return
		}
		tolerance = v
	}

	devs := reference.VerifyTables()
	worst, _ := reference.Worst(devs)
	c.JSON(http.StatusOK, gin.H{
		"deviations": devs,
		"worst":      worst,
		"tolerance":  tolerance,
		"ok":         worst.AbsDiff <= tolerance,
	})
}

type batchBody struct {
	Requests []calculation.Request `json:"requests"`
}

// Batch evaluates independent requests concurrently
func (h *Handler) Batch(c *gin.Context) {
	var body batchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.InvalidInputf(err, "invalid request body"))
		return
	}
	if len(body.Requests) == 0 {
		respondError(c, errors.InvalidInput("requests must not be empty"))
		return
	}

	items, err := h.batch.Evaluate(c.Request.Context(), body.Requests)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RecentCalculations lists the newest ledger entries
func (h *Handler) RecentCalculations(c *gin.Context) {
	recs, err := h.calculator.Recent(c.Request.Context(), queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calculations": recs})
}

type datasetBody struct {
	Name         string    `json:"name"`
	Data         string    `json:"data"`
	Observations []float64 `json:"observations"`
	URL          string    `json:"url"`
	Path         string    `json:"path"`
	AuthType     string    `json:"auth_type"`
	AuthToken    string    `json:"auth_token"`
}

// CreateDataset loads observations from a JSON body or a multipart file upload
func (h *Handler) CreateDataset(c *gin.Context) {
	ctx := c.Request.Context()

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.createFromUpload(c)
		return
	}

	var body datasetBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.InvalidInputf(err, "invalid request body"))
		return
	}

	var source ports.ObservationSource
	switch {
	case body.URL != "":
		cfg := remote.DefaultRemoteSource(body.URL)
		cfg.DataPath = body.Path
		cfg.Timeout = h.config.RemoteTimeout
		cfg.AuthType = body.AuthType
		cfg.AuthToken = body.AuthToken
		reader, err := remote.NewRemoteReader(cfg)
		if err != nil {
			respondError(c, errors.InvalidInputf(err, "invalid remote source"))
			return
		}
		source = reader
	case len(body.Observations) > 0:
		source = inlineSource(body.Observations)
	default:
		source = text.Source{Input: body.Data, Strict: h.config.StrictParsing}
	}

	ds, err := h.datasets.Import(ctx, body.Name, source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ds)
}

func (h *Handler) createFromUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, errors.InvalidInputf(err, "multipart upload requires a file field"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		respondError(c, errors.InvalidInput(fmt.Sprintf("unsupported file type %q (want .csv or .xlsx)", ext)))
		return
	}

	tmp, err := os.CreateTemp(h.config.UploadDir, "upload-*"+ext)
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to stage upload"))
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		respondError(c, errors.Wrap(err, "failed to stage upload"))
		return
	}

	cfg := excel.DefaultExcelConfig()
	cfg.FilePath = tmpPath
	cfg.Sheet = c.PostForm("sheet")
	cfg.Column = c.PostForm("column")
	cfg.Strict = h.config.StrictParsing

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	ds, err := h.datasets.Import(c.Request.Context(), name, uploadSource{Source: excel.NewSource(cfg), filename: file.Filename})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ds)
}

// ListDatasets returns dataset summaries, newest first
func (h *Handler) ListDatasets(c *gin.Context) {
	list, err := h.datasets.List(c.Request.Context(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": list})
}

// GetDataset returns one dataset with its observations
func (h *Handler) GetDataset(c *gin.Context) {
	id, ok := datasetParam(c)
	if !ok {
		return
	}
	ds, err := h.datasets.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

// DeleteDataset removes a dataset and its calculation history
func (h *Handler) DeleteDataset(c *gin.Context) {
	id, ok := datasetParam(c)
	if !ok {
		return
	}
	if err := h.datasets.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DatasetCalculations lists the ledger entries recorded against a dataset
func (h *Handler) DatasetCalculations(c *gin.Context) {
	id, ok := datasetParam(c)
	if !ok {
		return
	}
	recs, err := h.datasets.Calculations(c.Request.Context(), id, queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calculations": recs})
}

// Health reports liveness and database reachability
func (h *Handler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func datasetParam(c *gin.Context) (core.DatasetID, bool) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInputf(err, "invalid dataset id"))
		return "", false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v >= 0 {
		return v
	}
	return def
}
