package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/driver"
	"mercator-hq/callisto/pkg/history"
)

// CompileHandler handles POST /v1/compile.
type CompileHandler struct {
	driver         *driver.Driver
	maxSourceBytes int
}

// NewCompileHandler creates a compile handler. A maxSourceBytes of 0
// disables the source size limit.
func NewCompileHandler(drv *driver.Driver, maxSourceBytes int) *CompileHandler {
	return &CompileHandler{
		driver:         drv,
		maxSourceBytes: maxSourceBytes,
	}
}

// ServeHTTP implements http.Handler.
func (h *CompileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handleCompileRequest(w, r, h.driver, h.maxSourceBytes)
}

// handleCompileRequest parses the request, compiles through the driver,
// and maps stage failures to 422 responses with stage and position.
func handleCompileRequest(w http.ResponseWriter, r *http.Request, drv *driver.Driver, maxSourceBytes int) {
	ctx := r.Context()
	requestID := GetRequestID(ctx)

	req, err := parseCompileRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse compile request",
			"request_id", requestID,
			"error", err,
		)
		_ = writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Source == "" {
		_ = writeError(w, http.StatusBadRequest, "source is required")
		return
	}

	if maxSourceBytes > 0 && len(req.Source) > maxSourceBytes {
		_ = writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("source exceeds maximum size of %d bytes", maxSourceBytes))
		return
	}

	trigger := req.Trigger
	if trigger == "" {
		trigger = history.TriggerServer
	}

	result, err := drv.Compile(ctx, driver.Input{
		Source:   req.Source,
		FileName: req.FileName,
		Trigger:  trigger,
	})
	if err != nil {
		if resp, ok := stageErrorResponse(err); ok {
			slog.WarnContext(ctx, "compile rejected",
				"request_id", requestID,
				"stage", resp.Stage,
				"error", err,
			)
			_ = writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}

		slog.ErrorContext(ctx, "compile failed",
			"request_id", requestID,
			"error", err,
		)
		_ = writeError(w, http.StatusInternalServerError, "compile failed")
		return
	}

	slog.InfoContext(ctx, "compile succeeded",
		"request_id", requestID,
		"source", req.FileName,
		"cache_hit", result.CacheHit,
		"tokens", result.TokenCount,
		"duration_us", result.Duration.Microseconds(),
	)

	_ = writeJSON(w, http.StatusCreated, compileResponse{
		ID:         result.RecordID,
		Output:     result.Output,
		TokenCount: result.TokenCount,
		CacheHit:   result.CacheHit,
		DurationUS: result.Duration.Microseconds(),
	})
}

// HistoryHandler handles GET /v1/history.
type HistoryHandler struct {
	storage  history.Storage
	queryCfg *config.QueryConfig
}

// NewHistoryHandler creates a history listing handler.
func NewHistoryHandler(storage history.Storage, queryCfg *config.QueryConfig) *HistoryHandler {
	return &HistoryHandler{
		storage:  storage,
		queryCfg: queryCfg,
	}
}

// ServeHTTP implements http.Handler.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.storage == nil {
		_ = writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	query, err := h.buildQuery(r)
	if err != nil {
		_ = writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.storage.Query(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "history query failed",
			"request_id", GetRequestID(ctx),
			"error", err,
		)
		_ = writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}

	_ = writeJSON(w, http.StatusOK, historyListResponse{
		Records: records,
		Count:   len(records),
	})
}

// buildQuery translates URL parameters into a history query, applying
// the configured default and maximum limits.
func (h *HistoryHandler) buildQuery(r *http.Request) (*history.Query, error) {
	params := r.URL.Query()

	limit := h.queryCfg.DefaultLimit
	if raw := params.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid limit: %q", raw)
		}
		limit = parsed
	}
	if h.queryCfg.MaxLimit > 0 && limit > h.queryCfg.MaxLimit {
		limit = h.queryCfg.MaxLimit
	}

	status := params.Get("status")
	switch status {
	case "", history.StatusSuccess, history.StatusError:
	default:
		return nil, fmt.Errorf("invalid status: %q", status)
	}

	return &history.Query{
		Limit:   limit,
		Status:  status,
		Trigger: params.Get("trigger"),
	}, nil
}

// HistoryItemHandler handles GET /v1/history/{id}.
type HistoryItemHandler struct {
	storage history.Storage
}

// NewHistoryItemHandler creates a single-record history handler.
func NewHistoryItemHandler(storage history.Storage) *HistoryItemHandler {
	return &HistoryItemHandler{storage: storage}
}

// ServeHTTP implements http.Handler.
func (h *HistoryItemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.storage == nil {
		_ = writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		_ = writeError(w, http.StatusBadRequest, "record id is required")
		return
	}

	record, err := h.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			_ = writeError(w, http.StatusNotFound, fmt.Sprintf("record not found: %s", id))
			return
		}

		slog.ErrorContext(ctx, "history lookup failed",
			"request_id", GetRequestID(ctx),
			"record_id", id,
			"error", err,
		)
		_ = writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}

	_ = writeJSON(w, http.StatusOK, record)
}
