package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/callisto/pkg/driver"
	"mercator-hq/callisto/pkg/sexpr/ast"
	"mercator-hq/callisto/pkg/sexpr/codegen"
	"mercator-hq/callisto/pkg/sexpr/lexer"
	"mercator-hq/callisto/pkg/sexpr/parser"
)

const (
	// maxRequestBodySize caps the compile request body (10MB). The
	// configured source size limit is enforced separately after decode.
	maxRequestBodySize = 10 * 1024 * 1024
)

// compileRequest is the body of POST /v1/compile.
type compileRequest struct {
	// Source is the program text to compile.
	Source string `json:"source"`

	// FileName optionally labels the source for history and metrics.
	FileName string `json:"filename,omitempty"`

	// Trigger optionally overrides the history trigger, "server" by default.
	Trigger string `json:"trigger,omitempty"`
}

// compileResponse is the success body of POST /v1/compile.
type compileResponse struct {
	ID         string `json:"id,omitempty"`
	Output     string `json:"output"`
	TokenCount int    `json:"token_count"`
	CacheHit   bool   `json:"cache_hit"`
	DurationUS int64  `json:"duration_us"`
}

// errorResponse is the body of every error status. Stage failures carry
// the stage name and, when the error has one, the source position.
type errorResponse struct {
	Error  string `json:"error"`
	Stage  string `json:"stage,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// historyListResponse is the body of GET /v1/history.
type historyListResponse struct {
	Records interface{} `json:"records"`
	Count   int         `json:"count"`
}

// parseCompileRequest parses and validates a compile request body.
// The body is limited to maxRequestBodySize to prevent memory exhaustion.
func parseCompileRequest(r *http.Request) (*compileRequest, error) {
	limitedReader := io.LimitReader(r.Body, maxRequestBodySize)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) >= maxRequestBodySize {
		return nil, fmt.Errorf("request body exceeds maximum size of %d bytes", maxRequestBodySize)
	}

	var req compileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}

	return &req, nil
}

// stageErrorResponse maps a compile stage error to an error response.
// ok is false when the error is not a stage error.
func stageErrorResponse(err error) (errorResponse, bool) {
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		return errorResponse{
			Error:  lexErr.Error(),
			Stage:  driver.StageLex,
			Line:   lexErr.Pos.Line,
			Column: lexErr.Pos.Column,
		}, true
	}

	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		resp := errorResponse{
			Error: parseErr.Error(),
			Stage: driver.StageParse,
		}
		// An unexpected-end-of-input error has no token to point at
		if !parseErr.EOF {
			resp.Line = parseErr.Tok.Pos.Line
			resp.Column = parseErr.Tok.Pos.Column
		}
		return resp, true
	}

	var unknownErr *ast.UnknownNodeError
	if errors.As(err, &unknownErr) {
		return errorResponse{
			Error: unknownErr.Error(),
			Stage: driver.StageTransform,
		}, true
	}

	var genErr *codegen.GenerationError
	if errors.As(err, &genErr) {
		return errorResponse{
			Error: genErr.Error(),
			Stage: driver.StageGenerate,
		}, true
	}

	return errorResponse{}, false
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) error {
	return writeJSON(w, statusCode, errorResponse{Error: message})
}
