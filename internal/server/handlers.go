package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	qaerrors "github.com/Gauravv801/QA-Eval/pkg/errors"
	"github.com/Gauravv801/QA-Eval/pkg/graphio"
	"github.com/Gauravv801/QA-Eval/pkg/history"
	"github.com/Gauravv801/QA-Eval/pkg/paths"
	"github.com/Gauravv801/QA-Eval/pkg/pipeline"
	"github.com/Gauravv801/QA-Eval/pkg/report"
)

// maxRequestBody caps analyze request bodies at 4 MiB.
const maxRequestBody = 4 << 20

// =============================================================================
// Analyze
// =============================================================================

// analyzeRequest is the POST /api/analyze request body.
type analyzeRequest struct {
	Flow    graphio.Description `json:"flow"`
	Options pipeline.Options    `json:"options"`
	Save    bool                `json:"save,omitempty"`
	Notes   string              `json:"notes,omitempty"`
}

// analyzeResponse is the POST /api/analyze response body.
type analyzeResponse struct {
	GraphHash string           `json:"graph_hash"`
	Document  *report.Document `json:"document"`
	Report    string           `json:"report"`
	Cached    bool             `json:"cached"`
	RunID     string           `json:"run_id,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, qaerrors.New(qaerrors.ErrCodeInvalidInput, "decoding request: %v", err))
		return
	}

	if err := req.Options.ValidateAndSetDefaults(); err != nil {
		writeError(w, qaerrors.Wrap(qaerrors.ErrCodeInvalidInput, err, "invalid options"))
		return
	}

	g, dropped, err := graphio.ToGraph(&req.Flow, graphio.Options{
		Entry: req.Options.EntryState,
		Exit:  req.Options.ExitState,
	})
	if err != nil {
		writeError(w, qaerrors.Wrap(qaerrors.ErrCodeInvalidGraph, err, "resolving flow"))
		return
	}
	if dropped > 0 {
		s.logger.Warn("dropped malformed transitions", "count", dropped)
	}

	req.Options.Logger = s.logger
	result, err := s.runner.Execute(r.Context(), g, req.Options)
	if err != nil {
		if errors.Is(err, paths.ErrNoPaths) {
			writeError(w, qaerrors.Wrap(qaerrors.ErrCodeDegenerateGraph, err, "no paths between entry and exit states"))
			return
		}
		writeError(w, err)
		return
	}

	resp := analyzeResponse{
		GraphHash: result.GraphHash,
		Document:  result.Document,
		Report:    result.ReportText,
		Cached:    result.CacheInfo.AnalysisHit,
	}

	if req.Save && s.store != nil {
		run := history.NewRun(result.GraphHash, req.Options.EntryState, req.Options.ExitState)
		run.Truncated = result.Document.Truncated
		run.Stats = result.Document.Stats
		run.Report = result.ReportText
		run.Notes = req.Notes
		if err := s.store.Save(r.Context(), run); err != nil {
			writeError(w, err)
			return
		}
		resp.RunID = run.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Runs
// =============================================================================

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, qaerrors.New(qaerrors.ErrCodeUnsupported, "run history is not configured"))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, qaerrors.New(qaerrors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*history.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, qaerrors.New(qaerrors.ErrCodeUnsupported, "run history is not configured"))
		return
	}

	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, qaerrors.New(qaerrors.ErrCodeUnsupported, "run history is not configured"))
		return
	}

	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Responses
// =============================================================================

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to an HTTP status via its error code and writes
// the error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := qaerrors.GetCode(err)
	if code == "" {
		code = qaerrors.ErrCodeInternal
	}
	writeJSON(w, statusForCode(code), errorResponse{
		Error: errorBody{Code: string(code), Message: qaerrors.UserMessage(err)},
	})
}

// statusForCode maps machine-readable error codes to HTTP status codes.
func statusForCode(code qaerrors.Code) int {
	switch code {
	case qaerrors.ErrCodeInvalidInput,
		qaerrors.ErrCodeInvalidGraph,
		qaerrors.ErrCodeInvalidFormat,
		qaerrors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case qaerrors.ErrCodeDegenerateGraph:
		return http.StatusUnprocessableEntity
	case qaerrors.ErrCodeNotFound,
		qaerrors.ErrCodeFileNotFound,
		qaerrors.ErrCodeRunNotFound:
		return http.StatusNotFound
	case qaerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case qaerrors.ErrCodeUnsupported:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
