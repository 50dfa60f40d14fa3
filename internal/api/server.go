// Package api serves the zclosure pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz          liveness probe
//	POST   /v1/closure       run the pipeline on Newick input and store the run
//	GET    /v1/runs          list stored runs, newest first
//	GET    /v1/runs/{id}     fetch a stored run with its result
//	DELETE /v1/runs/{id}     delete a stored run
//
// Errors are JSON objects with the machine-readable code from pkg/errors.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/observability"
	"github.com/matzehuels/zclosure/pkg/pipeline"
	"github.com/matzehuels/zclosure/pkg/store"
)

const (
	// DefaultMaxBody bounds the size of a closure request.
	DefaultMaxBody = 8 << 20

	// StatusClientClosedRequest is the non-standard status for requests
	// cancelled by the client.
	StatusClientClosedRequest = 499
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Runner  *pipeline.Runner
	Store   store.Store
	Logger  *log.Logger
	RunTTL  time.Duration
	MaxBody int64
}

// New creates a server. A nil store disables run persistence: closures are
// still computed but not saved, and the run routes return 404.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Runner:  runner,
		Store:   st,
		Logger:  logger,
		RunTTL:  store.DefaultTTL,
		MaxBody: DefaultMaxBody,
	}
}

// Handler returns the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/closure", s.handleClosure)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Delete("/runs/{id}", s.handleDeleteRun)
	})
	return r
}

// observe logs every request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, duration)
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClosureRequest is the body of POST /v1/closure.
type ClosureRequest struct {
	Newick  string           `json:"newick"`
	Source  string           `json:"source,omitempty"`
	Options pipeline.Options `json:"options"`
}

// ClosureResponse is the reply to POST /v1/closure. RunID is empty when the
// server has no store.
type ClosureResponse struct {
	RunID  string           `json:"run_id,omitempty"`
	Result *pipeline.Result `json:"result"`
}

func (s *Server) handleClosure(w http.ResponseWriter, r *http.Request) {
	var req ClosureRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, zerrors.Wrap(zerrors.ErrCodeInvalidInput, err, "decode request: %v", err))
		return
	}
	if req.Newick == "" {
		s.writeError(w, zerrors.New(zerrors.ErrCodeInvalidInput, "newick is required"))
		return
	}

	opts := req.Options
	opts.Logger = s.Logger
	res, err := s.Runner.Execute(r.Context(), []byte(req.Newick), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ClosureResponse{Result: res}
	if s.Store != nil {
		source := req.Source
		if source == "" {
			source = "api"
		}
		run, err := pipeline.SaveRun(r.Context(), s.Store, source, opts, res, s.RunTTL)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.RunID = run.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeJSON(w, http.StatusOK, []*store.Run{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, zerrors.New(zerrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.Store == nil {
		s.writeError(w, zerrors.New(zerrors.ErrCodeNotFound, "run %s not found", id))
		return
	}
	run, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.Store == nil {
		s.writeError(w, zerrors.New(zerrors.ErrCodeNotFound, "run %s not found", id))
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    zerrors.Code `json:"code"`
	Message string       `json:"message"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	if zerrors.IsCancelled(err) {
		return StatusClientClosedRequest
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	switch zerrors.GetCode(err) {
	case zerrors.ErrCodeInvalidInput, zerrors.ErrCodeInvalidTree,
		zerrors.ErrCodeInvalidOption, zerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case zerrors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := zerrors.GetCode(err)
	if code == "" {
		code = zerrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: zerrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
