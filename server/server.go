// Package server exposes the converter over HTTP.
//
//	POST /v1/encode  {"code": "...", "options": {...}}
//	POST /v1/decode  {"code": "..."}
//	GET  /v1/healthz
//
// Conversion failures are answered with 422 and the error in the body. Every
// response carries an X-Request-ID header that also tags the request's log
// records.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sarchlab/arconv/api"
	"github.com/sarchlab/arconv/config"
	"github.com/sarchlab/arconv/core"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// Request is the body of a conversion request. Options given here override
// the server's options for this request only, key by key.
type Request struct {
	Code    string          `json:"code"`
	Options *config.Options `json:"options,omitempty"`
}

// Diagnostic is a diagnostic as sent over the wire.
type Diagnostic struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
}

// Issue is a lint issue as sent over the wire.
type Issue struct {
	Type    string `json:"type"`
	Line    int    `json:"line,omitempty"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
}

// Error describes a failed conversion.
type Error struct {
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Internal bool   `json:"internal,omitempty"`
}

// Response is the body of every conversion answer.
type Response struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Issues      []Issue      `json:"issues,omitempty"`
	Error       *Error       `json:"error,omitempty"`
}

// Server routes conversion requests.
type Server struct {
	router *mux.Router
	opts   config.Options
	logger *slog.Logger
}

// New creates a server converting with opts by default.
func New(opts config.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router: mux.NewRouter(),
		opts:   opts,
		logger: logger,
	}

	s.router.HandleFunc("/v1/encode", s.convert(api.Converter.Encode)).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/decode", s.convert(api.Converter.Decode)).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/healthz", s.healthz).Methods(http.MethodGet)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) convert(
	op func(api.Converter, string) (api.Result, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := xid.New().String()
		w.Header().Set("X-Request-ID", id)
		logger := s.logger.With("Request", id, "Path", r.URL.Path)

		opts := s.opts
		req := Request{Options: &opts}
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			logger.Warn("Bad request", "Error", err)
			writeJSON(w, http.StatusBadRequest, Response{
				ID:          id,
				Diagnostics: []Diagnostic{},
				Error:       &Error{Message: err.Error()},
			})
			return
		}

		if req.Options == nil {
			req.Options = &s.opts
		}

		sink := &api.CollectSink{}
		converter := api.ConverterBuilder{}.
			WithOptions(*req.Options).
			WithSink(sink).
			WithLogger(logger).
			Build()

		res, err := op(converter, req.Code)
		resp := toResponse(id, res)

		status := http.StatusOK
		if err != nil {
			status = http.StatusUnprocessableEntity
			resp.Error = &Error{
				Message:  err.Error(),
				Line:     core.LineOf(err),
				Internal: core.IsInternal(err),
			}
			if resp.Error.Internal {
				status = http.StatusInternalServerError
			}
			logger.Warn("Conversion failed", "Error", err)
		} else {
			logger.Info("Converted", "Lines", res.Lines, "Issues", len(res.Issues))
		}

		writeJSON(w, status, resp)
	}
}

func toResponse(id string, res api.Result) Response {
	resp := Response{
		ID:          id,
		Text:        res.Text,
		Diagnostics: make([]Diagnostic, 0, len(res.Diagnostics)),
	}
	for _, d := range res.Diagnostics {
		resp.Diagnostics = append(resp.Diagnostics, Diagnostic{
			Severity: d.Severity.String(),
			Message:  d.Message,
			Line:     d.Line,
		})
	}
	for _, issue := range res.Issues {
		resp.Issues = append(resp.Issues, Issue{
			Type:    string(issue.Type),
			Line:    issue.Line,
			Op:      issue.Op,
			Message: issue.Message,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Writing response", "Error", err)
	}
}
