package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rohmanhakim/coffee-indicators/internal/build"
	"github.com/rohmanhakim/coffee-indicators/internal/retrieval"
)

type errorResponse struct {
	Error string `json:"error"`
	Cause string `json:"cause,omitempty"`
}

type healthResponse struct {
	Status string     `json:"status"`
	Build  build.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: build.Current()})
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := s.indicators.GetIndicators(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, indicators)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	price, err := s.price.GetPrice(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, price)
}

// statusFor maps a retrieval failure to an HTTP status: upstream problems are
// a bad gateway and cache problems make the service unavailable.
func statusFor(err error) (int, string) {
	var retrievalErr *retrieval.RetrievalError
	if !errors.As(err, &retrievalErr) {
		return http.StatusInternalServerError, ""
	}
	switch retrievalErr.Cause {
	case retrieval.ErrCauseExtraction:
		return http.StatusBadGateway, string(retrievalErr.Cause)
	case retrieval.ErrCauseCacheRead, retrieval.ErrCauseCacheWrite:
		return http.StatusServiceUnavailable, string(retrievalErr.Cause)
	default:
		return http.StatusInternalServerError, string(retrievalErr.Cause)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, cause := statusFor(err)
	s.log.Warn().
		Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Retrieval failed")
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Cause: cause})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}
