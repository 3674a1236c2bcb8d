package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/opsdash/internal/common"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	var qe *common.QueryError
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case common.IsSessionError(err):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &qe):
		return http.StatusBadGateway, "query_failed"
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger(r.Context()).Error(r.Context(), "request failed", "error", err)
		msg = "internal error"
	} else if status == http.StatusUnauthorized && code == "invalid_token" {
		msg = "session expired, sign in again"
	}
	writeError(w, status, code, msg)
}
