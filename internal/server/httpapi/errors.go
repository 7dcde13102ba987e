package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorMapping lists the error kinds the API reports, most specific first.
// detailed entries expose the full error text; the rest only the kind.
var errorMapping = []struct {
	target   error
	status   int
	detailed bool
}{
	{common.ErrInvalidCredentialFormat, http.StatusBadRequest, true},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, false},
	{common.ErrTokenExpired, http.StatusUnauthorized, false},
	{common.ErrInvalidToken, http.StatusUnauthorized, false},
	{common.ErrorUnauthorized, http.StatusUnauthorized, false},
	{common.ErrRegistrationDenied, http.StatusForbidden, false},
	{common.ErrUserNotFound, http.StatusNotFound, false},
	{common.ErrEmailAlreadyUsed, http.StatusConflict, false},
	{notifications.ErrServiceUnavailable, http.StatusServiceUnavailable, false},
	{notifications.ErrServiceTimeout, http.StatusGatewayTimeout, false},
	{notifications.ErrServiceRejected, http.StatusBadGateway, false},
}

func statusFor(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			if m.detailed {
				return m.status, err.Error()
			}
			return m.status, m.target.Error()
		}
	}
	return http.StatusInternalServerError, common.ErrorInternal.Error()
}

func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
