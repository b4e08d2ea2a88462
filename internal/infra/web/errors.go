package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/infra/logging"
)

type errorResponse struct {
	Error      string `json:"error"`
	Capability string `json:"capability,omitempty"`
}

// writeError maps domain errors to HTTP statuses:
// invalid argument -> 400, not found -> 404, expired token -> 401,
// remote failure -> 502 with the backend message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var re *domain.RemoteError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.As(err, &re):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: re.Error(), Capability: re.Capability})
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
