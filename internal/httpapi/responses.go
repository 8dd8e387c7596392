/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Nehonix-Team/minerd/internal/adapter"
	"github.com/Nehonix-Team/minerd/internal/supervisor"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[httpapi] failed to encode response body: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// statusForError maps the package-level sentinel errors the supervisor and
// adapter packages expose onto HTTP status codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, supervisor.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, adapter.ErrUnsupportedType):
		return http.StatusBadRequest, "unsupported_type"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
