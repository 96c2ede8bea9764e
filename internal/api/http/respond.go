package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-trainer/internal/logger"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/session"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

// respondError maps domain errors onto status codes. Storage failures are
// logged and reported without detail.
func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	var verr *quiz.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid question", Violations: verr.Violations})
	case errors.Is(err, quiz.ErrNotFound), errors.Is(err, session.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case quiz.IsEmptyResult(err):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		log.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
