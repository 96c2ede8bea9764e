package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-trainer/internal/history"
	"github.com/mind-engage/mindengage-trainer/internal/logger"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/session"
)

type nextResp struct {
	Question quiz.Question `json:"question"`
	Answers  []answerView  `json:"answers"`
}

type submitReq struct {
	QuestionID int64   `json:"question_id"`
	AnswerIDs  []int64 `json:"answer_ids"`
}

// POST /sessions
func CreateSessionHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusCreated, map[string]string{"id": reg.Create()})
	}
}

// POST /sessions/{id}/next?mode=weighted|random
//
// The picked question comes back with its answers already shuffled. A
// question that has no answers is still returned, with an empty list.
func NextQuestionHandler(reg *session.Registry, svc *quiz.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := chi.URLParam(r, "id")
		mode := r.URL.Query().Get("mode")
		if mode != "" && mode != "weighted" && mode != "random" {
			http.Error(w, "mode must be weighted or random", http.StatusBadRequest)
			return
		}

		var picked quiz.Question
		err := reg.Do(sid, func(sel *quiz.Selector) error {
			var err error
			if mode == "random" {
				picked, err = sel.Random(r.Context())
			} else {
				picked, err = sel.Next(r.Context())
			}
			return err
		})
		if err != nil {
			respondError(w, log, err)
			return
		}

		answers, err := svc.PresentAnswers(r.Context(), picked.ID)
		if err != nil && !errors.Is(err, quiz.ErrNoAnswers) {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, nextResp{Question: picked, Answers: toViews(answers)})
	}
}

// POST /sessions/{id}/submit
//
// A graded result is returned even if it could not be written to hist.
func SubmitHandler(reg *session.Registry, svc *quiz.Service, hist *history.Repo, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionID <= 0 {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		sid := chi.URLParam(r, "id")
		var out quiz.Outcome
		err := reg.Do(sid, func(*quiz.Selector) error {
			var err error
			out, err = svc.Submit(r.Context(), req.QuestionID, req.AnswerIDs)
			return err
		})
		if err != nil {
			respondError(w, log, err)
			return
		}
		if hist != nil {
			ev := history.Event{
				SessionID:  sid,
				QuestionID: out.QuestionID,
				Correct:    out.Correct,
				Points:     out.Result.AutoPoints,
				MaxPoints:  out.Result.MaxPoints,
			}
			if err := hist.Append(r.Context(), ev); err != nil {
				log.Warn("attempt not logged", "session_id", sid, "question_id", out.QuestionID, "error", err)
			}
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// GET /history?session=&limit=
func HistoryHandler(hist *history.Repo, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "bad limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		events, err := hist.Recent(r.Context(), r.URL.Query().Get("session"), limit)
		if err != nil {
			respondError(w, log, err)
			return
		}
		if events == nil {
			events = []history.Event{}
		}
		respondJSON(w, http.StatusOK, events)
	}
}

// POST /sessions/{id}/reset
func ResetSessionHandler(reg *session.Registry, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Reset(chi.URLParam(r, "id")); err != nil {
			respondError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /sessions/{id}
func EndSessionHandler(reg *session.Registry, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Delete(chi.URLParam(r, "id")); err != nil {
			respondError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
