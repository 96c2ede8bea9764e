package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mind-engage/mindengage-trainer/internal/logger"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

type answerReq struct {
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	CanReorder bool   `json:"can_reorder"`
}

type saveQuestionReq struct {
	Text    string      `json:"text"`
	Points  int         `json:"points"`
	Type    string      `json:"type"`
	Header1 string      `json:"header1"`
	Header2 string      `json:"header2"`
	Answers []answerReq `json:"answers"`
}

// answerView is what a learner sees: correctness stays server side.
type answerView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

func toViews(answers []quiz.Answer) []answerView {
	out := make([]answerView, 0, len(answers))
	for _, a := range answers {
		out = append(out, answerView{ID: a.ID, Text: a.Text})
	}
	return out
}

// POST /questions
func SaveQuestionHandler(svc *quiz.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveQuestionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		typ, err := quiz.ParseQuestionType(req.Type)
		if err != nil {
			respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid question", Violations: []string{err.Error()}})
			return
		}
		q := quiz.Question{Text: req.Text, Points: req.Points, Type: typ, Header1: req.Header1, Header2: req.Header2}
		answers := make([]quiz.Answer, 0, len(req.Answers))
		for _, a := range req.Answers {
			answers = append(answers, quiz.Answer{Text: a.Text, IsCorrect: a.IsCorrect, CanReorder: a.CanReorder})
		}

		saved, err := svc.SaveQuestion(r.Context(), q, answers)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusCreated, saved)
	}
}

// GET /questions/count
func CountQuestionsHandler(svc *quiz.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.CountActiveQuestions(r.Context())
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]int{"count": n})
	}
}

// GET /questions/most-incorrect?limit=
func MostIncorrectHandler(svc *quiz.Service, log *logger.Logger) http.HandlerFunc {
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
		qs, err := svc.MostIncorrect(r.Context(), limit)
		if err != nil {
			respondError(w, log, err)
			return
		}
		if qs == nil {
			qs = []quiz.Question{}
		}
		respondJSON(w, http.StatusOK, qs)
	}
}

// GET /questions/{id}/answers
func PresentAnswersHandler(svc *quiz.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			http.Error(w, "bad question id", http.StatusBadRequest)
			return
		}
		answers, err := svc.PresentAnswers(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, toViews(answers))
	}
}

// POST /questions/{id}/incorrect
func RecordIncorrectHandler(svc *quiz.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			http.Error(w, "bad question id", http.StatusBadRequest)
			return
		}
		q, err := svc.RecordIncorrect(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, q)
	}
}

// DELETE /questions/{id}
func SoftDeleteHandler(svc *quiz.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			http.Error(w, "bad question id", http.StatusBadRequest)
			return
		}
		if err := svc.SoftDelete(r.Context(), id); err != nil {
			respondError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
