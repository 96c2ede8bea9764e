package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-trainer/internal/auth/middleware"
	"github.com/mind-engage/mindengage-trainer/internal/history"
	"github.com/mind-engage/mindengage-trainer/internal/logger"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/rbac"
	"github.com/mind-engage/mindengage-trainer/internal/session"
	"github.com/mind-engage/mindengage-trainer/internal/transfer"
)

type Deps struct {
	Quiz     *quiz.Service
	Sessions *session.Registry
	Transfer *transfer.Service
	History  *history.Repo // optional
	Log      *logger.Logger

	// Auth nil means authentication is off and every caller acts as editor.
	Auth *auth.AuthService
}

// Mount registers the trainer API on r.
func Mount(r chi.Router, d Deps) {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}

	if d.Auth != nil {
		r.Post("/auth/login", auth.LoginHandler(d.Auth))
	}

	r.Group(func(pr chi.Router) {
		if d.Auth != nil {
			pr.Use(auth.JWTMiddleware(d.Auth))
		} else {
			pr.Use(rbac.AsRole(rbac.RoleEditor))
		}

		pr.Route("/questions", func(qr chi.Router) {
			qr.With(rbac.Require("question:create")).Post("/", SaveQuestionHandler(d.Quiz, log))
			qr.With(rbac.Require("question:count")).Get("/count", CountQuestionsHandler(d.Quiz, log))
			qr.With(rbac.Require("question:stats")).Get("/most-incorrect", MostIncorrectHandler(d.Quiz, log))
			qr.With(rbac.Require("question:answers")).Get("/{id}/answers", PresentAnswersHandler(d.Quiz, log))
			qr.With(rbac.Require("question:record")).Post("/{id}/incorrect", RecordIncorrectHandler(d.Quiz, log))
			qr.With(rbac.Require("question:delete")).Delete("/{id}", SoftDeleteHandler(d.Quiz, log))
		})

		pr.Route("/sessions", func(sr chi.Router) {
			sr.With(rbac.Require("session:create")).Post("/", CreateSessionHandler(d.Sessions))
			sr.With(rbac.Require("session:next")).Post("/{id}/next", NextQuestionHandler(d.Sessions, d.Quiz, log))
			sr.With(rbac.Require("session:submit")).Post("/{id}/submit", SubmitHandler(d.Sessions, d.Quiz, d.History, log))
			sr.With(rbac.Require("session:reset")).Post("/{id}/reset", ResetSessionHandler(d.Sessions, log))
			sr.With(rbac.Require("session:end")).Delete("/{id}", EndSessionHandler(d.Sessions, log))
		})

		if d.History != nil {
			pr.With(rbac.Require("history:view")).Get("/history", HistoryHandler(d.History, log))
		}
		if d.Transfer != nil {
			pr.With(rbac.Require("transfer:import")).Post("/transfer/import", ImportHandler(d.Transfer))
			pr.With(rbac.Require("transfer:export")).Get("/transfer/export", ExportHandler(d.Transfer, log))
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}
