package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/mind-engage/mindengage-trainer/internal/logger"
	"github.com/mind-engage/mindengage-trainer/internal/transfer"
)

// POST /transfer/import?format=json|yaml
func ImportHandler(tr *transfer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := transfer.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rep, err := tr.Import(r.Context(), r.Body, f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, http.StatusOK, rep)
	}
}

// GET /transfer/export?format=json|yaml
func ExportHandler(tr *transfer.Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := transfer.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var buf bytes.Buffer
		n, err := tr.Export(r.Context(), &buf, f)
		if err != nil {
			respondError(w, log, err)
			return
		}
		ctype := "application/json"
		if f == transfer.FormatYAML {
			ctype = "application/yaml"
		}
		w.Header().Set("Content-Type", ctype)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "questions."+string(f)))
		_, _ = w.Write(buf.Bytes())
		log.Info("questions exported", "count", n, "format", string(f))
	}
}
