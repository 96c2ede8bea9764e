package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-trainer/internal/logger"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml"; empty defaults to JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("transfer: unknown format %q", s)
}

// FormatFromPath picks the format from a file extension, JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Record is the portable shape of one question with its answers.
type Record struct {
	Text    string         `json:"text" yaml:"text"`
	Points  int            `json:"points" yaml:"points"`
	Type    string         `json:"type" yaml:"type"`
	Header1 string         `json:"header1,omitempty" yaml:"header1,omitempty"`
	Header2 string         `json:"header2,omitempty" yaml:"header2,omitempty"`
	Answers []AnswerRecord `json:"answers" yaml:"answers"`
}

type AnswerRecord struct {
	Text       string `json:"text" yaml:"text"`
	IsCorrect  bool   `json:"isCorrect" yaml:"isCorrect"`
	CanReorder bool   `json:"canReorder,omitempty" yaml:"canReorder,omitempty"`
}

// Failure describes a record that could not be imported.
type Failure struct {
	Index  int      `json:"index"`
	Text   string   `json:"text"`
	Errors []string `json:"errors"`
}

type Report struct {
	Imported int       `json:"imported"`
	Failures []Failure `json:"failures,omitempty"`
}

type Service struct {
	store quiz.Store
	quiz  *quiz.Service
	log   *logger.Logger
}

func New(store quiz.Store, svc *quiz.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, quiz: svc, log: log}
}

// Export writes every non-deleted question with its answers and returns the
// number of records written.
func (s *Service) Export(ctx context.Context, w io.Writer, f Format) (int, error) {
	questions, err := s.store.ListQuestions(ctx, quiz.QuestionFilter{ActiveOnly: true})
	if err != nil {
		return 0, fmt.Errorf("transfer: list questions: %w", err)
	}
	answers, err := s.store.ListAnswers(ctx, quiz.AnswerFilter{})
	if err != nil {
		return 0, fmt.Errorf("transfer: list answers: %w", err)
	}
	byQuestion := map[int64][]quiz.Answer{}
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	records := make([]Record, 0, len(questions))
	for _, q := range questions {
		records = append(records, toRecord(q, byQuestion[q.ID]))
	}
	if err := encode(w, f, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Import saves each record through the validated save pipeline. A failing
// record is logged and reported; later records are still imported.
func (s *Service) Import(ctx context.Context, r io.Reader, f Format) (Report, error) {
	records, err := decode(r, f)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for i, rec := range records {
		q, answers, err := fromRecord(rec)
		if err == nil {
			_, err = s.quiz.SaveQuestion(ctx, q, answers)
		}
		if err != nil {
			fail := Failure{Index: i, Text: rec.Text, Errors: messages(err)}
			s.log.Warn("import record failed", "index", i, "text", rec.Text, "errors", fail.Errors)
			rep.Failures = append(rep.Failures, fail)
			continue
		}
		rep.Imported++
	}
	s.log.Info("import finished", "imported", rep.Imported, "failed", len(rep.Failures))
	return rep, nil
}

func toRecord(q quiz.Question, answers []quiz.Answer) Record {
	rec := Record{
		Text:    q.Text,
		Points:  q.Points,
		Type:    string(q.Type),
		Header1: q.Header1,
		Header2: q.Header2,
		Answers: make([]AnswerRecord, 0, len(answers)),
	}
	for _, a := range answers {
		rec.Answers = append(rec.Answers, AnswerRecord{Text: a.Text, IsCorrect: a.IsCorrect, CanReorder: a.CanReorder})
	}
	return rec
}

func fromRecord(rec Record) (quiz.Question, []quiz.Answer, error) {
	typ, err := quiz.ParseQuestionType(rec.Type)
	if err != nil {
		return quiz.Question{}, nil, err
	}
	q := quiz.Question{
		Text:    rec.Text,
		Points:  rec.Points,
		Type:    typ,
		Header1: rec.Header1,
		Header2: rec.Header2,
	}
	answers := make([]quiz.Answer, 0, len(rec.Answers))
	for _, a := range rec.Answers {
		answers = append(answers, quiz.Answer{Text: a.Text, IsCorrect: a.IsCorrect, CanReorder: a.CanReorder})
	}
	return q, answers, nil
}

func messages(err error) []string {
	var verr *quiz.ValidationError
	if errors.As(err, &verr) {
		return verr.Violations
	}
	return []string{err.Error()}
}

func encode(w io.Writer, f Format, records []Record) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("transfer: encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("transfer: encode json: %w", err)
		}
		return nil
	}
}

func decode(r io.Reader, f Format) ([]Record, error) {
	var records []Record
	switch f {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("transfer: decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("transfer: decode json: %w", err)
		}
	}
	return records, nil
}
