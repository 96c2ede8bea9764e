package quiz

import (
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	TypeSingleChoice QuestionType = "single_choice"
	TypeMultiSelect  QuestionType = "multi_select"
	TypeMatching     QuestionType = "matching" // two columns, rows with is_correct belong to header1
)

// ParseQuestionType accepts the canonical snake_case names as well as the
// CamelCase names used by older export files.
func ParseQuestionType(s string) (QuestionType, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "singlechoice":
		return TypeSingleChoice, nil
	case "multiselect":
		return TypeMultiSelect, nil
	case "matching":
		return TypeMatching, nil
	}
	return "", fmt.Errorf("quiz: unknown question type %q", s)
}

type Question struct {
	ID              int64        `json:"id"`
	Text            string       `json:"text"`
	Points          int          `json:"points"`
	Type            QuestionType `json:"type"`
	LastAskedAt     *time.Time   `json:"last_asked_at,omitempty"`
	IncorrectCount  int          `json:"incorrect_count"`
	LastIncorrectAt *time.Time   `json:"last_incorrect_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	IsDeleted       bool         `json:"is_deleted"`

	// Column labels, only meaningful for TypeMatching.
	Header1 string `json:"header1,omitempty"`
	Header2 string `json:"header2,omitempty"`
}

type Answer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
	CanReorder bool      `json:"can_reorder"` // Text holds "/"-separated segments shuffled on display
	CreatedAt  time.Time `json:"created_at"`
}

// ReorderSeparator splits a reorderable answer into its segments.
const ReorderSeparator = "/"

// reorderJoin is placed between segments when a reorderable answer is shown.
const reorderJoin = " / "

// Segments splits a reorderable answer text on "/" and trims each part.
func Segments(text string) []string {
	parts := strings.Split(text, ReorderSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
