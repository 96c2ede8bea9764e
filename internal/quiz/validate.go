package quiz

import (
	"fmt"
	"strings"
)

const (
	MsgPoints           = "a question must award at least one point"
	MsgTooFewAnswers    = "a question must have at least two answers"
	MsgSingleChoice     = "a single-choice question must have exactly one correct answer"
	MsgMultiSelect      = "a multi-select question must have at least two correct answers"
	MsgMatchingHeaders  = "a matching question needs both column headers"
	MsgQuestionText     = "a question must have text"
	MsgAnswerText       = "every answer must have text"
	msgReorderSegmentsF = "answer %q is reorderable but has fewer than two '/'-separated segments"
)

// Validate checks q and its answers against the structural rules and returns
// every violation found. An empty result means q may be saved.
func Validate(q Question, answers []Answer) []string {
	var msg []string

	if q.Points <= 0 {
		msg = append(msg, MsgPoints)
	}
	if len(answers) < 2 {
		msg = append(msg, MsgTooFewAnswers)
	}

	switch q.Type {
	case TypeSingleChoice:
		if countCorrect(answers) != 1 {
			msg = append(msg, MsgSingleChoice)
		}
	case TypeMultiSelect:
		if countCorrect(answers) < 2 {
			msg = append(msg, MsgMultiSelect)
		}
	case TypeMatching:
		if strings.TrimSpace(q.Header1) == "" || strings.TrimSpace(q.Header2) == "" {
			msg = append(msg, MsgMatchingHeaders)
		}
	default:
		msg = append(msg, fmt.Sprintf("unknown question type %q", q.Type))
	}

	// Only the first offending reorderable answer is reported.
	for _, a := range answers {
		if a.CanReorder && !hasSegments(a.Text) {
			msg = append(msg, fmt.Sprintf(msgReorderSegmentsF, a.Text))
			break
		}
	}

	if strings.TrimSpace(q.Text) == "" {
		msg = append(msg, MsgQuestionText)
	}
	for _, a := range answers {
		if strings.TrimSpace(a.Text) == "" {
			msg = append(msg, MsgAnswerText)
			break
		}
	}
	return msg
}

func countCorrect(answers []Answer) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

func hasSegments(text string) bool {
	segs := Segments(text)
	if len(segs) < 2 {
		return false
	}
	for _, s := range segs {
		if s == "" {
			return false
		}
	}
	return true
}
