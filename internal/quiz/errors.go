package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Use errors.Is to check: errors.Is(err, quiz.ErrNotFound)
var (
	ErrNotFound            = errors.New("quiz: question not found")
	ErrNoEligibleQuestions = errors.New("quiz: no eligible questions")
	ErrNoAnswers           = errors.New("quiz: no answers")
	ErrStorage             = errors.New("quiz: storage failure")
)

// ValidationError lists every rule a question failed. Nothing was persisted.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "quiz: invalid question: " + strings.Join(e.Violations, "; ")
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// IsEmptyResult reports whether err is one of the normal "nothing left" outcomes.
func IsEmptyResult(err error) bool {
	return errors.Is(err, ErrNoEligibleQuestions) || errors.Is(err, ErrNoAnswers)
}
