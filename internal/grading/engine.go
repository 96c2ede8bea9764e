package grading

import (
	"context"
	"errors"
)

// Q is a minimal view of a question needed for grading. AnswerKey holds the
// keys of the correct answers; for matching questions these are the rows
// that belong in the first column.
type Q struct {
	Type      string
	Points    float64
	AnswerKey []string
}

// Result is the outcome of grading a single question response.
type Result struct {
	AutoPoints float64  `json:"auto_points"`
	MaxPoints  float64  `json:"max_points"`
	Feedback   []string `json:"feedback,omitempty"`
}

// Correct reports whether the response earned full credit.
func (r Result) Correct() bool {
	return r.MaxPoints > 0 && r.AutoPoints >= r.MaxPoints
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

var ErrUnknownType = errors.New("grading: no strategy for question type")

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response interface{}) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points}, ErrUnknownType
	}
	return s.Grade(ctx, q, response)
}

// Engine options

type Option func(*config)

type config struct {
	AllowPartialMulti bool // partial credit for multi_select without false positives
}

func WithPartialMulti(b bool) Option { return func(c *config) { c.AllowPartialMulti = b } }

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{
		strategies: map[string]Strategy{
			"single_choice": singleChoiceStrategy{},
			"multi_select":  multiSelectStrategy{allowPartial: cfg.AllowPartialMulti},
			"matching":      matchingStrategy{},
		},
	}
}

// --- Strategies ---

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	var resp string
	switch v := response.(type) {
	case string:
		resp = v
	default:
		arr, ok := toStringSlice(response)
		if !ok {
			return res, errors.New("response must be string")
		}
		if len(arr) != 1 {
			res.Feedback = append(res.Feedback, "exactly one answer expected")
			return res, nil
		}
		resp = arr[0]
	}
	for _, k := range q.AnswerKey {
		if resp == k {
			res.AutoPoints = q.Points
			return res, nil
		}
	}
	return res, nil
}

type multiSelectStrategy struct{ allowPartial bool }

func (s multiSelectStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	respSlice, ok := toStringSlice(response)
	if !ok {
		return res, errors.New("response must be []string")
	}
	correct := toSet(q.AnswerKey)
	resp := toSet(respSlice)

	if setEqual(correct, resp) {
		res.AutoPoints = q.Points
		return res, nil
	}
	hasFalsePositive := false
	for r := range resp {
		if _, ok := correct[r]; !ok {
			hasFalsePositive = true
			break
		}
	}
	if s.allowPartial && !hasFalsePositive && len(correct) > 0 {
		inter := 0
		for k := range resp {
			if _, ok := correct[k]; ok {
				inter++
			}
		}
		res.AutoPoints = q.Points * (float64(inter) / float64(len(correct)))
		res.Feedback = append(res.Feedback, "partial credit")
	}
	return res, nil
}

// matchingStrategy expects the rows the learner placed in the first column.
// Every row is either in it or in the second one, so only an exact match
// earns credit.
type matchingStrategy struct{}

func (matchingStrategy) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	respSlice, ok := toStringSlice(response)
	if !ok {
		return res, errors.New("response must be []string")
	}
	if setEqual(toSet(q.AnswerKey), toSet(respSlice)) {
		res.AutoPoints = q.Points
	}
	return res, nil
}

// helpers

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
