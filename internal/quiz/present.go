package quiz

import (
	"context"
	"strings"
)

// PresentAnswers loads the answers of a question in a fresh random order.
// Reorderable answers get their segments shuffled too. The returned values
// are copies; stored records are untouched.
func (s *Service) PresentAnswers(ctx context.Context, questionID int64) ([]Answer, error) {
	answers, err := s.store.ListAnswers(ctx, AnswerFilter{QuestionID: questionID})
	if err != nil {
		s.log.Error("list answers failed", "question_id", questionID, "error", err)
		return nil, storageErr("list answers", err)
	}
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}
	return arrange(s.rnd, answers), nil
}

func arrange(r Rand, answers []Answer) []Answer {
	out := make([]Answer, len(answers))
	copy(out, answers)
	Shuffle(r, out)
	for i := range out {
		if out[i].CanReorder {
			out[i].Text = shuffleSegments(r, out[i].Text)
		}
	}
	return out
}

func shuffleSegments(r Rand, text string) string {
	segs := Segments(text)
	Shuffle(r, segs)
	return strings.Join(segs, reorderJoin)
}
