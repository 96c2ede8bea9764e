package quiz

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestShuffleIsPermutation(t *testing.T) {
	r := NewSeededRand(1)
	for i := 0; i < 50; i++ {
		xs := []int{1, 2, 3, 4, 5}
		Shuffle(r, xs)
		sorted := slices.Clone(xs)
		slices.Sort(sorted)
		if !slices.Equal(sorted, []int{1, 2, 3, 4, 5}) {
			t.Fatalf("not a permutation: %v", xs)
		}
	}
}

func TestPresentAnswersReordersSegments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, WithRand(NewSeededRand(42)))
	q := mustSave(t, svc, Question{Text: "order", Points: 1, Type: TypeSingleChoice}, []Answer{
		{Text: "A/B/C", IsCorrect: true, CanReorder: true},
		{Text: "D"},
	})

	orders := map[string]bool{}
	for i := 0; i < 100; i++ {
		got, err := svc.PresentAnswers(ctx, q.ID)
		if err != nil {
			t.Fatalf("present: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 answers, got %d", len(got))
		}
		for _, a := range got {
			if !a.CanReorder {
				continue
			}
			segs := strings.Split(a.Text, " / ")
			if len(segs) != 3 {
				t.Fatalf("expected 3 segments in %q", a.Text)
			}
			sorted := slices.Clone(segs)
			slices.Sort(sorted)
			if !slices.Equal(sorted, []string{"A", "B", "C"}) {
				t.Fatalf("segments changed: %q", a.Text)
			}
			orders[a.Text] = true
		}
	}
	if len(orders) < 2 {
		t.Fatalf("segments never reshuffled: %v", orders)
	}

	stored, _ := store.ListAnswers(ctx, AnswerFilter{QuestionID: q.ID})
	if stored[0].Text != "A/B/C" {
		t.Fatalf("stored answer mutated: %q", stored[0].Text)
	}
}

func TestPresentAnswersShufflesOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), WithRand(NewSeededRand(3)))
	q, a := singleChoice("capital")
	saved := mustSave(t, svc, q, a)

	firsts := map[string]bool{}
	for i := 0; i < 100; i++ {
		got, err := svc.PresentAnswers(ctx, saved.ID)
		if err != nil {
			t.Fatal(err)
		}
		firsts[got[0].Text] = true
	}
	if !firsts["Paris"] || !firsts["Lyon"] {
		t.Fatalf("expected both orders over 100 draws, got %v", firsts)
	}
}

func TestPresentAnswersEmpty(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if _, err := svc.PresentAnswers(context.Background(), 99); !errors.Is(err, ErrNoAnswers) {
		t.Fatalf("expected ErrNoAnswers, got %v", err)
	}
}
