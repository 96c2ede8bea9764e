package quiz

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestSaveQuestionStampsAndLinks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, WithClock(fixedClock(t0)))

	q, a := singleChoice("capital of France")
	saved := mustSave(t, svc, q, a)
	if saved.ID == 0 || !saved.CreatedAt.Equal(t0) {
		t.Fatalf("saved = %+v", saved)
	}

	answers, err := store.ListAnswers(ctx, AnswerFilter{QuestionID: saved.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	for _, ans := range answers {
		if ans.QuestionID != saved.ID || !ans.CreatedAt.Equal(t0) {
			t.Fatalf("answer not linked/stamped: %+v", ans)
		}
	}
}

func TestSaveQuestionValidationHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)

	q := Question{Text: "pair", Points: 3, Type: TypeMatching, Header2: "no"}
	_, err := svc.SaveQuestion(ctx, q, []Answer{{Text: "x", IsCorrect: true}, {Text: "y"}})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !slices.Contains(verr.Violations, MsgMatchingHeaders) {
		t.Fatalf("violations = %v", verr.Violations)
	}
	if n, _ := store.CountQuestions(ctx, QuestionFilter{}); n != 0 {
		t.Fatalf("expected nothing stored, got %d questions", n)
	}
}

func TestSaveQuestionWithoutTxLeavesPartialInserts(t *testing.T) {
	ctx := context.Background()
	store := &faultyStore{MemoryStore: NewMemoryStore(), failAnswerInsert: 2}
	svc := NewService(store)

	q, a := singleChoice("partial")
	saved, err := svc.SaveQuestion(ctx, q, a)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if saved.ID != 0 {
		t.Fatalf("failed save returned id %d", saved.ID)
	}
	// No transaction on the memory store: the question and first answer stay.
	if n, _ := store.CountQuestions(ctx, QuestionFilter{}); n != 1 {
		t.Fatalf("expected the question insert to remain, got %d", n)
	}
	if as, _ := store.ListAnswers(ctx, AnswerFilter{}); len(as) != 1 {
		t.Fatalf("expected one answer to remain, got %d", len(as))
	}
}

func TestRecordIncorrectTwice(t *testing.T) {
	ctx := context.Background()
	clock := stepClock()
	svc := NewService(NewMemoryStore(), WithClock(clock))
	q, a := singleChoice("twice")
	saved := mustSave(t, svc, q, a) // t0

	if _, err := svc.RecordIncorrect(ctx, saved.ID); err != nil { // t0+1m
		t.Fatal(err)
	}
	got, err := svc.RecordIncorrect(ctx, saved.ID) // t0+2m
	if err != nil {
		t.Fatal(err)
	}
	if got.IncorrectCount != 2 {
		t.Fatalf("IncorrectCount = %d, want 2", got.IncorrectCount)
	}
	want := t0.Add(2 * time.Minute)
	if got.LastIncorrectAt == nil || !got.LastIncorrectAt.Equal(want) {
		t.Fatalf("LastIncorrectAt = %v, want %v", got.LastIncorrectAt, want)
	}
}

func TestRecordIncorrectNotFound(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if _, err := svc.RecordIncorrect(context.Background(), 12); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.SoftDelete(context.Background(), 12); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordIncorrectStorageFailure(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	saved := seedBank(t, mem, 1)[0]
	svc := NewService(&faultyStore{MemoryStore: mem, failUpdate: errors.New("read-only")})
	if _, err := svc.RecordIncorrect(ctx, saved.ID); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestSoftDeleteHidesFromReports(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	qs := seedBank(t, store, 3)

	for i, q := range qs {
		for n := 0; n <= i; n++ {
			if _, err := svc.RecordIncorrect(ctx, q.ID); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := svc.SoftDelete(ctx, qs[2].ID); err != nil {
		t.Fatal(err)
	}

	n, err := svc.CountActiveQuestions(ctx)
	if err != nil || n != 2 {
		t.Fatalf("CountActiveQuestions = %d, %v", n, err)
	}
	worst, err := svc.MostIncorrect(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(worst) != 2 || worst[0].ID != qs[1].ID || worst[1].ID != qs[0].ID {
		t.Fatalf("MostIncorrect = %+v", worst)
	}
	if answers, _ := store.ListAnswers(ctx, AnswerFilter{QuestionID: qs[2].ID}); len(answers) != 2 {
		t.Fatalf("soft delete touched answers")
	}
}

func TestMostIncorrectSkipsNeverWrong(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	qs := seedBank(t, store, 3)
	if _, err := svc.RecordIncorrect(ctx, qs[1].ID); err != nil {
		t.Fatal(err)
	}
	worst, err := svc.MostIncorrect(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(worst) != 1 || worst[0].ID != qs[1].ID {
		t.Fatalf("MostIncorrect = %+v", worst)
	}
}

func TestSubmitRecordsOnlyWrongResponses(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	q, a := singleChoice("capital")
	saved := mustSave(t, svc, q, a)
	answers, _ := store.ListAnswers(ctx, AnswerFilter{QuestionID: saved.ID})

	var right, wrong int64
	for _, ans := range answers {
		if ans.IsCorrect {
			right = ans.ID
		} else {
			wrong = ans.ID
		}
	}

	out, err := svc.Submit(ctx, saved.ID, []int64{right})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Correct || out.Incorrect != 0 || out.Result.AutoPoints != 5 {
		t.Fatalf("correct submit = %+v", out)
	}

	out, err = svc.Submit(ctx, saved.ID, []int64{wrong})
	if err != nil {
		t.Fatal(err)
	}
	if out.Correct || out.Incorrect != 1 {
		t.Fatalf("wrong submit = %+v", out)
	}
}

func TestSubmitMatchingComparesFirstColumn(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	saved := mustSave(t, svc, Question{Text: "true or false", Points: 2, Type: TypeMatching, Header1: "true", Header2: "false"},
		[]Answer{{Text: "water is wet", IsCorrect: true}, {Text: "fire is cold"}, {Text: "ice is cold", IsCorrect: true}})
	answers, _ := store.ListAnswers(ctx, AnswerFilter{QuestionID: saved.ID})

	out, err := svc.Submit(ctx, saved.ID, []int64{answers[0].ID, answers[2].ID})
	if err != nil || !out.Correct {
		t.Fatalf("exact column = %+v, %v", out, err)
	}
	out, err = svc.Submit(ctx, saved.ID, []int64{answers[0].ID})
	if err != nil || out.Correct {
		t.Fatalf("missing row = %+v, %v", out, err)
	}
}

func TestEndToEndSingleChoice(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)

	saved, err := svc.SaveQuestion(ctx,
		Question{Text: "Capital of France?", Points: 5, Type: TypeSingleChoice},
		[]Answer{{Text: "Paris", IsCorrect: true}, {Text: "Lyon"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	sel := svc.NewSelector(NewSeededRand(11))
	picked, err := sel.Next(ctx)
	if err != nil || picked.ID != saved.ID {
		t.Fatalf("next = %+v, %v", picked, err)
	}

	shown, err := svc.PresentAnswers(ctx, picked.ID)
	if err != nil {
		t.Fatal(err)
	}
	texts := []string{shown[0].Text, shown[1].Text}
	slices.Sort(texts)
	if !slices.Equal(texts, []string{"Lyon", "Paris"}) {
		t.Fatalf("answers = %v", texts)
	}

	got, err := svc.RecordIncorrect(ctx, picked.ID)
	if err != nil || got.IncorrectCount != 1 {
		t.Fatalf("record = %+v, %v", got, err)
	}
}

func TestRecordIncorrectConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	q := seedBank(t, store, 1)[0]

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordIncorrect(ctx, q.ID); err != nil {
				t.Errorf("record: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.GetQuestion(ctx, q.ID)
	if got.IncorrectCount != n {
		t.Fatalf("IncorrectCount = %d, want %d", got.IncorrectCount, n)
	}
}

func TestSoftDeleteKeepsCounters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, WithClock(fixedClock(t0)))
	q := seedBank(t, store, 1)[0]
	if _, err := svc.RecordIncorrect(ctx, q.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.SoftDelete(ctx, q.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetQuestion(ctx, q.ID)
	if !got.IsDeleted || got.IncorrectCount != 1 || got.LastIncorrectAt == nil || !got.LastIncorrectAt.Equal(t0) {
		t.Fatalf("after soft delete = %+v", got)
	}
}
