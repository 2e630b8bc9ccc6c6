package studify

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestQuizHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)

	result := QuizResult{
		ID:             "q1",
		Subject:        "Photosynthesis",
		Difficulty:     DifficultyMedium,
		Score:          3,
		TotalQuestions: 5,
		Date:           time.Now().UTC(),
	}
	if err := store.AppendQuizResult(result); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	history, err := store.QuizHistory()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
	got := history[0]
	if got.ID != result.ID || got.Subject != result.Subject || got.Difficulty != result.Difficulty ||
		got.Score != result.Score || got.TotalQuestions != result.TotalQuestions {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, result)
	}
	if !got.Date.Equal(result.Date) {
		t.Fatalf("date mismatch: got %v, want %v", got.Date, result.Date)
	}
}

func TestQuizHistoryNewestFirst(t *testing.T) {
	store := newTestStore(t)

	for i, subject := range []string{"first", "second", "third"} {
		err := store.AppendQuizResult(QuizResult{
			ID:             subject,
			Subject:        subject,
			Difficulty:     DifficultyEasy,
			Score:          i,
			TotalQuestions: 5,
			Date:           time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	history, err := store.QuizHistory()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	for i, want := range []string{"third", "second", "first"} {
		if history[i].Subject != want {
			t.Fatalf("position %d: got %s, want %s", i, history[i].Subject, want)
		}
	}
}

func TestEssayHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)

	result := EssayResult{
		ID:       "e1",
		Topic:    "Technology",
		Content:  "short essay",
		Feedback: "## Feedback\nSolid work.",
		Score:    72,
		Date:     time.Now().UTC(),
	}
	if err := store.AppendEssayResult(result); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	history, err := store.EssayHistory()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
	got := history[0]
	if got.ID != result.ID || got.Topic != result.Topic || got.Content != result.Content ||
		got.Feedback != result.Feedback || got.Score != result.Score {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, result)
	}
}

func TestMissingKeysReadEmpty(t *testing.T) {
	store := newTestStore(t)

	quizzes, err := store.QuizHistory()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(quizzes) != 0 {
		t.Fatalf("expected empty quiz history, got %d", len(quizzes))
	}

	essays, err := store.EssayHistory()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(essays) != 0 {
		t.Fatalf("expected empty essay history, got %d", len(essays))
	}

	user, err := store.CurrentUser()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected no user, got %+v", user)
	}
}

func TestCorruptValueReadsAsEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)",
		keyQuizHistory, "{not json")
	if err != nil {
		t.Fatalf("failed to plant corrupt value: %v", err)
	}

	history, err := store.QuizHistory()
	if err != nil {
		t.Fatalf("corrupt value must not error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d", len(history))
	}

	// Appending on top of the corrupt value starts a fresh list.
	if err := store.AppendQuizResult(QuizResult{ID: "q1", TotalQuestions: 5}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	history, err = store.QuizHistory()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
}

func TestTruncatedHistoryReadsAsEmpty(t *testing.T) {
	store := newTestStore(t)

	// A valid leading element followed by a syntax error. The decoded
	// prefix must not leak through as a partial history.
	truncated := `[{"id":"q1","subject":"Math","difficulty":"Easy","score":1,"totalQuestions":2,"date":"2026-01-01T00:00:00Z"},{"id":`
	_, err := store.db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)",
		keyQuizHistory, truncated)
	if err != nil {
		t.Fatalf("failed to plant truncated value: %v", err)
	}

	history, err := store.QuizHistory()
	if err != nil {
		t.Fatalf("truncated value must not error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}

func TestUserSlotOverwriteAndClear(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveUser(User{ID: "user_123", Email: "a@example.com", Name: "a"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.SaveUser(User{ID: "user_456", Email: "b@example.com", Name: "b"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	user, err := store.CurrentUser()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if user == nil || user.ID != "user_456" {
		t.Fatalf("expected overwritten user, got %+v", user)
	}

	if err := store.ClearUser(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	user, err = store.CurrentUser()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected no user after clear, got %+v", user)
	}
}

func TestRemoveMissingKeyIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	if err := store.Remove("studify_never_set"); err != nil {
		t.Fatalf("remove of absent key failed: %v", err)
	}
}
