package studify

import (
	"strings"
	"time"
)

// User is the signed-in account. Auth is mocked: no credentials are
// validated and the record is simply overwritten on each sign-in.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Difficulty is a quiz configuration parameter, stored verbatim in results.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty maps free-form input to a Difficulty, defaulting to Medium.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// QuizQuestion is a single multiple-choice question. Immutable once
// generated. Invariant: 0 <= CorrectOptionIndex < len(Options).
type QuizQuestion struct {
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Explanation        string   `json:"explanation"`
}

// Valid reports whether the question satisfies the structural invariants.
func (q QuizQuestion) Valid() bool {
	return len(q.Options) >= 2 && q.CorrectOptionIndex >= 0 && q.CorrectOptionIndex < len(q.Options)
}

// QuizResult is the outcome of one completed quiz attempt. Created exactly
// once at quiz completion and never mutated.
type QuizResult struct {
	ID             string     `json:"id"`
	Subject        string     `json:"subject"`
	Difficulty     Difficulty `json:"difficulty"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Date           time.Time  `json:"date"`
}

// EssayResult is the outcome of one analyzed essay. Score is 0-100.
type EssayResult struct {
	ID       string    `json:"id"`
	Topic    string    `json:"topic"`
	Content  string    `json:"content"`
	Feedback string    `json:"feedback"`
	Score    int       `json:"score"`
	Date     time.Time `json:"date"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn in a chat transcript. Transcripts are append-only;
// messages are never edited or deleted within a session.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// EssayReview is the completion service's verdict on an essay.
type EssayReview struct {
	Feedback string `json:"feedback"`
	Score    int    `json:"score"`
}
