package studify

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuizStep is a state of the quiz session lifecycle.
type QuizStep string

const (
	StepConfig  QuizStep = "config"
	StepLoading QuizStep = "loading"
	StepPlaying QuizStep = "playing"
	StepResult  QuizStep = "result"
)

// Unanswered marks a question slot with no recorded answer.
const Unanswered = -1

// DefaultQuestionCount is the number of questions requested per quiz.
const DefaultQuestionCount = 5

// QuizGenerator produces the questions for one quiz attempt.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, subject string, difficulty Difficulty, count int) ([]QuizQuestion, error)
}

// QuizHistoryWriter persists a completed quiz result.
type QuizHistoryWriter interface {
	AppendQuizResult(result QuizResult) error
}

// QuizSession drives one quiz attempt through
// config -> loading -> playing -> result, with Reset back to config. It is
// owned by a single view and is not safe for concurrent use.
type QuizSession struct {
	gen     QuizGenerator
	history QuizHistoryWriter
	log     *zap.Logger

	step            QuizStep
	subject         string
	difficulty      Difficulty
	questions       []QuizQuestion
	currentIndex    int
	answers         []int
	showExplanation bool
	result          QuizResult
}

// NewQuizSession creates a session in the config step.
func NewQuizSession(gen QuizGenerator, history QuizHistoryWriter, log *zap.Logger) *QuizSession {
	return &QuizSession{
		gen:     gen,
		history: history,
		log:     log,
		step:    StepConfig,
	}
}

// Start validates the configuration, generates the questions and enters the
// playing step. On any failure the session returns to config with no partial
// state retained.
func (q *QuizSession) Start(ctx context.Context, subject string, difficulty Difficulty) error {
	if q.step != StepConfig {
		return fmt.Errorf("%w: cannot start from step %s", ErrInvalidState, q.step)
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return fmt.Errorf("%w: subject is required", ErrGeneration)
	}
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	q.step = StepLoading
	questions, err := q.gen.GenerateQuiz(ctx, subject, difficulty, DefaultQuestionCount)
	if err != nil {
		q.step = StepConfig
		if q.log != nil {
			q.log.Error("quiz generation failed", zap.String("subject", subject), zap.Error(err))
		}
		return err
	}
	if len(questions) == 0 {
		// The completion client reports an empty payload as success; a
		// quiz with no questions is still unplayable, so starting fails.
		q.step = StepConfig
		return fmt.Errorf("%w: service returned no questions", ErrGeneration)
	}

	q.subject = subject
	q.difficulty = difficulty
	q.questions = questions
	q.currentIndex = 0
	q.answers = make([]int, len(questions))
	for i := range q.answers {
		q.answers[i] = Unanswered
	}
	q.showExplanation = false
	q.step = StepPlaying

	if q.log != nil {
		q.log.Info("quiz started",
			zap.String("subject", subject),
			zap.String("difficulty", string(difficulty)),
			zap.Int("questions", len(questions)))
	}
	return nil
}

// Answer records the choice for the current question and reveals its
// explanation. Once a question is answered further calls are no-ops: the
// first recorded answer stands.
func (q *QuizSession) Answer(optionIndex int) error {
	if q.step != StepPlaying {
		return fmt.Errorf("%w: cannot answer in step %s", ErrInvalidState, q.step)
	}
	if q.answers[q.currentIndex] != Unanswered {
		return nil
	}
	if optionIndex < 0 || optionIndex >= len(q.questions[q.currentIndex].Options) {
		return fmt.Errorf("invalid option index %d", optionIndex)
	}
	q.answers[q.currentIndex] = optionIndex
	q.showExplanation = true
	return nil
}

// Advance moves to the next question, or on the last question scores the
// quiz, persists the result exactly once and enters the result step. If the
// history write fails the session stays in playing so the user can retry.
func (q *QuizSession) Advance() error {
	if q.step != StepPlaying {
		return fmt.Errorf("%w: cannot advance in step %s", ErrInvalidState, q.step)
	}
	if q.currentIndex < len(q.questions)-1 {
		q.currentIndex++
		q.showExplanation = false
		return nil
	}

	result := QuizResult{
		ID:             uuid.NewString(),
		Subject:        q.subject,
		Difficulty:     q.difficulty,
		Score:          q.Score(),
		TotalQuestions: len(q.questions),
		Date:           time.Now(),
	}
	if err := q.history.AppendQuizResult(result); err != nil {
		return fmt.Errorf("failed to save quiz result: %w", err)
	}

	q.result = result
	q.step = StepResult

	if q.log != nil {
		q.log.Info("quiz finished",
			zap.String("subject", q.subject),
			zap.Int("score", result.Score),
			zap.Int("total", result.TotalQuestions))
	}
	return nil
}

// Reset clears all transient state and returns to the config step.
func (q *QuizSession) Reset() {
	q.step = StepConfig
	q.subject = ""
	q.difficulty = ""
	q.questions = nil
	q.currentIndex = 0
	q.answers = nil
	q.showExplanation = false
	q.result = QuizResult{}
}

// Step returns the current lifecycle step.
func (q *QuizSession) Step() QuizStep { return q.step }

// Subject returns the configured subject.
func (q *QuizSession) Subject() string { return q.subject }

// Difficulty returns the configured difficulty.
func (q *QuizSession) Difficulty() Difficulty { return q.difficulty }

// Questions returns the generated questions.
func (q *QuizSession) Questions() []QuizQuestion { return q.questions }

// CurrentIndex returns the index of the question being played.
func (q *QuizSession) CurrentIndex() int { return q.currentIndex }

// CurrentQuestion returns the question being played, when there is one.
func (q *QuizSession) CurrentQuestion() (QuizQuestion, bool) {
	if q.step != StepPlaying {
		return QuizQuestion{}, false
	}
	return q.questions[q.currentIndex], true
}

// Answers returns a copy of the recorded answers, Unanswered where no choice
// was made.
func (q *QuizSession) Answers() []int {
	out := make([]int, len(q.answers))
	copy(out, q.answers)
	return out
}

// ShowExplanation reports whether the current question's explanation is
// revealed.
func (q *QuizSession) ShowExplanation() bool { return q.showExplanation }

// Score counts the questions whose recorded answer matches the correct
// option.
func (q *QuizSession) Score() int {
	score := 0
	for i, answer := range q.answers {
		if answer == q.questions[i].CorrectOptionIndex {
			score++
		}
	}
	return score
}

// Percentage returns the rounded score percentage, 0 for an empty quiz.
func (q *QuizSession) Percentage() int {
	if len(q.questions) == 0 {
		return 0
	}
	return int(math.Round(float64(q.Score()) / float64(len(q.questions)) * 100))
}

// Result returns the persisted quiz result once the session reached the
// result step.
func (q *QuizSession) Result() (QuizResult, bool) {
	if q.step != StepResult {
		return QuizResult{}, false
	}
	return q.result, true
}
