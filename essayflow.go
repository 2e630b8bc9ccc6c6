package studify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EssayStep is a state of the essay review flow.
type EssayStep string

const (
	EssayStepIdle    EssayStep = "idle"
	EssayStepLoading EssayStep = "loading"
	EssayStepResult  EssayStep = "result"
)

// EssayAnalyzer produces a review for one essay.
type EssayAnalyzer interface {
	AnalyzeEssay(ctx context.Context, topic, content string) (EssayReview, error)
}

// EssayHistoryWriter persists an essay result.
type EssayHistoryWriter interface {
	AppendEssayResult(result EssayResult) error
}

// EssayFlow is the single-shot essay review: idle -> loading -> result, back
// to idle on reset or failure. Owned by a single view; not safe for
// concurrent use.
type EssayFlow struct {
	analyzer EssayAnalyzer
	history  EssayHistoryWriter
	log      *zap.Logger

	step   EssayStep
	result EssayResult
}

// NewEssayFlow creates a flow in the idle step.
func NewEssayFlow(analyzer EssayAnalyzer, history EssayHistoryWriter, log *zap.Logger) *EssayFlow {
	return &EssayFlow{
		analyzer: analyzer,
		history:  history,
		log:      log,
		step:     EssayStepIdle,
	}
}

// Analyze submits the essay for review and, on success, persists the result
// exactly once and enters the result step. On failure the flow returns to
// idle without persisting anything.
func (e *EssayFlow) Analyze(ctx context.Context, topic, content string) error {
	if e.step == EssayStepLoading {
		return fmt.Errorf("%w: analysis already in flight", ErrInvalidState)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" || strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: topic and content are required", ErrAnalysis)
	}

	e.step = EssayStepLoading
	review, err := e.analyzer.AnalyzeEssay(ctx, topic, content)
	if err != nil {
		e.step = EssayStepIdle
		if e.log != nil {
			e.log.Error("essay analysis failed", zap.String("topic", topic), zap.Error(err))
		}
		return err
	}

	result := EssayResult{
		ID:       uuid.NewString(),
		Topic:    topic,
		Content:  content,
		Feedback: review.Feedback,
		Score:    review.Score,
		Date:     time.Now(),
	}
	if err := e.history.AppendEssayResult(result); err != nil {
		e.step = EssayStepIdle
		return fmt.Errorf("failed to save essay result: %w", err)
	}

	e.result = result
	e.step = EssayStepResult

	if e.log != nil {
		e.log.Info("essay analyzed", zap.String("topic", topic), zap.Int("score", review.Score))
	}
	return nil
}

// Reset discards the transient result and returns to idle.
func (e *EssayFlow) Reset() {
	e.step = EssayStepIdle
	e.result = EssayResult{}
}

// Step returns the current flow step.
func (e *EssayFlow) Step() EssayStep { return e.step }

// Result returns the persisted essay result once the flow reached the result
// step.
func (e *EssayFlow) Result() (EssayResult, bool) {
	if e.step != EssayStepResult {
		return EssayResult{}, false
	}
	return e.result, true
}

// ScoreTier buckets an essay score for presentation: green above 80, yellow
// above 60, red otherwise.
func ScoreTier(score int) string {
	switch {
	case score > 80:
		return "green"
	case score > 60:
		return "yellow"
	default:
		return "red"
	}
}
