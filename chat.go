package studify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatGreeting opens every transcript.
const ChatGreeting = "Hi! I am your Studify AI tutor. What are you studying today?"

// ChatFallback replaces the model reply when a turn fails. Chat failures are
// absorbed into the transcript, never returned to the caller.
const ChatFallback = "I'm having trouble connecting right now. Please check your API configuration."

// ChatBackend is the stateful service session a transcript forwards turns
// to. *ChatSession implements it.
type ChatBackend interface {
	SendMessage(ctx context.Context, text string) (string, error)
}

// ChatTranscript is the ordered, append-only message list of one chat view.
// It is not persisted across sessions. Not safe for concurrent use.
type ChatTranscript struct {
	backend  ChatBackend
	log      *zap.Logger
	messages []ChatMessage
}

// NewChatTranscript creates a transcript seeded with the model greeting and
// bound to the given session handle.
func NewChatTranscript(backend ChatBackend, log *zap.Logger) *ChatTranscript {
	return &ChatTranscript{
		backend: backend,
		log:     log,
		messages: []ChatMessage{
			{
				ID:        uuid.NewString(),
				Role:      RoleModel,
				Text:      ChatGreeting,
				Timestamp: time.Now(),
			},
		},
	}
}

// Send appends the user message immediately, forwards it to the backend and
// appends the reply. A backend failure appends the fixed fallback model
// message instead and still returns nil.
func (t *ChatTranscript) Send(ctx context.Context, text string) error {
	if t.backend == nil {
		return fmt.Errorf("%w: no chat session attached", ErrInvalidState)
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	t.append(RoleUser, text)

	reply, err := t.backend.SendMessage(ctx, text)
	if err != nil {
		if t.log != nil {
			t.log.Warn("chat send failed, appending fallback", zap.Error(err))
		}
		t.append(RoleModel, ChatFallback)
		return nil
	}

	// An empty reply is still a reply.
	t.append(RoleModel, reply)
	return nil
}

func (t *ChatTranscript) append(role ChatRole, text string) {
	t.messages = append(t.messages, ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
}

// Messages returns a copy of the transcript in order.
func (t *ChatTranscript) Messages() []ChatMessage {
	out := make([]ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}
