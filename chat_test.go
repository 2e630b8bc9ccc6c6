package studify

import (
	"context"
	"errors"
	"testing"
)

type fakeBackend struct {
	reply string
	err   error
	calls int
	sent  []string
}

func (f *fakeBackend) SendMessage(ctx context.Context, text string) (string, error) {
	f.calls++
	f.sent = append(f.sent, text)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestTranscriptSeededWithGreeting(t *testing.T) {
	transcript := NewChatTranscript(&fakeBackend{}, nil)

	messages := transcript.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(messages))
	}
	if messages[0].Role != RoleModel || messages[0].Text != ChatGreeting {
		t.Fatalf("unexpected greeting: %+v", messages[0])
	}
}

func TestSendAppendsUserAndModelMessages(t *testing.T) {
	backend := &fakeBackend{reply: "Mitochondria is the powerhouse of the cell."}
	transcript := NewChatTranscript(backend, nil)

	if err := transcript.Send(context.Background(), "What is a mitochondrion?"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	messages := transcript.Messages()
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[1].Role != RoleUser || messages[1].Text != "What is a mitochondrion?" {
		t.Fatalf("unexpected user message: %+v", messages[1])
	}
	if messages[2].Role != RoleModel || messages[2].Text != backend.reply {
		t.Fatalf("unexpected model message: %+v", messages[2])
	}
	if backend.sent[0] != "What is a mitochondrion?" {
		t.Fatalf("backend received %q", backend.sent[0])
	}
}

func TestSendFailureAppendsFallback(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	transcript := NewChatTranscript(backend, nil)
	transcript.Send(context.Background(), "first question")

	before := len(transcript.Messages())
	if err := transcript.Send(context.Background(), "second question"); err != nil {
		t.Fatalf("chat errors must be absorbed, got %v", err)
	}

	messages := transcript.Messages()
	// One user message plus exactly one fallback model message.
	if len(messages) != before+2 {
		t.Fatalf("expected %d messages, got %d", before+2, len(messages))
	}
	last := messages[len(messages)-1]
	if last.Role != RoleModel || last.Text != ChatFallback {
		t.Fatalf("expected fallback model message, got %+v", last)
	}
}

func TestSendEmptyReplyIsStillAReply(t *testing.T) {
	transcript := NewChatTranscript(&fakeBackend{reply: ""}, nil)

	if err := transcript.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	messages := transcript.Messages()
	last := messages[len(messages)-1]
	if last.Role != RoleModel || last.Text != "" {
		t.Fatalf("expected empty model message, got %+v", last)
	}
}

func TestSendRejectsBlankText(t *testing.T) {
	backend := &fakeBackend{reply: "hi"}
	transcript := NewChatTranscript(backend, nil)

	if err := transcript.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if backend.calls != 0 {
		t.Fatalf("backend should not be called, got %d calls", backend.calls)
	}
	if len(transcript.Messages()) != 1 {
		t.Fatal("transcript must be unchanged")
	}
}

func TestSendWithoutBackend(t *testing.T) {
	transcript := NewChatTranscript(nil, nil)
	if err := transcript.Send(context.Background(), "hello"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if len(transcript.Messages()) != 1 {
		t.Fatal("transcript must be unchanged")
	}
}

func TestTranscriptOrderingPreserved(t *testing.T) {
	backend := &fakeBackend{reply: "ok"}
	transcript := NewChatTranscript(backend, nil)

	for _, text := range []string{"one", "two", "three"} {
		if err := transcript.Send(context.Background(), text); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	messages := transcript.Messages()
	if len(messages) != 7 {
		t.Fatalf("expected 7 messages, got %d", len(messages))
	}
	wantUsers := []string{"one", "two", "three"}
	for i, want := range wantUsers {
		msg := messages[1+i*2]
		if msg.Role != RoleUser || msg.Text != want {
			t.Fatalf("message %d: got %+v, want user %q", 1+i*2, msg, want)
		}
	}
}
