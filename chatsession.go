package studify

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const chatSystemInstruction = "You are Studify, a friendly and helpful study assistant. Keep answers concise, encouraging, and focused on educational topics. Use Markdown for formatting."

// ChatSession is a stateful conversation handle. It retains the running
// message list so each turn carries the full context to the service. A
// session belongs to exactly one chat view for its lifetime and is not safe
// for concurrent use.
type ChatSession struct {
	client   *openai.Client
	model    string
	llmLog   *CompletionLogger
	messages []openai.ChatCompletionMessage
}

// NewChatSession creates a fresh conversation seeded with the tutor system
// instruction.
func (c *CompletionClient) NewChatSession() *ChatSession {
	return &ChatSession{
		client: c.client,
		model:  c.model,
		llmLog: c.llmLog,
		messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: chatSystemInstruction,
			},
		},
	}
}

// SendMessage forwards one user turn and returns the model's reply. The turn
// and the reply are appended to the retained context. A response with no
// text yields an empty string, not an error; transport failures are returned
// as-is and leave the pending user turn out of the context.
func (s *ChatSession) SendMessage(ctx context.Context, text string) (string, error) {
	if s.llmLog != nil {
		s.llmLog.LogRequest("Chat", text)
	}

	messages := append(s.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:    s.model,
			Messages: messages,
		},
	)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	reply := ""
	if len(resp.Choices) > 0 {
		reply = resp.Choices[0].Message.Content
	}

	if s.llmLog != nil {
		s.llmLog.LogResponse("Chat", reply)
	}

	s.messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	return reply, nil
}
