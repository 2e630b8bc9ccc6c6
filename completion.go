package studify

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// CompletionClient wraps the generative completion service for the three use
// cases: structured quiz generation, structured essay scoring, and the
// multi-turn tutor chat. Calls are not retried; failures propagate to the
// caller.
type CompletionClient struct {
	client *openai.Client
	model  string
	log    *zap.Logger
	llmLog *CompletionLogger
}

// NewCompletionClient creates a client for the configured endpoint. An empty
// BaseURL targets the default OpenAI API.
func NewCompletionClient(cfg OpenAIConfig, log *zap.Logger) *CompletionClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &CompletionClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		log:    log,
	}
}

// SetCompletionLogger attaches a per-run interaction logger that records
// every request and response.
func (c *CompletionClient) SetCompletionLogger(l *CompletionLogger) {
	c.llmLog = l
}

// GenerateQuiz requests count multiple-choice questions about subject at the
// given difficulty. The service must answer through the submit_questions tool
// call; an empty questions array is returned as an empty slice, not an error.
func (c *CompletionClient) GenerateQuiz(ctx context.Context, subject string, difficulty Difficulty, count int) ([]QuizQuestion, error) {
	prompt := fmt.Sprintf("Generate %d multiple-choice questions about %q at a %s difficulty level.", count, subject, difficulty)

	if c.llmLog != nil {
		c.llmLog.LogRequest("GenerateQuiz", prompt)
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert tutor. Create accurate, educational questions. Each question has exactly 4 options, a 0-based correct option index, and a brief explanation.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "submit_questions",
						Description: "Submit the generated quiz questions",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"questions": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"questionText": map[string]interface{}{
												"type":        "string",
												"description": "The question text",
											},
											"options": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "string",
												},
												"description": "Array of 4 multiple choice options",
											},
											"correctOptionIndex": map[string]interface{}{
												"type":        "integer",
												"description": "Zero-based index of the correct option",
											},
											"explanation": map[string]interface{}{
												"type":        "string",
												"description": "Brief explanation of why the answer is correct",
											},
										},
										"required": []string{"questionText", "options", "correctOptionIndex", "explanation"},
									},
								},
							},
							"required": []string{"questions"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_questions",
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	args, err := toolCallArguments(resp, "submit_questions")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	if c.llmLog != nil {
		c.llmLog.LogResponse("GenerateQuiz", args)
	}

	var toolArgs struct {
		Questions []QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(args), &toolArgs); err != nil {
		return nil, fmt.Errorf("%w: failed to parse tool arguments: %w", ErrGeneration, err)
	}

	// An empty payload is a soft-empty success. Structurally broken
	// questions are dropped.
	questions := make([]QuizQuestion, 0, len(toolArgs.Questions))
	for _, q := range toolArgs.Questions {
		if !q.Valid() {
			if c.log != nil {
				c.log.Warn("dropping malformed generated question",
					zap.String("question", q.QuestionText),
					zap.Int("options", len(q.Options)),
					zap.Int("correctOptionIndex", q.CorrectOptionIndex))
			}
			continue
		}
		questions = append(questions, q)
	}

	if c.log != nil {
		c.log.Debug("generated quiz questions",
			zap.String("subject", subject),
			zap.String("difficulty", string(difficulty)),
			zap.Int("count", len(questions)))
	}
	return questions, nil
}

// toolCallArguments extracts the arguments of the expected forced tool call
// from a chat completion response.
func toolCallArguments(resp openai.ChatCompletionResponse, name string) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completion service")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return "", fmt.Errorf("no tool calls in response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != name {
		return "", fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}
	return toolCall.Function.Arguments, nil
}
