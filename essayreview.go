package studify

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// AnalyzeEssay scores an essay and produces markdown feedback. The service
// must answer through the submit_review tool call. Unlike quiz generation, a
// missing payload is an error: there is no meaningful empty review.
func (c *CompletionClient) AnalyzeEssay(ctx context.Context, topic, content string) (EssayReview, error) {
	prompt := fmt.Sprintf("Topic: %s\n\nEssay Content:\n%s", topic, content)

	if c.llmLog != nil {
		c.llmLog.LogRequest("AnalyzeEssay", prompt)
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a strict but helpful writing coach. Analyze the essay for grammar, structure, coherence, and argument strength. Provide constructive feedback in Markdown format.",
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
						Name:        "submit_review",
						Description: "Submit the essay review",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"feedback": map[string]interface{}{
									"type":        "string",
									"description": "Markdown formatted detailed feedback covering grammar, coherence, and structure",
								},
								"score": map[string]interface{}{
									"type":        "integer",
									"description": "A score from 0 to 100 based on quality",
								},
							},
							"required": []string{"feedback", "score"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: "submit_review",
				},
			},
		},
	)
	if err != nil {
		return EssayReview{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	args, err := toolCallArguments(resp, "submit_review")
	if err != nil {
		return EssayReview{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	if c.llmLog != nil {
		c.llmLog.LogResponse("AnalyzeEssay", args)
	}

	var review EssayReview
	if err := json.Unmarshal([]byte(args), &review); err != nil {
		return EssayReview{}, fmt.Errorf("%w: failed to parse tool arguments: %w", ErrAnalysis, err)
	}

	// Keep the score inside the documented 0-100 range even if the model
	// drifts outside it.
	if review.Score < 0 {
		review.Score = 0
	}
	if review.Score > 100 {
		review.Score = 100
	}

	if c.log != nil {
		c.log.Debug("analyzed essay", zap.String("topic", topic), zap.Int("score", review.Score))
	}
	return review, nil
}
