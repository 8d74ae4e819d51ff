package answer

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/llm"
)

// extract asks the model to answer strictly from the supplied context.
// Decoding is deterministic (temperature 0) so refusal behavior is
// reproducible. Answers that fail the grounding validation are
// converted to the refusal sentinel.
func (e *Engine) extract(ctx context.Context, context_, question string) (string, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: extractionPrompt(context_, question)},
		},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("extraction call: %w", err)
	}

	answer := strings.TrimSpace(resp.Content)
	if isRefusal(answer) {
		return RefusalDocument, nil
	}
	if !Grounded(answer, context_) {
		return RefusalDocument, nil
	}
	return answer, nil
}

// synthesize merges the labelled per-document answers. It must never
// be called with zero inputs; callers short-circuit to the collection
// refusal instead.
func (e *Engine) synthesize(ctx context.Context, question string, labelled []string) (string, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: synthesisPrompt(question, labelled)},
		},
		MaxTokens:   512,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("synthesis call: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
