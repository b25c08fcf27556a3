package govern

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Default Claude summarizer settings.
const (
	DefaultSummarizerModel     = "claude-haiku-4-5-20251001"
	DefaultSummarizerMaxTokens = 1024
)

const summarizeSystemPrompt = "You condense tool responses from a search service control plane. " +
	"Preserve resource names, counts, statuses, and error details. " +
	"Reply with the summary only, no preamble."

// ClaudeSummarizer implements Summarizer against the Anthropic API.
type ClaudeSummarizer struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewClaudeSummarizer creates a ClaudeSummarizer. model may be empty to use
// the default. Extra options are passed to the underlying client; tests use
// this to point at a fake endpoint.
func NewClaudeSummarizer(apiKey, model string, opts ...option.RequestOption) *ClaudeSummarizer {
	if model == "" {
		model = DefaultSummarizerModel
	}
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ClaudeSummarizer{
		client:    anthropic.NewClient(clientOpts...),
		model:     model,
		maxTokens: DefaultSummarizerMaxTokens,
	}
}

// Summarize asks the model to condense text within targetChars. The caller
// (the Governor) owns the timeout through ctx.
func (s *ClaudeSummarizer) Summarize(ctx context.Context, text string, targetChars int) (string, error) {
	prompt := fmt.Sprintf("Summarize the following tool response in at most %d characters:\n\n%s", targetChars, text)

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(s.maxTokens),
		System:    []anthropic.TextBlockParam{{Text: summarizeSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(b.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
