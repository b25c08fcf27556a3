package govern

import "context"

// Summarizer condenses an oversized serialized payload into prose within a
// target character budget. Implementations are best-effort collaborators:
// they may be slow, absent, or erroring, and the Governor degrades to
// deterministic truncation whenever they are.
type Summarizer interface {
	// Summarize condenses text to at most targetChars characters. It must
	// honor ctx cancellation.
	Summarize(ctx context.Context, text string, targetChars int) (string, error)
}

// Noop is the absent-collaborator implementation. A Governor holding a
// Noop skips summarization entirely and truncates oversized payloads.
type Noop struct{}

// Summarize reports that no summarizer is available.
func (Noop) Summarize(ctx context.Context, text string, targetChars int) (string, error) {
	return "", nil
}
