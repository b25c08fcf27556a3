// Package govern decides, per response, whether to return data as-is,
// summarize it through a best-effort external summarizer, or
// deterministically truncate it, under a hard latency and size budget.
// Governance is never the reason a call fails: every internal failure falls
// through to a cheaper transform.
package govern

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/user/searchguard/pkg/log"
)

// Mode records which transform was applied to a payload.
type Mode string

const (
	// ModeRaw means the payload was returned unchanged.
	ModeRaw Mode = "raw"
	// ModeSummarized means the payload was replaced by a summary.
	ModeSummarized Mode = "summarized"
	// ModeTruncated means the payload was deterministically cut down.
	ModeTruncated Mode = "truncated"
)

// Default budget values.
const (
	DefaultMaxRawBytes      = 20 * 1024
	DefaultMaxChars         = 30000
	DefaultMaxListItems     = 10
	DefaultSummarizeTimeout = 10 * time.Second
)

// truncationMarker is appended to text cut at the character ceiling so the
// elision is always explicit.
const truncationMarker = " ...[truncated]"

// Budget bounds the size and latency of response governance. Budgets are
// passed explicitly into each Governor rather than read from ambient
// process state, so unit tests can run with arbitrary values.
type Budget struct {
	// MaxRawBytes is the serialized size under which payloads pass
	// through untouched. Default: 20KB.
	MaxRawBytes int
	// MaxChars is the hard character ceiling for truncated text. Default: 30000.
	MaxChars int
	// MaxListItems is how many items of an array-shaped payload survive
	// truncation. Default: 10.
	MaxListItems int
	// SummarizeTimeout bounds the summarizer call. Default: 10s.
	SummarizeTimeout time.Duration
}

// withDefaults fills unset fields.
func (b Budget) withDefaults() Budget {
	if b.MaxRawBytes <= 0 {
		b.MaxRawBytes = DefaultMaxRawBytes
	}
	// A ceiling smaller than the marker itself leaves no room for any
	// payload text; floor it so truncation always has something to cut to.
	if b.MaxChars <= len(truncationMarker) {
		b.MaxChars = DefaultMaxChars
	}
	if b.MaxListItems <= 0 {
		b.MaxListItems = DefaultMaxListItems
	}
	if b.SummarizeTimeout <= 0 {
		b.SummarizeTimeout = DefaultSummarizeTimeout
	}
	return b
}

// GovernedResponse is the output of response governance. OriginalSizeBytes
// always reflects the pre-governance serialized size so callers can see how
// much was elided, regardless of Mode.
type GovernedResponse struct {
	Payload           json.RawMessage `json:"payload"`
	Mode              Mode            `json:"mode"`
	OriginalSizeBytes int             `json:"originalSizeBytes"`
}

// Governor applies the size/summarize/truncate decision procedure.
type Governor struct {
	budget     Budget
	summarizer Summarizer
	log        log.Logger
}

// NewGovernor creates a Governor. summarizer may be nil (or Noop) when no
// summarization collaborator is available; logger may be nil.
func NewGovernor(budget Budget, summarizer Summarizer, logger log.Logger) *Governor {
	if summarizer == nil {
		summarizer = Noop{}
	}
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Governor{budget: budget.withDefaults(), summarizer: summarizer, log: logger}
}

// Govern serializes payload and decides its output shape. It never fails:
// serialization problems degrade to a formatted string, and summarizer
// errors or timeouts fall through to deterministic truncation.
func (g *Governor) Govern(ctx context.Context, payload any) GovernedResponse {
	serialized := serialize(payload)
	size := len(serialized)

	if size <= g.budget.MaxRawBytes {
		return GovernedResponse{Payload: serialized, Mode: ModeRaw, OriginalSizeBytes: size}
	}

	if summary, ok := g.summarize(ctx, serialized); ok {
		g.log.Info("govern", "payload summarized",
			log.F("original_bytes", size), log.F("summary_bytes", len(summary)))
		return GovernedResponse{Payload: summary, Mode: ModeSummarized, OriginalSizeBytes: size}
	}

	truncated := g.truncate(serialized)
	g.log.Info("govern", "payload truncated",
		log.F("original_bytes", size), log.F("truncated_bytes", len(truncated)))
	return GovernedResponse{Payload: truncated, Mode: ModeTruncated, OriginalSizeBytes: size}
}

// summarize runs the collaborator under its own deadline. Any failure is
// reported as not-ok so the caller falls through to truncation.
func (g *Governor) summarize(ctx context.Context, serialized []byte) (json.RawMessage, bool) {
	if _, isNoop := g.summarizer.(Noop); isNoop {
		return nil, false
	}

	sumCtx, cancel := context.WithTimeout(ctx, g.budget.SummarizeTimeout)
	defer cancel()

	summary, err := g.summarizer.Summarize(sumCtx, string(serialized), g.budget.MaxChars)
	if err != nil {
		g.log.Warn("govern", "summarizer failed, falling back to truncation", log.F("error", err))
		return nil, false
	}
	if summary == "" {
		g.log.Warn("govern", "summarizer returned empty output, falling back to truncation")
		return nil, false
	}
	summary = cutAt(summary, g.budget.MaxChars)

	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, false
	}
	return encoded, true
}

// truncate applies the deterministic fallback: array-shaped payloads keep
// their first MaxListItems elements plus an elided-item count, everything
// else is cut at the character ceiling with an explicit marker.
func (g *Governor) truncate(serialized []byte) json.RawMessage {
	parsed := gjson.ParseBytes(serialized)

	if parsed.IsArray() {
		items := parsed.Array()
		keep := g.budget.MaxListItems
		if keep > len(items) {
			keep = len(items)
		}

		raws := make([]string, 0, keep)
		for _, item := range items[:keep] {
			raws = append(raws, item.Raw)
		}
		wrapped := fmt.Sprintf(`{"items":[%s]}`, strings.Join(raws, ","))
		out, err := sjson.Set(wrapped, "elidedItems", len(items)-keep)
		if err != nil {
			return json.RawMessage(wrapped)
		}
		return json.RawMessage(out)
	}

	text := string(serialized)
	if limit := g.budget.MaxChars - len(truncationMarker); len(text) > limit {
		text = cutAt(text, limit) + truncationMarker
	}
	encoded, err := json.Marshal(text)
	if err != nil {
		return json.RawMessage(`"[unrenderable payload]"`)
	}
	return encoded
}

// cutAt shortens s to at most limit bytes without splitting a UTF-8 rune,
// backing the cut point up to the nearest rune boundary.
func cutAt(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// serialize renders payload as JSON bytes. Raw JSON inputs pass through
// untouched; anything unmarshalable degrades to a formatted string.
func serialize(payload any) []byte {
	switch v := payload.(type) {
	case json.RawMessage:
		return v
	case []byte:
		return v
	case string:
		b, err := json.Marshal(v)
		if err != nil {
			return []byte(`""`)
		}
		return b
	default:
		b, err := json.Marshal(v)
		if err != nil {
			b, _ = json.Marshal(fmt.Sprintf("%v", v))
			return b
		}
		return b
	}
}
