package insight

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/searchguard/pkg/log"
)

// Classifier turns raw remote failures into Insights. The zero value is not
// usable; create instances with NewClassifier.
type Classifier struct {
	log log.Logger
}

// NewClassifier creates a Classifier. logger may be nil for silent operation.
func NewClassifier(logger log.Logger) *Classifier {
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Classifier{log: logger}
}

// Classify maps err onto the Insight taxonomy. extras is merged into the
// result's Extras; the upstream status code is added under "status" when the
// error exposes one. A nil err classifies as OK.
//
// Classification is total: it never panics and never returns an empty Insight.
func (c *Classifier) Classify(err error, extras map[string]any) Insight {
	if err == nil {
		return Success("operation completed", extras)
	}

	msg := err.Error()
	out := Insight{
		OK:             false,
		Code:           CodeNetwork,
		Message:        msg,
		Recommendation: "Check network connectivity and the service endpoint, then retry.",
		Extras:         cloneExtras(extras),
	}

	// Status-derived classification.
	var coded StatusCoded
	if errors.As(err, &coded) {
		status := coded.StatusCode()
		if out.Extras == nil {
			out.Extras = map[string]any{}
		}
		out.Extras["status"] = status

		switch {
		case status == 429 || status == 503:
			out.Code = CodeRateLimit
			out.Recommendation = "The service is throttling requests. Wait before retrying and reduce request frequency."
			var hinted RetryHinted
			if errors.As(err, &hinted) {
				if secs, ok := parseRetryAfter(hinted.RetryAfterHeader()); ok {
					out.RetryAfterSeconds = secs
				}
			}
		case status == 401 || status == 403:
			out.Code = CodeAuth
			out.Recommendation = "Check that the API key is valid and has sufficient permissions for this operation."
		case status == 404:
			out.Code = CodeNotFound
			out.Recommendation = "The resource was not found. List resources to discover the correct name."
		case status == 409:
			out.Code = CodeConflict
			out.Recommendation = "A conflicting change is in progress. Serialize modifications and retry with backoff."
		}
	}

	// Message-pattern heuristics can override the status-derived code.
	// They catch domain failures hiding behind generic HTTP statuses.
	lower := strings.ToLower(msg)
	for _, h := range heuristics {
		if !h.match(lower) {
			continue
		}
		c.log.Debug("classify", "heuristic override", log.F("rule", h.name), log.F("code", string(h.code)))
		out.Code = h.code
		out.Recommendation = h.recommend
		if h.retryAfter != nil {
			if secs, ok := h.retryAfter(lower); ok {
				out.RetryAfterSeconds = secs
			}
		}
		break
	}
	if out.Code == CodeNetwork {
		c.log.Debug("classify", "no status or heuristic matched, defaulting", log.F("code", string(CodeNetwork)))
	}

	return out
}

// heuristic is one (predicate, override) pair. Entries are evaluated in
// order; the first match replaces the code and recommendation while
// preserving extras.
type heuristic struct {
	name      string
	match     func(lowerMsg string) bool
	code      Code
	recommend string

	// retryAfter extracts a retry delay from the message, when present.
	retryAfter func(lowerMsg string) (int, bool)
}

// heuristics is the ordered override table. Matching is best-effort signal
// extraction from upstream error wording and may need retuning when the
// provider changes its messages.
var heuristics = []heuristic{
	{
		name: "downtime-required",
		match: func(m string) bool {
			return strings.Contains(m, "requires an index rebuild") ||
				strings.Contains(m, "cannot be changed unless") ||
				(strings.Contains(m, "analyzer") && strings.Contains(m, "existing field"))
		},
		code:      CodeDowntimeRequired,
		recommend: "This schema change cannot be applied in place. Create a new index with the updated schema and migrate documents into it.",
	},
	{
		name: "vector-dim-mismatch",
		match: func(m string) bool {
			return strings.Contains(m, "dimension") && strings.Contains(m, "vector")
		},
		code:      CodeVectorDimMismatch,
		recommend: "The query vector's dimensionality does not match the field definition. Re-embed with the model the index was built for.",
	},
	{
		name: "bad-filter",
		match: func(m string) bool {
			return strings.Contains(m, "$filter") ||
				(strings.Contains(m, "filter") && strings.Contains(m, "syntax"))
		},
		code:      CodeBadFilter,
		recommend: "The filter expression is malformed. Check field names and OData operator syntax, and ensure filtered fields are filterable.",
	},
	{
		name: "storage-limit",
		match: func(m string) bool {
			return strings.Contains(m, "storage quota") ||
				(strings.Contains(m, "quota") && strings.Contains(m, "exceeded"))
		},
		code:      CodeStorageLimit,
		recommend: "The service's storage quota is exhausted. Delete unused indexes or documents, or move to a larger tier.",
	},
	{
		name: "tier-limit",
		match: func(m string) bool {
			return strings.Contains(m, "pricing tier") ||
				strings.Contains(m, "not supported in the current tier") ||
				(strings.Contains(m, "maximum number of") && strings.Contains(m, "allowed"))
		},
		code:      CodeTierLimit,
		recommend: "The current service tier does not allow this. Remove resources to get under the tier cap or upgrade the tier.",
	},
	{
		// Provider-specific wording: the indexer invocation limit error
		// embeds a wait hint like "try again in 86 seconds".
		name: "indexer-cooldown",
		match: func(m string) bool {
			return strings.Contains(m, "indexer") &&
				(strings.Contains(m, "try again in") || strings.Contains(m, "invocation"))
		},
		code:       CodeIndexerCooldown,
		recommend:  "On-demand indexer runs are limited per time window on this tier. Wait for the window to reset before invoking again.",
		retryAfter: parseCooldownDelay,
	},
}

var cooldownDelayPattern = regexp.MustCompile(`try again in (\d+) (second|minute)`)

// parseCooldownDelay pulls the wait hint out of a cooldown message.
func parseCooldownDelay(lowerMsg string) (int, bool) {
	m := cooldownDelayPattern.FindStringSubmatch(lowerMsg)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if m[2] == "minute" {
		n *= 60
	}
	return n, true
}

// parseRetryAfter parses a provider retry header value. Plain numbers are
// seconds; a "ms" suffix denotes milliseconds, ceiling-divided to whole
// seconds so a 1500ms hint never rounds down to an instant retry.
func parseRetryAfter(v string) (int, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return 0, false
	}
	if ms, found := strings.CutSuffix(v, "ms"); found {
		n, err := strconv.Atoi(strings.TrimSpace(ms))
		if err != nil || n < 0 {
			return 0, false
		}
		return (n + 999) / 1000, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
