// Package insight classifies failures of remote control-plane calls into a
// bounded taxonomy with actionable remediation hints and retry timing.
// It is the terminal sink for all remote-call errors: Classify never panics
// and always returns a populated Insight.
package insight

// Code identifies the kind of outcome an operation produced.
// The set below is the complete vocabulary; no other code is ever emitted.
type Code string

const (
	// CodeOK indicates the operation succeeded.
	CodeOK Code = "OK"
	// CodeAuth indicates the caller is not authenticated or lacks permission.
	CodeAuth Code = "AUTH"
	// CodeNotFound indicates the target resource does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict indicates a concurrent-modification or naming conflict.
	CodeConflict Code = "CONFLICT"
	// CodeRateLimit indicates the service throttled the request.
	CodeRateLimit Code = "RATE_LIMIT"
	// CodeStorageLimit indicates the service storage quota is exhausted.
	CodeStorageLimit Code = "STORAGE_LIMIT"
	// CodeTierLimit indicates the operation exceeds the service tier's capabilities.
	CodeTierLimit Code = "TIER_LIMIT"
	// CodeDowntimeRequired indicates a schema change that needs a rebuild.
	CodeDowntimeRequired Code = "DOWNTIME_REQUIRED"
	// CodeVectorDimMismatch indicates a vector dimension disagreement.
	CodeVectorDimMismatch Code = "VECTOR_DIM_MISMATCH"
	// CodeBadFilter indicates a malformed filter expression.
	CodeBadFilter Code = "BAD_FILTER"
	// CodeIndexerCooldown indicates the indexer invocation window is exhausted.
	CodeIndexerCooldown Code = "INDEXER_COOLDOWN"
	// CodeNetwork indicates a connectivity-level failure with no usable status.
	CodeNetwork Code = "NETWORK"
)

// Insight is the structured, classified outcome of a remote call.
// Instances are constructed fresh per call and never mutated afterwards.
type Insight struct {
	// OK is true if and only if Code is CodeOK.
	OK bool `json:"ok"`

	// Code is the classified outcome kind.
	Code Code `json:"code"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`

	// Recommendation suggests what the caller should do next, when known.
	Recommendation string `json:"recommendation,omitempty"`

	// RetryAfterSeconds hints when a retry may succeed. Zero means no hint.
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`

	// Extras carries free-form diagnostic context such as the upstream
	// status code, operation name, or resource name.
	Extras map[string]any `json:"extras,omitempty"`
}

// Success builds an OK Insight with the given message and context.
func Success(message string, extras map[string]any) Insight {
	return Insight{
		OK:      true,
		Code:    CodeOK,
		Message: message,
		Extras:  cloneExtras(extras),
	}
}

// StatusCoded is implemented by errors that expose an upstream HTTP status.
type StatusCoded interface {
	error
	StatusCode() int
}

// RetryHinted is implemented by errors that expose a provider retry header.
// The header value may be denominated in seconds ("5") or in milliseconds
// ("2000ms").
type RetryHinted interface {
	RetryAfterHeader() string
}

func cloneExtras(extras map[string]any) map[string]any {
	if len(extras) == 0 {
		return nil
	}
	out := make(map[string]any, len(extras))
	for k, v := range extras {
		out[k] = v
	}
	return out
}
