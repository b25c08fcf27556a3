// Package verify confirms the side effects of mutating control-plane calls.
// It checks that created resources exist, that deleted resources are gone,
// and tracks asynchronous jobs through a bounded polling state machine.
//
// The package never learns the remote API's shape: callers supply accessor
// callbacks that probe remote state and return raw JSON. Status strings and
// etags are extracted from that JSON without a domain schema.
package verify

import (
	"context"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/user/searchguard/pkg/insight"
)

// Accessor probes remote state on behalf of the verifier. It returns the
// raw JSON body of the probed resource, or an error. Errors should expose
// an upstream status code (insight.StatusCoded) to participate in the
// not-found detection used by VerifyDeleted.
type Accessor func(ctx context.Context) ([]byte, error)

// Result is the outcome of one verification attempt. Verified reports
// whether the check reached a definitive answer; a false Verified signals
// ambiguity (timeout, unexpected status) and must not be read as failure of
// the original mutation.
type Result struct {
	OK           bool           `json:"ok"`
	Verified     bool           `json:"verified"`
	VerifyStatus int            `json:"verifyStatus,omitempty"`
	ETag         string         `json:"etag,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// VerifyExists confirms a resource is present right after a create or
// update. The accessor's error propagates uncaught: at this point existence
// is a precondition the caller already believes holds, so a probe failure
// is exceptional rather than an expected state.
func VerifyExists(ctx context.Context, accessor Accessor) (Result, error) {
	body, err := accessor(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{
		OK:           true,
		Verified:     true,
		VerifyStatus: 200,
		ETag:         extractETag(body),
	}, nil
}

// VerifyDeleted confirms a resource is gone after a delete. All outcomes
// are converted into a Result because "not yet deleted" is an expected
// state, not an exception: a successful probe means the resource is still
// present, a not-found probe confirms the delete, anything else is
// ambiguous.
func VerifyDeleted(ctx context.Context, accessor Accessor) Result {
	_, err := accessor(ctx)
	if err == nil {
		// Probe succeeded: the resource still exists.
		return Result{OK: false, Verified: false, VerifyStatus: 200}
	}

	var coded insight.StatusCoded
	if errors.As(err, &coded) {
		status := coded.StatusCode()
		if status == 404 {
			return Result{OK: true, Verified: true, VerifyStatus: 404}
		}
		return Result{
			OK:           false,
			Verified:     false,
			VerifyStatus: status,
			Details:      map[string]any{"error": err.Error()},
		}
	}

	return Result{
		OK:       false,
		Verified: false,
		Details:  map[string]any{"error": err.Error()},
	}
}

// extractETag pulls an entity tag out of a raw resource body, trying the
// OData spelling first.
func extractETag(body []byte) string {
	if etag := gjson.GetBytes(body, `@odata\.etag`); etag.Exists() {
		return strings.Trim(etag.String(), `"`)
	}
	if etag := gjson.GetBytes(body, "etag"); etag.Exists() {
		return strings.Trim(etag.String(), `"`)
	}
	return ""
}
