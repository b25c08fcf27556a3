package verify

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/user/searchguard/pkg/log"
)

// PollState is the state of an asynchronous job as observed by polling.
// StatePending is the only non-terminal state.
type PollState string

const (
	StatePending           PollState = "pending"
	StateSuccess           PollState = "success"
	StateTransientFailure  PollState = "transientFailure"
	StatePersistentFailure PollState = "persistentFailure"
	StateReset             PollState = "reset"
	StateTimedOut          PollState = "timedOut"
)

// terminal reports whether no further transition can occur from s.
func (s PollState) terminal() bool {
	return s != StatePending
}

// Default polling cadence.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 5 * time.Minute
)

// PollConfig bounds a polling loop. Budgets are passed explicitly rather
// than read from ambient state so tests can run with arbitrary values.
type PollConfig struct {
	// Interval is the suspension between polls. Default: 2s.
	Interval time.Duration
	// Timeout is the hard ceiling on total polling time. Default: 5m.
	Timeout time.Duration
	// Logger receives one debug entry per poll tick. Optional.
	Logger log.Logger
}

// withDefaults fills unset fields.
func (c PollConfig) withDefaults() PollConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultPollTimeout
	}
	if c.Logger == nil {
		c.Logger = log.NopLogger{}
	}
	return c
}

// PollUntilTerminal repeatedly invokes accessor until the status string in
// its response maps onto a terminal PollState or the configured timeout
// elapses. The deadline is computed once up front, so cumulative waits can
// never exceed the caller's budget; the wait between polls is cancellable
// through ctx.
//
// The returned Result has OK set only for StateSuccess. A timeout yields
// an unverified Result with details.reason = "timeout".
func PollUntilTerminal(ctx context.Context, accessor Accessor, cfg PollConfig) Result {
	cfg = cfg.withDefaults()

	pollCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	start := time.Now()
	polls := 0
	for {
		body, err := accessor(pollCtx)
		polls++

		state := StatePending
		if err == nil {
			state = stateForStatus(extractStatus(body))
		}
		cfg.Logger.Debug("verify", "poll tick",
			log.F("state", string(state)),
			log.F("polls", polls),
			log.F("elapsed", time.Since(start).String()))

		if state.terminal() {
			return Result{
				OK:       state == StateSuccess,
				Verified: true,
				Details: map[string]any{
					"state": string(state),
					"polls": polls,
				},
			}
		}

		select {
		case <-pollCtx.Done():
			return Result{
				OK:       false,
				Verified: false,
				Details: map[string]any{
					"reason": "timeout",
					"polls":  polls,
				},
			}
		case <-time.After(cfg.Interval):
		}
	}
}

// stateForStatus maps an upstream status string onto a PollState. Unknown
// statuses keep the loop alive: the timeout is the backstop against
// vocabulary drift upstream.
func stateForStatus(status string) PollState {
	switch strings.ToLower(status) {
	case "success":
		return StateSuccess
	case "reset":
		return StateReset
	case "transientfailure":
		return StateTransientFailure
	case "persistentfailure", "error":
		return StatePersistentFailure
	default:
		return StatePending
	}
}

// extractStatus pulls the job status string out of a raw status body. Job
// status endpoints report the current run under lastResult; standalone
// status objects carry a top-level status field.
func extractStatus(body []byte) string {
	if s := gjson.GetBytes(body, "lastResult.status"); s.Exists() {
		return s.String()
	}
	return gjson.GetBytes(body, "status").String()
}
