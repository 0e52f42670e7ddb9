// Package audit captures structured records of privileged actions and
// persists them independently of the triggering request. Writes are
// fire-and-forget: a failed or slow audit write never changes the outcome
// of the business operation that produced it.
package audit

import (
	"strings"
	"time"
)

// Audited actions.
const (
	ActionLogin                 = "login"
	ActionLogout                = "logout"
	ActionCreate                = "create"
	ActionUpdate                = "update"
	ActionDelete                = "delete"
	ActionUpload                = "upload"
	ActionPasswordChange        = "password_change"
	ActionPasswordResetRequest  = "password_reset_request"
	ActionPasswordResetComplete = "password_reset_complete"
	ActionBulkOperation         = "bulk_operation"

	ActionLoginFailed       = "login_failed"
	ActionRateLimitExceeded = "rate_limit_exceeded"
	ActionUnauthorized      = "unauthorized_access"
)

// Record statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Record severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Synthetic actors for events with no signed-in admin.
const (
	ActorSystem    = "system"
	ActorAnonymous = "anonymous"
)

// Actor identifies who performed an audited action.
type Actor struct {
	ID    uint64
	Email string
}

// SystemActor returns the actor recorded for automated events.
func SystemActor() Actor { return Actor{Email: ActorSystem} }

// AnonymousActor returns the actor recorded for unauthenticated callers.
func AnonymousActor() Actor { return Actor{Email: ActorAnonymous} }

// RequestMeta carries the request context attached to a record.
type RequestMeta struct {
	IP        string
	UserAgent string
	Path      string
}

// Entry is one audit record before persistence. Snapshots should contain
// only the fields relevant to the action; sensitive keys are stripped
// before the record is enqueued.
type Entry struct {
	Action     string
	Resource   string
	ResourceID string

	Actor   Actor
	Request RequestMeta

	Before map[string]any
	After  map[string]any

	Status       string
	ErrorMessage string
	Severity     string

	Timestamp time.Time
}

// sensitiveKeyFragments marks snapshot keys that must never be persisted.
var sensitiveKeyFragments = []string{"password", "secret", "token", "hash"}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// sanitizeSnapshot returns a copy of snapshot with sensitive keys removed,
// recursing into nested maps. Returns nil for empty input.
func sanitizeSnapshot(snapshot map[string]any) map[string]any {
	if len(snapshot) == 0 {
		return nil
	}
	out := make(map[string]any, len(snapshot))
	for key, value := range snapshot {
		if isSensitiveKey(key) {
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			if cleaned := sanitizeSnapshot(nested); cleaned != nil {
				out[key] = cleaned
			}
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// defaultSeverity classifies an entry that did not set a severity.
func defaultSeverity(action, status string) string {
	switch action {
	case ActionLoginFailed, ActionRateLimitExceeded, ActionUnauthorized:
		return SeverityWarning
	}
	if status == StatusFailure {
		return SeverityWarning
	}
	return SeverityInfo
}
