package audit

import (
	"context"
	"testing"
	"time"

	"github.com/youthlift/backoffice/internal/models"
)

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"30d", 30 * 24 * time.Hour},
	}
	for _, tc := range cases {
		got, errParse := ParsePeriod(tc.in)
		if errParse != nil {
			t.Fatalf("ParsePeriod(%q): %v", tc.in, errParse)
		}
		if got != tc.want {
			t.Fatalf("ParsePeriod(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, errParse := ParsePeriod("90d"); errParse == nil {
		t.Fatal("expected unsupported period to be rejected")
	}
}

func TestSummarizeCountsAndSeverities(t *testing.T) {
	conn := openTestDB(t)
	now := time.Now().UTC()

	seedAuditRows(t, conn, []models.AuditLog{
		{Action: ActionLogin, Resource: "auth", ActorID: 1, ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: now.Add(-time.Hour)},
		{Action: ActionLoginFailed, Resource: "auth", ActorEmail: ActorAnonymous, Status: StatusFailure, Severity: SeverityWarning, CreatedAt: now.Add(-2 * time.Hour)},
		{Action: ActionLoginFailed, Resource: "auth", ActorEmail: ActorAnonymous, Status: StatusFailure, Severity: SeverityWarning, CreatedAt: now.Add(-3 * time.Hour)},
		{Action: ActionRateLimitExceeded, Resource: "login", ActorEmail: ActorAnonymous, Status: StatusFailure, Severity: SeverityWarning, CreatedAt: now.Add(-30 * time.Minute)},
		{Action: ActionUnauthorized, Resource: "auth", ActorID: 2, ActorEmail: "b@x", Status: StatusFailure, Severity: SeverityWarning, CreatedAt: now.Add(-10 * time.Minute)},
		// A plain content edit must not count toward any stat.
		{Action: ActionUpdate, Resource: "event", ActorID: 1, ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: now.Add(-time.Hour)},
		// Outside the 24h period.
		{Action: ActionLoginFailed, Resource: "auth", ActorEmail: ActorAnonymous, Status: StatusFailure, Severity: SeverityWarning, CreatedAt: now.Add(-48 * time.Hour)},
	})

	summary, errSummarize := Summarize(context.Background(), conn, 24*time.Hour)
	if errSummarize != nil {
		t.Fatalf("Summarize: %v", errSummarize)
	}

	if summary.Stats.FailedLogins != 2 {
		t.Fatalf("expected 2 failed logins, got %d", summary.Stats.FailedLogins)
	}
	if summary.Stats.RateLimitViolations != 1 {
		t.Fatalf("expected 1 rate limit violation, got %d", summary.Stats.RateLimitViolations)
	}
	if summary.Stats.UnauthorizedAccess != 1 {
		t.Fatalf("expected 1 unauthorized attempt, got %d", summary.Stats.UnauthorizedAccess)
	}
	if summary.Stats.SuccessfulLogins != 1 {
		t.Fatalf("expected 1 successful login, got %d", summary.Stats.SuccessfulLogins)
	}

	if summary.SeverityDistribution[SeverityWarning] != 4 {
		t.Fatalf("expected 4 warning rows in period, got %d", summary.SeverityDistribution[SeverityWarning])
	}
	if summary.SeverityDistribution[SeverityInfo] != 2 {
		t.Fatalf("expected 2 info rows in period, got %d", summary.SeverityDistribution[SeverityInfo])
	}

	for _, event := range summary.Events {
		if event.Action == ActionUpdate && event.Severity == SeverityInfo && event.ActorEmail == "a@x" {
			t.Fatalf("plain content edit leaked into security events: %+v", event)
		}
	}
}

func TestSummarizeHourlyTrendBucketsByHour(t *testing.T) {
	conn := openTestDB(t)
	now := time.Now().UTC()
	recent := now.Add(-90 * time.Minute)

	seedAuditRows(t, conn, []models.AuditLog{
		{Action: ActionLogin, Resource: "auth", ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: recent},
		{Action: ActionLogin, Resource: "auth", ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: recent},
		{Action: ActionLoginFailed, Resource: "auth", ActorEmail: ActorAnonymous, Status: StatusFailure, Severity: SeverityWarning, CreatedAt: recent},
		// Older than the rolling 24h trend window.
		{Action: ActionLogin, Resource: "auth", ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: now.Add(-30 * time.Hour)},
	})

	summary, errSummarize := Summarize(context.Background(), conn, 7*24*time.Hour)
	if errSummarize != nil {
		t.Fatalf("Summarize: %v", errSummarize)
	}

	if len(summary.HourlyTrend) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %d", len(summary.HourlyTrend))
	}
	for i, bucket := range summary.HourlyTrend {
		if bucket.Hour != i {
			t.Fatalf("expected bucket %d to carry hour %d, got %d", i, i, bucket.Hour)
		}
	}

	target := summary.HourlyTrend[recent.Hour()]
	if target.Logins != 2 || target.FailedLogins != 1 {
		t.Fatalf("expected 2 logins and 1 failure in hour %d, got %+v", recent.Hour(), target)
	}

	var totalLogins int64
	for _, bucket := range summary.HourlyTrend {
		totalLogins += bucket.Logins
	}
	if totalLogins != 2 {
		t.Fatalf("trend must cover only the rolling 24h, got %d logins", totalLogins)
	}
}
