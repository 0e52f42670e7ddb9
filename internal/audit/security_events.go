package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/models"
)

// securityEventLimit bounds the number of raw events in a summary.
const securityEventLimit = 100

// securityActions is the action set treated as security-relevant on its own.
var securityActions = []string{
	ActionLoginFailed,
	ActionRateLimitExceeded,
	ActionUnauthorized,
	ActionPasswordResetRequest,
	ActionPasswordResetComplete,
}

// SecurityStats counts notable events within the summary period.
type SecurityStats struct {
	FailedLogins        int64 `json:"failed_logins"`
	RateLimitViolations int64 `json:"rate_limit_violations"`
	UnauthorizedAccess  int64 `json:"unauthorized_access"`
	SuccessfulLogins    int64 `json:"successful_logins"`
}

// HourlyBucket counts login activity for one hour of the day.
type HourlyBucket struct {
	Hour         int   `json:"hour"`
	Logins       int64 `json:"logins"`
	FailedLogins int64 `json:"failed_logins"`
}

// SecuritySummary is the dashboard view over persisted audit records.
type SecuritySummary struct {
	Events               []models.AuditLog `json:"events"`
	Stats                SecurityStats     `json:"stats"`
	SeverityDistribution map[string]int64  `json:"severity_distribution"`
	HourlyTrend          []HourlyBucket    `json:"hourly_trend"`
}

// ParsePeriod converts a dashboard period string into a duration.
func ParsePeriod(period string) (time.Duration, error) {
	switch period {
	case "", "24h":
		return 24 * time.Hour, nil
	case "7d":
		return 7 * 24 * time.Hour, nil
	case "30d":
		return 30 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("audit: invalid period %q", period)
}

// Summarize computes the security dashboard for the period. All queries
// are read-only; records are never mutated.
func Summarize(ctx context.Context, conn *gorm.DB, period time.Duration) (*SecuritySummary, error) {
	now := time.Now().UTC()
	since := now.Add(-period)

	summary := &SecuritySummary{
		SeverityDistribution: make(map[string]int64),
	}

	// Recent security-relevant events: a security action, an elevated
	// severity, or a synthetic actor.
	if errFind := conn.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("created_at >= ?", since).
		Where(
			conn.Where("action IN ?", securityActions).
				Or("severity IN ?", []string{SeverityWarning, SeverityError}).
				Or("actor_email IN ?", []string{ActorSystem, ActorAnonymous}),
		).
		Order("created_at DESC, id DESC").
		Limit(securityEventLimit).
		Find(&summary.Events).Error; errFind != nil {
		return nil, errFind
	}

	counts := []struct {
		dest  *int64
		where []any
	}{
		{&summary.Stats.FailedLogins, []any{"action = ?", ActionLoginFailed}},
		{&summary.Stats.RateLimitViolations, []any{"action = ?", ActionRateLimitExceeded}},
		{&summary.Stats.UnauthorizedAccess, []any{"action = ?", ActionUnauthorized}},
		{&summary.Stats.SuccessfulLogins, []any{"action = ? AND status = ?", ActionLogin, StatusSuccess}},
	}
	for _, c := range counts {
		if errCount := conn.WithContext(ctx).
			Model(&models.AuditLog{}).
			Where("created_at >= ?", since).
			Where(c.where[0], c.where[1:]...).
			Count(c.dest).Error; errCount != nil {
			return nil, errCount
		}
	}

	type severityCount struct {
		Severity string
		Count    int64
	}
	var severities []severityCount
	if errGroup := conn.WithContext(ctx).
		Model(&models.AuditLog{}).
		Select("severity, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("severity").
		Scan(&severities).Error; errGroup != nil {
		return nil, errGroup
	}
	for _, sc := range severities {
		summary.SeverityDistribution[sc.Severity] = sc.Count
	}

	trend, errTrend := hourlyTrend(ctx, conn, now)
	if errTrend != nil {
		return nil, errTrend
	}
	summary.HourlyTrend = trend

	return summary, nil
}

// hourlyTrend groups login activity of the last 24 hours by hour of day.
// Bucketing happens in Go so the query stays dialect-neutral. The trend
// always covers a rolling 24 hours regardless of the summary period.
func hourlyTrend(ctx context.Context, conn *gorm.DB, now time.Time) ([]HourlyBucket, error) {
	type loginRow struct {
		Action    string
		CreatedAt time.Time
	}
	var rows []loginRow
	if errFind := conn.WithContext(ctx).
		Model(&models.AuditLog{}).
		Select("action, created_at").
		Where("created_at >= ?", now.Add(-24*time.Hour)).
		Where("action IN ?", []string{ActionLogin, ActionLoginFailed}).
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}

	buckets := make([]HourlyBucket, 24)
	for hour := range buckets {
		buckets[hour].Hour = hour
	}
	for _, row := range rows {
		hour := row.CreatedAt.UTC().Hour()
		if row.Action == ActionLogin {
			buckets[hour].Logins++
		} else {
			buckets[hour].FailedLogins++
		}
	}
	return buckets, nil
}
