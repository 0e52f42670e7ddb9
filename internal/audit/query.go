package audit

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/models"
)

// Filters narrows an audit log query. Zero values mean "any".
type Filters struct {
	ActorID  uint64
	Resource string
	Action   string
	Start    time.Time
	End      time.Time
}

// QueryResult is one page of audit records, newest first.
type QueryResult struct {
	Logs       []models.AuditLog
	Total      int64
	Page       int
	TotalPages int
}

// Query returns persisted audit records matching the filters, paginated
// newest-first. Reads never mutate records.
func Query(ctx context.Context, conn *gorm.DB, f Filters, page, limit int) (QueryResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	base := conn.WithContext(ctx).Model(&models.AuditLog{})
	if f.ActorID != 0 {
		base = base.Where("actor_id = ?", f.ActorID)
	}
	if f.Resource != "" {
		base = base.Where("resource = ?", f.Resource)
	}
	if f.Action != "" {
		base = base.Where("action = ?", f.Action)
	}
	if !f.Start.IsZero() {
		base = base.Where("created_at >= ?", f.Start)
	}
	if !f.End.IsZero() {
		base = base.Where("created_at < ?", f.End)
	}

	var total int64
	if errCount := base.Session(&gorm.Session{}).Count(&total).Error; errCount != nil {
		return QueryResult{}, errCount
	}

	var rows []models.AuditLog
	offset := (page - 1) * limit
	if errFind := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; errFind != nil {
		return QueryResult{}, errFind
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return QueryResult{Logs: rows, Total: total, Page: page, TotalPages: totalPages}, nil
}
