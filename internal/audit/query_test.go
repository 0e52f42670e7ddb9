package audit

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/models"
)

func seedAuditRows(t *testing.T, conn *gorm.DB, rows []models.AuditLog) {
	t.Helper()
	for i := range rows {
		if errCreate := conn.Create(&rows[i]).Error; errCreate != nil {
			t.Fatalf("seed audit row %d: %v", i, errCreate)
		}
	}
}

func TestQueryFiltersByActorResourceAndAction(t *testing.T) {
	conn := openTestDB(t)
	now := time.Now().UTC()

	seedAuditRows(t, conn, []models.AuditLog{
		{Action: ActionUpdate, Resource: "event", ActorID: 1, ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: now.Add(-3 * time.Hour)},
		{Action: ActionDelete, Resource: "event", ActorID: 2, ActorEmail: "b@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: now.Add(-2 * time.Hour)},
		{Action: ActionUpdate, Resource: "tag", ActorID: 1, ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: now.Add(-time.Hour)},
	})

	result, errQuery := Query(context.Background(), conn, Filters{ActorID: 1, Resource: "event"}, 1, 20)
	if errQuery != nil {
		t.Fatalf("Query: %v", errQuery)
	}
	if result.Total != 1 || len(result.Logs) != 1 {
		t.Fatalf("expected 1 matching row, got total=%d len=%d", result.Total, len(result.Logs))
	}
	if result.Logs[0].Action != ActionUpdate || result.Logs[0].Resource != "event" {
		t.Fatalf("unexpected row: %+v", result.Logs[0])
	}

	byAction, errQuery := Query(context.Background(), conn, Filters{Action: ActionDelete}, 1, 20)
	if errQuery != nil {
		t.Fatalf("Query: %v", errQuery)
	}
	if byAction.Total != 1 || byAction.Logs[0].ActorID != 2 {
		t.Fatalf("unexpected action filter result: %+v", byAction)
	}
}

func TestQueryDateRangeIsHalfOpen(t *testing.T) {
	conn := openTestDB(t)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	seedAuditRows(t, conn, []models.AuditLog{
		{Action: ActionLogin, Resource: "auth", ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: base.Add(-time.Minute)},
		{Action: ActionLogin, Resource: "auth", ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: base},
		{Action: ActionLogin, Resource: "auth", ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: base.Add(time.Hour)},
	})

	result, errQuery := Query(context.Background(), conn, Filters{Start: base, End: base.Add(time.Hour)}, 1, 20)
	if errQuery != nil {
		t.Fatalf("Query: %v", errQuery)
	}
	if result.Total != 1 {
		t.Fatalf("expected [start, end) to match exactly 1 row, got %d", result.Total)
	}
	if !result.Logs[0].CreatedAt.Equal(base) {
		t.Fatalf("expected the boundary start row, got %v", result.Logs[0].CreatedAt)
	}
}

func TestQueryPaginatesNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	rows := make([]models.AuditLog, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, models.AuditLog{
			Action:     ActionCreate,
			Resource:   "event",
			ResourceID: string(rune('a' + i)),
			ActorEmail: "a@x",
			Status:     StatusSuccess,
			Severity:   SeverityInfo,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	seedAuditRows(t, conn, rows)

	page1, errQuery := Query(context.Background(), conn, Filters{}, 1, 2)
	if errQuery != nil {
		t.Fatalf("Query: %v", errQuery)
	}
	if page1.Total != 5 || page1.TotalPages != 3 || len(page1.Logs) != 2 {
		t.Fatalf("unexpected page 1 shape: total=%d pages=%d len=%d", page1.Total, page1.TotalPages, len(page1.Logs))
	}
	if !page1.Logs[0].CreatedAt.After(page1.Logs[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	page3, errQuery := Query(context.Background(), conn, Filters{}, 3, 2)
	if errQuery != nil {
		t.Fatalf("Query: %v", errQuery)
	}
	if len(page3.Logs) != 1 {
		t.Fatalf("expected 1 row on the last page, got %d", len(page3.Logs))
	}
	if !page3.Logs[0].CreatedAt.Equal(base) {
		t.Fatalf("expected the oldest row on the last page, got %v", page3.Logs[0].CreatedAt)
	}
}

func TestQueryClampsPageAndLimit(t *testing.T) {
	conn := openTestDB(t)
	seedAuditRows(t, conn, []models.AuditLog{
		{Action: ActionCreate, Resource: "event", ActorEmail: "a@x", Status: StatusSuccess, Severity: SeverityInfo, CreatedAt: time.Now().UTC()},
	})

	result, errQuery := Query(context.Background(), conn, Filters{}, -4, 9999)
	if errQuery != nil {
		t.Fatalf("Query: %v", errQuery)
	}
	if result.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", result.Page)
	}
	if result.Total != 1 || len(result.Logs) != 1 {
		t.Fatalf("expected the seeded row, got total=%d len=%d", result.Total, len(result.Logs))
	}
}
