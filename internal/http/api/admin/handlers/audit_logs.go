package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/models"
)

// AuditLogHandler exposes read-only access to persisted audit records.
type AuditLogHandler struct {
	db *gorm.DB
}

// NewAuditLogHandler constructs an AuditLogHandler.
func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{db: db}
}

func auditLogResponse(row models.AuditLog) gin.H {
	out := gin.H{
		"id":          row.ID,
		"action":      row.Action,
		"resource":    row.Resource,
		"resource_id": row.ResourceID,
		"actor_id":    row.ActorID,
		"actor_email": row.ActorEmail,
		"ip":          row.IP,
		"user_agent":  row.UserAgent,
		"path":        row.Path,
		"status":      row.Status,
		"severity":    row.Severity,
		"created_at":  row.CreatedAt,
	}
	if row.ErrorMessage != "" {
		out["error_message"] = row.ErrorMessage
	}
	if len(row.Before) > 0 {
		out["before"] = json.RawMessage(row.Before)
	}
	if len(row.After) > 0 {
		out["after"] = json.RawMessage(row.After)
	}
	return out
}

// List returns a filtered, paginated page of audit records, newest first.
func (h *AuditLogHandler) List(c *gin.Context) {
	var filters audit.Filters

	if actorQ := strings.TrimSpace(c.Query("admin_id")); actorQ != "" {
		actorID, errParse := strconv.ParseUint(actorQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
			return
		}
		filters.ActorID = actorID
	}
	filters.Resource = strings.TrimSpace(c.Query("resource"))
	filters.Action = strings.TrimSpace(c.Query("action"))

	if startQ := strings.TrimSpace(c.Query("start_date")); startQ != "" {
		start, errParse := time.Parse(time.RFC3339, startQ)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		filters.Start = start
	}
	if endQ := strings.TrimSpace(c.Query("end_date")); endQ != "" {
		end, errParse := time.Parse(time.RFC3339, endQ)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		filters.End = end
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, errQuery := audit.Query(c.Request.Context(), h.db, filters, page, limit)
	if errQuery != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query audit logs failed"})
		return
	}

	out := make([]gin.H, 0, len(result.Logs))
	for _, row := range result.Logs {
		out = append(out, auditLogResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":        out,
		"total":       result.Total,
		"page":        result.Page,
		"total_pages": result.TotalPages,
	})
}
