package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
)

// SecurityEventHandler serves the security dashboard summary.
type SecurityEventHandler struct {
	db *gorm.DB
}

// NewSecurityEventHandler constructs a SecurityEventHandler.
func NewSecurityEventHandler(db *gorm.DB) *SecurityEventHandler {
	return &SecurityEventHandler{db: db}
}

// Summary aggregates security-relevant audit records for the requested
// period (24h, 7d or 30d).
func (h *SecurityEventHandler) Summary(c *gin.Context) {
	period, errPeriod := audit.ParsePeriod(strings.TrimSpace(c.Query("period")))
	if errPeriod != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period"})
		return
	}

	summary, errSummarize := audit.Summarize(c.Request.Context(), h.db, period)
	if errSummarize != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summarize security events failed"})
		return
	}

	events := make([]gin.H, 0, len(summary.Events))
	for _, row := range summary.Events {
		events = append(events, auditLogResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{
		"events":                events,
		"stats":                 summary.Stats,
		"severity_distribution": summary.SeverityDistribution,
		"hourly_trend":          summary.HourlyTrend,
	})
}
