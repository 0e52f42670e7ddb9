// Package public serves the unauthenticated site API under /v0/public.
package public

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	apihttp "github.com/youthlift/backoffice/internal/http"
	"github.com/youthlift/backoffice/internal/metrics"
	"github.com/youthlift/backoffice/internal/models"
	"github.com/youthlift/backoffice/internal/ratelimit"
)

// Deps carries the shared services the public API needs.
type Deps struct {
	DB       *gorm.DB
	Recorder *audit.Recorder
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
}

// RegisterRoutes mounts the public API on the router group.
func RegisterRoutes(group *gin.RouterGroup, deps Deps) {
	h := &handler{db: deps.DB, recorder: deps.Recorder}

	readLimit := apihttp.RateLimitMiddleware(deps.Limiter, "public_read", ratelimit.ReadPolicy, deps.Recorder, deps.Metrics)
	contactLimit := apihttp.RateLimitMiddleware(deps.Limiter, "public_contact", ratelimit.MutatePolicy, deps.Recorder, deps.Metrics)

	group.GET("/events", readLimit, h.listEvents)
	group.GET("/team", readLimit, h.listTeam)
	group.POST("/contact", contactLimit, h.submitContact)
}

type handler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// listEvents returns published events only.
func (h *handler) listEvents(c *gin.Context) {
	var rows []models.Event
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("published = ?", true).
		Order("starts_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list events failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":          row.ID,
			"title":       row.Title,
			"description": row.Description,
			"location":    row.Location,
			"starts_at":   row.StartsAt,
			"ends_at":     row.EndsAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

// listTeam returns active team members in display order.
func (h *handler) listTeam(c *gin.Context) {
	var rows []models.TeamMember
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list team failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":        row.ID,
			"name":      row.Name,
			"title":     row.Title,
			"bio":       row.Bio,
			"photo_url": row.PhotoURL,
		})
	}
	c.JSON(http.StatusOK, gin.H{"team": out})
}

// submitContact stores a contact form submission.
func (h *handler) submitContact(c *gin.Context) {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	email := strings.TrimSpace(body.Email)
	message := strings.TrimSpace(body.Message)
	if name == "" || email == "" || message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name, email or message"})
		return
	}

	submission := models.ContactSubmission{
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(body.Subject),
		Message: message,
		Status:  models.ContactStatusNew,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&submission).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit contact failed"})
		return
	}

	if h.recorder != nil {
		h.recorder.Record(audit.Entry{
			Action:     audit.ActionCreate,
			Resource:   "contact_submission",
			ResourceID: strconv.FormatUint(submission.ID, 10),
			Actor:      audit.SystemActor(),
			Request: audit.RequestMeta{
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				Path:      c.Request.URL.Path,
			},
			Status: audit.StatusSuccess,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": submission.ID})
}
