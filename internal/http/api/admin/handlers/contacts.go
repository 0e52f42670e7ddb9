package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/models"
)

// ContactHandler manages contact form submissions for the back office.
type ContactHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewContactHandler constructs a ContactHandler.
func NewContactHandler(db *gorm.DB, recorder *audit.Recorder) *ContactHandler {
	return &ContactHandler{db: db, recorder: recorder}
}

func contactResponse(s models.ContactSubmission) gin.H {
	return gin.H{
		"id":         s.ID,
		"name":       s.Name,
		"email":      s.Email,
		"subject":    s.Subject,
		"message":    s.Message,
		"status":     s.Status,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}

func validContactStatus(status string) bool {
	switch status {
	case models.ContactStatusNew, models.ContactStatusRead, models.ContactStatusArchived:
		return true
	}
	return false
}

// List returns contact submissions, optionally filtered by status.
func (h *ContactHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.ContactSubmission{})
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !validContactStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var rows []models.ContactSubmission
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list contacts failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, contactResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"contacts": out})
}

// UpdateStatus moves a submission between new, read and archived.
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	status := strings.TrimSpace(body.Status)
	if !validContactStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	var existing models.ContactSubmission
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	before := map[string]any{"status": existing.Status}
	after := map[string]any{"status": status}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.ContactSubmission{}).
		Where("id = ?", id).Update("status", status).Error; errUpdate != nil {
		recordMutation(h.recorder, c, audit.ActionUpdate, "contact_submission", id, before, after, audit.StatusFailure, "update contact failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update contact failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionUpdate, "contact_submission", id, before, after, audit.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a contact submission.
func (h *ContactHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.ContactSubmission{}, id)
	if res.Error != nil {
		recordMutation(h.recorder, c, audit.ActionDelete, "contact_submission", id, nil, nil, audit.StatusFailure, "delete contact failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete contact failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	recordMutation(h.recorder, c, audit.ActionDelete, "contact_submission", id, nil, nil, audit.StatusSuccess, "")
	c.Status(http.StatusNoContent)
}
