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

// VolunteerHandler manages volunteer application review endpoints.
type VolunteerHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewVolunteerHandler constructs a VolunteerHandler.
func NewVolunteerHandler(db *gorm.DB, recorder *audit.Recorder) *VolunteerHandler {
	return &VolunteerHandler{db: db, recorder: recorder}
}

func volunteerResponse(v models.Volunteer) gin.H {
	return gin.H{
		"id":         v.ID,
		"name":       v.Name,
		"email":      v.Email,
		"phone":      v.Phone,
		"motivation": v.Motivation,
		"status":     v.Status,
		"created_at": v.CreatedAt,
		"updated_at": v.UpdatedAt,
	}
}

func validVolunteerStatus(status string) bool {
	switch status {
	case models.VolunteerStatusPending, models.VolunteerStatusApproved, models.VolunteerStatusRejected:
		return true
	}
	return false
}

// List returns volunteer applications, optionally filtered by status.
func (h *VolunteerHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Volunteer{})
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !validVolunteerStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var rows []models.Volunteer
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list volunteers failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, volunteerResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"volunteers": out})
}

// Get returns one volunteer application.
func (h *VolunteerHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var volunteer models.Volunteer
	if errFind := h.db.WithContext(c.Request.Context()).First(&volunteer, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, volunteerResponse(volunteer))
}

// UpdateStatus transitions a volunteer application between review states.
func (h *VolunteerHandler) UpdateStatus(c *gin.Context) {
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
	if !validVolunteerStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	var existing models.Volunteer
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

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Volunteer{}).
		Where("id = ?", id).Update("status", status).Error; errUpdate != nil {
		recordMutation(h.recorder, c, audit.ActionUpdate, "volunteer", id, before, after, audit.StatusFailure, "update volunteer failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update volunteer failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionUpdate, "volunteer", id, before, after, audit.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a volunteer application.
func (h *VolunteerHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Volunteer{}, id)
	if res.Error != nil {
		recordMutation(h.recorder, c, audit.ActionDelete, "volunteer", id, nil, nil, audit.StatusFailure, "delete volunteer failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete volunteer failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	recordMutation(h.recorder, c, audit.ActionDelete, "volunteer", id, nil, nil, audit.StatusSuccess, "")
	c.Status(http.StatusNoContent)
}
