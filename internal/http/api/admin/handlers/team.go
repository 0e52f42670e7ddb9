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

// TeamHandler manages the public team roster.
type TeamHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(db *gorm.DB, recorder *audit.Recorder) *TeamHandler {
	return &TeamHandler{db: db, recorder: recorder}
}

type teamMemberRequest struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Bio       string `json:"bio"`
	PhotoURL  string `json:"photo_url"`
	SortOrder *int   `json:"sort_order"`
	Active    *bool  `json:"active"`
}

func teamMemberResponse(m models.TeamMember) gin.H {
	return gin.H{
		"id":         m.ID,
		"name":       m.Name,
		"title":      m.Title,
		"bio":        m.Bio,
		"photo_url":  m.PhotoURL,
		"sort_order": m.SortOrder,
		"active":     m.Active,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
	}
}

// Create adds a team member.
func (h *TeamHandler) Create(c *gin.Context) {
	var body teamMemberRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	member := models.TeamMember{
		Name:     name,
		Title:    strings.TrimSpace(body.Title),
		Bio:      strings.TrimSpace(body.Bio),
		PhotoURL: strings.TrimSpace(body.PhotoURL),
		Active:   true,
	}
	if body.SortOrder != nil {
		member.SortOrder = *body.SortOrder
	}
	if body.Active != nil {
		member.Active = *body.Active
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&member).Error; errCreate != nil {
		recordMutation(h.recorder, c, audit.ActionCreate, "team_member", 0, nil, nil, audit.StatusFailure, "create team member failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create team member failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionCreate, "team_member", member.ID, nil, map[string]any{
		"name":  member.Name,
		"title": member.Title,
	}, audit.StatusSuccess, "")
	c.JSON(http.StatusCreated, teamMemberResponse(member))
}

// List returns team members ordered for display.
func (h *TeamHandler) List(c *gin.Context) {
	var rows []models.TeamMember
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC, id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list team failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamMemberResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"team": out})
}

// Update modifies a team member.
func (h *TeamHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body teamMemberRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.TeamMember
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{}
	before := map[string]any{}
	after := map[string]any{}

	if name := strings.TrimSpace(body.Name); name != "" && name != existing.Name {
		updates["name"] = name
		before["name"] = existing.Name
		after["name"] = name
	}
	if title := strings.TrimSpace(body.Title); title != "" && title != existing.Title {
		updates["title"] = title
	}
	if bio := strings.TrimSpace(body.Bio); bio != "" && bio != existing.Bio {
		updates["bio"] = bio
	}
	if photo := strings.TrimSpace(body.PhotoURL); photo != "" && photo != existing.PhotoURL {
		updates["photo_url"] = photo
	}
	if body.SortOrder != nil && *body.SortOrder != existing.SortOrder {
		updates["sort_order"] = *body.SortOrder
	}
	if body.Active != nil && *body.Active != existing.Active {
		updates["active"] = *body.Active
		before["active"] = existing.Active
		after["active"] = *body.Active
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.TeamMember{}).
		Where("id = ?", id).Updates(updates).Error; errUpdate != nil {
		recordMutation(h.recorder, c, audit.ActionUpdate, "team_member", id, before, after, audit.StatusFailure, "update team member failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update team member failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionUpdate, "team_member", id, before, after, audit.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a team member.
func (h *TeamHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.TeamMember{}, id)
	if res.Error != nil {
		recordMutation(h.recorder, c, audit.ActionDelete, "team_member", id, nil, nil, audit.StatusFailure, "delete team member failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete team member failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	recordMutation(h.recorder, c, audit.ActionDelete, "team_member", id, nil, nil, audit.StatusSuccess, "")
	c.Status(http.StatusNoContent)
}
