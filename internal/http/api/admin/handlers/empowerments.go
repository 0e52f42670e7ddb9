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

// EmpowermentHandler manages empowerment program articles.
type EmpowermentHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewEmpowermentHandler constructs an EmpowermentHandler.
func NewEmpowermentHandler(db *gorm.DB, recorder *audit.Recorder) *EmpowermentHandler {
	return &EmpowermentHandler{db: db, recorder: recorder}
}

type empowermentRequest struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Published *bool  `json:"published"`
}

func empowermentResponse(e models.Empowerment) gin.H {
	return gin.H{
		"id":         e.ID,
		"title":      e.Title,
		"summary":    e.Summary,
		"body":       e.Body,
		"published":  e.Published,
		"created_at": e.CreatedAt,
		"updated_at": e.UpdatedAt,
	}
}

// Create adds an empowerment article.
func (h *EmpowermentHandler) Create(c *gin.Context) {
	var body empowermentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}

	article := models.Empowerment{
		Title:   title,
		Summary: strings.TrimSpace(body.Summary),
		Body:    body.Body,
	}
	if body.Published != nil {
		article.Published = *body.Published
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&article).Error; errCreate != nil {
		recordMutation(h.recorder, c, audit.ActionCreate, "empowerment", 0, nil, nil, audit.StatusFailure, "create empowerment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create empowerment failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionCreate, "empowerment", article.ID, nil, map[string]any{
		"title":     article.Title,
		"published": article.Published,
	}, audit.StatusSuccess, "")
	c.JSON(http.StatusCreated, empowermentResponse(article))
}

// List returns empowerment articles.
func (h *EmpowermentHandler) List(c *gin.Context) {
	var rows []models.Empowerment
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list empowerments failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, empowermentResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"empowerments": out})
}

// Get returns one empowerment article.
func (h *EmpowermentHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var article models.Empowerment
	if errFind := h.db.WithContext(c.Request.Context()).First(&article, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, empowermentResponse(article))
}

// Update modifies an empowerment article.
func (h *EmpowermentHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body empowermentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Empowerment
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

	if title := strings.TrimSpace(body.Title); title != "" && title != existing.Title {
		updates["title"] = title
		before["title"] = existing.Title
		after["title"] = title
	}
	if summary := strings.TrimSpace(body.Summary); summary != "" && summary != existing.Summary {
		updates["summary"] = summary
	}
	if body.Body != "" && body.Body != existing.Body {
		updates["body"] = body.Body
	}
	if body.Published != nil && *body.Published != existing.Published {
		updates["published"] = *body.Published
		before["published"] = existing.Published
		after["published"] = *body.Published
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Empowerment{}).
		Where("id = ?", id).Updates(updates).Error; errUpdate != nil {
		recordMutation(h.recorder, c, audit.ActionUpdate, "empowerment", id, before, after, audit.StatusFailure, "update empowerment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update empowerment failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionUpdate, "empowerment", id, before, after, audit.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an empowerment article.
func (h *EmpowermentHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Empowerment{}, id)
	if res.Error != nil {
		recordMutation(h.recorder, c, audit.ActionDelete, "empowerment", id, nil, nil, audit.StatusFailure, "delete empowerment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete empowerment failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	recordMutation(h.recorder, c, audit.ActionDelete, "empowerment", id, nil, nil, audit.StatusSuccess, "")
	c.Status(http.StatusNoContent)
}
