package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/models"
)

// TagHandler manages content tags.
type TagHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewTagHandler constructs a TagHandler.
func NewTagHandler(db *gorm.DB, recorder *audit.Recorder) *TagHandler {
	return &TagHandler{db: db, recorder: recorder}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL-safe slug from a tag name.
func slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func tagResponse(tag models.Tag) gin.H {
	return gin.H{
		"id":         tag.ID,
		"name":       tag.Name,
		"slug":       tag.Slug,
		"created_at": tag.CreatedAt,
		"updated_at": tag.UpdatedAt,
	}
}

// Create adds a tag. The slug is derived from the name unless given.
func (h *TagHandler) Create(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	slug := strings.TrimSpace(body.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slug"})
		return
	}

	tag := models.Tag{Name: name, Slug: slug}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&tag).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "tag already exists"})
			return
		}
		recordMutation(h.recorder, c, audit.ActionCreate, "tag", 0, nil, nil, audit.StatusFailure, "create tag failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create tag failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionCreate, "tag", tag.ID, nil, map[string]any{
		"name": tag.Name,
		"slug": tag.Slug,
	}, audit.StatusSuccess, "")
	c.JSON(http.StatusCreated, tagResponse(tag))
}

// List returns all tags.
func (h *TagHandler) List(c *gin.Context) {
	var rows []models.Tag
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("name ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list tags failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, tagResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"tags": out})
}

// Delete removes a tag.
func (h *TagHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Tag{}, id)
	if res.Error != nil {
		recordMutation(h.recorder, c, audit.ActionDelete, "tag", id, nil, nil, audit.StatusFailure, "delete tag failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete tag failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	recordMutation(h.recorder, c, audit.ActionDelete, "tag", id, nil, nil, audit.StatusSuccess, "")
	c.Status(http.StatusNoContent)
}
