package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/models"
)

// EventHandler manages program event endpoints.
type EventHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(db *gorm.DB, recorder *audit.Recorder) *EventHandler {
	return &EventHandler{db: db, recorder: recorder}
}

// eventRequest defines the request body for event creation and update.
type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Published   *bool      `json:"published"`
}

func eventResponse(event models.Event) gin.H {
	return gin.H{
		"id":          event.ID,
		"title":       event.Title,
		"description": event.Description,
		"location":    event.Location,
		"starts_at":   event.StartsAt,
		"ends_at":     event.EndsAt,
		"published":   event.Published,
		"created_at":  event.CreatedAt,
		"updated_at":  event.UpdatedAt,
	}
}

// Create adds a new event.
func (h *EventHandler) Create(c *gin.Context) {
	var body eventRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}
	if body.StartsAt.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing starts_at"})
		return
	}

	now := time.Now().UTC()
	event := models.Event{
		Title:       title,
		Description: strings.TrimSpace(body.Description),
		Location:    strings.TrimSpace(body.Location),
		StartsAt:    body.StartsAt.UTC(),
		EndsAt:      body.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if body.Published != nil {
		event.Published = *body.Published
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&event).Error; errCreate != nil {
		recordMutation(h.recorder, c, audit.ActionCreate, "event", 0, nil, nil, audit.StatusFailure, "create event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create event failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionCreate, "event", event.ID, nil, map[string]any{
		"title":     event.Title,
		"starts_at": event.StartsAt,
		"published": event.Published,
	}, audit.StatusSuccess, "")
	c.JSON(http.StatusCreated, eventResponse(event))
}

// List returns events, optionally filtered by published state.
func (h *EventHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Event{})
	if publishedQ := strings.TrimSpace(c.Query("published")); publishedQ != "" {
		if published, errParse := strconv.ParseBool(publishedQ); errParse == nil {
			q = q.Where("published = ?", published)
		}
	}

	var rows []models.Event
	if errFind := q.Order("starts_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list events failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

// Get returns one event by ID.
func (h *EventHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var event models.Event
	if errFind := h.db.WithContext(c.Request.Context()).First(&event, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, eventResponse(event))
}

// Update modifies an event.
func (h *EventHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body eventRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Event
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	before := map[string]any{}
	after := map[string]any{}

	if title := strings.TrimSpace(body.Title); title != "" && title != existing.Title {
		updates["title"] = title
		before["title"] = existing.Title
		after["title"] = title
	}
	if description := strings.TrimSpace(body.Description); description != "" && description != existing.Description {
		updates["description"] = description
	}
	if location := strings.TrimSpace(body.Location); location != "" && location != existing.Location {
		updates["location"] = location
	}
	if !body.StartsAt.IsZero() {
		updates["starts_at"] = body.StartsAt.UTC()
	}
	if body.EndsAt != nil {
		updates["ends_at"] = body.EndsAt
	}
	if body.Published != nil && *body.Published != existing.Published {
		updates["published"] = *body.Published
		before["published"] = existing.Published
		after["published"] = *body.Published
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Event{}).
		Where("id = ?", id).Updates(updates).Error; errUpdate != nil {
		recordMutation(h.recorder, c, audit.ActionUpdate, "event", id, before, after, audit.StatusFailure, "update event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update event failed"})
		return
	}

	recordMutation(h.recorder, c, audit.ActionUpdate, "event", id, before, after, audit.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an event.
func (h *EventHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Event{}, id)
	if res.Error != nil {
		recordMutation(h.recorder, c, audit.ActionDelete, "event", id, nil, nil, audit.StatusFailure, "delete event failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete event failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	recordMutation(h.recorder, c, audit.ActionDelete, "event", id, nil, nil, audit.StatusSuccess, "")
	c.Status(http.StatusNoContent)
}
