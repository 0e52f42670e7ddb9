package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/models"
)

// SettingHandler manages site settings stored as keyed JSON values.
type SettingHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(db *gorm.DB, recorder *audit.Recorder) *SettingHandler {
	return &SettingHandler{db: db, recorder: recorder}
}

// List returns all settings as one key/value object.
func (h *SettingHandler) List(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}
	out := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// Get returns one setting by key.
func (h *SettingHandler) Get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing key"})
		return
	}
	var setting models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("key = ?", key).First(&setting).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"key":        setting.Key,
		"value":      json.RawMessage(setting.Value),
		"updated_at": setting.UpdatedAt,
	})
}

// Upsert creates or replaces one setting value.
func (h *SettingHandler) Upsert(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing key"})
		return
	}
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil || len(body.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var previous models.Setting
	var before map[string]any
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("key = ?", key).First(&previous).Error; errFind == nil {
		before = map[string]any{"value": json.RawMessage(previous.Value)}
	}

	setting := models.Setting{Key: key, Value: datatypes.JSON(body.Value)}
	if errSave := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error; errSave != nil {
		recordMutationByKey(h.recorder, c, key, before, nil, audit.StatusFailure, "save setting failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save setting failed"})
		return
	}

	recordMutationByKey(h.recorder, c, key, before, map[string]any{"value": body.Value}, audit.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// recordMutationByKey audits a setting mutation using the string key as the
// resource ID.
func recordMutationByKey(recorder *audit.Recorder, c *gin.Context, key string, before, after map[string]any, status, errMsg string) {
	recorder.Record(audit.Entry{
		Action:       audit.ActionUpdate,
		Resource:     "setting",
		ResourceID:   key,
		Actor:        actorFromContext(c),
		Request:      requestMeta(c),
		Before:       before,
		After:        after,
		Status:       status,
		ErrorMessage: errMsg,
	})
}
