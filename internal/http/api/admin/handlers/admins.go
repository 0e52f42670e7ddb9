package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	dbutil "github.com/youthlift/backoffice/internal/db"
	"github.com/youthlift/backoffice/internal/models"
	"github.com/youthlift/backoffice/internal/permissions"
	"github.com/youthlift/backoffice/internal/security"
)

// AdminHandler manages administrator account endpoints. Routes using it
// are role-exclusive to super admins.
type AdminHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB, recorder *audit.Recorder) *AdminHandler {
	return &AdminHandler{db: db, recorder: recorder}
}

// adminResponse shapes an admin row for JSON output. Password material is
// never included.
func adminResponse(admin models.Admin, granted []string) gin.H {
	if granted == nil {
		granted = permissions.Parse(admin.Permissions)
	}
	return gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"email":         admin.Email,
		"role":          admin.Role,
		"permissions":   granted,
		"active":        admin.Active,
		"last_login_at": admin.LastLoginAt,
		"created_at":    admin.CreatedAt,
		"updated_at":    admin.UpdatedAt,
	}
}

// createAdminRequest defines the request body for admin creation.
type createAdminRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Create provisions a new admin account. When no explicit permission set
// is supplied, the role's defaults apply.
func (h *AdminHandler) Create(c *gin.Context) {
	var body createAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}
	password := strings.TrimSpace(body.Password)
	if len(password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}
	role := strings.TrimSpace(body.Role)
	if !permissions.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	granted := permissions.Normalize(body.Permissions)
	if len(granted) == 0 {
		granted = permissions.RoleDefaults(role)
	}
	if errValidate := permissions.Validate(granted); errValidate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permissions"})
		return
	}
	permissionsJSON, errMarshal := permissions.Marshal(granted)
	if errMarshal != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "marshal permissions failed"})
		return
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:    username,
		Email:       email,
		Password:    hash,
		Role:        role,
		Permissions: datatypes.JSON(permissionsJSON),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&admin).Error; errCreate != nil {
		h.auditAdminMutation(c, audit.ActionCreate, 0, nil, nil, audit.StatusFailure, "create admin failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create admin failed"})
		return
	}

	h.auditAdminMutation(c, audit.ActionCreate, admin.ID, nil, map[string]any{
		"username":    admin.Username,
		"email":       admin.Email,
		"role":        admin.Role,
		"permissions": granted,
	}, audit.StatusSuccess, "")
	c.JSON(http.StatusCreated, adminResponse(admin, granted))
}

// List returns admin accounts with optional username/id filters.
func (h *AdminHandler) List(c *gin.Context) {
	var (
		usernameQ = strings.TrimSpace(c.Query("username"))
		idQ       = strings.TrimSpace(c.Query("id"))
	)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Admin{})
	if usernameQ != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+usernameQ+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "username"), pattern)
	}
	if idQ != "" {
		if id, errParse := strconv.ParseUint(idQ, 10, 64); errParse == nil {
			q = q.Where("id = ?", id)
		}
	}

	var rows []models.Admin
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list admins failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, adminResponse(row, nil))
	}
	c.JSON(http.StatusOK, gin.H{"admins": out})
}

// Get returns a single admin account by ID.
func (h *AdminHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, adminResponse(admin, nil))
}

// updateAdminRequest defines the request body for admin updates.
type updateAdminRequest struct {
	Email       *string   `json:"email"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	Active      *bool     `json:"active"`
}

// Update modifies admin account fields and audits the change with a
// field-level before/after snapshot.
func (h *AdminHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Admin
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

	if body.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*body.Email))
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email cannot be empty"})
			return
		}
		updates["email"] = email
		before["email"] = existing.Email
		after["email"] = email
	}
	if body.Role != nil {
		role := strings.TrimSpace(*body.Role)
		if !permissions.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		updates["role"] = role
		before["role"] = existing.Role
		after["role"] = role
	}
	if body.Permissions != nil {
		granted := permissions.Normalize(*body.Permissions)
		if errValidate := permissions.Validate(granted); errValidate != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permissions"})
			return
		}
		permissionsJSON, errMarshal := permissions.Marshal(granted)
		if errMarshal != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "marshal permissions failed"})
			return
		}
		updates["permissions"] = datatypes.JSON(permissionsJSON)
		before["permissions"] = permissions.Parse(existing.Permissions)
		after["permissions"] = granted
	}
	if body.Active != nil {
		updates["active"] = *body.Active
		before["active"] = existing.Active
		after["active"] = *body.Active
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		h.auditAdminMutation(c, audit.ActionUpdate, id, before, after, audit.StatusFailure, "update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.auditAdminMutation(c, audit.ActionUpdate, id, before, after, audit.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Disable deactivates an admin account. Preferred over deletion so the
// audit trail keeps a referent.
func (h *AdminHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

// Enable reactivates an admin account.
func (h *AdminHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

func (h *AdminHandler) setActive(c *gin.Context, active bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		h.auditAdminMutation(c, audit.ActionUpdate, id,
			map[string]any{"active": !active},
			map[string]any{"active": active},
			audit.StatusFailure, "update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.auditAdminMutation(c, audit.ActionUpdate, id,
		map[string]any{"active": !active},
		map[string]any{"active": active},
		audit.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an admin account outright.
func (h *AdminHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	claims, ok := ClaimsFromContext(c)
	if ok && claims.AdminID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete own account"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Admin{}, id)
	if res.Error != nil {
		h.auditAdminMutation(c, audit.ActionDelete, id, nil, nil, audit.StatusFailure, "delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.auditAdminMutation(c, audit.ActionDelete, id, nil, nil, audit.StatusSuccess, "")
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) auditAdminMutation(c *gin.Context, action string, id uint64, before, after map[string]any, status, errMsg string) {
	resourceID := ""
	if id != 0 {
		resourceID = formatID(id)
	}
	h.recorder.Record(audit.Entry{
		Action:       action,
		Resource:     "admin",
		ResourceID:   resourceID,
		Actor:        actorFromContext(c),
		Request:      requestMeta(c),
		Before:       before,
		After:        after,
		Status:       status,
		ErrorMessage: errMsg,
	})
}
