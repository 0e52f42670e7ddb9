package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/config"
	"github.com/youthlift/backoffice/internal/mail"
	"github.com/youthlift/backoffice/internal/models"
	"github.com/youthlift/backoffice/internal/permissions"
	"github.com/youthlift/backoffice/internal/security"
)

// invalidCredentials is the single message for every login failure mode so
// responses never reveal whether the account exists.
const invalidCredentials = "invalid credentials"

const minPasswordLength = 8

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	session  config.SessionConfig
	recorder *audit.Recorder
	mailer   mail.Mailer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, session config.SessionConfig, recorder *audit.Recorder, mailer mail.Mailer) *AuthHandler {
	if mailer == nil {
		mailer = mail.LogMailer{}
	}
	return &AuthHandler{db: db, session: session, recorder: recorder, mailer: mailer}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	username := strings.TrimSpace(body.Username)
	password := strings.TrimSpace(body.Password)
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).Where("username = ?", username).First(&admin).Error; errFind != nil {
		security.BurnPasswordCheck(password)
		h.recordLoginFailure(c, audit.AnonymousActor(), "unknown username")
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}

	actor := audit.Actor{ID: admin.ID, Email: admin.Email}

	if !admin.Active {
		security.BurnPasswordCheck(password)
		h.recordLoginFailure(c, actor, "account deactivated")
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}

	if !security.CheckPassword(admin.Password, password) {
		h.recordLoginFailure(c, actor, "wrong password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}

	if admin.Role == "" {
		if errMigrate := h.migrateLegacyRole(c, &admin); errMigrate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
	}

	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{"last_login_at": now, "updated_at": now}).Error; errUpdate != nil {
		log.WithError(errUpdate).Warn("auth: update last login failed")
	}

	granted := permissions.Parse(admin.Permissions)
	token, errIssue := security.IssueSessionToken(
		h.session.Secret, admin.ID, admin.Username, admin.Email, admin.Role, granted, h.session.Expiry())
	if errIssue != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue session failed"})
		return
	}
	SetSessionCookie(c, token, int(h.session.Expiry().Seconds()))

	h.recorder.Record(audit.Entry{
		Action:   audit.ActionLogin,
		Resource: "auth",
		Actor:    actor,
		Request:  requestMeta(c),
		Status:   audit.StatusSuccess,
	})

	c.JSON(http.StatusOK, gin.H{"user": adminResponse(admin, granted)})
}

// migrateLegacyRole upgrades a pre-role admin row exactly once, at login.
// Legacy rows predate the role column and were provisioned with full
// access, so they become super admins; the migration itself is audited.
func (h *AuthHandler) migrateLegacyRole(c *gin.Context, admin *models.Admin) error {
	permissionsJSON, errMarshal := permissions.Marshal(permissions.RoleDefaults(permissions.RoleSuperAdmin))
	if errMarshal != nil {
		return errMarshal
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ? AND (role IS NULL OR role = '')", admin.ID).
		Updates(map[string]any{
			"role":        permissions.RoleSuperAdmin,
			"permissions": datatypes.JSON(permissionsJSON),
			"updated_at":  time.Now().UTC(),
		}).Error; errUpdate != nil {
		return errUpdate
	}

	log.Warnf("auth: migrated legacy admin %d (%s) to role %s", admin.ID, admin.Username, permissions.RoleSuperAdmin)
	h.recorder.Record(audit.Entry{
		Action:     audit.ActionUpdate,
		Resource:   "admin",
		ResourceID: formatID(admin.ID),
		Actor:      audit.SystemActor(),
		Request:    requestMeta(c),
		Before:     map[string]any{"role": ""},
		After:      map[string]any{"role": permissions.RoleSuperAdmin},
		Status:     audit.StatusSuccess,
		Severity:   audit.SeverityWarning,
	})

	admin.Role = permissions.RoleSuperAdmin
	admin.Permissions = datatypes.JSON(permissionsJSON)
	return nil
}

func (h *AuthHandler) recordLoginFailure(c *gin.Context, actor audit.Actor, reason string) {
	h.recorder.Record(audit.Entry{
		Action:       audit.ActionLoginFailed,
		Resource:     "auth",
		Actor:        actor,
		Request:      requestMeta(c),
		Status:       audit.StatusFailure,
		ErrorMessage: reason,
		Severity:     audit.SeverityWarning,
	})
}

// Verify reports whether the presented session is valid.
func (h *AuthHandler) Verify(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":          claims.AdminID,
			"username":    claims.Username,
			"email":       claims.Email,
			"role":        claims.Role,
			"permissions": claims.Permissions,
		},
	})
}

// Logout clears the session cookie. Sessions are stateless, so the token
// itself stays valid until expiry; the cookie removal is what ends the
// browser session.
func (h *AuthHandler) Logout(c *gin.Context) {
	ClearSessionCookie(c)
	h.recorder.Record(audit.Entry{
		Action:   audit.ActionLogout,
		Resource: "auth",
		Actor:    actorFromContext(c),
		Request:  requestMeta(c),
		Status:   audit.StatusSuccess,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// changePasswordRequest defines the request body for password changes.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword updates the signed-in admin's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	currentPassword := strings.TrimSpace(body.CurrentPassword)
	newPassword := strings.TrimSpace(body.NewPassword)
	if currentPassword == "" || newPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_password and new_password are required"})
		return
	}
	if len(newPassword) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new_password must be at least 8 characters"})
		return
	}

	actor := audit.Actor{ID: claims.AdminID, Email: claims.Email}

	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}
	if !security.CheckPassword(admin.Password, currentPassword) {
		h.recorder.Record(audit.Entry{
			Action:       audit.ActionPasswordChange,
			Resource:     "admin",
			ResourceID:   formatID(admin.ID),
			Actor:        actor,
			Request:      requestMeta(c),
			Status:       audit.StatusFailure,
			ErrorMessage: "wrong current password",
			Severity:     audit.SeverityWarning,
		})
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidCredentials})
		return
	}

	hash, errHash := security.HashPassword(newPassword)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}
	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{
			"password":                hash,
			"last_password_change_at": now,
			"updated_at":              now,
		}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "change password failed"})
		return
	}

	h.recorder.Record(audit.Entry{
		Action:     audit.ActionPasswordChange,
		Resource:   "admin",
		ResourceID: formatID(admin.ID),
		Actor:      actor,
		Request:    requestMeta(c),
		Status:     audit.StatusSuccess,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// forgotPasswordRequest defines the request body for reset requests.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a time-limited reset token. The response is the
// same whether or not the account exists, to prevent enumeration.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var body forgotPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	genericResponse := gin.H{"message": "if the account exists, a reset link has been sent"}

	var admin models.Admin
	errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&admin).Error
	if errFind != nil || !admin.Active {
		if errFind != nil && !errors.Is(errFind, gorm.ErrRecordNotFound) {
			log.WithError(errFind).Warn("auth: reset lookup failed")
		}
		h.recorder.Record(audit.Entry{
			Action:       audit.ActionPasswordResetRequest,
			Resource:     "auth",
			Actor:        audit.AnonymousActor(),
			Request:      requestMeta(c),
			Status:       audit.StatusFailure,
			ErrorMessage: "no matching active account",
		})
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	token, expiresAt := security.NewResetToken()
	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{
			"reset_token":            token,
			"reset_token_expires_at": expiresAt,
			"updated_at":             now,
		}).Error; errUpdate != nil {
		log.WithError(errUpdate).Warn("auth: store reset token failed")
		h.recorder.Record(audit.Entry{
			Action:       audit.ActionPasswordResetRequest,
			Resource:     "auth",
			ResourceID:   formatID(admin.ID),
			Actor:        audit.Actor{ID: admin.ID, Email: admin.Email},
			Request:      requestMeta(c),
			Status:       audit.StatusFailure,
			ErrorMessage: "store reset token failed",
		})
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	if errSend := h.mailer.SendPasswordReset(c.Request.Context(), admin.Email, token); errSend != nil {
		log.WithError(errSend).Warn("auth: send reset mail failed")
	}

	h.recorder.Record(audit.Entry{
		Action:     audit.ActionPasswordResetRequest,
		Resource:   "auth",
		ResourceID: formatID(admin.ID),
		Actor:      audit.Actor{ID: admin.ID, Email: admin.Email},
		Request:    requestMeta(c),
		Status:     audit.StatusSuccess,
	})
	c.JSON(http.StatusOK, genericResponse)
}

// resetPasswordRequest defines the request body for completing a reset.
type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword redeems a reset token and sets a new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var body resetPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	token := strings.TrimSpace(body.Token)
	newPassword := strings.TrimSpace(body.NewPassword)
	if token == "" || newPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and new_password are required"})
		return
	}
	if len(newPassword) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new_password must be at least 8 characters"})
		return
	}

	var admin models.Admin
	errFind := h.db.WithContext(c.Request.Context()).
		Where("reset_token = ?", token).
		First(&admin).Error
	expired := errFind == nil && (admin.ResetTokenExpiresAt == nil || admin.ResetTokenExpiresAt.Before(time.Now().UTC()))
	if errFind != nil || expired || !admin.Active {
		h.recorder.Record(audit.Entry{
			Action:       audit.ActionPasswordResetComplete,
			Resource:     "auth",
			Actor:        audit.AnonymousActor(),
			Request:      requestMeta(c),
			Status:       audit.StatusFailure,
			ErrorMessage: "invalid or expired reset token",
			Severity:     audit.SeverityWarning,
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired reset token"})
		return
	}

	hash, errHash := security.HashPassword(newPassword)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}
	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{
			"password":                hash,
			"reset_token":             "",
			"reset_token_expires_at":  nil,
			"last_password_change_at": now,
			"updated_at":              now,
		}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset password failed"})
		return
	}

	h.recorder.Record(audit.Entry{
		Action:     audit.ActionPasswordResetComplete,
		Resource:   "auth",
		ResourceID: formatID(admin.ID),
		Actor:      audit.Actor{ID: admin.ID, Email: admin.Email},
		Request:    requestMeta(c),
		Status:     audit.StatusSuccess,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
