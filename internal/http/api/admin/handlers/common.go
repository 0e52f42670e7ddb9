package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/security"
)

// SessionCookieName is the HTTP-only cookie carrying the admin session token.
const SessionCookieName = "yl_admin_session"

// ClaimsContextKey is the gin context key holding verified session claims.
const ClaimsContextKey = "adminClaims"

// SetSessionCookie attaches the session token as a secure, strict-same-site
// cookie.
func SetSessionCookie(c *gin.Context, token string, maxAgeSeconds int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, token, maxAgeSeconds, "/", "", true, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", true, true)
}

// ClaimsFromContext extracts the verified session claims set by the auth
// middleware.
func ClaimsFromContext(c *gin.Context) (*security.SessionClaims, bool) {
	value, ok := c.Get(ClaimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*security.SessionClaims)
	return claims, ok && claims != nil
}

// requestMeta captures the request context attached to audit records.
func requestMeta(c *gin.Context) audit.RequestMeta {
	return audit.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Path:      c.Request.URL.Path,
	}
}

// formatID renders a numeric resource ID for audit records.
func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// actorFromContext resolves the audit actor for the signed-in admin, or the
// anonymous actor when no session is present.
func actorFromContext(c *gin.Context) audit.Actor {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return audit.AnonymousActor()
	}
	return audit.Actor{ID: claims.AdminID, Email: claims.Email}
}

// recordMutation writes the single audit record for one mutation attempt.
func recordMutation(recorder *audit.Recorder, c *gin.Context, action, resource string, id uint64, before, after map[string]any, status, errMsg string) {
	resourceID := ""
	if id != 0 {
		resourceID = formatID(id)
	}
	recorder.Record(audit.Entry{
		Action:       action,
		Resource:     resource,
		ResourceID:   resourceID,
		Actor:        actorFromContext(c),
		Request:      requestMeta(c),
		Before:       before,
		After:        after,
		Status:       status,
		ErrorMessage: errMsg,
	})
}
