package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/config"
	"github.com/youthlift/backoffice/internal/http/api/admin/handlers"
	"github.com/youthlift/backoffice/internal/permissions"
	"github.com/youthlift/backoffice/internal/security"
)

// AuthState tags the outcome of an authorization decision so call sites
// cannot mistake a denial for a valid session.
type AuthState int

const (
	// StateAuthenticated carries verified claims.
	StateAuthenticated AuthState = iota
	// StateUnauthenticated means no valid session token was presented.
	StateUnauthenticated
	// StateForbidden means the session is valid but lacks the required
	// role or permission.
	StateForbidden
)

// Decision is the tagged result of an authorization check. Claims is only
// set for StateAuthenticated.
type Decision struct {
	State  AuthState
	Claims *security.SessionClaims
}

// Authenticate verifies the session cookie and returns a Decision. Absent,
// malformed, tampered and expired tokens all collapse to Unauthenticated.
func Authenticate(c *gin.Context, session config.SessionConfig) Decision {
	token, errCookie := c.Cookie(handlers.SessionCookieName)
	if errCookie != nil || token == "" {
		return Decision{State: StateUnauthenticated}
	}
	claims, errParse := security.ParseSessionToken(session.Secret, token)
	if errParse != nil {
		return Decision{State: StateUnauthenticated}
	}
	return Decision{State: StateAuthenticated, Claims: claims}
}

// RequirePermission narrows an authenticated decision to a permission
// check. Super admins pass every check; missing or malformed role data
// fails closed.
func (d Decision) RequirePermission(permission string) Decision {
	if d.State != StateAuthenticated || d.Claims == nil {
		return Decision{State: StateUnauthenticated}
	}
	if !permissions.Allowed(d.Claims.Role, d.Claims.Permissions, permission) {
		return Decision{State: StateForbidden, Claims: nil}
	}
	return d
}

// RequireRole narrows an authenticated decision to an exact-role check.
func (d Decision) RequireRole(role string) Decision {
	if d.State != StateAuthenticated || d.Claims == nil {
		return Decision{State: StateUnauthenticated}
	}
	if d.Claims.Role != role {
		return Decision{State: StateForbidden, Claims: nil}
	}
	return d
}

// authMiddleware authenticates the session cookie and loads claims into
// the context. Failures are audited as unauthorized access.
func authMiddleware(session config.SessionConfig, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := Authenticate(c, session)
		if decision.State != StateAuthenticated {
			if recorder != nil {
				recorder.RecordSecurityEvent(
					audit.ActionUnauthorized,
					"auth",
					audit.AnonymousActor(),
					audit.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent(), Path: c.Request.URL.Path},
					"missing or invalid session token",
				)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(handlers.ClaimsContextKey, decision.Claims)
		c.Next()
	}
}

// requirePermission enforces one permission for every route in a group.
// The super admin bypass lives in permissions.Allowed, not here, so no
// call site can drift.
func requirePermission(permission string, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := handlers.ClaimsFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		decision := Decision{State: StateAuthenticated, Claims: claims}.RequirePermission(permission)
		if decision.State != StateAuthenticated {
			auditDenial(c, recorder, claims, "missing permission "+permission)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

// requireRole enforces an exact role for role-exclusive operations such as
// managing other administrators.
func requireRole(role string, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := handlers.ClaimsFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		decision := Decision{State: StateAuthenticated, Claims: claims}.RequireRole(role)
		if decision.State != StateAuthenticated {
			auditDenial(c, recorder, claims, "missing role "+role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

func auditDenial(c *gin.Context, recorder *audit.Recorder, claims *security.SessionClaims, message string) {
	if recorder == nil {
		return
	}
	recorder.Record(audit.Entry{
		Action:   audit.ActionUnauthorized,
		Resource: "auth",
		Actor:    audit.Actor{ID: claims.AdminID, Email: claims.Email},
		Request: audit.RequestMeta{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Path:      c.Request.URL.Path,
		},
		Status:       audit.StatusFailure,
		ErrorMessage: message,
		Severity:     audit.SeverityWarning,
	})
}
