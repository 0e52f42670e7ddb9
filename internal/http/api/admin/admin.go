// Package admin wires the authenticated back office API under /v0/admin.
package admin

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/config"
	apihttp "github.com/youthlift/backoffice/internal/http"
	"github.com/youthlift/backoffice/internal/http/api/admin/handlers"
	"github.com/youthlift/backoffice/internal/mail"
	"github.com/youthlift/backoffice/internal/metrics"
	"github.com/youthlift/backoffice/internal/permissions"
	"github.com/youthlift/backoffice/internal/ratelimit"
)

// Deps carries the shared services the admin API needs.
type Deps struct {
	DB       *gorm.DB
	Session  config.SessionConfig
	Recorder *audit.Recorder
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
	Mailer   mail.Mailer
}

// RegisterRoutes mounts the admin API on the router group. Authentication,
// rate limiting and permission checks are enforced here so handlers stay
// free of policy.
func RegisterRoutes(group *gin.RouterGroup, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Session, deps.Recorder, deps.Mailer)
	adminHandler := handlers.NewAdminHandler(deps.DB, deps.Recorder)
	eventHandler := handlers.NewEventHandler(deps.DB, deps.Recorder)
	volunteerHandler := handlers.NewVolunteerHandler(deps.DB, deps.Recorder)
	teamHandler := handlers.NewTeamHandler(deps.DB, deps.Recorder)
	tagHandler := handlers.NewTagHandler(deps.DB, deps.Recorder)
	empowermentHandler := handlers.NewEmpowermentHandler(deps.DB, deps.Recorder)
	contactHandler := handlers.NewContactHandler(deps.DB, deps.Recorder)
	settingHandler := handlers.NewSettingHandler(deps.DB, deps.Recorder)
	auditLogHandler := handlers.NewAuditLogHandler(deps.DB)
	securityHandler := handlers.NewSecurityEventHandler(deps.DB)

	loginLimit := apihttp.RateLimitMiddleware(deps.Limiter, "login", ratelimit.LoginPolicy, deps.Recorder, deps.Metrics)
	mutateLimit := apihttp.RateLimitMiddleware(deps.Limiter, "mutate", ratelimit.MutatePolicy, deps.Recorder, deps.Metrics)
	readLimit := apihttp.RateLimitMiddleware(deps.Limiter, "read", ratelimit.ReadPolicy, deps.Recorder, deps.Metrics)

	auth := group.Group("/auth")
	{
		auth.POST("/login", loginLimit, authHandler.Login)
		auth.POST("/forgot-password", loginLimit, authHandler.ForgotPassword)
		auth.POST("/reset-password", loginLimit, authHandler.ResetPassword)
	}

	authed := group.Group("")
	authed.Use(authMiddleware(deps.Session, deps.Recorder))
	{
		authed.GET("/auth/verify", readLimit, authHandler.Verify)
		authed.POST("/auth/logout", mutateLimit, authHandler.Logout)
		authed.POST("/auth/change-password", loginLimit, authHandler.ChangePassword)
	}

	admins := authed.Group("/admins")
	admins.Use(requireRole(permissions.RoleSuperAdmin, deps.Recorder))
	{
		admins.POST("", mutateLimit, adminHandler.Create)
		admins.GET("", readLimit, adminHandler.List)
		admins.GET("/:id", readLimit, adminHandler.Get)
		admins.PUT("/:id", mutateLimit, adminHandler.Update)
		admins.POST("/:id/disable", mutateLimit, adminHandler.Disable)
		admins.POST("/:id/enable", mutateLimit, adminHandler.Enable)
		admins.DELETE("/:id", mutateLimit, adminHandler.Delete)
	}

	events := authed.Group("/events")
	events.Use(requirePermission(permissions.ManageEvents, deps.Recorder))
	{
		events.POST("", mutateLimit, eventHandler.Create)
		events.GET("", readLimit, eventHandler.List)
		events.GET("/:id", readLimit, eventHandler.Get)
		events.PUT("/:id", mutateLimit, eventHandler.Update)
		events.DELETE("/:id", mutateLimit, eventHandler.Delete)
	}

	volunteers := authed.Group("/volunteers")
	volunteers.Use(requirePermission(permissions.ManageVolunteers, deps.Recorder))
	{
		volunteers.GET("", readLimit, volunteerHandler.List)
		volunteers.GET("/:id", readLimit, volunteerHandler.Get)
		volunteers.PUT("/:id/status", mutateLimit, volunteerHandler.UpdateStatus)
		volunteers.DELETE("/:id", mutateLimit, volunteerHandler.Delete)
	}

	team := authed.Group("/team")
	team.Use(requirePermission(permissions.ManageTeam, deps.Recorder))
	{
		team.POST("", mutateLimit, teamHandler.Create)
		team.GET("", readLimit, teamHandler.List)
		team.PUT("/:id", mutateLimit, teamHandler.Update)
		team.DELETE("/:id", mutateLimit, teamHandler.Delete)
	}

	tags := authed.Group("/tags")
	tags.Use(requirePermission(permissions.ManageTags, deps.Recorder))
	{
		tags.POST("", mutateLimit, tagHandler.Create)
		tags.GET("", readLimit, tagHandler.List)
		tags.DELETE("/:id", mutateLimit, tagHandler.Delete)
	}

	empowerments := authed.Group("/empowerments")
	empowerments.Use(requirePermission(permissions.ManageEmpowerment, deps.Recorder))
	{
		empowerments.POST("", mutateLimit, empowermentHandler.Create)
		empowerments.GET("", readLimit, empowermentHandler.List)
		empowerments.GET("/:id", readLimit, empowermentHandler.Get)
		empowerments.PUT("/:id", mutateLimit, empowermentHandler.Update)
		empowerments.DELETE("/:id", mutateLimit, empowermentHandler.Delete)
	}

	contacts := authed.Group("/contacts")
	contacts.Use(requirePermission(permissions.ManageContacts, deps.Recorder))
	{
		contacts.GET("", readLimit, contactHandler.List)
		contacts.PUT("/:id/status", mutateLimit, contactHandler.UpdateStatus)
		contacts.DELETE("/:id", mutateLimit, contactHandler.Delete)
	}

	settings := authed.Group("/settings")
	settings.Use(requirePermission(permissions.ManageSettings, deps.Recorder))
	{
		settings.GET("", readLimit, settingHandler.List)
		settings.GET("/:key", readLimit, settingHandler.Get)
		settings.PUT("/:key", mutateLimit, settingHandler.Upsert)
	}

	auditLogs := authed.Group("")
	auditLogs.Use(requirePermission(permissions.ViewAuditLogs, deps.Recorder))
	{
		auditLogs.GET("/audit-logs", readLimit, auditLogHandler.List)
		auditLogs.GET("/security-events", readLimit, securityHandler.Summary)
	}
}
