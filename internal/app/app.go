// Package app assembles the back office server from its parts.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/config"
	dbpkg "github.com/youthlift/backoffice/internal/db"
	apihttp "github.com/youthlift/backoffice/internal/http"
	"github.com/youthlift/backoffice/internal/http/api/admin"
	"github.com/youthlift/backoffice/internal/http/api/public"
	"github.com/youthlift/backoffice/internal/logging"
	"github.com/youthlift/backoffice/internal/mail"
	"github.com/youthlift/backoffice/internal/metrics"
	"github.com/youthlift/backoffice/internal/models"
	"github.com/youthlift/backoffice/internal/permissions"
	"github.com/youthlift/backoffice/internal/ratelimit"
	"github.com/youthlift/backoffice/internal/security"
)

const shutdownTimeout = 10 * time.Second

// RunServer starts the HTTP server and blocks until SIGINT or SIGTERM.
func RunServer(cfg config.Config) error {
	logging.Setup(cfg.Logging)
	if errValidate := cfg.Validate(); errValidate != nil {
		return errValidate
	}

	conn, errOpen := dbpkg.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	warnLegacyAdmins(conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	recorder := audit.NewRecorder(conn, cfg.Audit.QueueSize, m)
	defer recorder.Close()

	audit.NewRetentionCleaner(conn, cfg.Audit.RetentionDays).Start(ctx)

	limiter := ratelimit.NewLimiter()
	limiter.StartSweeper(ctx, 5*time.Minute)

	engine := newEngine(conn, cfg, recorder, limiter, m)

	server := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("back office listening on %s", cfg.Server.Listen)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case errServe := <-errCh:
		return errServe
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		log.WithError(errShutdown).Warn("server shutdown incomplete")
	}
	return nil
}

// newEngine builds the gin router with all routes and middleware attached.
func newEngine(conn *gorm.DB, cfg config.Config, recorder *audit.Recorder, limiter *ratelimit.Limiter, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), apihttp.MetricsMiddleware(m))

	engine.GET("/healthz", func(c *gin.Context) {
		sqlDB, errDB := conn.DB()
		if errDB != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	admin.RegisterRoutes(engine.Group("/v0/admin"), admin.Deps{
		DB:       conn,
		Session:  cfg.Session,
		Recorder: recorder,
		Limiter:  limiter,
		Metrics:  m,
		Mailer:   mail.LogMailer{},
	})
	public.RegisterRoutes(engine.Group("/v0/public"), public.Deps{
		DB:       conn,
		Recorder: recorder,
		Limiter:  limiter,
		Metrics:  m,
	})
	return engine
}

// warnLegacyAdmins logs role-less admin rows at startup. The rows are
// migrated lazily at their next login, not rewritten here.
func warnLegacyAdmins(conn *gorm.DB) {
	var count int64
	if errCount := conn.Model(&models.Admin{}).
		Where("role IS NULL OR role = ''").
		Count(&count).Error; errCount != nil {
		log.WithError(errCount).Warn("legacy admin check failed")
		return
	}
	if count > 0 {
		log.Warnf("%d admin account(s) have no role and will be migrated to %s at next login", count, permissions.RoleSuperAdmin)
	}
}

// Migrate opens the database and applies schema migrations.
func Migrate(cfg config.Config) error {
	logging.Setup(cfg.Logging)
	conn, errOpen := dbpkg.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	log.Info("migrations applied")
	return nil
}

// CreateAdmin provisions an admin account from the command line. The role
// decides the default permission set.
func CreateAdmin(cfg config.Config, username, email, password, role string) error {
	logging.Setup(cfg.Logging)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	role = strings.TrimSpace(role)
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("username, email and password are required")
	}
	if role == "" {
		role = permissions.RoleSuperAdmin
	}
	if !permissions.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}

	conn, errOpen := dbpkg.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}
	granted, errMarshal := permissions.Marshal(permissions.RoleDefaults(role))
	if errMarshal != nil {
		return errMarshal
	}

	adminRow := models.Admin{
		Username:    username,
		Email:       email,
		Password:    hash,
		Role:        role,
		Permissions: datatypes.JSON(granted),
		Active:      true,
	}
	if errCreate := conn.Create(&adminRow).Error; errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}
	log.Infof("created admin %s (%s) with role %s", username, email, role)
	return nil
}
