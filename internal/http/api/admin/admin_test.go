package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/audit"
	"github.com/youthlift/backoffice/internal/config"
	dbpkg "github.com/youthlift/backoffice/internal/db"
	"github.com/youthlift/backoffice/internal/http/api/admin/handlers"
	"github.com/youthlift/backoffice/internal/metrics"
	"github.com/youthlift/backoffice/internal/models"
	"github.com/youthlift/backoffice/internal/permissions"
	"github.com/youthlift/backoffice/internal/ratelimit"
	"github.com/youthlift/backoffice/internal/security"
)

var testSession = config.SessionConfig{Secret: "test-secret", ExpiryHours: 1}

type testAPI struct {
	router   *gin.Engine
	db       *gorm.DB
	recorder *audit.Recorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	gin.SetMode(gin.TestMode)

	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open test db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate test db: %v", errMigrate)
	}

	recorder := audit.NewRecorder(conn, 64, nil)
	t.Cleanup(recorder.Close)

	router := gin.New()
	RegisterRoutes(router.Group("/v0/admin"), Deps{
		DB:       conn,
		Session:  testSession,
		Recorder: recorder,
		Limiter:  ratelimit.NewLimiter(),
		Metrics:  metrics.New(),
	})

	return &testAPI{router: router, db: conn, recorder: recorder}
}

func (api *testAPI) seedAdmin(t *testing.T, username, password, role string, granted []string) models.Admin {
	t.Helper()

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	raw, errMarshal := permissions.Marshal(granted)
	if errMarshal != nil {
		t.Fatalf("marshal permissions: %v", errMarshal)
	}
	admin := models.Admin{
		Username:    username,
		Email:       username + "@example.org",
		Password:    hash,
		Role:        role,
		Permissions: datatypes.JSON(raw),
		Active:      true,
	}
	if errCreate := api.db.Create(&admin).Error; errCreate != nil {
		t.Fatalf("seed admin: %v", errCreate)
	}
	return admin
}

func (api *testAPI) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal request body: %v", errMarshal)
		}
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func (api *testAPI) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	rec := api.do(t, http.MethodPost, "/v0/admin/auth/login", gin.H{"username": username, "password": password}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", username, rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == handlers.SessionCookieName {
			return cookie
		}
	}
	t.Fatalf("login %s: session cookie not set", username)
	return nil
}

func (api *testAPI) auditRows(t *testing.T) []models.AuditLog {
	t.Helper()

	api.recorder.Close()
	var rows []models.AuditLog
	if errFind := api.db.Order("id ASC").Find(&rows).Error; errFind != nil {
		t.Fatalf("query audit logs: %v", errFind)
	}
	return rows
}

func TestLoginFailureIsIndistinguishable(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "lea", "right-password", permissions.RoleAdmin, permissions.RoleDefaults(permissions.RoleAdmin))

	unknown := api.do(t, http.MethodPost, "/v0/admin/auth/login", gin.H{"username": "ghost", "password": "whatever-pass"}, nil)
	wrongPassword := api.do(t, http.MethodPost, "/v0/admin/auth/login", gin.H{"username": "lea", "password": "wrong-password"}, nil)

	if unknown.Code != http.StatusUnauthorized || wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failure modes, got %d and %d", unknown.Code, wrongPassword.Code)
	}
	if unknown.Body.String() != wrongPassword.Body.String() {
		t.Fatalf("failure responses must be identical: %q vs %q", unknown.Body.String(), wrongPassword.Body.String())
	}
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "lea", "right-password", permissions.RoleAdmin, permissions.RoleDefaults(permissions.RoleAdmin))

	cookie := api.login(t, "lea", "right-password")
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HTTP-only")
	}
	if !cookie.Secure {
		t.Fatal("session cookie must be Secure")
	}

	verify := api.do(t, http.MethodGet, "/v0/admin/auth/verify", nil, cookie)
	if verify.Code != http.StatusOK {
		t.Fatalf("verify with valid cookie: expected 200, got %d", verify.Code)
	}

	var body struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	if errDecode := json.Unmarshal(verify.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode verify body: %v", errDecode)
	}
	if !body.Authenticated || body.User.Username != "lea" || body.User.Role != permissions.RoleAdmin {
		t.Fatalf("unexpected verify body: %s", verify.Body.String())
	}
}

func TestVerifyWithoutCookieIsUnauthorized(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v0/admin/auth/verify", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestVerifyRejectsTamperedCookie(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "lea", "right-password", permissions.RoleAdmin, nil)

	cookie := api.login(t, "lea", "right-password")
	cookie.Value = cookie.Value + "x"

	rec := api.do(t, http.MethodGet, "/v0/admin/auth/verify", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered cookie, got %d", rec.Code)
	}
}

func TestLoginRateLimitLocksOutSixthAttempt(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "lea", "right-password", permissions.RoleAdmin, nil)

	for i := 0; i < 5; i++ {
		rec := api.do(t, http.MethodPost, "/v0/admin/auth/login", gin.H{"username": "lea", "password": "wrong-password"}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	// Sixth attempt is denied even with the correct password.
	rec := api.do(t, http.MethodPost, "/v0/admin/auth/login", gin.H{"username": "lea", "password": "right-password"}, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on sixth attempt, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on 429")
	}

	var body struct {
		RetryAfterSeconds int `json:"retry_after_seconds"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode 429 body: %v", errDecode)
	}
	if body.RetryAfterSeconds < 1 {
		t.Fatalf("expected positive retry_after_seconds, got %d", body.RetryAfterSeconds)
	}

	rows := api.auditRows(t)
	var rateLimited int
	for _, row := range rows {
		if row.Action == audit.ActionRateLimitExceeded {
			rateLimited++
		}
	}
	if rateLimited != 1 {
		t.Fatalf("expected 1 rate limit audit record, got %d", rateLimited)
	}
}

func TestPermissionGateBlocksAndAudits(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "theo", "right-password", permissions.RoleTreasurer, permissions.RoleDefaults(permissions.RoleTreasurer))
	cookie := api.login(t, "theo", "right-password")

	rec := api.do(t, http.MethodPost, "/v0/admin/events", gin.H{
		"title":     "Spring Fundraiser",
		"starts_at": "2026-04-01T18:00:00Z",
	}, cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for treasurer creating events, got %d", rec.Code)
	}

	var count int64
	if errCount := api.db.Model(&models.Event{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count events: %v", errCount)
	}
	if count != 0 {
		t.Fatal("denied request must not create the event")
	}

	rows := api.auditRows(t)
	var denial *models.AuditLog
	for i := range rows {
		if rows[i].Action == audit.ActionUnauthorized {
			denial = &rows[i]
		}
	}
	if denial == nil {
		t.Fatal("expected an unauthorized_access audit record")
	}
	if denial.Status != audit.StatusFailure {
		t.Fatalf("expected failure status on denial record, got %q", denial.Status)
	}
	if denial.ActorEmail != "theo@example.org" {
		t.Fatalf("expected the denied admin as actor, got %q", denial.ActorEmail)
	}
}

func TestEventCreateReturns201AndAudits(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "cora", "right-password", permissions.RoleCoordinator, permissions.RoleDefaults(permissions.RoleCoordinator))
	cookie := api.login(t, "cora", "right-password")

	rec := api.do(t, http.MethodPost, "/v0/admin/events", gin.H{
		"title":     "Spring Fundraiser",
		"location":  "Community Hall",
		"starts_at": "2026-04-01T18:00:00Z",
		"published": true,
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var event models.Event
	if errFirst := api.db.First(&event).Error; errFirst != nil {
		t.Fatalf("query created event: %v", errFirst)
	}
	if event.Title != "Spring Fundraiser" || !event.Published {
		t.Fatalf("unexpected persisted event: %+v", event)
	}

	rows := api.auditRows(t)
	var creates int
	for _, row := range rows {
		if row.Action == audit.ActionCreate && row.Resource == "event" {
			creates++
			if row.Status != audit.StatusSuccess {
				t.Fatalf("expected success status on create record, got %q", row.Status)
			}
			if row.ActorEmail != "cora@example.org" {
				t.Fatalf("expected cora as actor, got %q", row.ActorEmail)
			}
		}
	}
	if creates != 1 {
		t.Fatalf("expected exactly one event create audit record, got %d", creates)
	}
}

func TestSuperAdminBypassesPermissionChecks(t *testing.T) {
	api := newTestAPI(t)
	// Stored set deliberately empty: the role alone must grant access.
	api.seedAdmin(t, "root", "right-password", permissions.RoleSuperAdmin, nil)
	cookie := api.login(t, "root", "right-password")

	rec := api.do(t, http.MethodPost, "/v0/admin/tags", gin.H{"name": "Climate"}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for super admin, got %d (%s)", rec.Code, rec.Body.String())
	}

	admins := api.do(t, http.MethodGet, "/v0/admin/admins", nil, cookie)
	if admins.Code != http.StatusOK {
		t.Fatalf("expected 200 listing admins as super admin, got %d", admins.Code)
	}
}

func TestAdminRoutesRequireSuperAdminRole(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "cora", "right-password", permissions.RoleCoordinator, permissions.RoleDefaults(permissions.RoleCoordinator))
	cookie := api.login(t, "cora", "right-password")

	rec := api.do(t, http.MethodGet, "/v0/admin/admins", nil, cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non super admin, got %d", rec.Code)
	}
}

func TestLegacyAdminMigratedToSuperAdminAtLogin(t *testing.T) {
	api := newTestAPI(t)

	hash, errHash := security.HashPassword("right-password")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	legacy := models.Admin{
		Username: "founder",
		Email:    "founder@example.org",
		Password: hash,
		Role:     "",
		Active:   true,
	}
	if errCreate := api.db.Create(&legacy).Error; errCreate != nil {
		t.Fatalf("seed legacy admin: %v", errCreate)
	}

	api.login(t, "founder", "right-password")

	var migrated models.Admin
	if errFirst := api.db.First(&migrated, legacy.ID).Error; errFirst != nil {
		t.Fatalf("reload admin: %v", errFirst)
	}
	if migrated.Role != permissions.RoleSuperAdmin {
		t.Fatalf("expected legacy admin migrated to super_admin, got %q", migrated.Role)
	}

	rows := api.auditRows(t)
	var migration *models.AuditLog
	for i := range rows {
		if rows[i].Action == audit.ActionUpdate && rows[i].Resource == "admin" {
			migration = &rows[i]
		}
	}
	if migration == nil {
		t.Fatal("expected an audit record for the role migration")
	}
	if migration.ActorEmail != audit.ActorSystem {
		t.Fatalf("migration must be attributed to the system actor, got %q", migration.ActorEmail)
	}
}

func TestInactiveAdminCannotLogIn(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedAdmin(t, "lea", "right-password", permissions.RoleAdmin, nil)
	if errUpdate := api.db.Model(&models.Admin{}).Where("id = ?", admin.ID).Update("active", false).Error; errUpdate != nil {
		t.Fatalf("deactivate admin: %v", errUpdate)
	}

	rec := api.do(t, http.MethodPost, "/v0/admin/auth/login", gin.H{"username": "lea", "password": "right-password"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated account, got %d", rec.Code)
	}

	var body struct {
		Error string `json:"error"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body: %v", errDecode)
	}
	if body.Error != "invalid credentials" {
		t.Fatalf("deactivated account must get the generic error, got %q", body.Error)
	}
}

// blockAdminUpdates installs a trigger that makes every UPDATE on the
// admins table fail, to exercise store-error paths deterministically.
func (api *testAPI) blockAdminUpdates(t *testing.T) {
	t.Helper()
	if errExec := api.db.Exec(
		`CREATE TRIGGER block_admin_updates BEFORE UPDATE ON admins BEGIN SELECT RAISE(ABORT, 'update blocked'); END`,
	).Error; errExec != nil {
		t.Fatalf("install update trigger: %v", errExec)
	}
}

func TestDisableStoreFailureIsAudited(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "root", "right-password", permissions.RoleSuperAdmin, nil)
	target := api.seedAdmin(t, "lea", "right-password", permissions.RoleAdmin, nil)
	cookie := api.login(t, "root", "right-password")

	api.blockAdminUpdates(t)

	rec := api.do(t, http.MethodPost, "/v0/admin/admins/"+strconv.FormatUint(target.ID, 10)+"/disable", nil, cookie)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the store rejects the update, got %d", rec.Code)
	}

	rows := api.auditRows(t)
	var failures int
	for _, row := range rows {
		if row.Action == audit.ActionUpdate && row.Resource == "admin" && row.Status == audit.StatusFailure {
			failures++
			if row.ActorEmail != "root@example.org" {
				t.Fatalf("expected root as actor on the failure record, got %q", row.ActorEmail)
			}
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one failure audit record for the disable attempt, got %d", failures)
	}
}

func TestForgotPasswordStoreFailureIsAudited(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedAdmin(t, "lea", "right-password", permissions.RoleAdmin, nil)

	api.blockAdminUpdates(t)

	rec := api.do(t, http.MethodPost, "/v0/admin/auth/forgot-password", gin.H{"email": admin.Email}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected the generic 200 even on store failure, got %d", rec.Code)
	}

	rows := api.auditRows(t)
	var failures int
	for _, row := range rows {
		if row.Action == audit.ActionPasswordResetRequest && row.Status == audit.StatusFailure {
			failures++
			if row.ActorEmail != admin.Email {
				t.Fatalf("expected the matched account as actor, got %q", row.ActorEmail)
			}
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one failure audit record for the reset request, got %d", failures)
	}
}

func TestAuditLogEndpointFiltersAndPaginates(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "theo", "right-password", permissions.RoleTreasurer, permissions.RoleDefaults(permissions.RoleTreasurer))
	cookie := api.login(t, "theo", "right-password")

	rec := api.do(t, http.MethodGet, "/v0/admin/audit-logs?resource=auth&action=login&limit=10", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Logs  []map[string]any `json:"logs"`
		Total int64            `json:"total"`
		Page  int              `json:"page"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body: %v", errDecode)
	}
	if body.Page != 1 {
		t.Fatalf("expected page 1, got %d", body.Page)
	}
	// The login that produced the cookie may not be flushed yet; the shape
	// matters here, exact counts are covered by the audit package tests.
	for _, row := range body.Logs {
		if row["resource"] != "auth" || row["action"] != "login" {
			t.Fatalf("filter leaked a non-matching row: %v", row)
		}
	}
}

func TestSecurityEventsEndpointRejectsBadPeriod(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "theo", "right-password", permissions.RoleTreasurer, permissions.RoleDefaults(permissions.RoleTreasurer))
	cookie := api.login(t, "theo", "right-password")

	bad := api.do(t, http.MethodGet, "/v0/admin/security-events?period=90d", nil, cookie)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported period, got %d", bad.Code)
	}

	ok := api.do(t, http.MethodGet, "/v0/admin/security-events?period=7d", nil, cookie)
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", ok.Code, ok.Body.String())
	}

	var body struct {
		Stats       map[string]int64 `json:"stats"`
		HourlyTrend []map[string]any `json:"hourly_trend"`
	}
	if errDecode := json.Unmarshal(ok.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body: %v", errDecode)
	}
	if len(body.HourlyTrend) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %d", len(body.HourlyTrend))
	}
}
