package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/hostsuite/resellerd/internal/account"
	"github.com/hostsuite/resellerd/internal/config"
	"github.com/hostsuite/resellerd/internal/db"
	"github.com/hostsuite/resellerd/internal/packages"
	"github.com/hostsuite/resellerd/internal/site"
	"github.com/hostsuite/resellerd/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, errOpen := db.Open("file:" + filepath.Join(t.TempDir(), "admin_test.db"))
	if errOpen != nil {
		t.Fatalf("open test database: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate test database: %v", errMigrate)
	}

	hash, errHash := bcrypt.GenerateFromPassword([]byte("operator-pass"), bcrypt.MinCost)
	if errHash != nil {
		t.Fatalf("generate bcrypt hash: %v", errHash)
	}
	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		Operator: config.OperatorConfig{Username: "admin", PasswordHash: string(hash)},
	}

	catalog := packages.NewCatalog(packages.Default())
	accounts := store.NewAccountStore(conn)
	provisioner := site.NewProvisioner(t.TempDir(), site.NewTemplateRenderer(), "127.0.0.1", 2121)
	svc := account.NewService(accounts, provisioner, catalog)

	engine := gin.New()
	RegisterAdminRoutes(engine, cfg, conn, svc, catalog)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	rec := doJSON(t, engine, http.MethodPost, "/v0/admin/login", "", `{"username":"admin","password":"operator-pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &payload); errDecode != nil {
		t.Fatalf("decode login response: %v", errDecode)
	}
	if payload.Token == "" {
		t.Fatal("login returned an empty token")
	}
	return payload.Token
}

func TestHealthz(t *testing.T) {
	engine := newTestRouter(t)
	rec := doJSON(t, engine, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	engine := newTestRouter(t)
	rec := doJSON(t, engine, http.MethodPost, "/v0/admin/login", "", `{"username":"admin","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/v0/admin/accounts", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/v0/admin/accounts", "not-a-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	engine := newTestRouter(t)
	token := login(t, engine)

	rec := doJSON(t, engine, http.MethodPost, "/v0/admin/accounts", token,
		`{"username":"alice99","secret":"s3cret-pass","email":"alice@example.com","site_name":"Alice Site","package_type":"1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID uint64 `json:"id"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &created); errDecode != nil {
		t.Fatalf("decode create response: %v", errDecode)
	}
	if created.ID == 0 {
		t.Fatal("create returned zero id")
	}

	rec = doJSON(t, engine, http.MethodGet, "/v0/admin/accounts/by-username/alice99", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"site_name":"Alice Site"`) {
		t.Fatalf("unexpected get payload: %s", rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/v0/admin/accounts/1/disable", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("disable returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, engine, http.MethodGet, "/v0/admin/accounts/by-username/alice99", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled account should 404, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/v0/admin/accounts/1/enable", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("enable returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, engine, http.MethodPost, "/v0/admin/accounts/1/transfer/disable", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer disable returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAccountErrorMapping(t *testing.T) {
	engine := newTestRouter(t)
	token := login(t, engine)

	rec := doJSON(t, engine, http.MethodPost, "/v0/admin/accounts", token,
		`{"username":"ab","secret":"s3cret-pass","email":"a@b.com","site_name":"S","package_type":"1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid username should 400, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/v0/admin/accounts", token,
		`{"username":"alice99","secret":"s3cret-pass","email":"a@b.com","site_name":"Site One","package_type":"99"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown package should 400, got %d", rec.Code)
	}

	body := `{"username":"alice99","secret":"s3cret-pass","email":"a@b.com","site_name":"Site One","package_type":"1"}`
	if rec = doJSON(t, engine, http.MethodPost, "/v0/admin/accounts", token, body); rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	if rec = doJSON(t, engine, http.MethodPost, "/v0/admin/accounts", token, body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create should 409, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/v0/admin/accounts/999/disable", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id should 404, got %d", rec.Code)
	}
}

func TestListPackages(t *testing.T) {
	engine := newTestRouter(t)
	token := login(t, engine)

	rec := doJSON(t, engine, http.MethodGet, "/v0/admin/packages", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("packages returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Full Suite") {
		t.Fatalf("unexpected packages payload: %s", rec.Body.String())
	}
}
