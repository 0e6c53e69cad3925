package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/models"
	"github.com/promptpress/promptpress/internal/security"
	"gorm.io/gorm"
)

func newAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := conn.AutoMigrate(&models.User{}, &models.VerificationToken{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func newAuthRouter(t *testing.T, conn *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtCfg := config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}
	handler := NewAuthHandler(conn, jwtCfg, nil)

	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/verify-email", handler.VerifyEmail)
	r.POST("/auth/resend-verification", handler.ResendVerification)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_CreatesUserAndToken(t *testing.T) {
	conn := newAuthTestDB(t)
	r := newAuthRouter(t, conn)

	w := postJSON(t, r, "/auth/register", map[string]any{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "hunter22",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID            uint64 `json:"id"`
			Username      string `json:"username"`
			Email         string `json:"email"`
			EmailVerified bool   `json:"emailVerified"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a session token")
	}
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", resp.User.Email)
	}
	if resp.User.EmailVerified {
		t.Fatalf("new accounts must start unverified")
	}

	claims, errParse := security.ParseUserToken("test-secret", resp.Token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.UserID != resp.User.ID || claims.Username != "alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	// A pending verification token exists for the new account.
	var tokenCount int64
	if err := conn.Model(&models.VerificationToken{}).Where("user_id = ?", resp.User.ID).Count(&tokenCount).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if tokenCount != 1 {
		t.Fatalf("expected 1 verification token, got %d", tokenCount)
	}
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	conn := newAuthTestDB(t)
	r := newAuthRouter(t, conn)

	body := map[string]any{"username": "alice", "email": "alice@example.com", "password": "hunter22"}
	if w := postJSON(t, r, "/auth/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	if w := postJSON(t, r, "/auth/register", body); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d, body %s", w.Code, w.Body.String())
	}
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	conn := newAuthTestDB(t)
	r := newAuthRouter(t, conn)

	cases := []map[string]any{
		{"username": "al", "email": "a@b.c", "password": "hunter22"},
		{"username": "alice", "email": "not-an-email", "password": "hunter22"},
		{"username": "alice", "email": "a@b.c", "password": "short"},
	}
	for i, body := range cases {
		if w := postJSON(t, r, "/auth/register", body); w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: status = %d", i, w.Code)
		}
	}
}

func TestLogin_ByEmailOrUsername(t *testing.T) {
	conn := newAuthTestDB(t)
	r := newAuthRouter(t, conn)

	if w := postJSON(t, r, "/auth/register", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "hunter22",
	}); w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	for _, identifier := range []string{"alice", "alice@example.com"} {
		w := postJSON(t, r, "/auth/login", map[string]any{
			"emailOrUsername": identifier,
			"password":        "hunter22",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("login as %q: status = %d, body %s", identifier, w.Code, w.Body.String())
		}
	}

	w := postJSON(t, r, "/auth/login", map[string]any{
		"emailOrUsername": "alice",
		"password":        "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: status = %d", w.Code)
	}
}

func TestVerifyEmail_Flow(t *testing.T) {
	conn := newAuthTestDB(t)
	r := newAuthRouter(t, conn)

	if w := postJSON(t, r, "/auth/register", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "hunter22",
	}); w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	var record models.VerificationToken
	if err := conn.First(&record).Error; err != nil {
		t.Fatalf("load token: %v", err)
	}

	w := postJSON(t, r, "/auth/verify-email", map[string]any{"token": record.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("verify: status = %d, body %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := conn.First(&user, record.UserID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.EmailVerified {
		t.Fatalf("expected verified account")
	}

	// The token is single-use.
	if w := postJSON(t, r, "/auth/verify-email", map[string]any{"token": record.Token}); w.Code != http.StatusBadRequest {
		t.Fatalf("reused token: status = %d", w.Code)
	}
}

func TestVerifyEmail_ExpiredToken(t *testing.T) {
	conn := newAuthTestDB(t)
	r := newAuthRouter(t, conn)

	user := models.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	record := models.VerificationToken{
		Token:     "stale-token",
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	if err := conn.Create(&record).Error; err != nil {
		t.Fatalf("seed token: %v", err)
	}

	if w := postJSON(t, r, "/auth/verify-email", map[string]any{"token": "stale-token"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expired token: status = %d", w.Code)
	}
}

func TestResendVerification_DoesNotLeakAccounts(t *testing.T) {
	conn := newAuthTestDB(t)
	r := newAuthRouter(t, conn)

	w := postJSON(t, r, "/auth/resend-verification", map[string]any{"email": "ghost@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("unknown email: status = %d", w.Code)
	}
}
