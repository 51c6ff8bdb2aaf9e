package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/evaluatorhub/backend/internal/domain"
	"github.com/evaluatorhub/backend/internal/security/auth"
	"github.com/evaluatorhub/backend/internal/security/middleware"
	"github.com/evaluatorhub/backend/internal/security/ratelimit"
	"github.com/evaluatorhub/backend/internal/service"
)

type memUserRepo struct {
	byID map[string]*domain.User
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByResetToken(_ context.Context, token string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.ResetPasswordToken == token && u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(time.Now()) {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) Update(_ context.Context, u *domain.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) ClearExpiredResetTokens(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memAssetRepo struct {
	byID map[string]*domain.Asset
}

func (m *memAssetRepo) Create(_ context.Context, a *domain.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	m.byID[a.ID] = a
	return nil
}

func (m *memAssetRepo) GetByID(_ context.Context, id, ownerID string) (*domain.Asset, error) {
	a, ok := m.byID[id]
	if !ok || a.CreatedBy != ownerID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (m *memAssetRepo) Update(_ context.Context, a *domain.Asset) error {
	m.byID[a.ID] = a
	return nil
}

func (m *memAssetRepo) Delete(_ context.Context, id, ownerID string) error {
	a, ok := m.byID[id]
	if !ok || a.CreatedBy != ownerID {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memAssetRepo) List(_ context.Context, ownerID, assetType string) ([]*domain.Asset, error) {
	out := []*domain.Asset{}
	for _, a := range m.byID {
		if a.CreatedBy != ownerID {
			continue
		}
		if assetType != "" && assetType != "all" && a.Type != assetType {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type nopMailer struct{}

func (nopMailer) Verify(context.Context) error { return nil }

func (nopMailer) SendPasswordReset(context.Context, string, string) error { return nil }

// newTestServer wires the middleware chain and routes the way cmd/server does,
// backed by in-memory stores.
func newTestServer(t *testing.T) *httptest.Server {
	return newTestServerWithLimiter(t, ratelimit.NewLimiter(100, time.Minute))
}

func newTestServerWithLimiter(t *testing.T, limiter *ratelimit.Limiter) *httptest.Server {
	t.Helper()
	t.Cleanup(limiter.Stop)

	users := &memUserRepo{byID: map[string]*domain.User{}}
	assets := &memAssetRepo{byID: map[string]*domain.Asset{}}
	tokens := auth.NewTokenManager("test-secret", "test")

	userService := service.NewUserService(users, tokens, nopMailer{}, nil, nil)
	assetService := service.NewAssetService(assets, nil)

	userHandler := NewUserHandler(userService, nil)
	assetHandler := NewAssetHandler(assetService, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/register", userHandler.Register)
	mux.HandleFunc("POST /api/users/login", userHandler.Login)
	mux.HandleFunc("GET /api/users/profile", userHandler.Profile)
	mux.HandleFunc("GET /api/assets", assetHandler.List)
	mux.HandleFunc("POST /api/assets", assetHandler.Create)
	mux.HandleFunc("GET /api/assets/{id}", assetHandler.Get)
	mux.HandleFunc("DELETE /api/assets/{id}", assetHandler.Delete)
	mux.HandleFunc("/api/", NotFound)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	authed := middleware.AuthMiddleware(tokens, users, nil, log)(
		middleware.RateLimitMiddleware(limiter, log)(mux),
	)
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern == "/api/" {
			NotFound(w, r)
			return
		}
		authed.ServeHTTP(w, r)
	})

	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, env
}

func register(t *testing.T, srv *httptest.Server, name, email string) string {
	t.Helper()
	resp, env := do(t, http.MethodPost, srv.URL+"/api/users/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d: %v", resp.StatusCode, env)
	}
	token, _ := env["token"].(string)
	if token == "" {
		t.Fatalf("expected a session token")
	}
	return token
}

func TestAssetLifecycleAcrossUsers(t *testing.T) {
	srv := newTestServer(t)

	adaToken := register(t, srv, "Ada", "ada@example.com")
	vicToken := register(t, srv, "Vic", "vic@example.com")

	resp, env := do(t, http.MethodPost, srv.URL+"/api/assets", adaToken, map[string]any{
		"title":       "Gold Ring",
		"type":        "jewelry",
		"description": "18k gold ring",
		"value":       1200,
		"condition":   "good",
		"ownerName":   "Ada",
		"ownerPhone":  "555-0101",
		"location":    "Vault 3",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create asset returned %d: %v", resp.StatusCode, env)
	}
	asset, ok := env["asset"].(map[string]any)
	if !ok {
		t.Fatalf("expected asset in response, got %v", env)
	}
	assetID, _ := asset["id"].(string)

	// A different user sees 404, not 403
	resp, env = do(t, http.MethodGet, srv.URL+"/api/assets/"+assetID, vicToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign fetch returned %d, want 404", resp.StatusCode)
	}
	if env["message"] != "Asset not found or access denied" {
		t.Fatalf("unexpected message %v", env["message"])
	}

	// The owner still sees it
	resp, _ = do(t, http.MethodGet, srv.URL+"/api/assets/"+assetID, adaToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner fetch returned %d, want 200", resp.StatusCode)
	}

	// The foreign user's listing stays empty
	resp, env = do(t, http.MethodGet, srv.URL+"/api/assets", vicToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list returned %d", resp.StatusCode)
	}
	if list, ok := env["assets"].([]any); ok && len(list) != 0 {
		t.Fatalf("expected empty listing for vic, got %d", len(list))
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, env := do(t, http.MethodGet, srv.URL+"/api/assets", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if env["message"] != "Please authenticate" {
		t.Fatalf("unexpected message %v", env["message"])
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected a JSON content type, got %q", ct)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/assets", "not-a-jwt", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed token, got %d", resp.StatusCode)
	}
}

func TestAuthenticatedRequestsAreRateLimited(t *testing.T) {
	srv := newTestServerWithLimiter(t, ratelimit.NewLimiter(3, time.Minute))

	adaToken := register(t, srv, "Ada", "ada@example.com")
	vicToken := register(t, srv, "Vic", "vic@example.com")

	for i := 0; i < 3; i++ {
		resp, env := do(t, http.MethodGet, srv.URL+"/api/assets", adaToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d returned %d: %v", i+1, resp.StatusCode, env)
		}
	}

	resp, env := do(t, http.MethodGet, srv.URL+"/api/assets", adaToken, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the limit, got %d", resp.StatusCode)
	}
	if env["message"] != "Too many requests" {
		t.Fatalf("unexpected message %v", env["message"])
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected a JSON content type, got %q", ct)
	}

	// Limits are tracked per user, not globally
	resp, _ = do(t, http.MethodGet, srv.URL+"/api/assets", vicToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("other user's request returned %d, want 200", resp.StatusCode)
	}
}

func TestUnknownEndpointReturnsJSON404(t *testing.T) {
	srv := newTestServer(t)

	resp, env := do(t, http.MethodGet, srv.URL+"/api/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if env["message"] != "API endpoint not found" {
		t.Fatalf("unexpected message %v", env["message"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "Ada", "ada@example.com")

	resp, env := do(t, http.MethodPost, srv.URL+"/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if env["message"] != "Invalid email or password" {
		t.Fatalf("unexpected message %v", env["message"])
	}

	resp, env = do(t, http.MethodPost, srv.URL+"/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, env)
	}
	if token, _ := env["token"].(string); token == "" {
		t.Fatalf("expected token on login")
	}

	// The token works against a protected endpoint
	token, _ := env["token"].(string)
	resp, env = do(t, http.MethodGet, srv.URL+"/api/users/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile returned %d: %v", resp.StatusCode, env)
	}
	user, ok := env["user"].(map[string]any)
	if !ok || user["email"] != "ada@example.com" {
		t.Fatalf("unexpected profile %v", env)
	}
}
