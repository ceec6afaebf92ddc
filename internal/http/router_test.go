package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/searchhub/searchhub/internal/config"
	"github.com/searchhub/searchhub/internal/db"
	httpx "github.com/searchhub/searchhub/internal/http"
	"github.com/searchhub/searchhub/internal/repo/memory"
	"github.com/searchhub/searchhub/internal/search"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type scriptedProvider struct {
	results []search.Result
	err     error
}

func (p *scriptedProvider) Fetch(ctx context.Context, query string, start, num int) ([]search.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

func testConfig() config.Config {
	return config.Config{
		Env:             "dev",
		JWTSecret:       "router-test-secret",
		UserTokenTTL:    time.Hour,
		AdminTokenTTL:   2 * time.Hour,
		RateLimitMax:    20,
		RateLimitWindow: time.Minute,

		SeedUserEmail:     "test@demo.com",
		SeedUserPassword:  "password123",
		SeedUserName:      "Test User",
		SeedAdminEmail:    "rishabh@gmail.com",
		SeedAdminPassword: "admin123",
		SeedAdminName:     "Admin User",
	}
}

func newTestRouter(t *testing.T, provider search.Provider) *gin.Engine {
	t.Helper()

	cfg := testConfig()

	users := memory.NewUsersRepo()
	if err := db.EnsureSeedUsers(context.Background(), users, cfg); err != nil {
		t.Fatalf("seed users: %v", err)
	}

	return httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Users:    users,
		History:  memory.NewHistoryRepo(),
		Provider: provider,
	})
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func loginToken(t *testing.T, r *gin.Engine, path, email, password string) string {
	t.Helper()

	w := do(r, http.MethodPost, path, "", `{"email":"`+email+`","password":"`+password+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: got status %d, body=%s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned empty token")
	}

	return resp.Token
}

func TestRouter_SearchHistoryLifecycle(t *testing.T) {
	provider := &scriptedProvider{results: []search.Result{
		{Title: "All About Cats", Link: "https://example.com/cats", Snippet: "cats"},
		{Title: "More Cats", Link: "https://example.com/cats2", Snippet: "more"},
	}}

	r := newTestRouter(t, provider)

	token := loginToken(t, r, "/api/login", "test@demo.com", "password123")

	// search
	w := do(r, http.MethodPost, "/api/search", token, `{"query":"cats","start":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("search: got status %d, body=%s", w.Code, w.Body.String())
	}

	var page struct {
		Results []search.Result `json:"results"`
		HasMore bool            `json:"hasMore"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(page.Results) != 2 || page.HasMore {
		t.Fatalf("page = %+v, want 2 results and hasMore=false", page)
	}

	// history has the query at index 0
	w = do(r, http.MethodGet, "/api/history", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("history: got status %d, body=%s", w.Code, w.Body.String())
	}

	var hist struct {
		History []struct {
			Query string `json:"query"`
		} `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.History) != 1 || hist.History[0].Query != "cats" {
		t.Fatalf("history = %+v, want [cats]", hist.History)
	}

	// clear
	w = do(r, http.MethodDelete, "/api/history", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("clear: got status %d, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Search history cleared") {
		t.Fatalf("clear body = %s", w.Body.String())
	}

	// now empty
	w = do(r, http.MethodGet, "/api/history", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("history after clear: got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"history":[]`) {
		t.Fatalf("history after clear = %s, want empty array", w.Body.String())
	}
}

func TestRouter_AuthFailures(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{})

	// no token
	if w := do(r, http.MethodPost, "/api/search", "", `{"query":"cats"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("search without token: got status %d, want 401", w.Code)
	}

	// garbage token
	if w := do(r, http.MethodPost, "/api/search", "not.a.jwt", `{"query":"cats"}`); w.Code != http.StatusForbidden {
		t.Fatalf("search with bad token: got status %d, want 403", w.Code)
	}

	// admin endpoint without token
	if w := do(r, http.MethodGet, "/api/admin/users", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("admin without token: got status %d, want 401", w.Code)
	}

	// admin endpoint with a user token
	userToken := loginToken(t, r, "/api/login", "test@demo.com", "password123")
	if w := do(r, http.MethodGet, "/api/admin/users", userToken, ""); w.Code != http.StatusForbidden {
		t.Fatalf("admin with user token: got status %d, want 403", w.Code)
	}

	// admin login with the wrong password
	w := do(r, http.MethodPost, "/api/admin/login", "", `{"email":"rishabh@gmail.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("admin login wrong password: got status %d, want 401", w.Code)
	}
}

func TestRouter_AdminAggregate(t *testing.T) {
	provider := &scriptedProvider{results: []search.Result{{Title: "t", Link: "l", Snippet: "s"}}}
	r := newTestRouter(t, provider)

	userToken := loginToken(t, r, "/api/login", "test@demo.com", "password123")

	if w := do(r, http.MethodPost, "/api/search", userToken, `{"query":"cats"}`); w.Code != http.StatusOK {
		t.Fatalf("search: got status %d", w.Code)
	}

	adminToken := loginToken(t, r, "/api/admin/login", "rishabh@gmail.com", "admin123")

	w := do(r, http.MethodGet, "/api/admin/users", adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin users: got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Users []struct {
			Email   string `json:"email"`
			History []struct {
				Query string `json:"query"`
			} `json:"history"`
		} `json:"users"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(resp.Users) != 2 {
		t.Fatalf("users = %d, want both seed identities", len(resp.Users))
	}

	found := false
	for _, u := range resp.Users {
		if u.Email == "test@demo.com" {
			found = true
			if len(u.History) != 1 || u.History[0].Query != "cats" {
				t.Fatalf("test user history = %+v, want [cats]", u.History)
			}
		} else if len(u.History) != 0 {
			t.Fatalf("user %s has unexpected history %+v", u.Email, u.History)
		}
	}
	if !found {
		t.Fatal("test@demo.com missing from aggregate")
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{})

	body := `{"email":"test@demo.com","password":"password123"}`

	for i := 1; i <= 20; i++ {
		if w := do(r, http.MethodPost, "/api/login", "", body); w.Code != http.StatusOK {
			t.Fatalf("login %d: got status %d, body=%s", i, w.Code, w.Body.String())
		}
	}

	w := do(r, http.MethodPost, "/api/login", "", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("21st login: got status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("429 without Retry-After header")
	}
}

func TestRouter_UpstreamFailureIs502(t *testing.T) {
	provider := &scriptedProvider{err: &search.UpstreamError{Message: "Google API error: Daily Limit Exceeded"}}
	r := newTestRouter(t, provider)

	token := loginToken(t, r, "/api/login", "test@demo.com", "password123")

	w := do(r, http.MethodPost, "/api/search", token, `{"query":"cats"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Daily Limit Exceeded") {
		t.Fatalf("provider message missing: %s", w.Body.String())
	}

	// the failed search is still on record
	w = do(r, http.MethodGet, "/api/history", token, "")
	if !strings.Contains(w.Body.String(), `"query":"cats"`) {
		t.Fatalf("history missing failed search: %s", w.Body.String())
	}
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, &scriptedProvider{})

	w := do(r, http.MethodGet, "/api/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health: got status %d", w.Code)
	}

	var resp struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Timestamp.IsZero() {
		t.Fatalf("health body = %s", w.Body.String())
	}

	if w := do(r, http.MethodGet, "/readyz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz: got status %d", w.Code)
	}
}
