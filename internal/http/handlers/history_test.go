package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/searchhub/searchhub/internal/auth"
	"github.com/searchhub/searchhub/internal/domain/history"
	"github.com/searchhub/searchhub/internal/http/handlers"
	"github.com/searchhub/searchhub/internal/http/middlewares"
)

type stubHistoryStore struct {
	entries  []history.Entry
	listErr  error
	clearErr error
	cleared  []string
}

func (s *stubHistoryStore) ListByOwner(ctx context.Context, owner string) ([]history.Entry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.entries, nil
}

func (s *stubHistoryStore) Clear(ctx context.Context, owner string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, owner)
	return nil
}

func historyRouter(store *stubHistoryStore) *gin.Engine {
	h := handlers.NewHistoryHandler(store)
	m := middlewares.NewAuthMiddleware(&stubVerifier{
		claims: &auth.Claims{Email: "test@demo.com", Name: "Test User", Role: auth.RoleUser},
	})

	r := gin.New()
	r.GET("/api/history", m.RequireAuth(), h.List)
	r.DELETE("/api/history", m.RequireAuth(), h.Clear)

	return r
}

func doHistory(r *gin.Engine, method string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer tok")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestHistoryList(t *testing.T) {
	now := time.Now().UTC()

	store := &stubHistoryStore{entries: []history.Entry{
		{Owner: "test@demo.com", Query: "cats", Timestamp: now},
		{Owner: "test@demo.com", Query: "dogs", Timestamp: now.Add(-time.Minute)},
	}}

	w := doHistory(historyRouter(store), http.MethodGet)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		History []struct {
			Query     string    `json:"query"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(resp.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(resp.History))
	}
	if resp.History[0].Query != "cats" {
		t.Fatalf("newest entry = %q, want cats", resp.History[0].Query)
	}
}

func TestHistoryList_EmptyIsArrayNotNull(t *testing.T) {
	w := doHistory(historyRouter(&stubHistoryStore{}), http.MethodGet)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	body := w.Body.String()
	if body != `{"history":[]}` {
		t.Fatalf("body = %s, want {\"history\":[]}", body)
	}
}

func TestHistoryList_StoreError(t *testing.T) {
	store := &stubHistoryStore{listErr: errors.New("pg down")}

	w := doHistory(historyRouter(store), http.MethodGet)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", w.Code)
	}
}

func TestHistoryClear(t *testing.T) {
	store := &stubHistoryStore{}

	w := doHistory(historyRouter(store), http.MethodDelete)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Search history cleared" {
		t.Fatalf("message = %q, want %q", resp.Message, "Search history cleared")
	}

	if len(store.cleared) != 1 || store.cleared[0] != "test@demo.com" {
		t.Fatalf("cleared owners = %v, want [test@demo.com]", store.cleared)
	}
}
