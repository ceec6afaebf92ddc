package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/searchhub/searchhub/internal/config"
	"github.com/searchhub/searchhub/internal/domain/history"
	"github.com/searchhub/searchhub/internal/domain/user"
)

type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

type HistoryLister interface {
	ListAll(ctx context.Context) ([]history.Entry, error)
}

type AdminUsersHandler struct {
	users   UserLister
	history HistoryLister
}

func NewAdminUsersHandler(users UserLister, hist HistoryLister) *AdminUsersHandler {
	return &AdminUsersHandler{users: users, history: hist}
}

type UserReport struct {
	Email   string          `json:"email"`
	Name    string          `json:"name"`
	History []history.Entry `json:"history"`
}

func (h *AdminUsersHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not load users")
		return
	}

	entries, err := h.history.ListAll(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not load search history")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"users": BuildUserReports(users, entries),
	})
}

// BuildUserReports merges history entries into their owning users. Every
// known user appears, with an empty (never null) history; entries whose
// owner is unknown are dropped rather than failing the whole report.
func BuildUserReports(users []user.User, entries []history.Entry) []UserReport {
	reports := make([]UserReport, len(users))
	byEmail := make(map[string]int, len(users))

	for i, u := range users {
		reports[i] = UserReport{
			Email:   u.Email,
			Name:    u.Name,
			History: []history.Entry{},
		}
		byEmail[u.Email] = i
	}

	for _, e := range entries {
		i, ok := byEmail[e.Owner]
		if !ok {
			continue
		}

		reports[i].History = append(reports[i].History, e)
	}

	return reports
}
