package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/searchhub/searchhub/internal/config"
	"github.com/searchhub/searchhub/internal/domain/history"
	"github.com/searchhub/searchhub/internal/http/middlewares"
)

type HistoryStore interface {
	ListByOwner(ctx context.Context, owner string) ([]history.Entry, error)
	Clear(ctx context.Context, owner string) error
}

type HistoryHandler struct {
	store HistoryStore
}

func NewHistoryHandler(store HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

func (h *HistoryHandler) List(ctx *gin.Context) {
	email, ok := middlewares.EmailFromContext(ctx)
	if !ok || email == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	entries, err := h.store.ListByOwner(cctx, email)
	if err != nil {
		RespondInternal(ctx, "Could not load search history")
		return
	}

	if entries == nil {
		entries = []history.Entry{}
	}

	ctx.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *HistoryHandler) Clear(ctx *gin.Context) {
	email, ok := middlewares.EmailFromContext(ctx)
	if !ok || email == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.store.Clear(cctx, email); err != nil {
		RespondInternal(ctx, "Could not clear search history")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Search history cleared"})
}
