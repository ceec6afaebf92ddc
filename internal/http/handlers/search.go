package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/searchhub/searchhub/internal/http/middlewares"
	"github.com/searchhub/searchhub/internal/search"
)

type SearchHandler struct {
	svc *search.Service
}

func NewSearchHandler(svc *search.Service) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Start int    `json:"start"`
}

func (h *SearchHandler) Search(ctx *gin.Context) {
	var req SearchRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email, ok := middlewares.EmailFromContext(ctx)
	if !ok || email == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	page, err := h.svc.Search(ctx.Request.Context(), email, req.Query, req.Start)
	if err != nil {
		if errors.Is(err, search.ErrInvalidQuery) {
			RespondBadRequest(ctx, "Query must be a non-empty string", nil)
			return
		}

		var upstreamErr *search.UpstreamError
		if errors.As(err, &upstreamErr) {
			RespondBadGateway(ctx, upstreamErr.Message)
			return
		}

		RespondInternal(ctx, "Search failed")
		return
	}

	ctx.JSON(http.StatusOK, page)
}
