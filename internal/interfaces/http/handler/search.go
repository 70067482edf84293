// Package handler 提供 HTTP 请求处理器
package handler

import (
	"slanglab-api/internal/application/search"
	"slanglab-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// SearchHandler 搜索处理器
type SearchHandler struct {
	coordinator *search.Coordinator
	ranker      *search.Ranker
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(coordinator *search.Coordinator, ranker *search.Ranker) *SearchHandler {
	return &SearchHandler{
		coordinator: coordinator,
		ranker:      ranker,
	}
}

// Search 混合检索。语义检索默认开启，无命中时回退关键词匹配。
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		dto.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	actor := optionalActor(c)
	out, err := h.coordinator.Search(c.Request.Context(), search.Input{
		Query:           req.Query,
		Limit:           req.Limit,
		SemanticEnabled: req.SemanticEnabled(),
		UserID:          actor.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, out)
}

// Trending 热榜
func (h *SearchHandler) Trending(c *gin.Context) {
	windowDays := dto.BindQueryInt(c, "window_days", 0)
	limit := dto.BindQueryInt(c, "limit", 0)

	items, err := h.ranker.Trending(c.Request.Context(), windowDays, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, items)
}

// Popular 历史累计人气榜
func (h *SearchHandler) Popular(c *gin.Context) {
	limit := dto.BindQueryInt(c, "limit", 0)

	items, err := h.ranker.Popular(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, items)
}

// History 当前用户的搜索历史
func (h *SearchHandler) History(c *gin.Context) {
	actor := mustActor(c)
	limit := dto.BindQueryInt(c, "limit", 0)

	items, err := h.ranker.History(c.Request.Context(), actor.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, items)
}

// ClearHistory 清空当前用户的搜索历史
func (h *SearchHandler) ClearHistory(c *gin.Context) {
	actor := mustActor(c)

	if err := h.ranker.ClearHistory(c.Request.Context(), actor.UserID); err != nil {
		respondError(c, err)
		return
	}

	dto.NoContent(c)
}
