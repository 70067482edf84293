// Package handler 提供 HTTP 请求处理器
package handler

import (
	"slanglab-api/internal/application/community"
	"slanglab-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// CommunityHandler 社区处理器
type CommunityHandler struct {
	svc *community.Service
}

// NewCommunityHandler 创建社区处理器
func NewCommunityHandler(svc *community.Service) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

// Vote 对词条投票
func (h *CommunityHandler) Vote(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	votes, err := h.svc.Vote(c.Request.Context(), mustActor(c), id, req.Vote)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, &dto.VoteResponse{SlangID: id, Votes: votes})
}

// MyVotes 当前用户的投票表
func (h *CommunityHandler) MyVotes(c *gin.Context) {
	votes, err := h.svc.MyVotes(c.Request.Context(), mustActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, votes)
}

// Stats 社区统计
func (h *CommunityHandler) Stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, stats)
}
