// Package handler 提供 HTTP 请求处理器
package handler

import (
	"slanglab-api/internal/application/user"
	"slanglab-api/internal/domain/repository"
	"slanglab-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	svc *user.Service
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svc *user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetMe 获取当前用户资料
func (h *UserHandler) GetMe(c *gin.Context) {
	actor := mustActor(c)

	profile, err := h.svc.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, profile)
}

// UpdateMe 更新当前用户资料
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	actor := mustActor(c)
	profile, err := h.svc.UpdateProfile(c.Request.Context(), actor.UserID, user.ProfileUpdate{
		Username:          req.Username,
		NativeLanguage:    req.NativeLanguage,
		LearningLanguages: req.LearningLanguages,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, profile)
}

// ListFavorites 分页列出当前用户收藏的词条
func (h *UserHandler) ListFavorites(c *gin.Context) {
	actor := mustActor(c)
	page := dto.BindPage(c)

	result, err := h.svc.ListFavorites(c.Request.Context(), actor.UserID, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		respondError(c, err)
		return
	}

	dto.SuccessWithPage(c, result.Items, dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// ToggleFavorite 切换词条收藏状态
func (h *UserHandler) ToggleFavorite(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	actor := mustActor(c)
	favorited, err := h.svc.ToggleFavorite(c.Request.Context(), actor.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, &dto.FavoriteResponse{SlangID: id, Favorited: favorited})
}
