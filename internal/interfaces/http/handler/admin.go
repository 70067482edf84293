// Package handler 提供 HTTP 请求处理器
package handler

import (
	"slanglab-api/internal/application/slang"
	"slanglab-api/internal/domain/repository"
	"slanglab-api/internal/index"
	"slanglab-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// AdminHandler 审核与运维处理器
type AdminHandler struct {
	slangSvc *slang.Service
	manager  *index.Manager
}

// NewAdminHandler 创建审核与运维处理器
func NewAdminHandler(slangSvc *slang.Service, manager *index.Manager) *AdminHandler {
	return &AdminHandler{
		slangSvc: slangSvc,
		manager:  manager,
	}
}

// ListPending 分页列出待审核词条
func (h *AdminHandler) ListPending(c *gin.Context) {
	page := dto.BindPage(c)

	result, err := h.slangSvc.ListPending(c.Request.Context(), repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		respondError(c, err)
		return
	}

	dto.SuccessWithPage(c, result.Items, dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// Approve 审核通过词条并触发索引重建
func (h *AdminHandler) Approve(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	term, err := h.slangSvc.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, term)
}

// Reject 驳回词条，词条及其关联数据被删除
func (h *AdminHandler) Reject(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	if err := h.slangSvc.Reject(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	dto.NoContent(c)
}

// Stats 词条数量统计
func (h *AdminHandler) Stats(c *gin.Context) {
	counts, err := h.slangSvc.Counts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, counts)
}

// RebuildIndex 全量重建向量索引
func (h *AdminHandler) RebuildIndex(c *gin.Context) {
	if err := h.manager.Rebuild(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, gin.H{
		"index_size": h.manager.Index().Size(),
	})
}
