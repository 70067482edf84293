// Package handler 提供 HTTP 请求处理器
package handler

import (
	"slanglab-api/internal/application/assist"
	"slanglab-api/internal/application/slang"
	"slanglab-api/internal/domain/repository"
	"slanglab-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// SlangHandler 词条处理器
type SlangHandler struct {
	svc       *slang.Service
	assistSvc *assist.Service
}

// NewSlangHandler 创建词条处理器
func NewSlangHandler(svc *slang.Service, assistSvc *assist.Service) *SlangHandler {
	return &SlangHandler{
		svc:       svc,
		assistSvc: assistSvc,
	}
}

// List 分页列出已审核词条
func (h *SlangHandler) List(c *gin.Context) {
	page := dto.BindPage(c)

	result, err := h.svc.List(c.Request.Context(), repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		respondError(c, err)
		return
	}

	dto.SuccessWithPage(c, result.Items, dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// Get 查看单个词条。未审核词条仅提交者和审核员可见。
func (h *SlangHandler) Get(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	term, err := h.svc.Get(c.Request.Context(), optionalActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, term)
}

// Create 提交新词条
func (h *SlangHandler) Create(c *gin.Context) {
	var req dto.CreateSlangRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	term, err := h.svc.Create(c.Request.Context(), mustActor(c), slang.CreateInput{
		Term:                 req.Term,
		Meaning:              req.Meaning,
		Origin:               req.Origin,
		Context:              req.Context,
		PartOfSpeech:         req.PartOfSpeech,
		Pronunciation:        req.Pronunciation,
		AlternativeSpellings: req.AlternativeSpellings,
		Examples:             req.Examples,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Created(c, term)
}

// Update 编辑词条。仅提交者和审核员可编辑。
func (h *SlangHandler) Update(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	var req dto.UpdateSlangRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	term, err := h.svc.Update(c.Request.Context(), mustActor(c), id, slang.UpdateInput{
		Meaning:              req.Meaning,
		Origin:               req.Origin,
		Context:              req.Context,
		PartOfSpeech:         req.PartOfSpeech,
		Pronunciation:        req.Pronunciation,
		AlternativeSpellings: req.AlternativeSpellings,
		Examples:             req.Examples,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, term)
}

// Delete 删除词条及其关联数据
func (h *SlangHandler) Delete(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), mustActor(c), id); err != nil {
		respondError(c, err)
		return
	}

	dto.NoContent(c)
}

// Translations 列出词条的全部译文
func (h *SlangHandler) Translations(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	items, err := h.assistSvc.ListTranslations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, items)
}

// Explain 为词条文本生成释义草稿，不落库
func (h *SlangHandler) Explain(c *gin.Context) {
	var req dto.ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.assistSvc.GenerateExplanation(c.Request.Context(), req.Term, req.Context)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, result)
}

// Translate 为已有词条生成目标语言译文并持久化
func (h *SlangHandler) Translate(c *gin.Context) {
	id, ok := dto.BindTermID(c)
	if !ok {
		dto.BadRequest(c, "invalid term id")
		return
	}

	var req dto.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	translation, err := h.assistSvc.GenerateTranslation(c.Request.Context(), id, req.Language)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, translation)
}
