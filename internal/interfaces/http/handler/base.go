// Package handler 提供 HTTP 请求处理器
package handler

import (
	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/interfaces/http/dto"
	"slanglab-api/internal/interfaces/http/middleware"
	apperrors "slanglab-api/pkg/errors"

	"github.com/gin-gonic/gin"
)

// respondError 将应用错误映射为 HTTP 错误响应
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
		Code:    appErr.HTTPStatus,
		Message: appErr.Message,
		Detail:  appErr.Detail,
		TraceID: c.GetString("trace_id"),
	})
}

// mustActor 读取操作者身份。路由经 RequireAuth 保护时身份必定存在。
func mustActor(c *gin.Context) entity.Actor {
	actor, _ := middleware.GetActor(c)
	return actor
}

// optionalActor 读取可选的操作者身份，匿名请求返回零值
func optionalActor(c *gin.Context) entity.Actor {
	actor, _ := middleware.GetActor(c)
	return actor
}
