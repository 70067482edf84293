// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"

	"slanglab-api/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// RequireRole 角色检查中间件，要求操作者为指定角色之一
func RequireRole(roles ...entity.UserRole) gin.HandlerFunc {
	roleSet := make(map[entity.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortForbidden(c, "missing identity in context")
			return
		}

		if !roleSet[actor.Role] {
			abortForbidden(c, "role not allowed")
			return
		}

		c.Next()
	}
}

// RequireModerator 审核权限检查中间件（含管理员）
func RequireModerator() gin.HandlerFunc {
	return RequireRole(entity.UserRoleModerator, entity.UserRoleAdmin)
}

// RequireAdmin 管理员权限检查中间件
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entity.UserRoleAdmin)
}

// abortForbidden 终止请求并返回 403
func abortForbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"code":     403,
		"message":  msg,
		"trace_id": c.GetString("trace_id"),
	})
}
