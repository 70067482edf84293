// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	// ActorKey Gin Context 中的操作者键
	ActorKey = "actor"
)

// RequireAuth 认证中间件，未携带合法 AccessToken 的请求被拒绝
func RequireAuth(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, jwtManager)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, utils.ErrExpiredToken) {
				msg = "token expired"
			} else if errors.Is(err, errMissingToken) {
				msg = "missing authorization header"
			}
			abortUnauthorized(c, msg)
			return
		}

		setActor(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件。携带合法 Token 时注入操作者身份，
// 匿名请求照常放行，交由处理器决定可见范围。
func OptionalAuth(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, jwtManager)
		if err == nil {
			setActor(c, claims)
		}
		c.Next()
	}
}

var errMissingToken = errors.New("missing token")

// parseBearer 解析 Authorization 头中的 AccessToken
func parseBearer(c *gin.Context, jwtManager *utils.JWTManager) (*utils.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, utils.ErrInvalidToken
	}

	claims, err := jwtManager.ParseToken(parts[1])
	if err != nil {
		return nil, err
	}

	// 确保是 AccessToken
	if claims.Type != "access" {
		return nil, utils.ErrInvalidToken
	}
	return claims, nil
}

// setActor 注入操作者身份到 Gin Context
func setActor(c *gin.Context, claims *utils.Claims) {
	c.Set(ActorKey, entity.Actor{
		UserID: claims.UserID,
		Role:   entity.UserRole(claims.Role),
	})
	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
}

// GetActor 读取操作者身份，匿名请求返回零值
func GetActor(c *gin.Context) (entity.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return entity.Actor{}, false
	}
	actor, ok := v.(entity.Actor)
	return actor, ok
}

// abortUnauthorized 终止请求并返回 401
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":     401,
		"message":  msg,
		"trace_id": c.GetString("trace_id"),
	})
}
