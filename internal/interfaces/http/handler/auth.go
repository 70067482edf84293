// Package handler 提供 HTTP 请求处理器
package handler

import (
	"slanglab-api/internal/application/auth"
	"slanglab-api/internal/interfaces/http/dto"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc       *auth.Service
	expiresIn int
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *auth.Service, accessTTLSeconds int) *AuthHandler {
	if accessTTLSeconds <= 0 {
		accessTTLSeconds = 900
	}
	return &AuthHandler{
		svc:       svc,
		expiresIn: accessTTLSeconds,
	}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	dto.Created(c, &dto.AuthResponse{
		AccessToken: result.Tokens.AccessToken,
		ExpiresIn:   h.expiresIn,
		User:        dto.ToAuthUser(result.User),
	})
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	dto.Success(c, &dto.AuthResponse{
		AccessToken: result.Tokens.AccessToken,
		ExpiresIn:   h.expiresIn,
		User:        dto.ToAuthUser(result.User),
	})
}

// Refresh 刷新 Token。优先取 Cookie，兼容请求体传递。
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || refreshToken == "" {
		var req dto.RefreshRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		dto.Unauthorized(c, "missing refresh token")
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	dto.Success(c, gin.H{
		"access_token": tokens.AccessToken,
		"expires_in":   h.expiresIn,
	})
}

// Logout 登出
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("refresh_token", "", -1, "/v1/auth/refresh", "", false, true)
	dto.Success(c, gin.H{"message": "logged out"})
}

// setRefreshCookie 设置 RefreshToken 到 Cookie
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie("refresh_token", token, 7*24*3600, "/v1/auth/refresh", "", false, true)
}
