// Package router 提供 HTTP 路由配置
package router

import (
	"slanglab-api/internal/interfaces/http/middleware"
	"slanglab-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, jwtManager *utils.JWTManager, h Handlers) {
	requireAuth := middleware.RequireAuth(jwtManager)
	optionalAuth := middleware.OptionalAuth(jwtManager)

	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	// 检索
	search := v1.Group("/search")
	{
		search.GET("", optionalAuth, h.Search.Search)
		search.GET("/trending", h.Search.Trending)
		search.GET("/popular", h.Search.Popular)
		search.GET("/history", requireAuth, h.Search.History)
		search.DELETE("/history", requireAuth, h.Search.ClearHistory)
	}

	// 词条管理
	slang := v1.Group("/slang")
	{
		slang.GET("", h.Slang.List)
		slang.POST("", requireAuth, h.Slang.Create)
		slang.GET("/:id", optionalAuth, h.Slang.Get)
		slang.PUT("/:id", requireAuth, h.Slang.Update)
		slang.DELETE("/:id", requireAuth, h.Slang.Delete)

		// 译文
		slang.GET("/:id/translations", h.Slang.Translations)
		slang.POST("/:id/translate", requireAuth, h.Slang.Translate)

		// 投票与收藏
		slang.POST("/:id/vote", requireAuth, h.Community.Vote)
		slang.POST("/:id/favorite", requireAuth, h.User.ToggleFavorite)
	}

	// AI 释义草稿
	v1.POST("/assist/explain", requireAuth, h.Slang.Explain)

	// 社区
	community := v1.Group("/community")
	{
		community.GET("/stats", h.Community.Stats)
		community.GET("/my-votes", requireAuth, h.Community.MyVotes)
	}

	// 用户管理
	users := v1.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("/me", h.User.GetMe)
		users.PUT("/me", h.User.UpdateMe)
		users.GET("/me/favorites", h.User.ListFavorites)
	}

	// 审核与运维
	admin := v1.Group("/admin")
	admin.Use(requireAuth, middleware.RequireModerator())
	{
		admin.GET("/slang/pending", h.Admin.ListPending)
		admin.POST("/slang/:id/approve", h.Admin.Approve)
		admin.POST("/slang/:id/reject", h.Admin.Reject)
		admin.GET("/stats", h.Admin.Stats)
		admin.POST("/index/rebuild", h.Admin.RebuildIndex)
	}
}
