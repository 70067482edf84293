// Package bootstrap 负责应用装配
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"slanglab-api/internal/application/assist"
	"slanglab-api/internal/application/auth"
	"slanglab-api/internal/application/community"
	"slanglab-api/internal/application/search"
	"slanglab-api/internal/application/slang"
	"slanglab-api/internal/application/user"
	"slanglab-api/internal/config"
	"slanglab-api/internal/index"
	"slanglab-api/internal/infrastructure/embedding"
	"slanglab-api/internal/infrastructure/llm"
	"slanglab-api/internal/infrastructure/persistence/postgres"
	"slanglab-api/internal/infrastructure/persistence/redis"
	"slanglab-api/internal/interfaces/http/handler"
	"slanglab-api/internal/interfaces/http/router"
	"slanglab-api/pkg/logger"
	"slanglab-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// App 装配完成的应用
type App struct {
	router  *router.Router
	manager *index.Manager
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.router.Engine()
}

// Manager 返回索引管理器
func (a *App) Manager() *index.Manager {
	return a.manager
}

// NewApp 装配应用。启动时执行一次全量索引重建，
// 缓存向量维度与配置不一致时装配失败。
func NewApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		pgClient.Close()
		return nil, nil, fmt.Errorf("init redis: %w", err)
	}

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn(ctx, "failed to close redis", "error", err)
		}
		if err := pgClient.Close(); err != nil {
			logger.Warn(ctx, "failed to close postgres", "error", err)
		}
	}

	// 数据访问层
	slangRepo := postgres.NewSlangRepository(pgClient)
	voteRepo := postgres.NewVoteRepository(pgClient)
	historyRepo := postgres.NewSearchHistoryRepository(pgClient)
	translationRepo := postgres.NewTranslationRepository(pgClient)
	userRepo := postgres.NewUserRepository(pgClient)
	favoriteRepo := postgres.NewFavoriteRepository(pgClient)
	txManager := postgres.NewTxManager(pgClient)

	cache := redis.NewCache(redisClient)
	limiter := redis.NewRateLimiter(redisClient)

	// 向量索引
	embedClient, err := embedding.NewClient(ctx, &cfg.Embedding)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init embedding client: %w", err)
	}

	idx := index.NewVectorIndex(cfg.Embedding.Dimension)
	manager := index.NewManager(idx, slangRepo, embedClient, cfg.Search.RebuildConcurrency, cfg.Embedding.Timeout)

	if err := manager.Rebuild(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("initial index build: %w", err)
	}

	// LLM 辅助（可选，未配置时相关接口返回 503）
	var assistClient *llm.AssistClient
	if cfg.LLM.APIKey != "" {
		chatModel, err := llm.NewChatModel(ctx, &cfg.LLM)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init chat model: %w", err)
		}
		assistClient = llm.NewAssistClient(chatModel, cfg.LLM.Timeout)
	} else {
		logger.Warn(ctx, "llm api key not configured, assist endpoints disabled")
	}

	// 应用服务
	jwtManager := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
	authSvc := auth.NewService(userRepo, jwtManager, cfg.Security.JWT.Expiration, cfg.Security.JWT.RefreshExpiration)
	slangSvc := slang.NewService(slangRepo, voteRepo, translationRepo, favoriteRepo, txManager, manager, cache, cfg.Community.MaxSubmissionsPerDay)
	assistSvc := assist.NewService(assistClient, slangRepo, translationRepo)
	communitySvc := community.NewService(slangRepo, voteRepo, cache, 30*time.Second)
	userSvc := user.NewService(userRepo, favoriteRepo, slangRepo)

	coordinator := search.NewCoordinator(
		idx, embedClient, slangRepo, historyRepo,
		cfg.Search.SimilarityThreshold, cfg.Search.DefaultLimit, cfg.Search.MaxLimit,
	)
	ranker := search.NewRanker(
		slangRepo, voteRepo, historyRepo, cache,
		cfg.Trending.DefaultWindowDays, cfg.Trending.MaxWindowDays, cfg.Trending.RecentQueryLimit,
		cfg.Trending.CacheTTL,
	)

	// HTTP 层
	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(pgClient, redisClient, idx),
		Auth:      handler.NewAuthHandler(authSvc, int(cfg.Security.JWT.Expiration.Seconds())),
		Search:    handler.NewSearchHandler(coordinator, ranker),
		Slang:     handler.NewSlangHandler(slangSvc, assistSvc),
		Community: handler.NewCommunityHandler(communitySvc),
		User:      handler.NewUserHandler(userSvc),
		Admin:     handler.NewAdminHandler(slangSvc, manager),
	}

	r := router.New(cfg, jwtManager, limiter, handlers)

	return &App{
		router:  r,
		manager: manager,
	}, cleanup, nil
}
