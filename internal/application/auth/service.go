// Package auth 实现注册、登录与令牌刷新
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	apperrors "slanglab-api/pkg/errors"
	"slanglab-api/pkg/logger"
	"slanglab-api/pkg/utils"
)

var tracer = otel.Tracer("auth")

// RegisterInput 注册请求
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Result 认证结果
type Result struct {
	User   *entity.User     `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

// Service 认证服务
type Service struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService 创建认证服务
func NewService(userRepo repository.UserRepository, jwtManager *utils.JWTManager, accessTTL, refreshTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Service{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register 注册新用户
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	ctx, span := tracer.Start(ctx, "auth.Service.Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if email == "" || in.Password == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "email and password are required")
	}
	if len(in.Password) < 8 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "password must be at least 8 characters")
	}

	if exists, err := s.userRepo.ExistsByEmail(ctx, email); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "check email")
	} else if exists {
		return nil, apperrors.New(apperrors.CodeConflict, "email already registered")
	}
	if username != "" {
		if taken, err := s.userRepo.ExistsByUsername(ctx, username); err != nil {
			span.RecordError(err)
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "check username")
		} else if taken {
			return nil, apperrors.New(apperrors.CodeConflict, "username already taken")
		}
	}

	u := &entity.User{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
		Role:     entity.UserRoleUser,
	}
	if err := u.SetPassword(in.Password); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "hash password")
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "create user")
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Info(ctx, "user registered", "user_id", u.ID)
	return &Result{User: u, Tokens: tokens}, nil
}

// Login 邮箱密码登录
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "auth.Service.Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// 不区分用户不存在与密码错误
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}
	if !u.CheckPassword(password) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}

	if err := s.userRepo.UpdateLastLogin(ctx, u.ID); err != nil {
		logger.Warn(ctx, "update last login failed", "user_id", u.ID, "error", err.Error())
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &Result{User: u, Tokens: tokens}, nil
}

// Refresh 用 RefreshToken 换发新的令牌对
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	ctx, span := tracer.Start(ctx, "auth.Service.Refresh")
	defer span.End()

	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}
	if claims.Type != "refresh" {
		return nil, apperrors.New(apperrors.CodeTokenInvalid, "not a refresh token")
	}

	// 角色以存储中的当前值为准，避免旧令牌固化过期角色
	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}
	return s.issueTokens(u)
}

func (s *Service) issueTokens(u *entity.User) (*utils.TokenPair, error) {
	tokens, err := s.jwtManager.GenerateTokenPair(u.ID, string(u.Role), s.accessTTL, s.refreshTTL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "generate tokens")
	}
	return tokens, nil
}
