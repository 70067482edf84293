package repository

import (
	"context"
	"time"

	"slanglab-api/internal/domain/entity"
)

// TermVotes 词条与投票计数
type TermVotes struct {
	SlangID int64 `json:"slang_id"`
	Count   int64 `json:"count"`
}

// VoteRepository 投票仓储接口
type VoteRepository interface {
	Create(ctx context.Context, vote *entity.SlangVote) error
	Update(ctx context.Context, vote *entity.SlangVote) error
	Delete(ctx context.Context, id int64) error
	// DeleteByTerm 删除词条的全部投票（词条删除时级联）
	DeleteByTerm(ctx context.Context, slangID int64) error
	GetByUserAndTerm(ctx context.Context, userID string, slangID int64) (*entity.SlangVote, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.SlangVote, error)

	// SumByTerm 词条的净得票（赞减踩）
	SumByTerm(ctx context.Context, slangID int64) (int64, error)
	// SumByTerms 多个词条的净得票
	SumByTerms(ctx context.Context, slangIDs []int64) (map[int64]int64, error)

	// CountSince 按词条统计窗口内的投票次数（计票数，不计方向），仅已审核词条
	CountSince(ctx context.Context, since time.Time) (map[int64]int64, error)
	// TopBySum 按净得票降序返回前 limit 个已审核词条
	TopBySum(ctx context.Context, limit int) ([]TermVotes, error)
}
