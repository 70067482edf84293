package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"slanglab-api/internal/domain/entity"
	"slanglab-api/internal/domain/repository"
	apperrors "slanglab-api/pkg/errors"
)

// VoteRepository 投票仓储实现
type VoteRepository struct {
	client *Client
}

// NewVoteRepository 创建投票仓储
func NewVoteRepository(client *Client) *VoteRepository {
	return &VoteRepository{client: client}
}

// Create 创建投票
func (r *VoteRepository) Create(ctx context.Context, vote *entity.SlangVote) error {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(vote).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

// Update 更新投票
func (r *VoteRepository) Update(ctx context.Context, vote *entity.SlangVote) error {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(vote).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update vote: %w", err)
	}
	return nil
}

// Delete 删除投票
func (r *VoteRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.SlangVote{}, id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

// DeleteByTerm 删除词条的全部投票
func (r *VoteRepository) DeleteByTerm(ctx context.Context, slangID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.DeleteByTerm")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("slang_id = ?", slangID).Delete(&entity.SlangVote{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete votes by term: %w", err)
	}
	return nil
}

// GetByUserAndTerm 查询用户对词条的投票
func (r *VoteRepository) GetByUserAndTerm(ctx context.Context, userID string, slangID int64) (*entity.SlangVote, error) {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.GetByUserAndTerm")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var vote entity.SlangVote
	if err := db.First(&vote, "user_id = ? AND slang_id = ?", userID, slangID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

// ListByUser 查询用户的全部投票
func (r *VoteRepository) ListByUser(ctx context.Context, userID string) ([]*entity.SlangVote, error) {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var votes []*entity.SlangVote
	if err := db.Where("user_id = ?", userID).Find(&votes).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}

// SumByTerm 词条的净得票
func (r *VoteRepository) SumByTerm(ctx context.Context, slangID int64) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.SumByTerm")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var sum int64
	err := db.Model(&entity.SlangVote{}).
		Where("slang_id = ?", slangID).
		Select("COALESCE(SUM(vote), 0)").
		Scan(&sum).Error
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to sum votes: %w", err)
	}
	return sum, nil
}

// SumByTerms 多个词条的净得票
func (r *VoteRepository) SumByTerms(ctx context.Context, slangIDs []int64) (map[int64]int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.SumByTerms")
	defer span.End()

	out := make(map[int64]int64, len(slangIDs))
	if len(slangIDs) == 0 {
		return out, nil
	}

	var rows []repository.TermVotes
	db := getDB(ctx, r.client.db)
	err := db.Model(&entity.SlangVote{}).
		Select("slang_id, COALESCE(SUM(vote), 0) AS count").
		Where("slang_id IN ?", slangIDs).
		Group("slang_id").
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to sum votes by terms: %w", err)
	}
	for _, row := range rows {
		out[row.SlangID] = row.Count
	}
	return out, nil
}

// CountSince 按词条统计窗口内的投票次数，仅已审核词条
func (r *VoteRepository) CountSince(ctx context.Context, since time.Time) (map[int64]int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.CountSince")
	defer span.End()

	var rows []repository.TermVotes
	db := getDB(ctx, r.client.db)
	err := db.Model(&entity.SlangVote{}).
		Select("slang_votes.slang_id, COUNT(*) AS count").
		Joins("JOIN slang_terms ON slang_terms.id = slang_votes.slang_id").
		Where("slang_votes.created_at >= ? AND slang_terms.is_verified = ?", since, true).
		Group("slang_votes.slang_id").
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count votes in window: %w", err)
	}

	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.SlangID] = row.Count
	}
	return out, nil
}

// TopBySum 按净得票降序返回前 limit 个已审核词条，同分按 ID 升序
func (r *VoteRepository) TopBySum(ctx context.Context, limit int) ([]repository.TermVotes, error) {
	ctx, span := tracer.Start(ctx, "postgres.VoteRepository.TopBySum")
	defer span.End()

	var rows []repository.TermVotes
	db := getDB(ctx, r.client.db)
	err := db.Model(&entity.SlangVote{}).
		Select("slang_votes.slang_id, COALESCE(SUM(slang_votes.vote), 0) AS count").
		Joins("JOIN slang_terms ON slang_terms.id = slang_votes.slang_id").
		Where("slang_terms.is_verified = ?", true).
		Group("slang_votes.slang_id").
		Order("count DESC, slang_votes.slang_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load top voted terms: %w", err)
	}
	return rows, nil
}
