package entity

import "time"

// 投票取值
const (
	VoteUp     = 1
	VoteDown   = -1
	VoteRemove = 0
)

// SlangVote 词条投票实体，每个用户对每个词条至多一票
type SlangVote struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SlangID   int64     `json:"slang_id" gorm:"uniqueIndex:idx_slang_user_vote;not null"`
	UserID    string    `json:"user_id" gorm:"size:36;uniqueIndex:idx_slang_user_vote;not null"`
	Vote      int       `json:"vote"` // 1 赞成，-1 反对
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (SlangVote) TableName() string {
	return "slang_votes"
}

// IsValidVote 检查投票取值是否合法
func IsValidVote(v int) bool {
	return v == VoteUp || v == VoteDown || v == VoteRemove
}
