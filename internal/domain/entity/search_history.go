package entity

import "time"

// SearchHistory 搜索历史记录
type SearchHistory struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      string    `json:"user_id,omitempty" gorm:"size:36;index"`
	Query       string    `json:"query" gorm:"size:255;not null"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// TableName 指定表名
func (SearchHistory) TableName() string {
	return "search_history"
}

// Favorite 用户收藏关联
type Favorite struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	SlangID   int64     `json:"slang_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Favorite) TableName() string {
	return "user_favorites"
}
