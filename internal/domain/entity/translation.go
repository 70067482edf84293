package entity

import (
	"time"

	"github.com/lib/pq"
)

// SlangTranslation 词条翻译实体，(slang_id, language) 唯一
type SlangTranslation struct {
	ID          int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	SlangID     int64          `json:"slang_id" gorm:"uniqueIndex:idx_slang_translation;not null"`
	Language    string         `json:"language" gorm:"size:10;uniqueIndex:idx_slang_translation;not null"`
	Translation string         `json:"translation" gorm:"type:text;not null"`
	Notes       string         `json:"notes,omitempty" gorm:"type:text"`
	Examples    pq.StringArray `json:"examples,omitempty" gorm:"type:text[]"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TableName 指定表名
func (SlangTranslation) TableName() string {
	return "slang_translations"
}
