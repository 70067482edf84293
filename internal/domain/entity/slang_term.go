// Package entity 定义领域实体
package entity

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Vector 词条的向量表示，以 JSON 形式持久化在词条行上
type Vector []float32

// Value 实现 driver.Valuer
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan 实现 sql.Scanner
func (v *Vector) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}
}

// SlangTerm 俚语词条实体
type SlangTerm struct {
	ID                   int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Term                 string         `json:"term" gorm:"size:100;not null;index"`
	Meaning              string         `json:"meaning" gorm:"type:text;not null"`
	Origin               string         `json:"origin,omitempty" gorm:"size:255"`
	Context              string         `json:"context,omitempty" gorm:"size:255"`
	PartOfSpeech         string         `json:"part_of_speech,omitempty" gorm:"size:50"`
	Pronunciation        string         `json:"pronunciation,omitempty" gorm:"size:255"`
	AlternativeSpellings pq.StringArray `json:"alternative_spellings,omitempty" gorm:"type:text[]"`
	Examples             pq.StringArray `json:"examples,omitempty" gorm:"type:text[]"`
	IsVerified           bool           `json:"is_verified" gorm:"default:false;index"`
	SubmittedBy          string         `json:"submitted_by,omitempty" gorm:"size:36;index"`

	// Embedding 向量缓存及其内容指纹。指纹与当前内容不一致时缓存视为失效。
	Embedding  Vector `json:"-" gorm:"type:jsonb"`
	VectorHash string `json:"-" gorm:"size:64"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName 指定表名
func (SlangTerm) TableName() string {
	return "slang_terms"
}

// EmbeddingText 返回用于生成向量的文本：term + meaning + 最多两条例句。
// 拼接规则承载缓存失效语义，修改任一来源字段都会改变该文本。
func (t *SlangTerm) EmbeddingText() string {
	text := t.Term + " " + t.Meaning
	if len(t.Examples) > 0 {
		examples := t.Examples
		if len(examples) > 2 {
			examples = examples[:2]
		}
		text += " " + strings.Join(examples, " ")
	}
	return text
}

// ContentHash 计算 (term, meaning, examples) 的内容指纹
func (t *SlangTerm) ContentHash() string {
	h := sha256.New()
	h.Write([]byte(t.Term))
	h.Write([]byte{0})
	h.Write([]byte(t.Meaning))
	for _, ex := range t.Examples {
		h.Write([]byte{0})
		h.Write([]byte(ex))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HasFreshEmbedding 检查缓存向量是否存在且与当前内容一致
func (t *SlangTerm) HasFreshEmbedding() bool {
	return len(t.Embedding) > 0 && t.VectorHash == t.ContentHash()
}

// InvalidateEmbedding 内容变更后清除向量缓存
func (t *SlangTerm) InvalidateEmbedding() {
	t.Embedding = nil
	t.VectorHash = ""
}

// SetEmbedding 写入向量缓存并更新内容指纹
func (t *SlangTerm) SetEmbedding(vec []float32) {
	t.Embedding = vec
	t.VectorHash = t.ContentHash()
}
