package entity

import (
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// UserRole 用户角色
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"
)

// User 用户实体
type User struct {
	ID                string         `json:"id" gorm:"primaryKey;size:36"`
	Email             string         `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Username          string         `json:"username,omitempty" gorm:"size:50;uniqueIndex"`
	PasswordHash      string         `json:"-" gorm:"size:255"`
	NativeLanguage    string         `json:"native_language,omitempty" gorm:"size:10"`
	LearningLanguages pq.StringArray `json:"learning_languages,omitempty" gorm:"type:text[]"`
	Role              UserRole       `json:"role" gorm:"size:20;default:user"`
	CreatedAt         time.Time      `json:"created_at"`
	LastLoginAt       *time.Time     `json:"last_login,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 检查用户是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsModerator 检查用户是否为审核员（含管理员）
func (u *User) IsModerator() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleModerator
}

// Actor 一次请求的操作者身份，由认证中间件填充
type Actor struct {
	UserID string
	Role   UserRole
}

// IsModerator 检查操作者是否具备审核权限（含管理员）
func (a Actor) IsModerator() bool {
	return a.Role == UserRoleAdmin || a.Role == UserRoleModerator
}

// IsAdmin 检查操作者是否为管理员
func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}

// SetPassword 设置并散列密码
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
