package models

import (
	"time"

	"gorm.io/gorm"
)

// Operator 操作员账号表（店铺的登录账号，云同步按登录态开闸）
type Operator struct {
	ID           uint           `gorm:"primarykey" json:"id"`                             // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`                // 登录邮箱
	Name         string         `json:"name"`                                             // 显示名称
	PasswordHash string         `gorm:"not null" json:"-"`                                // 密码哈希（不返回给前端）
	Status       string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"` // 账号状态（active/disabled）
	LastLoginAt  *time.Time     `json:"last_login_at"`                                    // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间
}

// TableName 指定表名
func (Operator) TableName() string {
	return "operators"
}
