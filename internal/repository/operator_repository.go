package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/kucun-next/internal/models"

	"gorm.io/gorm"
)

// OperatorRepository 操作员账号数据访问接口
type OperatorRepository interface {
	GetByEmail(email string) (*models.Operator, error)
	GetByID(id uint) (*models.Operator, error)
	Create(operator *models.Operator) error
	Update(operator *models.Operator) error
	TouchLastLogin(id uint, at time.Time) error
}

// GormOperatorRepository GORM 实现
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository 创建操作员仓库
func NewOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// GetByEmail 根据邮箱获取操作员
func (r *GormOperatorRepository) GetByEmail(email string) (*models.Operator, error) {
	var operator models.Operator
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.Where("email = ?", normalized).First(&operator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// GetByID 根据 ID 获取操作员
func (r *GormOperatorRepository) GetByID(id uint) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.First(&operator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// Create 创建操作员
func (r *GormOperatorRepository) Create(operator *models.Operator) error {
	return r.db.Create(operator).Error
}

// Update 更新操作员
func (r *GormOperatorRepository) Update(operator *models.Operator) error {
	return r.db.Save(operator).Error
}

// TouchLastLogin 更新最后登录时间
func (r *GormOperatorRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Operator{}).Where("id = ?", id).Update("last_login_at", at).Error
}
