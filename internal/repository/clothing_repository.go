package repository

import (
	"errors"
	"strings"

	"github.com/kucun-next/internal/models"

	"gorm.io/gorm"
)

// ClothingRepository 服装档案数据访问接口
type ClothingRepository interface {
	List(filter ClothingListFilter) ([]models.Clothing, int64, error)
	GetByID(id uint) (*models.Clothing, error)
	GetByCode(code string) (*models.Clothing, error)
	ListByIDs(ids []uint) ([]models.Clothing, error)
	Create(clothing *models.Clothing) error
	Update(clothing *models.Clothing) error
	Delete(id uint) error
	CountByCode(code string, excludeID *uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ClothingRepository
}

// GormClothingRepository GORM 实现
type GormClothingRepository struct {
	db *gorm.DB
}

// NewClothingRepository 创建服装仓库
func NewClothingRepository(db *gorm.DB) *GormClothingRepository {
	return &GormClothingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClothingRepository) WithTx(tx *gorm.DB) ClothingRepository {
	if tx == nil {
		return r
	}
	return &GormClothingRepository{db: tx}
}

// Transaction 执行事务
func (r *GormClothingRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 服装列表
func (r *GormClothingRepository) List(filter ClothingListFilter) ([]models.Clothing, int64, error) {
	var clothes []models.Clothing

	query := r.db.Model(&models.Clothing{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if size := strings.TrimSpace(filter.Size); size != "" {
		query = query.Where("size = ?", size)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC, id DESC").Find(&clothes).Error; err != nil {
		return nil, 0, err
	}
	return clothes, total, nil
}

// GetByID 根据 ID 获取服装
func (r *GormClothingRepository) GetByID(id uint) (*models.Clothing, error) {
	var clothing models.Clothing
	if err := r.db.First(&clothing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clothing, nil
}

// GetByCode 根据货号获取服装（存在重复货号时返回最早一条）
func (r *GormClothingRepository) GetByCode(code string) (*models.Clothing, error) {
	var clothing models.Clothing
	if err := r.db.Where("code = ?", code).Order("id ASC").First(&clothing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clothing, nil
}

// ListByIDs 批量获取服装
func (r *GormClothingRepository) ListByIDs(ids []uint) ([]models.Clothing, error) {
	if len(ids) == 0 {
		return []models.Clothing{}, nil
	}
	var clothes []models.Clothing
	if err := r.db.Where("id IN ?", ids).Find(&clothes).Error; err != nil {
		return nil, err
	}
	return clothes, nil
}

// Create 创建服装
func (r *GormClothingRepository) Create(clothing *models.Clothing) error {
	return r.db.Create(clothing).Error
}

// Update 更新服装
func (r *GormClothingRepository) Update(clothing *models.Clothing) error {
	return r.db.Save(clothing).Error
}

// Delete 删除服装（历史出入库流水保留，由上层负责级联删除库存行）
func (r *GormClothingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Clothing{}, id).Error
}

// CountByCode 统计货号数量（用于新增/编辑时的重复提示）
func (r *GormClothingRepository) CountByCode(code string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Clothing{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
