package repository

import (
	"errors"
	"time"

	"github.com/kucun-next/internal/models"

	"gorm.io/gorm"
)

// InventoryRepository 库存数据访问接口
type InventoryRepository interface {
	ListAll() ([]models.Inventory, error)
	GetByClothingID(clothingID uint) (*models.Inventory, error)
	Create(inventory *models.Inventory) error
	Update(inventory *models.Inventory) error
	DeleteByClothingID(clothingID uint) error
	IncrementQuantity(clothingID uint, quantity int) (int64, error)
	DecrementQuantity(clothingID uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) InventoryRepository
}

// GormInventoryRepository GORM 实现
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) InventoryRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryRepository{db: tx}
}

// ListAll 全量库存
func (r *GormInventoryRepository) ListAll() ([]models.Inventory, error) {
	var rows []models.Inventory
	if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByClothingID 根据服装 ID 获取库存行（存在重复行时返回最早一条）
func (r *GormInventoryRepository) GetByClothingID(clothingID uint) (*models.Inventory, error) {
	var inventory models.Inventory
	if err := r.db.Where("clothing_id = ?", clothingID).Order("id ASC").First(&inventory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inventory, nil
}

// Create 创建库存行
func (r *GormInventoryRepository) Create(inventory *models.Inventory) error {
	return r.db.Create(inventory).Error
}

// Update 更新库存行
func (r *GormInventoryRepository) Update(inventory *models.Inventory) error {
	return r.db.Save(inventory).Error
}

// DeleteByClothingID 删除服装对应的库存行（随服装档案级联删除）
func (r *GormInventoryRepository) DeleteByClothingID(clothingID uint) error {
	return r.db.Where("clothing_id = ?", clothingID).Delete(&models.Inventory{}).Error
}

// IncrementQuantity 原子增加库存数量
func (r *GormInventoryRepository) IncrementQuantity(clothingID uint, quantity int) (int64, error) {
	if clothingID == 0 || quantity <= 0 {
		return 0, errors.New("invalid inventory increment params")
	}
	result := r.db.Model(&models.Inventory{}).
		Where("clothing_id = ?", clothingID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DecrementQuantity 原子条件扣减库存数量；余量不足时不修改任何行
func (r *GormInventoryRepository) DecrementQuantity(clothingID uint, quantity int) (int64, error) {
	if clothingID == 0 || quantity <= 0 {
		return 0, errors.New("invalid inventory decrement params")
	}
	result := r.db.Model(&models.Inventory{}).
		Where("clothing_id = ? AND quantity >= ?", clothingID, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
