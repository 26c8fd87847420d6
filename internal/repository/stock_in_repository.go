package repository

import (
	"errors"
	"strings"

	"github.com/kucun-next/internal/models"

	"gorm.io/gorm"
)

// StockInRepository 入库流水数据访问接口
type StockInRepository interface {
	List(filter StockInListFilter) ([]models.StockIn, int64, error)
	GetByID(id uint) (*models.StockIn, error)
	Create(record *models.StockIn) error
	SumQuantityByClothing(clothingID uint) (int64, error)
	SumAmountByDateRange(dateFrom, dateTo string) (models.Money, int64, error)
	WithTx(tx *gorm.DB) StockInRepository
}

// GormStockInRepository GORM 实现
type GormStockInRepository struct {
	db *gorm.DB
}

// NewStockInRepository 创建入库流水仓库
func NewStockInRepository(db *gorm.DB) *GormStockInRepository {
	return &GormStockInRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockInRepository) WithTx(tx *gorm.DB) StockInRepository {
	if tx == nil {
		return r
	}
	return &GormStockInRepository{db: tx}
}

// List 入库流水列表
func (r *GormStockInRepository) List(filter StockInListFilter) ([]models.StockIn, int64, error) {
	var records []models.StockIn

	query := r.db.Model(&models.StockIn{})
	if filter.ClothingID > 0 {
		query = query.Where("clothing_id = ?", filter.ClothingID)
	}
	if from := strings.TrimSpace(filter.DateFrom); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := strings.TrimSpace(filter.DateTo); to != "" {
		query = query.Where("date <= ?", to)
	}
	if operator := strings.TrimSpace(filter.Operator); operator != "" {
		query = query.Where("operator = ?", operator)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("date DESC, id DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// GetByID 根据 ID 获取入库记录
func (r *GormStockInRepository) GetByID(id uint) (*models.StockIn, error) {
	var record models.StockIn
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create 追加入库记录
func (r *GormStockInRepository) Create(record *models.StockIn) error {
	return r.db.Create(record).Error
}

// SumQuantityByClothing 汇总某服装累计入库数量
func (r *GormStockInRepository) SumQuantityByClothing(clothingID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.StockIn{}).
		Where("clothing_id = ?", clothingID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// SumAmountByDateRange 汇总日期区间内的入库总金额与总数量
func (r *GormStockInRepository) SumAmountByDateRange(dateFrom, dateTo string) (models.Money, int64, error) {
	var row struct {
		Amount   models.Money
		Quantity int64
	}
	query := r.db.Model(&models.StockIn{}).
		Select("COALESCE(SUM(total_amount), 0) AS amount, COALESCE(SUM(quantity), 0) AS quantity")
	if from := strings.TrimSpace(dateFrom); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := strings.TrimSpace(dateTo); to != "" {
		query = query.Where("date <= ?", to)
	}
	if err := query.Scan(&row).Error; err != nil {
		return models.Money{}, 0, err
	}
	return row.Amount, row.Quantity, nil
}
