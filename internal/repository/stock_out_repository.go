package repository

import (
	"errors"
	"strings"

	"github.com/kucun-next/internal/models"

	"gorm.io/gorm"
)

// StockOutRepository 出库流水数据访问接口
type StockOutRepository interface {
	List(filter StockOutListFilter) ([]models.StockOut, int64, error)
	GetByID(id uint) (*models.StockOut, error)
	Create(record *models.StockOut) error
	SumQuantityByClothing(clothingID uint) (int64, error)
	SumAmountByDateRange(dateFrom, dateTo string) (models.Money, int64, error)
	WithTx(tx *gorm.DB) StockOutRepository
}

// GormStockOutRepository GORM 实现
type GormStockOutRepository struct {
	db *gorm.DB
}

// NewStockOutRepository 创建出库流水仓库
func NewStockOutRepository(db *gorm.DB) *GormStockOutRepository {
	return &GormStockOutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockOutRepository) WithTx(tx *gorm.DB) StockOutRepository {
	if tx == nil {
		return r
	}
	return &GormStockOutRepository{db: tx}
}

// List 出库流水列表
func (r *GormStockOutRepository) List(filter StockOutListFilter) ([]models.StockOut, int64, error) {
	var records []models.StockOut

	query := r.db.Model(&models.StockOut{})
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
	if customer := strings.TrimSpace(filter.Customer); customer != "" {
		query = query.Where("customer LIKE ?", "%"+customer+"%")
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

// GetByID 根据 ID 获取出库记录
func (r *GormStockOutRepository) GetByID(id uint) (*models.StockOut, error) {
	var record models.StockOut
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create 追加出库记录
func (r *GormStockOutRepository) Create(record *models.StockOut) error {
	return r.db.Create(record).Error
}

// SumQuantityByClothing 汇总某服装累计出库数量
func (r *GormStockOutRepository) SumQuantityByClothing(clothingID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.StockOut{}).
		Where("clothing_id = ?", clothingID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// SumAmountByDateRange 汇总日期区间内的出库总金额与总数量
func (r *GormStockOutRepository) SumAmountByDateRange(dateFrom, dateTo string) (models.Money, int64, error) {
	var row struct {
		Amount   models.Money
		Quantity int64
	}
	query := r.db.Model(&models.StockOut{}).
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
