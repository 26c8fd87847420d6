package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrClothingRequired 未选择服装
	ErrClothingRequired = errors.New("clothing required")
	// ErrClothingNotFound 服装不存在
	ErrClothingNotFound = errors.New("clothing not found")
	// ErrInvalidQuantity 数量必须为正整数
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidPrice 单价必须为正数
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidDate 业务日期格式必须为 YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date")
	// ErrInsufficientStock 出库数量超过当前库存
	ErrInsufficientStock = errors.New("insufficient stock")
)

// BatchLineError 多行提交中某一行失败；之前已成功的行不回滚
type BatchLineError struct {
	Line int
	Err  error
}

func (e *BatchLineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *BatchLineError) Unwrap() error {
	return e.Err
}

// SyncTracker 本地变更登记口（由同步对账器实现）
type SyncTracker interface {
	MarkLocalChange()
}

// InventoryService 库存变更引擎：把出入库流水、库存数量、服装价格
// 的联动写入放在一个事务内完成
type InventoryService struct {
	clothingRepo  repository.ClothingRepository
	inventoryRepo repository.InventoryRepository
	stockInRepo   repository.StockInRepository
	stockOutRepo  repository.StockOutRepository
	tracker       SyncTracker
}

// NewInventoryService 创建库存服务
func NewInventoryService(clothingRepo repository.ClothingRepository, inventoryRepo repository.InventoryRepository, stockInRepo repository.StockInRepository, stockOutRepo repository.StockOutRepository, tracker SyncTracker) *InventoryService {
	return &InventoryService{
		clothingRepo:  clothingRepo,
		inventoryRepo: inventoryRepo,
		stockInRepo:   stockInRepo,
		stockOutRepo:  stockOutRepo,
		tracker:       tracker,
	}
}

// StockInInput 入库输入
type StockInInput struct {
	ClothingID    uint
	Quantity      int
	PurchasePrice models.Money
	Date          string
	Operator      string
	Notes         string
}

// StockOutInput 出库输入
type StockOutInput struct {
	ClothingID   uint
	Quantity     int
	SellingPrice models.Money
	Date         string
	Operator     string
	Customer     string
	Notes        string
}

// RecordStockIn 记录一次入库。事务内完成三步：
// 追加入库流水（总金额冻结）、库存数量累加（无库存行则创建）、
// 服装进货价更新为本次价格（取最新，不做平均）。
func (s *InventoryService) RecordStockIn(input StockInInput) (*models.StockIn, error) {
	if input.ClothingID == 0 {
		return nil, ErrClothingRequired
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !input.PurchasePrice.Decimal.IsPositive() {
		return nil, ErrInvalidPrice
	}
	date, err := normalizeDate(input.Date)
	if err != nil {
		return nil, err
	}

	clothing, err := s.clothingRepo.GetByID(input.ClothingID)
	if err != nil {
		return nil, err
	}
	if clothing == nil {
		return nil, ErrClothingNotFound
	}

	record := &models.StockIn{
		ClothingID:    input.ClothingID,
		Quantity:      input.Quantity,
		PurchasePrice: input.PurchasePrice,
		TotalAmount:   models.NewMoneyFromDecimal(input.PurchasePrice.Decimal.Mul(decimal.NewFromInt(int64(input.Quantity)))),
		Date:          date,
		Operator:      strings.TrimSpace(input.Operator),
		Notes:         strings.TrimSpace(input.Notes),
	}

	err = s.clothingRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.stockInRepo.WithTx(tx).Create(record); err != nil {
			return err
		}

		inventoryRepo := s.inventoryRepo.WithTx(tx)
		affected, err := inventoryRepo.IncrementQuantity(input.ClothingID, input.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			// 首次入库时惰性创建库存行
			if err := inventoryRepo.Create(&models.Inventory{
				ClothingID: input.ClothingID,
				Quantity:   input.Quantity,
			}); err != nil {
				return err
			}
		}

		clothing.PurchasePrice = input.PurchasePrice
		return s.clothingRepo.WithTx(tx).Update(clothing)
	})
	if err != nil {
		return nil, err
	}

	s.markChange()
	return record, nil
}

// RecordStockOut 记录一次出库。库存扣减是带余量条件的原子更新，
// 并发出库不会把同一批库存卖出两次；余量不足时整个事务不落任何行。
func (s *InventoryService) RecordStockOut(input StockOutInput) (*models.StockOut, error) {
	if input.ClothingID == 0 {
		return nil, ErrClothingRequired
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !input.SellingPrice.Decimal.IsPositive() {
		return nil, ErrInvalidPrice
	}
	date, err := normalizeDate(input.Date)
	if err != nil {
		return nil, err
	}

	clothing, err := s.clothingRepo.GetByID(input.ClothingID)
	if err != nil {
		return nil, err
	}
	if clothing == nil {
		return nil, ErrClothingNotFound
	}

	record := &models.StockOut{
		ClothingID:   input.ClothingID,
		Quantity:     input.Quantity,
		SellingPrice: input.SellingPrice,
		TotalAmount:  models.NewMoneyFromDecimal(input.SellingPrice.Decimal.Mul(decimal.NewFromInt(int64(input.Quantity)))),
		Date:         date,
		Operator:     strings.TrimSpace(input.Operator),
		Customer:     strings.TrimSpace(input.Customer),
		Notes:        strings.TrimSpace(input.Notes),
	}

	err = s.clothingRepo.Transaction(func(tx *gorm.DB) error {
		affected, err := s.inventoryRepo.WithTx(tx).DecrementQuantity(input.ClothingID, input.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientStock
		}
		return s.stockOutRepo.WithTx(tx).Create(record)
	})
	if err != nil {
		return nil, err
	}

	s.markChange()
	return record, nil
}

// RecordStockInBatch 依序处理多行入库；某行失败即停止并带行号上抛，
// 已完成的行不回滚
func (s *InventoryService) RecordStockInBatch(inputs []StockInInput) ([]*models.StockIn, error) {
	records := make([]*models.StockIn, 0, len(inputs))
	for i, input := range inputs {
		record, err := s.RecordStockIn(input)
		if err != nil {
			return records, &BatchLineError{Line: i + 1, Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

// RecordStockOutBatch 依序处理多行出库；语义与入库批量一致
func (s *InventoryService) RecordStockOutBatch(inputs []StockOutInput) ([]*models.StockOut, error) {
	records := make([]*models.StockOut, 0, len(inputs))
	for i, input := range inputs {
		record, err := s.RecordStockOut(input)
		if err != nil {
			return records, &BatchLineError{Line: i + 1, Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

// GetAvailableQuantity 查询某服装当前可用库存（无库存行视为 0）
func (s *InventoryService) GetAvailableQuantity(clothingID uint) (int, error) {
	inventory, err := s.inventoryRepo.GetByClothingID(clothingID)
	if err != nil {
		return 0, err
	}
	if inventory == nil {
		return 0, nil
	}
	return inventory.Quantity, nil
}

// ListStockIns 入库流水列表
func (s *InventoryService) ListStockIns(filter repository.StockInListFilter) ([]models.StockIn, int64, error) {
	return s.stockInRepo.List(filter)
}

// ListStockOuts 出库流水列表
func (s *InventoryService) ListStockOuts(filter repository.StockOutListFilter) ([]models.StockOut, int64, error) {
	return s.stockOutRepo.List(filter)
}

func (s *InventoryService) markChange() {
	if s.tracker != nil {
		s.tracker.MarkLocalChange()
	}
}

// normalizeDate 校验业务日期；为空时取当天
func normalizeDate(date string) (string, error) {
	trimmed := strings.TrimSpace(date)
	if trimmed == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", trimmed); err != nil {
		return "", ErrInvalidDate
	}
	return trimmed, nil
}
