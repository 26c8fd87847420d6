package service

import (
	"time"

	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"

	"github.com/shopspring/decimal"
)

// OrphanClothingName 流水所引用的服装档案已被删除时的占位名称
const OrphanClothingName = "商品已删除"

// ReportService 报表统计服务
type ReportService struct {
	clothingRepo  repository.ClothingRepository
	inventoryRepo repository.InventoryRepository
	stockInRepo   repository.StockInRepository
	stockOutRepo  repository.StockOutRepository
	settingSvc    *SettingService
}

// NewReportService 创建报表服务
func NewReportService(clothingRepo repository.ClothingRepository, inventoryRepo repository.InventoryRepository, stockInRepo repository.StockInRepository, stockOutRepo repository.StockOutRepository, settingSvc *SettingService) *ReportService {
	return &ReportService{
		clothingRepo:  clothingRepo,
		inventoryRepo: inventoryRepo,
		stockInRepo:   stockInRepo,
		stockOutRepo:  stockOutRepo,
		settingSvc:    settingSvc,
	}
}

// InventoryItem 库存明细行
type InventoryItem struct {
	ClothingID    uint         `json:"clothingId"`
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	Size          string       `json:"size"`
	Color         string       `json:"color"`
	PurchasePrice models.Money `json:"purchasePrice"`
	SellingPrice  models.Money `json:"sellingPrice"`
	Quantity      int          `json:"quantity"`
	StockValue    models.Money `json:"stockValue"`
	LowStock      bool         `json:"lowStock"`
}

// InventorySummary 库存总览
type InventorySummary struct {
	Items         []InventoryItem `json:"items"`
	TotalKinds    int             `json:"totalKinds"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    models.Money    `json:"totalValue"`
	LowStockCount int             `json:"lowStockCount"`
	Threshold     int             `json:"threshold"`
}

// SalesSummary 某日期区间的销售与利润汇总
type SalesSummary struct {
	DateFrom       string       `json:"dateFrom"`
	DateTo         string       `json:"dateTo"`
	StockInCount   int64        `json:"stockInCount"`
	StockInAmount  models.Money `json:"stockInAmount"`
	StockOutCount  int64        `json:"stockOutCount"`
	StockOutAmount models.Money `json:"stockOutAmount"`
	GrossProfit    models.Money `json:"grossProfit"`
}

// Dashboard 首页看板数据
type Dashboard struct {
	Today          SalesSummary `json:"today"`
	TotalKinds     int          `json:"totalKinds"`
	TotalQuantity  int          `json:"totalQuantity"`
	LowStockCount  int          `json:"lowStockCount"`
	LastSync       string       `json:"lastSync"`
	OfflineChanges int          `json:"offlineChanges"`
}

// HistoryEntry 出入库历史行；档案已删除的流水用占位名称展示而非隐藏
type HistoryEntry struct {
	ID           uint         `json:"id"`
	ClothingID   uint         `json:"clothingId"`
	ClothingName string       `json:"clothingName"`
	ClothingCode string       `json:"clothingCode"`
	Orphaned     bool         `json:"orphaned"`
	Quantity     int          `json:"quantity"`
	UnitPrice    models.Money `json:"unitPrice"`
	TotalAmount  models.Money `json:"totalAmount"`
	Date         string       `json:"date"`
	Operator     string       `json:"operator"`
	Customer     string       `json:"customer,omitempty"`
	Notes        string       `json:"notes"`
}

// GetInventorySummary 生成库存总览。明细按档案列表顺序排列，
// 库存值 = 数量 × 进货价，预警阈值取自设置。
func (s *ReportService) GetInventorySummary() (*InventorySummary, error) {
	threshold, err := s.settingSvc.LowStockThreshold()
	if err != nil {
		return nil, err
	}

	clothes, _, err := s.clothingRepo.List(repository.ClothingListFilter{})
	if err != nil {
		return nil, err
	}
	quantities, err := s.quantityByClothing()
	if err != nil {
		return nil, err
	}

	summary := &InventorySummary{
		Items:     make([]InventoryItem, 0, len(clothes)),
		Threshold: threshold,
	}
	totalValue := decimal.Zero
	for _, c := range clothes {
		quantity := quantities[c.ID]
		value := c.PurchasePrice.Decimal.Mul(decimal.NewFromInt(int64(quantity)))
		lowStock := quantity < threshold

		summary.Items = append(summary.Items, InventoryItem{
			ClothingID:    c.ID,
			Code:          c.Code,
			Name:          c.Name,
			Category:      c.Category,
			Size:          c.Size,
			Color:         c.Color,
			PurchasePrice: c.PurchasePrice,
			SellingPrice:  c.SellingPrice,
			Quantity:      quantity,
			StockValue:    models.NewMoneyFromDecimal(value),
			LowStock:      lowStock,
		})

		summary.TotalKinds++
		summary.TotalQuantity += quantity
		totalValue = totalValue.Add(value)
		if lowStock {
			summary.LowStockCount++
		}
	}
	summary.TotalValue = models.NewMoneyFromDecimal(totalValue)
	return summary, nil
}

// GetLowStockItems 库存低于预警阈值的服装列表
func (s *ReportService) GetLowStockItems() ([]InventoryItem, error) {
	summary, err := s.GetInventorySummary()
	if err != nil {
		return nil, err
	}
	items := make([]InventoryItem, 0)
	for _, item := range summary.Items {
		if item.LowStock {
			items = append(items, item)
		}
	}
	return items, nil
}

// GetSalesSummary 日期区间销售汇总；毛利 = 出库额 - 入库额
func (s *ReportService) GetSalesSummary(dateFrom, dateTo string) (*SalesSummary, error) {
	inAmount, inCount, err := s.stockInRepo.SumAmountByDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	outAmount, outCount, err := s.stockOutRepo.SumAmountByDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	return &SalesSummary{
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		StockInCount:   inCount,
		StockInAmount:  inAmount,
		StockOutCount:  outCount,
		StockOutAmount: outAmount,
		GrossProfit:    models.NewMoneyFromDecimal(outAmount.Decimal.Sub(inAmount.Decimal)),
	}, nil
}

// GetDashboard 首页看板：今日出入库汇总、库存概况与同步状态摘要
func (s *ReportService) GetDashboard() (*Dashboard, error) {
	today := time.Now().Format("2006-01-02")
	todaySummary, err := s.GetSalesSummary(today, today)
	if err != nil {
		return nil, err
	}
	inventory, err := s.GetInventorySummary()
	if err != nil {
		return nil, err
	}
	lastSync, err := s.settingSvc.LastSync()
	if err != nil {
		return nil, err
	}
	offlineChanges, err := s.settingSvc.OfflineChanges()
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Today:          *todaySummary,
		TotalKinds:     inventory.TotalKinds,
		TotalQuantity:  inventory.TotalQuantity,
		LowStockCount:  inventory.LowStockCount,
		LastSync:       lastSync,
		OfflineChanges: offlineChanges,
	}, nil
}

// GetStockInHistory 入库历史（带档案信息，孤儿流水用占位名称）
func (s *ReportService) GetStockInHistory(filter repository.StockInListFilter) ([]HistoryEntry, int64, error) {
	records, total, err := s.stockInRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ClothingID)
	}
	clothes, err := s.clothingByIDs(ids)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		entry := HistoryEntry{
			ID:          r.ID,
			ClothingID:  r.ClothingID,
			Quantity:    r.Quantity,
			UnitPrice:   r.PurchasePrice,
			TotalAmount: r.TotalAmount,
			Date:        r.Date,
			Operator:    r.Operator,
			Notes:       r.Notes,
		}
		fillClothingInfo(&entry, clothes)
		entries = append(entries, entry)
	}
	return entries, total, nil
}

// GetStockOutHistory 出库历史
func (s *ReportService) GetStockOutHistory(filter repository.StockOutListFilter) ([]HistoryEntry, int64, error) {
	records, total, err := s.stockOutRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ClothingID)
	}
	clothes, err := s.clothingByIDs(ids)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		entry := HistoryEntry{
			ID:          r.ID,
			ClothingID:  r.ClothingID,
			Quantity:    r.Quantity,
			UnitPrice:   r.SellingPrice,
			TotalAmount: r.TotalAmount,
			Date:        r.Date,
			Operator:    r.Operator,
			Customer:    r.Customer,
			Notes:       r.Notes,
		}
		fillClothingInfo(&entry, clothes)
		entries = append(entries, entry)
	}
	return entries, total, nil
}

func (s *ReportService) quantityByClothing() (map[uint]int, error) {
	inventories, err := s.inventoryRepo.ListAll()
	if err != nil {
		return nil, err
	}
	quantities := make(map[uint]int, len(inventories))
	for _, inv := range inventories {
		quantities[inv.ClothingID] = inv.Quantity
	}
	return quantities, nil
}

func (s *ReportService) clothingByIDs(ids []uint) (map[uint]models.Clothing, error) {
	if len(ids) == 0 {
		return map[uint]models.Clothing{}, nil
	}
	clothes, err := s.clothingRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Clothing, len(clothes))
	for _, c := range clothes {
		byID[c.ID] = c
	}
	return byID, nil
}

func fillClothingInfo(entry *HistoryEntry, clothes map[uint]models.Clothing) {
	if c, ok := clothes[entry.ClothingID]; ok {
		entry.ClothingName = c.Name
		entry.ClothingCode = c.Code
		return
	}
	entry.ClothingName = OrphanClothingName
	entry.Orphaned = true
}
