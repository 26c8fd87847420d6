package service

import (
	"testing"

	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type reportTestEnv struct {
	db        *gorm.DB
	report    *ReportService
	settings  *SettingService
	inventory *InventoryService
	clothing  *ClothingService
}

func setupReportServiceTest(t *testing.T) *reportTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Clothing{}, &models.Inventory{}, &models.StockIn{}, &models.StockOut{}, &models.Setting{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	clothingRepo := repository.NewClothingRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	stockInRepo := repository.NewStockInRepository(db)
	stockOutRepo := repository.NewStockOutRepository(db)
	settings := NewSettingService(repository.NewSettingRepository(db))

	return &reportTestEnv{
		db:        db,
		report:    NewReportService(clothingRepo, inventoryRepo, stockInRepo, stockOutRepo, settings),
		settings:  settings,
		inventory: NewInventoryService(clothingRepo, inventoryRepo, stockInRepo, stockOutRepo, nil),
		clothing:  NewClothingService(clothingRepo, inventoryRepo, nil),
	}
}

func seedReportClothing(t *testing.T, env *reportTestEnv, code string, stockInQty int) *models.Clothing {
	t.Helper()
	clothing, err := env.clothing.Create(ClothingInput{
		Code:          code,
		Name:          "测试" + code,
		Category:      "上衣",
		PurchasePrice: models.NewMoneyFromFloat(25),
		SellingPrice:  models.NewMoneyFromFloat(59),
	})
	if err != nil {
		t.Fatalf("create clothing failed: %v", err)
	}
	if stockInQty > 0 {
		if _, err := env.inventory.RecordStockIn(StockInInput{
			ClothingID:    clothing.ID,
			Quantity:      stockInQty,
			PurchasePrice: models.NewMoneyFromFloat(25),
			Date:          "2026-08-20",
		}); err != nil {
			t.Fatalf("stock in failed: %v", err)
		}
	}
	return clothing
}

func TestInventorySummaryTotalsAndLowStock(t *testing.T) {
	env := setupReportServiceTest(t)
	seedReportClothing(t, env, "TS-001", 20)
	seedReportClothing(t, env, "TS-002", 3)

	if err := env.settings.SetLowStockThreshold(5); err != nil {
		t.Fatalf("set threshold failed: %v", err)
	}

	summary, err := env.report.GetInventorySummary()
	if err != nil {
		t.Fatalf("inventory summary failed: %v", err)
	}
	if summary.TotalKinds != 2 {
		t.Fatalf("total kinds want 2 got %d", summary.TotalKinds)
	}
	if summary.TotalQuantity != 23 {
		t.Fatalf("total quantity want 23 got %d", summary.TotalQuantity)
	}
	if got := summary.TotalValue.Decimal.StringFixed(2); got != "575.00" {
		t.Fatalf("total value want 575.00 got %s", got)
	}
	if summary.LowStockCount != 1 {
		t.Fatalf("low stock count want 1 got %d", summary.LowStockCount)
	}

	lowStock, err := env.report.GetLowStockItems()
	if err != nil {
		t.Fatalf("low stock failed: %v", err)
	}
	if len(lowStock) != 1 || lowStock[0].Code != "TS-002" {
		t.Fatalf("low stock want TS-002 got %+v", lowStock)
	}
}

func TestSalesSummaryProfit(t *testing.T) {
	env := setupReportServiceTest(t)
	clothing := seedReportClothing(t, env, "TS-001", 10)

	if _, err := env.inventory.RecordStockOut(StockOutInput{
		ClothingID:   clothing.ID,
		Quantity:     4,
		SellingPrice: models.NewMoneyFromFloat(59),
		Date:         "2026-08-21",
	}); err != nil {
		t.Fatalf("stock out failed: %v", err)
	}

	summary, err := env.report.GetSalesSummary("2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("sales summary failed: %v", err)
	}
	if got := summary.StockInAmount.Decimal.StringFixed(2); got != "250.00" {
		t.Fatalf("stock in amount want 250.00 got %s", got)
	}
	if got := summary.StockOutAmount.Decimal.StringFixed(2); got != "236.00" {
		t.Fatalf("stock out amount want 236.00 got %s", got)
	}
	if got := summary.GrossProfit.Decimal.StringFixed(2); got != "-14.00" {
		t.Fatalf("gross profit want -14.00 got %s", got)
	}

	// 区间外无流水
	empty, err := env.report.GetSalesSummary("2026-07-01", "2026-07-31")
	if err != nil {
		t.Fatalf("sales summary failed: %v", err)
	}
	if empty.StockInCount != 0 || empty.StockOutCount != 0 {
		t.Fatalf("out-of-range summary should be empty: %+v", empty)
	}
}

func TestHistoryShowsOrphanPlaceholder(t *testing.T) {
	env := setupReportServiceTest(t)
	clothing := seedReportClothing(t, env, "TS-001", 5)

	if _, err := env.inventory.RecordStockOut(StockOutInput{
		ClothingID:   clothing.ID,
		Quantity:     2,
		SellingPrice: models.NewMoneyFromFloat(59),
	}); err != nil {
		t.Fatalf("stock out failed: %v", err)
	}

	// 删除档案后历史流水保留，并以占位名称展示
	if err := env.clothing.Delete(clothing.ID); err != nil {
		t.Fatalf("delete clothing failed: %v", err)
	}

	entries, total, err := env.report.GetStockOutHistory(repository.StockOutListFilter{})
	if err != nil {
		t.Fatalf("stock out history failed: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("history rows want 1 got %d", total)
	}
	if !entries[0].Orphaned {
		t.Fatalf("entry should be orphaned")
	}
	if entries[0].ClothingName != OrphanClothingName {
		t.Fatalf("clothing name want %q got %q", OrphanClothingName, entries[0].ClothingName)
	}
}
