package service

import (
	"errors"
	"testing"

	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type countingTracker struct {
	calls int
}

func (t *countingTracker) MarkLocalChange() {
	t.calls++
}

type inventoryTestEnv struct {
	db       *gorm.DB
	tracker  *countingTracker
	service  *InventoryService
	clothing *ClothingService
}

func setupInventoryServiceTest(t *testing.T) *inventoryTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Clothing{}, &models.Inventory{}, &models.StockIn{}, &models.StockOut{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	clothingRepo := repository.NewClothingRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	stockInRepo := repository.NewStockInRepository(db)
	stockOutRepo := repository.NewStockOutRepository(db)
	tracker := &countingTracker{}

	return &inventoryTestEnv{
		db:       db,
		tracker:  tracker,
		service:  NewInventoryService(clothingRepo, inventoryRepo, stockInRepo, stockOutRepo, tracker),
		clothing: NewClothingService(clothingRepo, inventoryRepo, tracker),
	}
}

func createTestClothing(t *testing.T, env *inventoryTestEnv, code string) *models.Clothing {
	t.Helper()
	clothing, err := env.clothing.Create(ClothingInput{
		Code:          code,
		Name:          "测试T恤",
		Category:      "上衣",
		Size:          "M",
		PurchasePrice: models.NewMoneyFromFloat(20),
		SellingPrice:  models.NewMoneyFromFloat(49),
	})
	if err != nil {
		t.Fatalf("create clothing failed: %v", err)
	}
	return clothing
}

func loadQuantity(t *testing.T, env *inventoryTestEnv, clothingID uint) int {
	t.Helper()
	var inventory models.Inventory
	if err := env.db.Where("clothing_id = ?", clothingID).First(&inventory).Error; err != nil {
		t.Fatalf("load inventory failed: %v", err)
	}
	return inventory.Quantity
}

func TestRecordStockInUpdatesInventoryAndPrice(t *testing.T) {
	env := setupInventoryServiceTest(t)
	clothing := createTestClothing(t, env, "TS-001")

	record, err := env.service.RecordStockIn(StockInInput{
		ClothingID:    clothing.ID,
		Quantity:      10,
		PurchasePrice: models.NewMoneyFromFloat(25),
		Date:          "2026-08-01",
		Operator:      "张三",
	})
	if err != nil {
		t.Fatalf("record stock in failed: %v", err)
	}

	if got := record.TotalAmount.Decimal.StringFixed(2); got != "250.00" {
		t.Fatalf("total amount want 250.00 got %s", got)
	}
	if got := loadQuantity(t, env, clothing.ID); got != 10 {
		t.Fatalf("quantity want 10 got %d", got)
	}

	var reloaded models.Clothing
	if err := env.db.First(&reloaded, clothing.ID).Error; err != nil {
		t.Fatalf("reload clothing failed: %v", err)
	}
	if got := reloaded.PurchasePrice.Decimal.StringFixed(2); got != "25.00" {
		t.Fatalf("purchase price want 25.00 got %s", got)
	}
}

func TestStockInTotalAmountStaysFrozen(t *testing.T) {
	env := setupInventoryServiceTest(t)
	clothing := createTestClothing(t, env, "TS-002")

	first, err := env.service.RecordStockIn(StockInInput{
		ClothingID:    clothing.ID,
		Quantity:      4,
		PurchasePrice: models.NewMoneyFromFloat(30),
	})
	if err != nil {
		t.Fatalf("first stock in failed: %v", err)
	}

	// 再次以不同价格入库，不应改写历史流水的冻结金额
	if _, err := env.service.RecordStockIn(StockInInput{
		ClothingID:    clothing.ID,
		Quantity:      2,
		PurchasePrice: models.NewMoneyFromFloat(50),
	}); err != nil {
		t.Fatalf("second stock in failed: %v", err)
	}

	var reloaded models.StockIn
	if err := env.db.First(&reloaded, first.ID).Error; err != nil {
		t.Fatalf("reload stock in failed: %v", err)
	}
	if got := reloaded.TotalAmount.Decimal.StringFixed(2); got != "120.00" {
		t.Fatalf("frozen total want 120.00 got %s", got)
	}
}

func TestRecordStockOutInsufficientStockWritesNothing(t *testing.T) {
	env := setupInventoryServiceTest(t)
	clothing := createTestClothing(t, env, "TS-003")

	if _, err := env.service.RecordStockIn(StockInInput{
		ClothingID:    clothing.ID,
		Quantity:      3,
		PurchasePrice: models.NewMoneyFromFloat(25),
	}); err != nil {
		t.Fatalf("stock in failed: %v", err)
	}

	_, err := env.service.RecordStockOut(StockOutInput{
		ClothingID:   clothing.ID,
		Quantity:     5,
		SellingPrice: models.NewMoneyFromFloat(59),
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}

	if got := loadQuantity(t, env, clothing.ID); got != 3 {
		t.Fatalf("quantity want 3 got %d", got)
	}
	var count int64
	env.db.Model(&models.StockOut{}).Count(&count)
	if count != 0 {
		t.Fatalf("stock out rows want 0 got %d", count)
	}
}

func TestStockInThenOutArithmetic(t *testing.T) {
	env := setupInventoryServiceTest(t)
	clothing := createTestClothing(t, env, "TS-004")

	if _, err := env.service.RecordStockIn(StockInInput{
		ClothingID:    clothing.ID,
		Quantity:      10,
		PurchasePrice: models.NewMoneyFromFloat(25),
	}); err != nil {
		t.Fatalf("stock in failed: %v", err)
	}
	record, err := env.service.RecordStockOut(StockOutInput{
		ClothingID:   clothing.ID,
		Quantity:     3,
		SellingPrice: models.NewMoneyFromFloat(59),
		Customer:     "李女士",
	})
	if err != nil {
		t.Fatalf("stock out failed: %v", err)
	}

	if got := record.TotalAmount.Decimal.StringFixed(2); got != "177.00" {
		t.Fatalf("total amount want 177.00 got %s", got)
	}
	if got := loadQuantity(t, env, clothing.ID); got != 7 {
		t.Fatalf("quantity want 7 got %d", got)
	}
	if env.tracker.calls == 0 {
		t.Fatalf("expected local changes to be tracked")
	}
}

func TestRecordStockInValidation(t *testing.T) {
	env := setupInventoryServiceTest(t)
	clothing := createTestClothing(t, env, "TS-005")

	cases := []struct {
		name  string
		input StockInInput
		want  error
	}{
		{"missing clothing", StockInInput{Quantity: 1, PurchasePrice: models.NewMoneyFromFloat(10)}, ErrClothingRequired},
		{"unknown clothing", StockInInput{ClothingID: 999, Quantity: 1, PurchasePrice: models.NewMoneyFromFloat(10)}, ErrClothingNotFound},
		{"zero quantity", StockInInput{ClothingID: clothing.ID, Quantity: 0, PurchasePrice: models.NewMoneyFromFloat(10)}, ErrInvalidQuantity},
		{"negative quantity", StockInInput{ClothingID: clothing.ID, Quantity: -2, PurchasePrice: models.NewMoneyFromFloat(10)}, ErrInvalidQuantity},
		{"zero price", StockInInput{ClothingID: clothing.ID, Quantity: 1}, ErrInvalidPrice},
		{"bad date", StockInInput{ClothingID: clothing.ID, Quantity: 1, PurchasePrice: models.NewMoneyFromFloat(10), Date: "08/01/2026"}, ErrInvalidDate},
	}
	for _, tc := range cases {
		if _, err := env.service.RecordStockIn(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
}

func TestRecordStockOutBatchStopsAtFailingLine(t *testing.T) {
	env := setupInventoryServiceTest(t)
	clothing := createTestClothing(t, env, "TS-006")

	if _, err := env.service.RecordStockIn(StockInInput{
		ClothingID:    clothing.ID,
		Quantity:      5,
		PurchasePrice: models.NewMoneyFromFloat(25),
	}); err != nil {
		t.Fatalf("stock in failed: %v", err)
	}

	completed, err := env.service.RecordStockOutBatch([]StockOutInput{
		{ClothingID: clothing.ID, Quantity: 2, SellingPrice: models.NewMoneyFromFloat(59)},
		{ClothingID: clothing.ID, Quantity: 10, SellingPrice: models.NewMoneyFromFloat(59)},
		{ClothingID: clothing.ID, Quantity: 1, SellingPrice: models.NewMoneyFromFloat(59)},
	})

	var lineErr *BatchLineError
	if !errors.As(err, &lineErr) {
		t.Fatalf("want BatchLineError got %v", err)
	}
	if lineErr.Line != 2 {
		t.Fatalf("failed line want 2 got %d", lineErr.Line)
	}
	if !errors.Is(lineErr, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", lineErr.Err)
	}
	// 第一行已完成且保留，第三行未执行
	if len(completed) != 1 {
		t.Fatalf("completed lines want 1 got %d", len(completed))
	}
	if got := loadQuantity(t, env, clothing.ID); got != 3 {
		t.Fatalf("quantity want 3 got %d", got)
	}
}

func TestDeleteClothingRemovesInventoryKeepsHistory(t *testing.T) {
	env := setupInventoryServiceTest(t)
	clothing := createTestClothing(t, env, "TS-007")

	if _, err := env.service.RecordStockIn(StockInInput{
		ClothingID:    clothing.ID,
		Quantity:      5,
		PurchasePrice: models.NewMoneyFromFloat(25),
	}); err != nil {
		t.Fatalf("stock in failed: %v", err)
	}

	if err := env.clothing.Delete(clothing.ID); err != nil {
		t.Fatalf("delete clothing failed: %v", err)
	}

	var inventoryCount, stockInCount int64
	env.db.Model(&models.Inventory{}).Where("clothing_id = ?", clothing.ID).Count(&inventoryCount)
	env.db.Model(&models.StockIn{}).Where("clothing_id = ?", clothing.ID).Count(&stockInCount)
	if inventoryCount != 0 {
		t.Fatalf("inventory rows want 0 got %d", inventoryCount)
	}
	if stockInCount != 1 {
		t.Fatalf("stock in rows want 1 got %d", stockInCount)
	}
}
