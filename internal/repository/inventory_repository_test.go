package repository

import (
	"testing"

	"github.com/kucun-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupInventoryRepositoryTest(t *testing.T) (*GormInventoryRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Inventory{}); err != nil {
		t.Fatalf("migrate inventory failed: %v", err)
	}
	return NewInventoryRepository(db), db
}

func TestIncrementQuantityCreatesNothingWhenRowMissing(t *testing.T) {
	repo, _ := setupInventoryRepositoryTest(t)

	affected, err := repo.IncrementQuantity(1, 5)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("affected want 0 got %d", affected)
	}
}

func TestDecrementQuantityGuardsRemaining(t *testing.T) {
	repo, db := setupInventoryRepositoryTest(t)
	if err := repo.Create(&models.Inventory{ClothingID: 1, Quantity: 5}); err != nil {
		t.Fatalf("create inventory failed: %v", err)
	}

	// 余量充足时扣减成功
	affected, err := repo.DecrementQuantity(1, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}

	// 超过余量时不落任何更新
	affected, err = repo.DecrementQuantity(1, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("affected want 0 got %d", affected)
	}

	var got models.Inventory
	if err := db.Where("clothing_id = ?", 1).First(&got).Error; err != nil {
		t.Fatalf("reload inventory failed: %v", err)
	}
	if got.Quantity != 2 {
		t.Fatalf("quantity want 2 got %d", got.Quantity)
	}
}

func TestIncrementThenDecrementRoundTrip(t *testing.T) {
	repo, db := setupInventoryRepositoryTest(t)
	if err := repo.Create(&models.Inventory{ClothingID: 7, Quantity: 0}); err != nil {
		t.Fatalf("create inventory failed: %v", err)
	}

	if _, err := repo.IncrementQuantity(7, 10); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if _, err := repo.DecrementQuantity(7, 4); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	var got models.Inventory
	if err := db.Where("clothing_id = ?", 7).First(&got).Error; err != nil {
		t.Fatalf("reload inventory failed: %v", err)
	}
	if got.Quantity != 6 {
		t.Fatalf("quantity want 6 got %d", got.Quantity)
	}
}
