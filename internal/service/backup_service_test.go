package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupBackupServiceTest(t *testing.T) (*BackupService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Clothing{}, &models.Inventory{}, &models.StockIn{}, &models.StockOut{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewBackupService(repository.NewDatasetRepository(db), &countingTracker{}, t.TempDir()), db
}

func seedBackupData(t *testing.T, db *gorm.DB) {
	t.Helper()
	clothing := models.Clothing{
		Code:          "TS-001",
		Name:          "测试T恤",
		PurchasePrice: models.NewMoneyFromFloat(25),
		SellingPrice:  models.NewMoneyFromFloat(59),
	}
	if err := db.Create(&clothing).Error; err != nil {
		t.Fatalf("create clothing failed: %v", err)
	}
	if err := db.Create(&models.Inventory{ClothingID: clothing.ID, Quantity: 8}).Error; err != nil {
		t.Fatalf("create inventory failed: %v", err)
	}
	if err := db.Create(&models.StockIn{
		ClothingID:    clothing.ID,
		Quantity:      8,
		PurchasePrice: models.NewMoneyFromFloat(25),
		TotalAmount:   models.NewMoneyFromFloat(200),
		Date:          "2026-08-01",
	}).Error; err != nil {
		t.Fatalf("create stock in failed: %v", err)
	}
}

func TestBackupExportImportRoundTrip(t *testing.T) {
	source, sourceDB := setupBackupServiceTest(t)
	seedBackupData(t, sourceDB)

	backup, err := source.Export()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if backup.Version == "" || backup.Timestamp == "" {
		t.Fatalf("export missing version/timestamp: %+v", backup)
	}
	payload, err := json.Marshal(backup)
	if err != nil {
		t.Fatalf("marshal backup failed: %v", err)
	}

	// 恢复到另一个空库
	target, targetDB := setupBackupServiceTest(t)
	if _, err := target.Import(payload); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var clothing models.Clothing
	if err := targetDB.Where("code = ?", "TS-001").First(&clothing).Error; err != nil {
		t.Fatalf("restored clothing not found: %v", err)
	}
	var inventory models.Inventory
	if err := targetDB.Where("clothing_id = ?", clothing.ID).First(&inventory).Error; err != nil {
		t.Fatalf("restored inventory not found: %v", err)
	}
	if inventory.Quantity != 8 {
		t.Fatalf("restored quantity want 8 got %d", inventory.Quantity)
	}
	var stockInCount int64
	targetDB.Model(&models.StockIn{}).Count(&stockInCount)
	if stockInCount != 1 {
		t.Fatalf("restored stock in rows want 1 got %d", stockInCount)
	}
}

func TestBackupImportReplacesExistingData(t *testing.T) {
	source, sourceDB := setupBackupServiceTest(t)
	seedBackupData(t, sourceDB)
	payload, err := json.Marshal(mustExport(t, source))
	if err != nil {
		t.Fatalf("marshal backup failed: %v", err)
	}

	target, targetDB := setupBackupServiceTest(t)
	if err := targetDB.Create(&models.Clothing{Code: "OLD-001", Name: "旧数据"}).Error; err != nil {
		t.Fatalf("create old clothing failed: %v", err)
	}

	if _, err := target.Import(payload); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var oldCount int64
	targetDB.Model(&models.Clothing{}).Where("code = ?", "OLD-001").Count(&oldCount)
	if oldCount != 0 {
		t.Fatalf("old rows should be replaced, got %d", oldCount)
	}
}

func TestBackupImportInvalidFormatKeepsData(t *testing.T) {
	service, db := setupBackupServiceTest(t)
	seedBackupData(t, db)

	invalid := [][]byte{
		[]byte(`not json`),
		[]byte(`{}`),
		[]byte(`{"version":"1.0","timestamp":"2026-08-01T00:00:00Z"}`),
		[]byte(`{"version":"1.0","timestamp":"t","data":{"clothes":[]}}`),
		[]byte(`{"version":"1.0","timestamp":"t","data":{"clothes":{},"inventory":[],"stockIn":[],"stockOut":[]}}`),
	}
	for _, payload := range invalid {
		if _, err := service.Import(payload); !errors.Is(err, ErrInvalidBackupFormat) {
			t.Fatalf("payload %s: want ErrInvalidBackupFormat got %v", payload, err)
		}
	}

	// 原有数据原样保留
	var count int64
	db.Model(&models.Clothing{}).Count(&count)
	if count != 1 {
		t.Fatalf("existing clothing rows want 1 got %d", count)
	}
}

func TestBackupExportToFileWritesJSON(t *testing.T) {
	service, db := setupBackupServiceTest(t)
	seedBackupData(t, db)

	path, err := service.ExportToFile()
	if err != nil {
		t.Fatalf("export to file failed: %v", err)
	}
	if path == "" {
		t.Fatalf("expected file path")
	}
}

func mustExport(t *testing.T, s *BackupService) *Backup {
	t.Helper()
	backup, err := s.Export()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	return backup
}
