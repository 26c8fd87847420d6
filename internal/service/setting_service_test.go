package service

import (
	"errors"
	"testing"
	"time"

	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupSettingServiceTest(t *testing.T) *SettingService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("migrate setting failed: %v", err)
	}
	return NewSettingService(repository.NewSettingRepository(db))
}

func TestSettingDefaults(t *testing.T) {
	service := setupSettingServiceTest(t)

	threshold, err := service.LowStockThreshold()
	if err != nil {
		t.Fatalf("threshold failed: %v", err)
	}
	if threshold != 10 {
		t.Fatalf("default threshold want 10 got %d", threshold)
	}

	soundEnabled, err := service.SoundEnabled()
	if err != nil {
		t.Fatalf("sound enabled failed: %v", err)
	}
	if !soundEnabled {
		t.Fatalf("default sound enabled want true")
	}

	lastSync, err := service.LastSync()
	if err != nil {
		t.Fatalf("last sync failed: %v", err)
	}
	if lastSync != "" {
		t.Fatalf("last sync want empty got %q", lastSync)
	}
}

func TestSettingPersistence(t *testing.T) {
	service := setupSettingServiceTest(t)

	if err := service.SetLowStockThreshold(-1); !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("want ErrInvalidThreshold got %v", err)
	}
	if err := service.SetLowStockThreshold(5); err != nil {
		t.Fatalf("set threshold failed: %v", err)
	}
	if err := service.SetSoundEnabled(false); err != nil {
		t.Fatalf("set sound failed: %v", err)
	}

	threshold, err := service.LowStockThreshold()
	if err != nil {
		t.Fatalf("threshold failed: %v", err)
	}
	if threshold != 5 {
		t.Fatalf("threshold want 5 got %d", threshold)
	}
	soundEnabled, err := service.SoundEnabled()
	if err != nil {
		t.Fatalf("sound enabled failed: %v", err)
	}
	if soundEnabled {
		t.Fatalf("sound enabled want false")
	}
}

func TestSyncMetaCounters(t *testing.T) {
	service := setupSettingServiceTest(t)

	for i := 0; i < 3; i++ {
		if err := service.IncrementOfflineChanges(); err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}
	count, err := service.OfflineChanges()
	if err != nil {
		t.Fatalf("offline changes failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("offline changes want 3 got %d", count)
	}

	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if err := service.SetLastSync(at); err != nil {
		t.Fatalf("set last sync failed: %v", err)
	}
	if err := service.ResetOfflineChanges(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	count, err = service.OfflineChanges()
	if err != nil {
		t.Fatalf("offline changes failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("offline changes want 0 got %d", count)
	}
	lastSync, err := service.LastSync()
	if err != nil {
		t.Fatalf("last sync failed: %v", err)
	}
	if lastSync != at.Format(time.RFC3339) {
		t.Fatalf("last sync want %s got %s", at.Format(time.RFC3339), lastSync)
	}
}
