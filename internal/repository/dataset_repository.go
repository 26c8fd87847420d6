package repository

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kucun-next/internal/constants"
	"github.com/kucun-next/internal/models"

	"gorm.io/gorm"
)

// DatasetRepository 四个同步集合的整体快照与整体替换。
// 替换始终是"清空后批量写入"的全量覆盖，且在单个事务内完成。
type DatasetRepository interface {
	SnapshotAll() (*models.Dataset, error)
	ReplaceAll(dataset *models.Dataset) error
	SnapshotCollection(name string) (map[string]json.RawMessage, error)
	ReplaceCollection(name string, records map[string]json.RawMessage) error
}

// GormDatasetRepository GORM 实现
type GormDatasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository 创建数据集仓库
func NewDatasetRepository(db *gorm.DB) *GormDatasetRepository {
	return &GormDatasetRepository{db: db}
}

// SnapshotAll 读取四个集合的完整快照
func (r *GormDatasetRepository) SnapshotAll() (*models.Dataset, error) {
	dataset := &models.Dataset{
		Clothes:   []models.Clothing{},
		Inventory: []models.Inventory{},
		StockIns:  []models.StockIn{},
		StockOuts: []models.StockOut{},
	}
	if err := r.db.Order("id ASC").Find(&dataset.Clothes).Error; err != nil {
		return nil, err
	}
	if err := r.db.Order("id ASC").Find(&dataset.Inventory).Error; err != nil {
		return nil, err
	}
	if err := r.db.Order("id ASC").Find(&dataset.StockIns).Error; err != nil {
		return nil, err
	}
	if err := r.db.Order("id ASC").Find(&dataset.StockOuts).Error; err != nil {
		return nil, err
	}
	return dataset, nil
}

// ReplaceAll 用给定数据集全量覆盖四个集合（单事务，全部成功或全部回滚）
func (r *GormDatasetRepository) ReplaceAll(dataset *models.Dataset) error {
	if dataset == nil {
		return fmt.Errorf("dataset is nil")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := clearCollection(tx, constants.CollectionClothes); err != nil {
			return err
		}
		if err := clearCollection(tx, constants.CollectionInventory); err != nil {
			return err
		}
		if err := clearCollection(tx, constants.CollectionStockIn); err != nil {
			return err
		}
		if err := clearCollection(tx, constants.CollectionStockOut); err != nil {
			return err
		}
		if len(dataset.Clothes) > 0 {
			if err := tx.Create(&dataset.Clothes).Error; err != nil {
				return err
			}
		}
		if len(dataset.Inventory) > 0 {
			if err := tx.Create(&dataset.Inventory).Error; err != nil {
				return err
			}
		}
		if len(dataset.StockIns) > 0 {
			if err := tx.Create(&dataset.StockIns).Error; err != nil {
				return err
			}
		}
		if len(dataset.StockOuts) > 0 {
			if err := tx.Create(&dataset.StockOuts).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SnapshotCollection 按集合名读取快照，键为记录 ID 的十进制字符串
func (r *GormDatasetRepository) SnapshotCollection(name string) (map[string]json.RawMessage, error) {
	snapshot := make(map[string]json.RawMessage)
	appendRecord := func(id uint, record interface{}) error {
		raw, err := json.Marshal(record)
		if err != nil {
			return err
		}
		snapshot[strconv.FormatUint(uint64(id), 10)] = raw
		return nil
	}

	switch name {
	case constants.CollectionClothes:
		var rows []models.Clothing
		if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			if err := appendRecord(rows[i].ID, &rows[i]); err != nil {
				return nil, err
			}
		}
	case constants.CollectionInventory:
		var rows []models.Inventory
		if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			if err := appendRecord(rows[i].ID, &rows[i]); err != nil {
				return nil, err
			}
		}
	case constants.CollectionStockIn:
		var rows []models.StockIn
		if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			if err := appendRecord(rows[i].ID, &rows[i]); err != nil {
				return nil, err
			}
		}
	case constants.CollectionStockOut:
		var rows []models.StockOut
		if err := r.db.Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			if err := appendRecord(rows[i].ID, &rows[i]); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown collection: %s", name)
	}
	return snapshot, nil
}

// ReplaceCollection 按集合名全量覆盖本地数据（清空后批量写入，单事务）
func (r *GormDatasetRepository) ReplaceCollection(name string, records map[string]json.RawMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := clearCollection(tx, name); err != nil {
			return err
		}
		switch name {
		case constants.CollectionClothes:
			rows, err := decodeRecords[models.Clothing](records)
			if err != nil {
				return err
			}
			if len(rows) > 0 {
				return tx.Create(&rows).Error
			}
		case constants.CollectionInventory:
			rows, err := decodeRecords[models.Inventory](records)
			if err != nil {
				return err
			}
			if len(rows) > 0 {
				return tx.Create(&rows).Error
			}
		case constants.CollectionStockIn:
			rows, err := decodeRecords[models.StockIn](records)
			if err != nil {
				return err
			}
			if len(rows) > 0 {
				return tx.Create(&rows).Error
			}
		case constants.CollectionStockOut:
			rows, err := decodeRecords[models.StockOut](records)
			if err != nil {
				return err
			}
			if len(rows) > 0 {
				return tx.Create(&rows).Error
			}
		default:
			return fmt.Errorf("unknown collection: %s", name)
		}
		return nil
	})
}

func clearCollection(tx *gorm.DB, name string) error {
	session := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	switch name {
	case constants.CollectionClothes:
		return session.Delete(&models.Clothing{}).Error
	case constants.CollectionInventory:
		return session.Delete(&models.Inventory{}).Error
	case constants.CollectionStockIn:
		return session.Delete(&models.StockIn{}).Error
	case constants.CollectionStockOut:
		return session.Delete(&models.StockOut{}).Error
	default:
		return fmt.Errorf("unknown collection: %s", name)
	}
}

func decodeRecords[T any](records map[string]json.RawMessage) ([]T, error) {
	rows := make([]T, 0, len(records))
	for id, raw := range records {
		var row T
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
