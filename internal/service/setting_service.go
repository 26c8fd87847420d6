package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/kucun-next/internal/constants"
	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"
)

// ErrInvalidThreshold 库存预警阈值必须为非负整数
var ErrInvalidThreshold = errors.New("invalid low stock threshold")

// SettingService 系统设置服务。除用户可见设置外，
// 也承载同步元数据（上次同步时间、离线变更计数），供对账器读写。
type SettingService struct {
	settingRepo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(settingRepo repository.SettingRepository) *SettingService {
	return &SettingService{settingRepo: settingRepo}
}

// LowStockThreshold 库存预警阈值，未设置时取默认值
func (s *SettingService) LowStockThreshold() (int, error) {
	value, err := s.getValue(constants.SettingKeyLowStockThreshold)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return constants.DefaultLowStockThreshold, nil
	}
	threshold, ok := asInt(value)
	if !ok {
		return constants.DefaultLowStockThreshold, nil
	}
	return threshold, nil
}

// SetLowStockThreshold 设置库存预警阈值
func (s *SettingService) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return ErrInvalidThreshold
	}
	return s.setValue(constants.SettingKeyLowStockThreshold, threshold)
}

// SoundEnabled 操作提示音开关
func (s *SettingService) SoundEnabled() (bool, error) {
	value, err := s.getValue(constants.SettingKeySoundEnabled)
	if err != nil {
		return false, err
	}
	if value == nil {
		return constants.DefaultSoundEnabled, nil
	}
	enabled, ok := value.(bool)
	if !ok {
		return constants.DefaultSoundEnabled, nil
	}
	return enabled, nil
}

// SetSoundEnabled 设置操作提示音开关
func (s *SettingService) SetSoundEnabled(enabled bool) error {
	return s.setValue(constants.SettingKeySoundEnabled, enabled)
}

// SetLastSync 记录上次同步完成时间（RFC3339）
func (s *SettingService) SetLastSync(at time.Time) error {
	return s.setValue(constants.SettingKeyLastSync, at.Format(time.RFC3339))
}

// LastSync 上次同步完成时间；从未同步过时返回空串
func (s *SettingService) LastSync() (string, error) {
	value, err := s.getValue(constants.SettingKeyLastSync)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	at, ok := value.(string)
	if !ok {
		return "", nil
	}
	return at, nil
}

// IncrementOfflineChanges 离线变更计数加一
func (s *SettingService) IncrementOfflineChanges() error {
	count, err := s.OfflineChanges()
	if err != nil {
		return err
	}
	return s.setValue(constants.SettingKeyOfflineChanges, count+1)
}

// ResetOfflineChanges 同步完成后清零离线变更计数
func (s *SettingService) ResetOfflineChanges() error {
	return s.setValue(constants.SettingKeyOfflineChanges, 0)
}

// OfflineChanges 当前累计的离线变更计数
func (s *SettingService) OfflineChanges() (int, error) {
	value, err := s.getValue(constants.SettingKeyOfflineChanges)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return 0, nil
	}
	count, ok := asInt(value)
	if !ok {
		return 0, nil
	}
	return count, nil
}

// getValue 读取设置值；键不存在时返回 nil
func (s *SettingService) getValue(key string) (interface{}, error) {
	setting, err := s.settingRepo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON["value"], nil
}

func (s *SettingService) setValue(key string, value interface{}) error {
	_, err := s.settingRepo.Upsert(key, models.JSON{"value": value})
	return err
}

// asInt 设置值经 JSON 往返后可能是 float64 或 json.Number
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
