package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kucun-next/internal/constants"
	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"

	"github.com/google/uuid"
)

// ErrInvalidBackupFormat 备份文件缺少必需字段或 data 段集合类型不对
var ErrInvalidBackupFormat = errors.New("invalid backup format")

// Backup 备份文件结构
type Backup struct {
	Version   string          `json:"version"`
	Timestamp string          `json:"timestamp"`
	Data      *models.Dataset `json:"data"`
}

// BackupService 备份导出与恢复
type BackupService struct {
	datasetRepo repository.DatasetRepository
	tracker     SyncTracker
	dir         string
}

// NewBackupService 创建备份服务；dir 为定时自动备份的落盘目录
func NewBackupService(datasetRepo repository.DatasetRepository, tracker SyncTracker, dir string) *BackupService {
	return &BackupService{
		datasetRepo: datasetRepo,
		tracker:     tracker,
		dir:         dir,
	}
}

// Export 导出当前全量数据为备份结构
func (s *BackupService) Export() (*Backup, error) {
	dataset, err := s.datasetRepo.SnapshotAll()
	if err != nil {
		return nil, err
	}
	return &Backup{
		Version:   constants.BackupVersion,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      dataset,
	}, nil
}

// Import 从备份 JSON 恢复数据。先整体校验格式，校验通过后
// 在单个事务里清空并重建四个集合；格式不合法时不写任何数据。
func (s *BackupService) Import(payload []byte) (*Backup, error) {
	backup, err := parseBackup(payload)
	if err != nil {
		return nil, err
	}
	if err := s.datasetRepo.ReplaceAll(backup.Data); err != nil {
		return nil, err
	}
	if s.tracker != nil {
		s.tracker.MarkLocalChange()
	}
	return backup, nil
}

// ExportToFile 导出备份并写入备份目录，返回落盘路径（供定时任务调用）
func (s *BackupService) ExportToFile() (string, error) {
	backup, err := s.Export()
	if err != nil {
		return "", err
	}
	payload, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("kucun-backup-%s-%s.json", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}

	logger.Infow("backup exported", "path", path)
	return path, nil
}

// parseBackup 解析并校验备份文件。version、timestamp、data 缺一不可，
// data 段四个集合键必须齐全且为数组。
func parseBackup(payload []byte) (*Backup, error) {
	var raw struct {
		Version   string                     `json:"version"`
		Timestamp string                     `json:"timestamp"`
		Data      map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, ErrInvalidBackupFormat
	}
	if raw.Version == "" || raw.Timestamp == "" || raw.Data == nil {
		return nil, ErrInvalidBackupFormat
	}
	for _, name := range constants.SyncedCollections {
		records, ok := raw.Data[name]
		if !ok {
			return nil, ErrInvalidBackupFormat
		}
		var probe []json.RawMessage
		if err := json.Unmarshal(records, &probe); err != nil {
			return nil, ErrInvalidBackupFormat
		}
	}

	backup := &Backup{}
	if err := json.Unmarshal(payload, backup); err != nil {
		return nil, ErrInvalidBackupFormat
	}
	if backup.Data == nil {
		return nil, ErrInvalidBackupFormat
	}
	return backup, nil
}
