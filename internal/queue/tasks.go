package queue

import (
	"github.com/hibiken/asynq"
)

const (
	// TaskSyncRun 云同步对账任务
	TaskSyncRun = "sync:run"
	// TaskBackupExport 自动备份导出任务
	TaskBackupExport = "backup:export"
)

// NewSyncRunTask 创建同步对账任务（无载荷）
func NewSyncRunTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskSyncRun, nil), nil
}

// NewBackupExportTask 创建自动备份任务（无载荷）
func NewBackupExportTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskBackupExport, nil), nil
}
