package worker

import (
	"context"
	"errors"

	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/provider"
	"github.com/kucun-next/internal/queue"
	syncpkg "github.com/kucun-next/internal/sync"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSyncRun, c.handleSyncRun)
	mux.HandleFunc(queue.TaskBackupExport, c.handleBackupExport)
}

// handleSyncRun 执行一轮云端对账。闸门关闭或已有对账在跑时按成功结束，
// 不触发 asynq 重试。
func (c *Consumer) handleSyncRun(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_sync_run_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	if c.Reconciler == nil {
		logger.Debugw("worker_sync_run_skip_reconciler_nil")
		return nil
	}
	err := c.Reconciler.Reconcile(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, syncpkg.ErrSyncInProgress):
		logger.Debugw("worker_sync_run_skip_in_progress")
		return nil
	case errors.Is(err, syncpkg.ErrSyncUnavailable):
		logger.Debugw("worker_sync_run_skip_unavailable")
		return nil
	default:
		logger.Warnw("worker_sync_run_failed", "error", err)
		return err
	}
}

func (c *Consumer) handleBackupExport(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_backup_export_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	if c.BackupService == nil {
		logger.Debugw("worker_backup_export_skip_service_nil")
		return nil
	}
	path, err := c.BackupService.ExportToFile()
	if err != nil {
		logger.Warnw("worker_backup_export_failed", "error", err)
		return err
	}
	logger.Debugw("worker_backup_export_done", "path", path)
	return nil
}
