package worker

import (
	"context"
	"errors"
	"time"

	"github.com/kucun-next/internal/config"
	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name           string
	server         *asynq.Server
	mux            *asynq.ServeMux
	consumer       *Consumer
	backupInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, backupCfg *config.BackupConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	var backupInterval time.Duration
	if backupCfg != nil && backupCfg.AutoIntervalMinute > 0 {
		backupInterval = time.Duration(backupCfg.AutoIntervalMinute) * time.Minute
	}
	return &Service{
		name:           "worker",
		server:         server,
		mux:            mux,
		consumer:       consumer,
		backupInterval: backupInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.backupInterval > 0 && s.consumer != nil && s.consumer.QueueClient != nil {
		go s.runAutoBackupLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runAutoBackupLoop 按配置周期排入自动备份任务
func (s *Service) runAutoBackupLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.QueueClient == nil {
		return
	}
	enqueueOnce := func() {
		if err := s.consumer.QueueClient.EnqueueBackupExport(); err != nil {
			logger.Warnw("worker_auto_backup_enqueue_failed", "error", err)
		}
	}

	ticker := time.NewTicker(s.backupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueueOnce()
		}
	}
}
