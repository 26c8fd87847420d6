package provider

import (
	"time"

	"github.com/kucun-next/internal/cache"
	"github.com/kucun-next/internal/config"
	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/mirror"
	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/queue"
	"github.com/kucun-next/internal/repository"
	"github.com/kucun-next/internal/service"
	syncpkg "github.com/kucun-next/internal/sync"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OperatorRepo  repository.OperatorRepository
	ClothingRepo  repository.ClothingRepository
	InventoryRepo repository.InventoryRepository
	StockInRepo   repository.StockInRepository
	StockOutRepo  repository.StockOutRepository
	SettingRepo   repository.SettingRepository
	DatasetRepo   repository.DatasetRepository

	// Sync
	Gate         *syncpkg.Gate
	MirrorClient mirror.Client
	Reconciler   *syncpkg.Reconciler
	Prober       *syncpkg.Prober

	// Services
	AuthService      *service.AuthService
	CaptchaService   *service.CaptchaService
	SettingService   *service.SettingService
	ClothingService  *service.ClothingService
	InventoryService *service.InventoryService
	ReportService    *service.ReportService
	BackupService    *service.BackupService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存（远端镜像、限流、队列共用）
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化同步组件
	c.initSync()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OperatorRepo = repository.NewOperatorRepository(db)
	c.ClothingRepo = repository.NewClothingRepository(db)
	c.InventoryRepo = repository.NewInventoryRepository(db)
	c.StockInRepo = repository.NewStockInRepository(db)
	c.StockOutRepo = repository.NewStockOutRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.DatasetRepo = repository.NewDatasetRepository(db)
}

func (c *Container) initSync() {
	c.Gate = syncpkg.NewGate()
	c.SettingService = service.NewSettingService(c.SettingRepo)

	if !c.Config.Sync.Enabled {
		logger.Infow("provider_sync_disabled")
		return
	}
	if !cache.Enabled() {
		logger.Warnw("provider_mirror_disabled_no_redis")
		return
	}
	c.MirrorClient = mirror.NewRedisClient(cache.Client(), cache.Prefix(), c.Gate)

	var enqueuer syncpkg.Enqueuer
	if c.QueueClient != nil {
		enqueuer = c.QueueClient
	}
	c.Reconciler = syncpkg.NewReconciler(c.Gate, c.MirrorClient, c.DatasetRepo, c.SettingService, enqueuer)

	interval := time.Duration(c.Config.Sync.ProbeIntervalSecond) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	c.Prober = syncpkg.NewProber(c.MirrorClient, c.Gate, interval)
}

func (c *Container) initServices() {
	// 镜像不可用时对账器为 nil，本地变更只累计离线计数
	var tracker service.SyncTracker
	if c.Reconciler != nil {
		tracker = c.Reconciler
	}

	c.AuthService = service.NewAuthService(c.OperatorRepo, c.Gate, c.Config)
	c.CaptchaService = service.NewCaptchaService(c.Config)
	c.ClothingService = service.NewClothingService(c.ClothingRepo, c.InventoryRepo, tracker)
	c.InventoryService = service.NewInventoryService(c.ClothingRepo, c.InventoryRepo, c.StockInRepo, c.StockOutRepo, tracker)
	c.ReportService = service.NewReportService(c.ClothingRepo, c.InventoryRepo, c.StockInRepo, c.StockOutRepo, c.SettingService)
	c.BackupService = service.NewBackupService(c.DatasetRepo, tracker, c.Config.Backup.Dir)
}
