package constants

// 同步集合名称（与备份文件、远端镜像的键一致，不可随意变更）
const (
	CollectionClothes   = "clothes"
	CollectionInventory = "inventory"
	CollectionStockIn   = "stockIn"
	CollectionStockOut  = "stockOut"
)

// SyncedCollections 参与云同步与备份的集合（顺序固定：拉取与推送按此顺序执行）
var SyncedCollections = []string{
	CollectionClothes,
	CollectionInventory,
	CollectionStockIn,
	CollectionStockOut,
}

// 设置键
const (
	SettingKeyLowStockThreshold = "lowStockThreshold"
	SettingKeySoundEnabled      = "soundEnabled"
	SettingKeyLastSync          = "lastSync"
	SettingKeyOfflineChanges    = "offlineChanges"
)

// 设置默认值
const (
	DefaultLowStockThreshold = 10
	DefaultSoundEnabled      = true
)

// 备份文件格式版本
const BackupVersion = "1.0"

// 操作员账号状态
const (
	OperatorStatusActive   = "active"
	OperatorStatusDisabled = "disabled"
)

// 队列名称
const (
	QueueDefault = "default"
)
