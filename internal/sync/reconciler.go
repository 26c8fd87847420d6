package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/kucun-next/internal/constants"
	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/mirror"
)

// State 对账器状态
type State string

const (
	StateIdle               State = "idle"
	StatePullingThenPushing State = "pulling_then_pushing"
	StateSubscribed         State = "subscribed"
)

var (
	// ErrSyncFailed 拉取或推送失败；本轮对账中止，等待下一次网络/登录状态变化
	ErrSyncFailed = errors.New("sync failed")
	// ErrSyncInProgress 已有对账在执行
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrSyncUnavailable 闸门关闭（离线或未登录）
	ErrSyncUnavailable = errors.New("sync unavailable")
)

// Store 本地四集合的快照与全量替换（由 repository.DatasetRepository 提供）
type Store interface {
	SnapshotCollection(name string) (map[string]json.RawMessage, error)
	ReplaceCollection(name string, records map[string]json.RawMessage) error
}

// Meta 同步元数据（存放在设置表，由 SettingService 提供）
type Meta interface {
	SetLastSync(at time.Time) error
	IncrementOfflineChanges() error
	ResetOfflineChanges() error
	OfflineChanges() (int, error)
	LastSync() (string, error)
}

// Enqueuer 把重新推送请求排入异步队列（可选，缺省为进程内异步执行）
type Enqueuer interface {
	EnqueueSyncRun() error
}

// Status 对外暴露的同步状态
type Status struct {
	State          State  `json:"state"`
	Online         bool   `json:"online"`
	Authenticated  bool   `json:"authenticated"`
	LastSync       string `json:"last_sync"`
	OfflineChanges int    `json:"offline_changes"`
}

// Reconciler 同步对账器：单向状态机 Idle → PullingThenPushing → Subscribed，
// 离线或登出时回到 Idle 并注销全部订阅。
type Reconciler struct {
	mu       stdsync.Mutex
	state    State
	cancels  []func()
	gate     *Gate
	client   mirror.Client
	store    Store
	meta     Meta
	enqueuer Enqueuer
}

// NewReconciler 创建对账器并挂接闸门回调
func NewReconciler(gate *Gate, client mirror.Client, store Store, meta Meta, enqueuer Enqueuer) *Reconciler {
	r := &Reconciler{
		state:  StateIdle,
		gate:   gate,
		client: client,
		store:  store,
		meta:   meta,
		enqueuer: enqueuer,
	}
	if gate != nil {
		gate.OnChange(r.handleGateChange)
	}
	return r
}

// State 当前状态
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Status 当前同步状态汇总
func (r *Reconciler) Status() Status {
	status := Status{State: r.State()}
	if r.gate != nil {
		status.Online = r.gate.Online()
		status.Authenticated = r.gate.Authenticated()
	}
	if r.meta != nil {
		if last, err := r.meta.LastSync(); err == nil {
			status.LastSync = last
		}
		if pending, err := r.meta.OfflineChanges(); err == nil {
			status.OfflineChanges = pending
		}
	}
	return status
}

func (r *Reconciler) handleGateChange(available bool) {
	if available {
		go func() {
			if err := r.Reconcile(context.Background()); err != nil &&
				!errors.Is(err, ErrSyncInProgress) {
				logger.Warnw("sync_reconcile_failed", "error", err)
			}
		}()
		return
	}
	r.teardown()
}

// teardown 注销全部订阅并回到 Idle（离线或登出时调用）
func (r *Reconciler) teardown() {
	r.mu.Lock()
	cancels := r.cancels
	r.cancels = nil
	r.state = StateIdle
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if len(cancels) > 0 {
		logger.Infow("sync_subscriptions_closed", "count", len(cancels))
	}
}

// Reconcile 执行一轮"先拉后推"对账，成功后建立订阅（已订阅则不重复建立）。
// 任何集合失败立即中止，本地已完成的集合保持不变，状态回到 Idle。
func (r *Reconciler) Reconcile(ctx context.Context) error {
	if r.gate != nil && !r.gate.Available() {
		return ErrSyncUnavailable
	}

	r.mu.Lock()
	if r.state == StatePullingThenPushing {
		r.mu.Unlock()
		return ErrSyncInProgress
	}
	wasSubscribed := r.state == StateSubscribed
	r.state = StatePullingThenPushing
	r.mu.Unlock()

	started := time.Now()
	if err := r.pull(ctx); err != nil {
		r.abort(wasSubscribed)
		return fmt.Errorf("%w: pull: %v", ErrSyncFailed, err)
	}
	if err := r.push(ctx); err != nil {
		r.abort(wasSubscribed)
		return fmt.Errorf("%w: push: %v", ErrSyncFailed, err)
	}

	if r.meta != nil {
		if err := r.meta.SetLastSync(time.Now()); err != nil {
			logger.Warnw("sync_meta_last_sync_failed", "error", err)
		}
		if err := r.meta.ResetOfflineChanges(); err != nil {
			logger.Warnw("sync_meta_reset_offline_failed", "error", err)
		}
	}

	if !wasSubscribed {
		if err := r.subscribeAll(ctx); err != nil {
			r.abort(false)
			return fmt.Errorf("%w: subscribe: %v", ErrSyncFailed, err)
		}
	}

	r.mu.Lock()
	r.state = StateSubscribed
	r.mu.Unlock()

	logger.Infow("sync_reconcile_done", "duration_ms", time.Since(started).Milliseconds())
	return nil
}

// abort 对账失败后的状态回退；之前已订阅则保留订阅继续镜像
func (r *Reconciler) abort(wasSubscribed bool) {
	if wasSubscribed {
		r.mu.Lock()
		r.state = StateSubscribed
		r.mu.Unlock()
		return
	}
	r.teardown()
}

// pull 逐集合读取远端快照；远端有数据时整体覆盖本地集合
func (r *Reconciler) pull(ctx context.Context) error {
	for _, name := range constants.SyncedCollections {
		snapshot, err := r.client.ReadCollection(ctx, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if len(snapshot) == 0 {
			continue
		}
		if err := r.store.ReplaceCollection(name, snapshot); err != nil {
			return fmt.Errorf("replace %s: %w", name, err)
		}
		logger.Infow("sync_pull_collection", "collection", name, "records", len(snapshot))
	}
	return nil
}

// push 逐集合把本地记录写到远端同名 ID 下，再删除远端多余的记录
func (r *Reconciler) push(ctx context.Context) error {
	for _, name := range constants.SyncedCollections {
		local, err := r.store.SnapshotCollection(name)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", name, err)
		}
		for id, record := range local {
			if err := r.client.WriteRecord(ctx, name, id, record); err != nil {
				return fmt.Errorf("write %s/%s: %w", name, id, err)
			}
		}

		remote, err := r.client.ReadCollection(ctx, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		for id := range remote {
			if _, ok := local[id]; ok {
				continue
			}
			if err := r.client.DeleteRecord(ctx, name, id); err != nil {
				return fmt.Errorf("delete %s/%s: %w", name, id, err)
			}
		}
		logger.Infow("sync_push_collection", "collection", name, "records", len(local))
	}
	return nil
}

// subscribeAll 每个集合建立一个实时订阅；远端任何变更都会以完整快照
// 整体覆盖本地集合。取消函数全部登记，离线/登出时统一注销。
func (r *Reconciler) subscribeAll(ctx context.Context) error {
	cancels := make([]func(), 0, len(constants.SyncedCollections))
	for _, name := range constants.SyncedCollections {
		collection := name
		cancel, err := r.client.Subscribe(ctx, collection, func(snapshot map[string]json.RawMessage) {
			if len(snapshot) == 0 {
				return
			}
			if err := r.store.ReplaceCollection(collection, snapshot); err != nil {
				logger.Errorw("sync_subscription_replace_failed", "collection", collection, "error", err)
			}
		})
		if err != nil {
			for _, c := range cancels {
				c()
			}
			return fmt.Errorf("subscribe %s: %w", collection, err)
		}
		cancels = append(cancels, cancel)
	}

	r.mu.Lock()
	r.cancels = cancels
	r.mu.Unlock()
	return nil
}

// MarkLocalChange 本地发生一次变更：在线且已订阅时排队重新推送，
// 否则累加离线变更计数（仅作提示，下一轮对账总是全量推送）。
func (r *Reconciler) MarkLocalChange() {
	if r.gate != nil && r.gate.Available() && r.State() == StateSubscribed {
		if r.enqueuer != nil {
			if err := r.enqueuer.EnqueueSyncRun(); err != nil {
				logger.Warnw("sync_enqueue_failed", "error", err)
			}
			return
		}
		go func() {
			if err := r.Reconcile(context.Background()); err != nil &&
				!errors.Is(err, ErrSyncInProgress) {
				logger.Warnw("sync_repush_failed", "error", err)
			}
		}()
		return
	}
	if r.meta != nil {
		if err := r.meta.IncrementOfflineChanges(); err != nil {
			logger.Warnw("sync_meta_increment_offline_failed", "error", err)
		}
	}
}
