package sync

import (
	"context"
	"time"

	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/mirror"
)

const defaultProbeInterval = 30 * time.Second

// Prober 网络探测器：周期性 ping 远端，翻转闸门的在线状态。
// 状态变化由闸门回调驱动对账器（上线触发对账、掉线注销订阅）。
type Prober struct {
	client   mirror.Client
	gate     *Gate
	interval time.Duration
}

// NewProber 创建网络探测器
func NewProber(client mirror.Client, gate *Gate, interval time.Duration) *Prober {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Prober{client: client, gate: gate, interval: interval}
}

// Name 服务名称
func (p *Prober) Name() string {
	return "sync-prober"
}

// Start 启动探测循环，直到 ctx 取消
func (p *Prober) Start(ctx context.Context) error {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

// Stop 停止探测（循环由 ctx 取消退出，这里仅标记离线）
func (p *Prober) Stop(ctx context.Context) error {
	if p.gate != nil {
		p.gate.SetOnline(false)
	}
	return nil
}

func (p *Prober) probe(ctx context.Context) {
	if p.client == nil || p.gate == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.client.Ping(probeCtx)
	online := err == nil
	if online != p.gate.Online() {
		if online {
			logger.Infow("network_online")
		} else {
			logger.Warnw("network_offline", "error", err)
		}
	}
	p.gate.SetOnline(online)
}
