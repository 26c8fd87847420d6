package sync

import (
	stdsync "sync"
)

// Gate 云同步闸门：网络在线且操作员已登录才允许访问远端镜像。
// 任一条件翻转导致可用性变化时回调通知（触发或终止一轮对账）。
type Gate struct {
	mu       stdsync.Mutex
	online   bool
	authed   bool
	onChange func(available bool)
}

// NewGate 创建闸门（初始离线、未登录）
func NewGate() *Gate {
	return &Gate{}
}

// OnChange 注册可用性变化回调
func (g *Gate) OnChange(fn func(available bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = fn
}

// Available 判断当前是否可用
func (g *Gate) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.online && g.authed
}

// Online 判断网络是否在线
func (g *Gate) Online() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.online
}

// Authenticated 判断是否已登录
func (g *Gate) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authed
}

// SetOnline 更新网络状态
func (g *Gate) SetOnline(online bool) {
	g.set(func() { g.online = online })
}

// SetAuthenticated 更新登录状态
func (g *Gate) SetAuthenticated(authed bool) {
	g.set(func() { g.authed = authed })
}

func (g *Gate) set(apply func()) {
	g.mu.Lock()
	before := g.online && g.authed
	apply()
	after := g.online && g.authed
	fn := g.onChange
	g.mu.Unlock()

	if before != after && fn != nil {
		fn(after)
	}
}
