package mirror

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable 远端镜像当前不可用（离线或未登录），调用方不重试、
// 等待下一次网络或登录状态变化再触发。
var ErrUnavailable = errors.New("remote mirror unavailable")

// Gate 远端镜像可用性闸门：网络在线且已登录才放行
type Gate interface {
	Available() bool
}

// Client 远端镜像客户端。远端按 <集合名>/<记录ID> 组织为键值树，
// 订阅回调每次收到的都是该集合的完整快照，而非增量。
type Client interface {
	ReadCollection(ctx context.Context, name string) (map[string]json.RawMessage, error)
	WriteRecord(ctx context.Context, name, id string, record json.RawMessage) error
	DeleteRecord(ctx context.Context, name, id string) error
	Subscribe(ctx context.Context, name string, onChange func(map[string]json.RawMessage)) (func(), error)
	Ping(ctx context.Context) error
}
