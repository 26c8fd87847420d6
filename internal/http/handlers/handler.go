package handlers

import "github.com/kucun-next/internal/provider"

// Handler 接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
