package handlers

import (
	"errors"

	"github.com/kucun-next/internal/http/response"
	syncpkg "github.com/kucun-next/internal/sync"

	"github.com/gin-gonic/gin"
)

// GetSyncStatus 当前同步状态
func (h *Handler) GetSyncStatus(c *gin.Context) {
	if h.Reconciler == nil {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	response.Success(c, h.Reconciler.Status())
}

// RunSync 手动触发一轮同步。优先走异步队列；
// 队列不可用时在请求内同步执行。
func (h *Handler) RunSync(c *gin.Context) {
	if h.Reconciler == nil {
		respondError(c, response.CodeUnavailable, "云同步未启用", nil)
		return
	}

	if h.QueueClient != nil {
		if err := h.QueueClient.EnqueueSyncRun(); err != nil {
			respondError(c, response.CodeInternal, "触发同步失败", err)
			return
		}
		response.SuccessWithMsg(c, "同步已触发", nil)
		return
	}

	if err := h.Reconciler.Reconcile(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, syncpkg.ErrSyncInProgress):
			response.SuccessWithMsg(c, "同步正在进行中", nil)
		case errors.Is(err, syncpkg.ErrSyncUnavailable):
			respondError(c, response.CodeUnavailable, "当前离线或未登录，无法同步", nil)
		default:
			respondError(c, response.CodeInternal, "同步失败", err)
		}
		return
	}
	response.SuccessWithMsg(c, "同步完成", nil)
}
