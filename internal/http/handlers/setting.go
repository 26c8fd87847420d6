package handlers

import (
	"errors"

	"github.com/kucun-next/internal/http/response"
	"github.com/kucun-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SettingsUpdateRequest 设置更新请求（字段可选，只更新提交的项）
type SettingsUpdateRequest struct {
	LowStockThreshold *int  `json:"lowStockThreshold"`
	SoundEnabled      *bool `json:"soundEnabled"`
}

// GetSettings 当前设置（含默认值）
func (h *Handler) GetSettings(c *gin.Context) {
	threshold, err := h.SettingService.LowStockThreshold()
	if err != nil {
		respondError(c, response.CodeInternal, "查询设置失败", err)
		return
	}
	soundEnabled, err := h.SettingService.SoundEnabled()
	if err != nil {
		respondError(c, response.CodeInternal, "查询设置失败", err)
		return
	}
	response.Success(c, gin.H{
		"lowStockThreshold": threshold,
		"soundEnabled":      soundEnabled,
	})
}

// UpdateSettings 更新设置
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if req.LowStockThreshold != nil {
		if err := h.SettingService.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			if errors.Is(err, service.ErrInvalidThreshold) {
				respondError(c, response.CodeBadRequest, "预警阈值必须为非负整数", nil)
				return
			}
			respondError(c, response.CodeInternal, "保存设置失败", err)
			return
		}
	}
	if req.SoundEnabled != nil {
		if err := h.SettingService.SetSoundEnabled(*req.SoundEnabled); err != nil {
			respondError(c, response.CodeInternal, "保存设置失败", err)
			return
		}
	}
	response.SuccessWithMsg(c, "设置已保存", nil)
}
