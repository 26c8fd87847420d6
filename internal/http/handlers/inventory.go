package handlers

import (
	"github.com/kucun-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetInventories 全部库存行
func (h *Handler) GetInventories(c *gin.Context) {
	inventories, err := h.InventoryRepo.ListAll()
	if err != nil {
		respondError(c, response.CodeInternal, "查询库存失败", err)
		return
	}
	response.Success(c, inventories)
}

// GetInventoryQuantity 某服装当前可用库存
func (h *Handler) GetInventoryQuantity(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	quantity, err := h.InventoryService.GetAvailableQuantity(id)
	if err != nil {
		respondError(c, response.CodeInternal, "查询库存失败", err)
		return
	}
	response.Success(c, gin.H{
		"clothingId": id,
		"quantity":   quantity,
	})
}
