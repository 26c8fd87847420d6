package handlers

import (
	"time"

	"github.com/kucun-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetInventorySummary 库存总览
func (h *Handler) GetInventorySummary(c *gin.Context) {
	summary, err := h.ReportService.GetInventorySummary()
	if err != nil {
		respondError(c, response.CodeInternal, "查询库存总览失败", err)
		return
	}
	response.Success(c, summary)
}

// GetLowStockItems 库存预警列表
func (h *Handler) GetLowStockItems(c *gin.Context) {
	items, err := h.ReportService.GetLowStockItems()
	if err != nil {
		respondError(c, response.CodeInternal, "查询库存预警失败", err)
		return
	}
	response.Success(c, items)
}

// GetSalesSummary 日期区间销售汇总；缺省为最近 30 天
func (h *Handler) GetSalesSummary(c *gin.Context) {
	dateTo := c.Query("date_to")
	dateFrom := c.Query("date_from")
	if dateTo == "" {
		dateTo = time.Now().Format("2006-01-02")
	}
	if dateFrom == "" {
		dateFrom = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", dateFrom); err != nil {
		respondError(c, response.CodeBadRequest, "日期格式必须为 YYYY-MM-DD", nil)
		return
	}
	if _, err := time.Parse("2006-01-02", dateTo); err != nil {
		respondError(c, response.CodeBadRequest, "日期格式必须为 YYYY-MM-DD", nil)
		return
	}

	summary, err := h.ReportService.GetSalesSummary(dateFrom, dateTo)
	if err != nil {
		respondError(c, response.CodeInternal, "查询销售汇总失败", err)
		return
	}
	response.Success(c, summary)
}

// GetDashboard 首页看板
func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.ReportService.GetDashboard()
	if err != nil {
		respondError(c, response.CodeInternal, "查询看板数据失败", err)
		return
	}
	response.Success(c, dashboard)
}
