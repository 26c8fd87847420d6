package handlers

import (
	"errors"
	"strconv"

	"github.com/kucun-next/internal/http/response"
	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"
	"github.com/kucun-next/internal/service"

	"github.com/gin-gonic/gin"
)

// StockInRequest 入库请求（单行）
type StockInRequest struct {
	ClothingID    uint    `json:"clothingId" binding:"required"`
	Quantity      int     `json:"quantity" binding:"required"`
	PurchasePrice float64 `json:"purchasePrice" binding:"required"`
	Date          string  `json:"date"`
	Operator      string  `json:"operator"`
	Notes         string  `json:"notes"`
}

func (r *StockInRequest) toInput() service.StockInInput {
	return service.StockInInput{
		ClothingID:    r.ClothingID,
		Quantity:      r.Quantity,
		PurchasePrice: models.NewMoneyFromFloat(r.PurchasePrice),
		Date:          r.Date,
		Operator:      r.Operator,
		Notes:         r.Notes,
	}
}

// StockOutRequest 出库请求（单行）
type StockOutRequest struct {
	ClothingID   uint    `json:"clothingId" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required"`
	SellingPrice float64 `json:"sellingPrice" binding:"required"`
	Date         string  `json:"date"`
	Operator     string  `json:"operator"`
	Customer     string  `json:"customer"`
	Notes        string  `json:"notes"`
}

func (r *StockOutRequest) toInput() service.StockOutInput {
	return service.StockOutInput{
		ClothingID:   r.ClothingID,
		Quantity:     r.Quantity,
		SellingPrice: models.NewMoneyFromFloat(r.SellingPrice),
		Date:         r.Date,
		Operator:     r.Operator,
		Customer:     r.Customer,
		Notes:        r.Notes,
	}
}

// BatchStockInRequest 批量入库请求
type BatchStockInRequest struct {
	Items []StockInRequest `json:"items" binding:"required,min=1,dive"`
}

// BatchStockOutRequest 批量出库请求
type BatchStockOutRequest struct {
	Items []StockOutRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateStockIn 记录入库
func (h *Handler) CreateStockIn(c *gin.Context) {
	var req StockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	record, err := h.InventoryService.RecordStockIn(req.toInput())
	if err != nil {
		respondStockError(c, err, "入库失败")
		return
	}
	response.Success(c, record)
}

// CreateStockOut 记录出库
func (h *Handler) CreateStockOut(c *gin.Context) {
	var req StockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	record, err := h.InventoryService.RecordStockOut(req.toInput())
	if err != nil {
		respondStockError(c, err, "出库失败")
		return
	}
	response.Success(c, record)
}

// CreateStockInBatch 批量入库；某行失败时返回已成功的行数与失败行号
func (h *Handler) CreateStockInBatch(c *gin.Context) {
	var req BatchStockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	inputs := make([]service.StockInInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, item.toInput())
	}

	records, err := h.InventoryService.RecordStockInBatch(inputs)
	if err != nil {
		respondBatchError(c, err, records)
		return
	}
	response.Success(c, records)
}

// CreateStockOutBatch 批量出库
func (h *Handler) CreateStockOutBatch(c *gin.Context) {
	var req BatchStockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	inputs := make([]service.StockOutInput, 0, len(req.Items))
	for _, item := range req.Items {
		inputs = append(inputs, item.toInput())
	}

	records, err := h.InventoryService.RecordStockOutBatch(inputs)
	if err != nil {
		respondBatchError(c, err, records)
		return
	}
	response.Success(c, records)
}

// GetStockIns 入库历史
func (h *Handler) GetStockIns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.StockInListFilter{
		Page:     page,
		PageSize: pageSize,
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Operator: c.Query("operator"),
	}
	if raw := c.Query("clothing_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "无效的服装 ID", nil)
			return
		}
		filter.ClothingID = uint(id)
	}

	entries, total, err := h.ReportService.GetStockInHistory(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询入库历史失败", err)
		return
	}
	response.SuccessWithPage(c, entries, buildPagination(page, pageSize, total))
}

// GetStockOuts 出库历史
func (h *Handler) GetStockOuts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.StockOutListFilter{
		Page:     page,
		PageSize: pageSize,
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Operator: c.Query("operator"),
		Customer: c.Query("customer"),
	}
	if raw := c.Query("clothing_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "无效的服装 ID", nil)
			return
		}
		filter.ClothingID = uint(id)
	}

	entries, total, err := h.ReportService.GetStockOutHistory(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询出库历史失败", err)
		return
	}
	response.SuccessWithPage(c, entries, buildPagination(page, pageSize, total))
}

func respondStockError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrClothingRequired):
		respondError(c, response.CodeBadRequest, "请选择服装", nil)
	case errors.Is(err, service.ErrClothingNotFound):
		respondError(c, response.CodeNotFound, "服装不存在", nil)
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(c, response.CodeBadRequest, "数量必须为正整数", nil)
	case errors.Is(err, service.ErrInvalidPrice):
		respondError(c, response.CodeBadRequest, "单价必须为正数", nil)
	case errors.Is(err, service.ErrInvalidDate):
		respondError(c, response.CodeBadRequest, "日期格式必须为 YYYY-MM-DD", nil)
	case errors.Is(err, service.ErrInsufficientStock):
		respondError(c, response.CodeBadRequest, "库存不足", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// respondBatchError 批量提交部分失败：返回失败行号与已成功的记录
func respondBatchError(c *gin.Context, err error, completed interface{}) {
	var lineErr *service.BatchLineError
	if errors.As(err, &lineErr) {
		requestLog(c).Warnw("stock_batch_line_failed", "line", lineErr.Line, "error", lineErr.Err)
		response.ErrorWithData(c, response.CodeBadRequest, batchLineMessage(lineErr), gin.H{
			"failed_line": lineErr.Line,
			"completed":   completed,
		})
		return
	}
	respondError(c, response.CodeInternal, "批量提交失败", err)
}

func batchLineMessage(lineErr *service.BatchLineError) string {
	msg := "提交失败"
	switch {
	case errors.Is(lineErr.Err, service.ErrClothingNotFound):
		msg = "服装不存在"
	case errors.Is(lineErr.Err, service.ErrInvalidQuantity):
		msg = "数量必须为正整数"
	case errors.Is(lineErr.Err, service.ErrInvalidPrice):
		msg = "单价必须为正数"
	case errors.Is(lineErr.Err, service.ErrInvalidDate):
		msg = "日期格式必须为 YYYY-MM-DD"
	case errors.Is(lineErr.Err, service.ErrInsufficientStock):
		msg = "库存不足"
	}
	return "第 " + strconv.Itoa(lineErr.Line) + " 行" + msg
}
