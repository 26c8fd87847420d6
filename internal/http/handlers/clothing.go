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

// ClothingUpsertRequest 服装创建/更新请求
type ClothingUpsertRequest struct {
	Code          string  `json:"code" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Category      string  `json:"category"`
	Size          string  `json:"size"`
	Color         string  `json:"color"`
	PurchasePrice float64 `json:"purchasePrice"`
	SellingPrice  float64 `json:"sellingPrice"`
}

func (r *ClothingUpsertRequest) toInput() service.ClothingInput {
	return service.ClothingInput{
		Code:          r.Code,
		Name:          r.Name,
		Category:      r.Category,
		Size:          r.Size,
		Color:         r.Color,
		PurchasePrice: models.NewMoneyFromFloat(r.PurchasePrice),
		SellingPrice:  models.NewMoneyFromFloat(r.SellingPrice),
	}
}

// GetClothes 服装列表
func (h *Handler) GetClothes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ClothingListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Size:     c.Query("size"),
		Search:   c.Query("search"),
	}

	clothes, total, err := h.ClothingService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询服装列表失败", err)
		return
	}
	response.SuccessWithPage(c, clothes, buildPagination(page, pageSize, total))
}

// GetClothing 服装详情
func (h *Handler) GetClothing(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	clothing, err := h.ClothingService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrClothingNotFound) {
			respondError(c, response.CodeNotFound, "服装不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "查询服装失败", err)
		return
	}
	response.Success(c, clothing)
}

// GetClothingByCode 按货号查询服装
func (h *Handler) GetClothingByCode(c *gin.Context) {
	code := c.Param("code")
	clothing, err := h.ClothingService.GetByCode(code)
	if err != nil {
		if errors.Is(err, service.ErrClothingNotFound) {
			respondError(c, response.CodeNotFound, "服装不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "查询服装失败", err)
		return
	}
	response.Success(c, clothing)
}

// CreateClothing 新建服装档案
func (h *Handler) CreateClothing(c *gin.Context) {
	var req ClothingUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	clothing, err := h.ClothingService.Create(req.toInput())
	if err != nil {
		respondClothingError(c, err, "创建服装失败")
		return
	}
	response.Success(c, clothing)
}

// UpdateClothing 更新服装档案
func (h *Handler) UpdateClothing(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ClothingUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	clothing, err := h.ClothingService.Update(id, req.toInput())
	if err != nil {
		respondClothingError(c, err, "更新服装失败")
		return
	}
	response.Success(c, clothing)
}

// DeleteClothing 删除服装档案（连带库存行，历史流水保留）
func (h *Handler) DeleteClothing(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.ClothingService.Delete(id); err != nil {
		if errors.Is(err, service.ErrClothingNotFound) {
			respondError(c, response.CodeNotFound, "服装不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除服装失败", err)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}

// GetCategories 分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.ClothingService.ListCategories()
	if err != nil {
		respondError(c, response.CodeInternal, "查询分类失败", err)
		return
	}
	response.Success(c, categories)
}

func respondClothingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrClothingNotFound):
		respondError(c, response.CodeNotFound, "服装不存在", nil)
	case errors.Is(err, service.ErrClothingCodeRequired):
		respondError(c, response.CodeBadRequest, "货号不能为空", nil)
	case errors.Is(err, service.ErrClothingNameRequired):
		respondError(c, response.CodeBadRequest, "名称不能为空", nil)
	case errors.Is(err, service.ErrClothingCodeExists):
		respondError(c, response.CodeConflict, "货号已存在", nil)
	case errors.Is(err, service.ErrInvalidPrice):
		respondError(c, response.CodeBadRequest, "价格不合法", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// paramID 解析路径中的数字主键
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "无效的 ID", nil)
		return 0, false
	}
	return uint(id), true
}
