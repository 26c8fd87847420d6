package handlers

import (
	"github.com/kucun-next/internal/http/response"
	"github.com/kucun-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog 提供携带 request_id 的日志实例
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// respondError 返回错误响应，并在有原始错误时记录日志
func respondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		requestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// normalizePagination 归一化分页参数
func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// buildPagination 构造分页响应信息
func buildPagination(page, pageSize int, total int64) response.Pagination {
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// contextOperatorID 从上下文读取当前操作员 ID（认证中间件写入）
func contextOperatorID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("operator_id")
	if !exists {
		respondError(c, response.CodeUnauthorized, "未登录或登录已过期", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok {
		respondError(c, response.CodeInternal, "登录态异常", nil)
		return 0, false
	}
	return id, true
}
