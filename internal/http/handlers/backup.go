package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/kucun-next/internal/http/response"
	"github.com/kucun-next/internal/service"

	"github.com/gin-gonic/gin"
)

// 备份文件上传大小上限
const maxBackupSize = 32 << 20

// ExportBackup 导出备份文件（直接下载）
func (h *Handler) ExportBackup(c *gin.Context) {
	backup, err := h.BackupService.Export()
	if err != nil {
		respondError(c, response.CodeInternal, "导出备份失败", err)
		return
	}
	filename := "kucun-backup-" + time.Now().Format("20060102-150405") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(200, backup)
}

// ImportBackup 从上传的备份文件恢复数据。
// 格式校验不通过时现有数据原样保留。
func (h *Handler) ImportBackup(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "请选择备份文件", err)
		return
	}
	if file.Size > maxBackupSize {
		respondError(c, response.CodeBadRequest, "备份文件过大", nil)
		return
	}

	reader, err := file.Open()
	if err != nil {
		respondError(c, response.CodeInternal, "读取备份文件失败", err)
		return
	}
	defer reader.Close()

	payload, err := io.ReadAll(io.LimitReader(reader, maxBackupSize+1))
	if err != nil {
		respondError(c, response.CodeInternal, "读取备份文件失败", err)
		return
	}

	backup, err := h.BackupService.Import(payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBackupFormat) {
			respondError(c, response.CodeBadRequest, "备份文件格式不正确", nil)
			return
		}
		respondError(c, response.CodeInternal, "恢复备份失败", err)
		return
	}

	requestLog(c).Infow("backup_imported", "backup_timestamp", backup.Timestamp)
	response.SuccessWithMsg(c, "数据已恢复", gin.H{
		"version":   backup.Version,
		"timestamp": backup.Timestamp,
	})
}
