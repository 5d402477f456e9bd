package handler

import (
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	svc *service.ExportService
}

// NewExportHandler 创建导出处理器
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportMolds GET /api/v1/exports/molds?status=&format=xlsx|csv
func (h *ExportHandler) ExportMolds(c *gin.Context) {
	filters := map[string]string{
		"keyword": c.Query("keyword"),
		"status":  c.Query("status"),
	}

	if c.DefaultQuery("format", "xlsx") == "csv" {
		data, filename, err := h.svc.ExportMoldsCSV(c.Request.Context(), filters)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
		c.Data(200, "text/csv; charset=utf-8", data)
		return
	}

	f, filename, err := h.svc.ExportMolds(c.Request.Context(), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}

// ExportProduction GET /api/v1/exports/components/:id/production?format=xlsx|csv
func (h *ExportHandler) ExportProduction(c *gin.Context) {
	componentID := c.Param("id")

	if c.DefaultQuery("format", "xlsx") == "csv" {
		data, filename, err := h.svc.ExportProductionCSV(c.Request.Context(), componentID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
		c.Data(200, "text/csv; charset=utf-8", data)
		return
	}

	f, filename, err := h.svc.ExportProductionLogs(c.Request.Context(), componentID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
