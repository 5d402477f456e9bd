package handler

import (
	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// ComponentHandler 零件处理器（含生产记录和冲压参数）
type ComponentHandler struct {
	svc        *service.ComponentService
	production *service.ProductionService
	stamping   *service.StampingService
}

// NewComponentHandler 创建零件处理器
func NewComponentHandler(svc *service.ComponentService, production *service.ProductionService, stamping *service.StampingService) *ComponentHandler {
	return &ComponentHandler{svc: svc, production: production, stamping: stamping}
}

// Create POST /api/v1/components
func (h *ComponentHandler) Create(c *gin.Context) {
	var req service.CreateComponentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	component, err := h.svc.CreateComponent(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, component)
}

// List GET /api/v1/components?keyword=&status=&mold_id=
func (h *ComponentHandler) List(c *gin.Context) {
	filters := map[string]string{
		"keyword":  c.Query("keyword"),
		"status":   c.Query("status"),
		"material": c.Query("material"),
		"mold_id":  c.Query("mold_id"),
	}
	components, err := h.svc.ListComponents(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "获取零件列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": components})
}

// Get GET /api/v1/components/:id
func (h *ComponentHandler) Get(c *gin.Context) {
	component, err := h.svc.GetComponent(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, component)
}

// Update PUT /api/v1/components/:id
func (h *ComponentHandler) Update(c *gin.Context) {
	var req service.UpdateComponentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	component, err := h.svc.UpdateComponent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, component)
}

// Delete DELETE /api/v1/components/:id
func (h *ComponentHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteComponent(c.Request.Context(), c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// LogProduction POST /api/v1/components/:id/production
func (h *ComponentHandler) LogProduction(c *gin.Context) {
	var req service.LogProductionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	logEntry, err := h.production.LogProduction(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, logEntry)
}

// ListProduction GET /api/v1/components/:id/production
func (h *ComponentHandler) ListProduction(c *gin.Context) {
	logs, err := h.production.ListByComponent(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "获取生产记录失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": logs})
}

// UpdateProduction PUT /api/v1/production-logs/:id
func (h *ComponentHandler) UpdateProduction(c *gin.Context) {
	var req service.UpdateProductionLogReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	logEntry, err := h.production.UpdateProductionLog(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, logEntry)
}

// DeleteProduction DELETE /api/v1/production-logs/:id
func (h *ComponentHandler) DeleteProduction(c *gin.Context) {
	if err := h.production.DeleteProductionLog(c.Request.Context(), c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// UpdateStampingData PUT /api/v1/components/:id/stamping-data
func (h *ComponentHandler) UpdateStampingData(c *gin.Context) {
	var req entity.StringMap
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	changed, err := h.stamping.RecordStampingChange(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"changed": changed})
}

// ListStampingHistory GET /api/v1/components/:id/stamping-history
func (h *ComponentHandler) ListStampingHistory(c *gin.Context) {
	history, err := h.stamping.ListHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": history})
}
