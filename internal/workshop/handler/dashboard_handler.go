package handler

import (
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 看板处理器
type DashboardHandler struct {
	svc *service.DashboardService
}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Overview GET /api/v1/dashboard/overview
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.svc.GetOverview(c.Request.Context())
	if err != nil {
		InternalError(c, "获取总览失败: "+err.Error())
		return
	}
	Success(c, overview)
}

// MoldStatus GET /api/v1/dashboard/mold-status
func (h *DashboardHandler) MoldStatus(c *gin.Context) {
	counts, err := h.svc.GetMoldStatusDistribution(c.Request.Context())
	if err != nil {
		InternalError(c, "获取模具状态分布失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": counts})
}

// ScrapRates GET /api/v1/dashboard/scrap-rates
func (h *DashboardHandler) ScrapRates(c *gin.Context) {
	rates, err := h.svc.GetScrapRates(c.Request.Context())
	if err != nil {
		InternalError(c, "获取废品率失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": rates})
}

// MaintenanceCosts GET /api/v1/dashboard/maintenance-costs?group_by=month
func (h *DashboardHandler) MaintenanceCosts(c *gin.Context) {
	if c.Query("group_by") == "month" {
		costs, err := h.svc.GetMonthlyMaintenanceCosts(c.Request.Context())
		if err != nil {
			InternalError(c, "获取维护成本失败: "+err.Error())
			return
		}
		Success(c, gin.H{"items": costs})
		return
	}

	costs, err := h.svc.GetMaintenanceCosts(c.Request.Context())
	if err != nil {
		InternalError(c, "获取维护成本失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": costs})
}
