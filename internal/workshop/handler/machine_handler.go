package handler

import (
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// MachineHandler 设备处理器（含保养计划）
type MachineHandler struct {
	svc *service.MachineService
}

// NewMachineHandler 创建设备处理器
func NewMachineHandler(svc *service.MachineService) *MachineHandler {
	return &MachineHandler{svc: svc}
}

// Create POST /api/v1/machines
func (h *MachineHandler) Create(c *gin.Context) {
	var req service.CreateMachineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	machine, err := h.svc.CreateMachine(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, machine)
}

// List GET /api/v1/machines?keyword=&status=
func (h *MachineHandler) List(c *gin.Context) {
	filters := map[string]string{
		"keyword": c.Query("keyword"),
		"status":  c.Query("status"),
	}
	machines, err := h.svc.ListMachines(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "获取设备列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": machines})
}

// Get GET /api/v1/machines/:id
func (h *MachineHandler) Get(c *gin.Context) {
	machine, err := h.svc.GetMachine(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, machine)
}

// Update PUT /api/v1/machines/:id
func (h *MachineHandler) Update(c *gin.Context) {
	var req service.UpdateMachineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	machine, err := h.svc.UpdateMachine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, machine)
}

// Delete DELETE /api/v1/machines/:id
func (h *MachineHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteMachine(c.Request.Context(), c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// CreateSchedule POST /api/v1/machines/:id/schedules
func (h *MachineHandler) CreateSchedule(c *gin.Context) {
	var req service.CreateScheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	schedule, err := h.svc.CreateSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, schedule)
}

// ListSchedules GET /api/v1/machines/:id/schedules
func (h *MachineHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.svc.ListSchedules(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": schedules})
}

// UpdateSchedule PUT /api/v1/schedules/:id
func (h *MachineHandler) UpdateSchedule(c *gin.Context) {
	var req service.UpdateScheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	schedule, err := h.svc.UpdateSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, schedule)
}

// CompleteSchedule POST /api/v1/schedules/:id/complete
func (h *MachineHandler) CompleteSchedule(c *gin.Context) {
	schedule, err := h.svc.CompleteSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, schedule)
}

// DeleteSchedule DELETE /api/v1/schedules/:id
func (h *MachineHandler) DeleteSchedule(c *gin.Context) {
	if err := h.svc.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}
