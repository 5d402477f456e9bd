package handler

import (
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// EventHandler 事件处理器
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler 创建事件处理器
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Create POST /api/v1/events
func (h *EventHandler) Create(c *gin.Context) {
	var req service.CreateEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, event)
}

// Get GET /api/v1/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.svc.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, event)
}

// Update PUT /api/v1/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var req service.UpdateEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, event)
}

// Close POST /api/v1/events/:id/close
func (h *EventHandler) Close(c *gin.Context) {
	event, err := h.svc.CloseEvent(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, event)
}

// ListBySource GET /api/v1/sources/:id/events
func (h *EventHandler) ListBySource(c *gin.Context) {
	events, err := h.svc.ListBySource(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "获取事件列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": events})
}

// List GET /api/v1/events?status=&type=&source_type=
func (h *EventHandler) List(c *gin.Context) {
	filters := map[string]string{
		"status":      c.Query("status"),
		"type":        c.Query("type"),
		"source_type": c.Query("source_type"),
	}
	events, err := h.svc.ListEvents(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "获取事件列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": events})
}

// ListUpcoming GET /api/v1/events/upcoming
func (h *EventHandler) ListUpcoming(c *gin.Context) {
	events, err := h.svc.ListUpcoming(c.Request.Context())
	if err != nil {
		InternalError(c, "获取未关闭事件失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": events})
}
