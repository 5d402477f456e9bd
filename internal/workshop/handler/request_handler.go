package handler

import (
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// RequestHandler 维修申请处理器
type RequestHandler struct {
	svc *service.RequestService
}

// NewRequestHandler 创建维修申请处理器
func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// Create POST /api/v1/maintenance-requests
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	request, err := h.svc.CreateRequest(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, request)
}

// List GET /api/v1/maintenance-requests?status=&source_id=
func (h *RequestHandler) List(c *gin.Context) {
	filters := map[string]string{
		"status":    c.Query("status"),
		"source_id": c.Query("source_id"),
	}
	requests, err := h.svc.ListRequests(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "获取维修申请列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": requests})
}

// Get GET /api/v1/maintenance-requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.svc.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, request)
}

type updateRequestStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus PUT /api/v1/maintenance-requests/:id/status
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var req updateRequestStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	request, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, request)
}
