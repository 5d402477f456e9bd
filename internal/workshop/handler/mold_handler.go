package handler

import (
	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// MoldHandler 模具处理器
type MoldHandler struct {
	svc *service.MoldService
}

// NewMoldHandler 创建模具处理器
func NewMoldHandler(svc *service.MoldService) *MoldHandler {
	return &MoldHandler{svc: svc}
}

// Create POST /api/v1/molds
func (h *MoldHandler) Create(c *gin.Context) {
	var req service.CreateMoldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	mold, err := h.svc.CreateMold(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, mold)
}

// List GET /api/v1/molds?keyword=&status=&parent_id=
func (h *MoldHandler) List(c *gin.Context) {
	filters := map[string]string{
		"keyword":   c.Query("keyword"),
		"status":    c.Query("status"),
		"parent_id": c.Query("parent_id"),
	}
	molds, err := h.svc.ListMolds(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "获取模具列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": molds})
}

// Tree GET /api/v1/molds/tree
func (h *MoldHandler) Tree(c *gin.Context) {
	roots, err := h.svc.GetMoldTree(c.Request.Context())
	if err != nil {
		InternalError(c, "获取模具树失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": roots})
}

// Get GET /api/v1/molds/:id
func (h *MoldHandler) Get(c *gin.Context) {
	mold, err := h.svc.GetMold(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, mold)
}

// Update PUT /api/v1/molds/:id
func (h *MoldHandler) Update(c *gin.Context) {
	var req service.UpdateMoldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	mold, err := h.svc.UpdateMold(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, mold)
}

// Delete DELETE /api/v1/molds/:id
func (h *MoldHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteMold(c.Request.Context(), c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}
