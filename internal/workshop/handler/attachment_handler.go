package handler

import (
	"errors"
	"io"

	"github.com/bitfantasy/moldtrack/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler 附件处理器
type AttachmentHandler struct {
	svc *service.AttachmentService
}

// NewAttachmentHandler 创建附件处理器
func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// Upload POST /api/v1/attachments (multipart: file, owner_type, owner_id)
func (h *AttachmentHandler) Upload(c *gin.Context) {
	ownerType := c.PostForm("owner_type")
	ownerID := c.PostForm("owner_id")
	if ownerType == "" || ownerID == "" {
		BadRequest(c, "owner_type和owner_id不能为空")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传文件")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer file.Close()

	attachment, err := h.svc.Upload(
		c.Request.Context(),
		ownerType, ownerID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
		GetUserID(c),
	)
	if err != nil {
		if errors.Is(err, service.ErrStorageUnavailable) {
			Error(c, 50300, "对象存储不可用")
			return
		}
		HandleServiceError(c, err)
		return
	}
	Created(c, attachment)
}

// Download GET /api/v1/attachments/:id/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	attachment, reader, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStorageUnavailable) {
			Error(c, 50300, "对象存储不可用")
			return
		}
		HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", attachment.MimeType)
	c.Header("Content-Disposition", "attachment; filename=\""+attachment.FileName+"\"")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		InternalError(c, "下载文件失败: "+err.Error())
	}
}

// Delete DELETE /api/v1/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// ListByOwner GET /api/v1/attachments?owner_type=&owner_id=
func (h *AttachmentHandler) ListByOwner(c *gin.Context) {
	ownerType := c.Query("owner_type")
	ownerID := c.Query("owner_id")
	if ownerType == "" || ownerID == "" {
		BadRequest(c, "owner_type和owner_id不能为空")
		return
	}

	attachments, err := h.svc.ListByOwner(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": attachments})
}
