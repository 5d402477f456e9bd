package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/minio/minio-go/v7"
)

// ErrStorageUnavailable MinIO未配置或不可用
var ErrStorageUnavailable = errors.New("object storage unavailable")

var attachmentOwnerTypes = map[string]bool{
	"mold":      true,
	"component": true,
	"machine":   true,
	"event":     true,
}

// AttachmentService 附件服务：元数据存库，文件内容存MinIO
type AttachmentService struct {
	attachmentRepo *repository.AttachmentRepository
	minioClient    *minio.Client
	bucket         string
}

// NewAttachmentService 创建附件服务
func NewAttachmentService(attachmentRepo *repository.AttachmentRepository, minioClient *minio.Client, bucket string) *AttachmentService {
	return &AttachmentService{attachmentRepo: attachmentRepo, minioClient: minioClient, bucket: bucket}
}

// Upload 上传附件
func (s *AttachmentService) Upload(ctx context.Context, ownerType, ownerID, fileName, mimeType string, size int64, reader io.Reader, userID string) (*entity.Attachment, error) {
	if s.minioClient == nil {
		return nil, ErrStorageUnavailable
	}
	if !attachmentOwnerTypes[ownerType] {
		return nil, fmt.Errorf("%w: 未知附件归属类型 %s", ErrValidation, ownerType)
	}
	if fileName == "" {
		return nil, fmt.Errorf("%w: 文件名不能为空", ErrValidation)
	}

	// 对象名带时间戳前缀，同名文件互不覆盖
	objectName := fmt.Sprintf("%s/%s/%d_%s", ownerType, ownerID, time.Now().UnixNano(), path.Base(fileName))

	_, err := s.minioClient.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("上传文件失败: %w", err)
	}

	attachment := &entity.Attachment{
		ID:         generateID(),
		OwnerType:  ownerType,
		OwnerID:    ownerID,
		FileName:   fileName,
		ObjectName: objectName,
		FileSize:   size,
		MimeType:   mimeType,
		UploadedBy: userID,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		// 元数据落库失败时清理已上传对象
		_ = s.minioClient.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
		return nil, fmt.Errorf("保存附件元数据失败: %w", err)
	}
	return attachment, nil
}

// Download 获取附件内容流
func (s *AttachmentService) Download(ctx context.Context, id string) (*entity.Attachment, io.ReadCloser, error) {
	if s.minioClient == nil {
		return nil, nil, ErrStorageUnavailable
	}
	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	object, err := s.minioClient.GetObject(ctx, s.bucket, attachment.ObjectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return attachment, object, nil
}

// Delete 删除附件（元数据+对象）
func (s *AttachmentService) Delete(ctx context.Context, id string) error {
	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("删除附件元数据失败: %w", err)
	}
	if s.minioClient != nil {
		// 对象清理失败只能留给人工，元数据已删不再可见
		_ = s.minioClient.RemoveObject(ctx, s.bucket, attachment.ObjectName, minio.RemoveObjectOptions{})
	}
	return nil
}

// ListByOwner 获取某模具/零件/设备/事件的附件列表
func (s *AttachmentService) ListByOwner(ctx context.Context, ownerType, ownerID string) ([]entity.Attachment, error) {
	if !attachmentOwnerTypes[ownerType] {
		return nil, fmt.Errorf("%w: 未知附件归属类型 %s", ErrValidation, ownerType)
	}
	return s.attachmentRepo.ListByOwner(ctx, ownerType, ownerID)
}
