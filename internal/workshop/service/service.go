package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bitfantasy/moldtrack/internal/config"
	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state transition")
)

// Services 服务集合
type Services struct {
	Auth       *AuthService
	User       *UserService
	Mold       *MoldService
	Component  *ComponentService
	Machine    *MachineService
	Event      *EventService
	Production *ProductionService
	Stamping   *StampingService
	Request    *RequestService
	Attachment *AttachmentService
	Dashboard  *DashboardService
	Export     *ExportService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			// MinIO不可用时附件上传降级为报错，不阻断启动
			minioClient = nil
		}
	}

	eventSvc := NewEventService(repos.Event, repos.Mold, repos.Machine, repos.Schedule, db)

	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg),
		User:       NewUserService(repos.User),
		Mold:       NewMoldService(repos.Mold, repos.Machine),
		Component:  NewComponentService(repos.Component, repos.Mold),
		Machine:    NewMachineService(repos.Machine, repos.Schedule),
		Event:      eventSvc,
		Production: NewProductionService(repos.ProductionLog, repos.Component, db),
		Stamping:   NewStampingService(repos.Stamping, repos.Component, db),
		Request:    NewRequestService(repos.Request, repos.Mold, repos.Machine, eventSvc, db),
		Attachment: NewAttachmentService(repos.Attachment, minioClient, cfg.MinIO.Bucket),
		Dashboard:  NewDashboardService(db),
		Export:     NewExportService(repos.ProductionLog, repos.Component, repos.Mold),
	}
}

// generateID 生成32位记录ID
func generateID() string {
	return uuid.New().String()[:32]
}

// validateCustomFields 校验自定义字段：键和值都不能为空
func validateCustomFields(fields entity.StringMap) error {
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: 自定义字段键不能为空", ErrValidation)
		}
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: 自定义字段 %s 的值不能为空", ErrValidation, k)
		}
	}
	return nil
}
