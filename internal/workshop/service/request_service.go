package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/sse"
	"gorm.io/gorm"
)

// RequestService 维修申请服务
//
// 申请是待审批的维修提案，审批通过时生成maintenance事件
// （并由事件规则联动模具状态），驳回则只改申请状态。
// pending之后的申请不可再流转。
type RequestService struct {
	requestRepo *repository.MaintenanceRequestRepository
	moldRepo    *repository.MoldRepository
	machineRepo *repository.MachineRepository
	eventSvc    *EventService
	db          *gorm.DB
}

// NewRequestService 创建维修申请服务
func NewRequestService(
	requestRepo *repository.MaintenanceRequestRepository,
	moldRepo *repository.MoldRepository,
	machineRepo *repository.MachineRepository,
	eventSvc *EventService,
	db *gorm.DB,
) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		moldRepo:    moldRepo,
		machineRepo: machineRepo,
		eventSvc:    eventSvc,
		db:          db,
	}
}

// CreateRequestReq 提交维修申请请求
type CreateRequestReq struct {
	SourceID    string `json:"source_id" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// CreateRequest 提交维修申请
func (s *RequestService) CreateRequest(ctx context.Context, req CreateRequestReq, userID string) (*entity.MaintenanceRequest, error) {
	sourceType, sourceCode, err := s.resolveSource(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}

	request := &entity.MaintenanceRequest{
		ID:          generateID(),
		SourceID:    req.SourceID,
		SourceCode:  sourceCode,
		SourceType:  sourceType,
		Description: req.Description,
		Status:      entity.RequestStatusPending,
		RequestedBy: userID,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("创建维修申请失败: %w", err)
	}

	sse.PublishRequestUpdate(request.ID, request.Status)
	return request, nil
}

// UpdateStatus 审批维修申请（approved/rejected），通过时生成maintenance事件
func (s *RequestService) UpdateStatus(ctx context.Context, id, status, userID string) (*entity.MaintenanceRequest, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(request.Status, status) {
		return nil, fmt.Errorf("%w: 维修申请不能从 %s 流转到 %s", ErrInvalidState, request.Status, status)
	}

	now := time.Now()
	request.Status = status
	request.DecidedBy = &userID
	request.DecidedAt = &now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(request).Error; err != nil {
			return err
		}
		if status != entity.RequestStatusApproved {
			return nil
		}

		// 审批通过：生成维修事件，模具状态由事件规则联动
		event := &entity.Event{
			ID:          generateID(),
			SourceID:    request.SourceID,
			SourceType:  request.SourceType,
			Type:        entity.EventTypeMaintenance,
			Description: request.Description,
			Status:      entity.EventStatusOpen,
			CreatedBy:   userID,
		}
		return s.eventSvc.createWithDerivation(tx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("审批维修申请失败: %w", err)
	}

	sse.PublishRequestUpdate(request.ID, request.Status)
	sse.NotifyRequestDecision(request.RequestedBy, request.ID, request.Status)
	return request, nil
}

// GetRequest 获取维修申请详情
func (s *RequestService) GetRequest(ctx context.Context, id string) (*entity.MaintenanceRequest, error) {
	return s.requestRepo.FindByID(ctx, id)
}

// ListRequests 获取维修申请列表
func (s *RequestService) ListRequests(ctx context.Context, filters map[string]string) ([]entity.MaintenanceRequest, error) {
	return s.requestRepo.List(ctx, filters)
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range entity.ValidRequestTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *RequestService) resolveSource(ctx context.Context, sourceID string) (sourceType, sourceCode string, err error) {
	if mold, err := s.moldRepo.FindByID(ctx, sourceID); err == nil {
		return entity.SourceTypeMold, mold.Code, nil
	} else if err != repository.ErrNotFound {
		return "", "", err
	}
	if machine, err := s.machineRepo.FindByID(ctx, sourceID); err == nil {
		return entity.SourceTypeMachine, machine.Code, nil
	} else if err != repository.ErrNotFound {
		return "", "", err
	}
	return "", "", fmt.Errorf("申请来源不存在: %w", repository.ErrNotFound)
}
