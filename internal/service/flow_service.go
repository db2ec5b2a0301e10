package service

import (
	"context"
	"errors"
	"fmt"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockery --name FlowService --output ./mocks --outpkg mocks --case=underscore

// FlowService インターフェース
type FlowService interface {
	CreateFlow(ctx context.Context, tenantID uuid.UUID, req *model.CreateFlowRequest) (*model.Flow, error)
	GetFlow(ctx context.Context, tenantID, flowID uuid.UUID) (*model.Flow, error)
	ListFlows(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]*model.Flow, error)
	UpdateFlow(ctx context.Context, tenantID, flowID uuid.UUID, req *model.UpdateFlowRequest) (*model.Flow, error)
	DeleteFlow(ctx context.Context, tenantID, flowID uuid.UUID) error
	CloneFlow(ctx context.Context, tenantID, flowID uuid.UUID, req *model.CloneFlowRequest) (*model.Flow, error)

	CreateModule(ctx context.Context, tenantID, flowID uuid.UUID, req *model.CreateModuleRequest) (*model.Module, error)
	UpdateModule(ctx context.Context, tenantID, flowID, moduleID uuid.UUID, req *model.UpdateModuleRequest) (*model.Module, error)
	DeleteModule(ctx context.Context, tenantID, flowID, moduleID uuid.UUID) error
	ReorderModules(ctx context.Context, tenantID, flowID uuid.UUID, req *model.ReorderModulesRequest) ([]*model.Module, error)
}

type flowService struct {
	db           *gorm.DB
	flowRepo     repository.FlowRepository
	moduleRepo   repository.ModuleRepository
	progressRepo repository.ProgressRepository
}

func NewFlowService(
	db *gorm.DB,
	flowRepo repository.FlowRepository,
	moduleRepo repository.ModuleRepository,
	progressRepo repository.ProgressRepository,
) FlowService {
	return &flowService{
		db:           db,
		flowRepo:     flowRepo,
		moduleRepo:   moduleRepo,
		progressRepo: progressRepo,
	}
}

func (s *flowService) CreateFlow(ctx context.Context, tenantID uuid.UUID, req *model.CreateFlowRequest) (*model.Flow, error) {
	logger := middleware.GetLogger(ctx)

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	settings := req.Settings
	if settings == nil {
		settings = model.JSONMap{}
	}

	flow := &model.Flow{
		FlowID:       uuid.New(),
		TenantID:     tenantID,
		Title:        req.Title,
		Description:  req.Description,
		IsActive:     isActive,
		IsTemplate:   req.IsTemplate,
		DisplayOrder: req.DisplayOrder,
		Settings:     settings,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.flowRepo.Create(ctx, tx, flow)
	})
	if err != nil {
		logger.Error("Failed to create flow", "error", err, "tenant_id", tenantID.String())
		return nil, model.ErrInternalServer
	}

	logger.Info("Flow created", "flow_id", flow.FlowID, "tenant_id", tenantID)
	return flow, nil
}

func (s *flowService) GetFlow(ctx context.Context, tenantID, flowID uuid.UUID) (*model.Flow, error) {
	return s.flowRepo.FindByIDWithModules(ctx, s.db, tenantID, flowID)
}

func (s *flowService) ListFlows(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]*model.Flow, error) {
	flows, err := s.flowRepo.FindByTenant(ctx, s.db, tenantID, includeInactive)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list flows", "error", err)
		return nil, model.ErrInternalServer
	}
	return flows, nil
}

func (s *flowService) UpdateFlow(ctx context.Context, tenantID, flowID uuid.UUID, req *model.UpdateFlowRequest) (*model.Flow, error) {
	logger := middleware.GetLogger(ctx)

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsTemplate != nil {
		updates["is_template"] = *req.IsTemplate
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}
	if req.Settings != nil {
		updates["settings"] = req.Settings
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.flowRepo.Update(ctx, tx, tenantID, flowID, updates)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		logger.Error("Failed to update flow", "error", err, "flow_id", flowID.String())
		return nil, model.ErrInternalServer
	}

	return s.flowRepo.FindByIDWithModules(ctx, s.db, tenantID, flowID)
}

// DeleteFlow はフローを無効化してから論理削除します。
// 既存のアサインメントには影響しない(進捗行が当時の構成を保持する)。
func (s *flowService) DeleteFlow(ctx context.Context, tenantID, flowID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.flowRepo.Update(ctx, tx, tenantID, flowID, map[string]interface{}{"is_active": false}); err != nil {
			return err
		}
		return s.flowRepo.Delete(ctx, tx, tenantID, flowID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Failed to delete flow", "error", err, "flow_id", flowID.String())
		return model.ErrInternalServer
	}

	logger.Info("Flow deleted", "flow_id", flowID, "tenant_id", tenantID)
	return nil
}

// CloneFlow はフローと全モジュールを複製します。複製後のフローは必ず非アクティブで
// 作成され、公開前に内容を調整できるようにします。settingsとクイズ定義は
// ディープコピーされ、元のフローとは共有されません。
func (s *flowService) CloneFlow(ctx context.Context, tenantID, flowID uuid.UUID, req *model.CloneFlowRequest) (*model.Flow, error) {
	logger := middleware.GetLogger(ctx)

	source, err := s.flowRepo.FindByIDWithModules(ctx, s.db, tenantID, flowID)
	if err != nil {
		return nil, err
	}

	newFlow := &model.Flow{
		FlowID:       uuid.New(),
		TenantID:     tenantID,
		Title:        req.NewTitle,
		Description:  source.Description,
		IsActive:     false,
		IsTemplate:   source.IsTemplate,
		DisplayOrder: source.DisplayOrder,
		Settings:     source.Settings.Clone(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.flowRepo.Create(ctx, tx, newFlow); err != nil {
			return err
		}
		for i := range source.Modules {
			src := &source.Modules[i]
			copied := &model.Module{
				ModuleID:                       uuid.New(),
				FlowID:                         newFlow.FlowID,
				Title:                          src.Title,
				Description:                    src.Description,
				ContentType:                    src.ContentType,
				ContentBlockID:                 src.ContentBlockID,
				ContentText:                    src.ContentText,
				ContentURL:                     src.ContentURL,
				Order:                          src.Order,
				IsRequired:                     src.IsRequired,
				RequiresCompletionConfirmation: src.RequiresCompletionConfirmation,
				QuizData:                       src.QuizData.Clone(),
				EstimatedMinutes:               src.EstimatedMinutes,
			}
			if err := s.moduleRepo.Create(ctx, tx, copied); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to clone flow", "error", err, "flow_id", flowID.String())
		return nil, model.ErrInternalServer
	}

	logger.Info("Flow cloned", "source_flow_id", flowID, "new_flow_id", newFlow.FlowID)
	return s.flowRepo.FindByIDWithModules(ctx, s.db, tenantID, newFlow.FlowID)
}

func (s *flowService) CreateModule(ctx context.Context, tenantID, flowID uuid.UUID, req *model.CreateModuleRequest) (*model.Module, error) {
	logger := middleware.GetLogger(ctx)

	if req.ContentType == model.ContentTypeQuiz {
		if err := validateQuizData(req.QuizData); err != nil {
			return nil, err
		}
	}

	isRequired := true
	if req.IsRequired != nil {
		isRequired = *req.IsRequired
	}

	var created *model.Module
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// フローの存在とテナント所属を確認
		if _, err := s.flowRepo.FindByID(ctx, tx, tenantID, flowID); err != nil {
			return err
		}

		order := req.Order
		if order == 0 {
			// 未指定なら末尾に追加
			existing, err := s.moduleRepo.FindByFlow(ctx, tx, flowID)
			if err != nil {
				return err
			}
			for _, m := range existing {
				if m.Order >= order {
					order = m.Order + 1
				}
			}
		}

		module := &model.Module{
			ModuleID:                       uuid.New(),
			FlowID:                         flowID,
			Title:                          req.Title,
			Description:                    req.Description,
			ContentType:                    req.ContentType,
			ContentBlockID:                 req.ContentBlockID,
			ContentText:                    req.ContentText,
			ContentURL:                     req.ContentURL,
			Order:                          order,
			IsRequired:                     isRequired,
			RequiresCompletionConfirmation: req.RequiresCompletionConfirmation,
			QuizData:                       req.QuizData,
			EstimatedMinutes:               req.EstimatedMinutes,
		}
		if err := s.moduleRepo.Create(ctx, tx, module); err != nil {
			return err
		}
		created = module
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Failed to create module", "error", err, "flow_id", flowID.String())
		return nil, model.ErrInternalServer
	}

	logger.Info("Module created", "module_id", created.ModuleID, "flow_id", flowID)
	return created, nil
}

func (s *flowService) UpdateModule(ctx context.Context, tenantID, flowID, moduleID uuid.UUID, req *model.UpdateModuleRequest) (*model.Module, error) {
	logger := middleware.GetLogger(ctx)

	var updated *model.Module
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.findModuleInFlow(ctx, tx, tenantID, flowID, moduleID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.ContentBlockID != nil {
			updates["content_block_id"] = *req.ContentBlockID
		}
		if req.ContentText != nil {
			updates["content_text"] = *req.ContentText
		}
		if req.ContentURL != nil {
			updates["content_url"] = *req.ContentURL
		}
		if req.Order != nil {
			updates["display_order"] = *req.Order
		}
		if req.IsRequired != nil {
			updates["is_required"] = *req.IsRequired
		}
		if req.RequiresCompletionConfirmation != nil {
			updates["requires_completion_confirmation"] = *req.RequiresCompletionConfirmation
		}
		if req.QuizData != nil {
			if module.IsQuiz() {
				if err := validateQuizData(req.QuizData); err != nil {
					return err
				}
			}
			updates["quiz_data"] = req.QuizData
		}
		if req.EstimatedMinutes != nil {
			updates["estimated_minutes"] = *req.EstimatedMinutes
		}

		if err := s.moduleRepo.Update(ctx, tx, moduleID, updates); err != nil {
			return err
		}
		updated, err = s.moduleRepo.FindByID(ctx, tx, moduleID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Failed to update module", "error", err, "module_id", moduleID.String())
		return nil, model.ErrInternalServer
	}
	return updated, nil
}

// DeleteModule はモジュールを物理削除し、紐づく進捗行も同一トランザクションで削除します。
func (s *flowService) DeleteModule(ctx context.Context, tenantID, flowID, moduleID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findModuleInFlow(ctx, tx, tenantID, flowID, moduleID); err != nil {
			return err
		}
		if err := s.progressRepo.DeleteByModule(ctx, tx, moduleID); err != nil {
			return err
		}
		return s.moduleRepo.Delete(ctx, tx, moduleID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		logger.Error("Failed to delete module", "error", err, "module_id", moduleID.String())
		return model.ErrInternalServer
	}

	logger.Info("Module deleted", "module_id", moduleID, "flow_id", flowID)
	return nil
}

// ReorderModules はフロー内モジュールの表示順を一括で更新します。
// 指定されたモジュールIDがフロー外のものを含む場合は全体を拒否します。
func (s *flowService) ReorderModules(ctx context.Context, tenantID, flowID uuid.UUID, req *model.ReorderModulesRequest) ([]*model.Module, error) {
	logger := middleware.GetLogger(ctx)

	var result []*model.Module
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.flowRepo.FindByID(ctx, tx, tenantID, flowID); err != nil {
			return err
		}
		modules, err := s.moduleRepo.FindByFlow(ctx, tx, flowID)
		if err != nil {
			return err
		}
		inFlow := make(map[uuid.UUID]bool, len(modules))
		for _, m := range modules {
			inFlow[m.ModuleID] = true
		}
		for moduleID := range req.Orders {
			if !inFlow[moduleID] {
				logger.Warn("Reorder rejected: module not in flow", "module_id", moduleID, "flow_id", flowID)
				return model.NewAppError("MODULE_NOT_IN_FLOW", "指定されたモジュールはこのフローに属していません。", "orders", model.ErrInvalidInput)
			}
		}
		for moduleID, order := range req.Orders {
			if err := s.moduleRepo.Update(ctx, tx, moduleID, map[string]interface{}{"display_order": order}); err != nil {
				return err
			}
		}
		result, err = s.moduleRepo.FindByFlow(ctx, tx, flowID)
		return err
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		logger.Error("Failed to reorder modules", "error", err, "flow_id", flowID.String())
		return nil, model.ErrInternalServer
	}
	return result, nil
}

// findModuleInFlow はモジュールがテナントのフローに属することを確認して返します
func (s *flowService) findModuleInFlow(ctx context.Context, tx *gorm.DB, tenantID, flowID, moduleID uuid.UUID) (*model.Module, error) {
	if _, err := s.flowRepo.FindByID(ctx, tx, tenantID, flowID); err != nil {
		return nil, err
	}
	module, err := s.moduleRepo.FindByID(ctx, tx, moduleID)
	if err != nil {
		return nil, err
	}
	if module.FlowID != flowID {
		return nil, model.ErrNotFound
	}
	return module, nil
}

// validateQuizData はクイズモジュールの定義を検証します。
// 設問は1問以上、各設問は選択肢2つ以上かつ正答インデックスが範囲内であること。
func validateQuizData(data *model.QuizData) error {
	if data == nil || len(data.Questions) == 0 {
		return model.NewAppError("INVALID_QUIZ", "クイズには最低1問の設問が必要です。", "quiz_data", model.ErrInvalidInput)
	}
	for i, q := range data.Questions {
		if len(q.Options) < 2 {
			return model.NewAppError("INVALID_QUIZ", fmt.Sprintf("設問%dには選択肢が2つ以上必要です。", i+1), "quiz_data", model.ErrInvalidInput)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return model.NewAppError("INVALID_QUIZ", fmt.Sprintf("設問%dの正答インデックスが範囲外です。", i+1), "quiz_data", model.ErrInvalidInput)
		}
	}
	if data.PassingScore != nil && (*data.PassingScore < 0 || *data.PassingScore > 100) {
		return model.NewAppError("INVALID_QUIZ", "合格基準は0〜100で指定してください。", "quiz_data", model.ErrInvalidInput)
	}
	return nil
}
