package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockery --name AssignmentService --output ./mocks --outpkg mocks --case=underscore

// AssignmentService はアサインメントと進捗エンジンの中核です。
// 完了率は常に floor(100 * 完了行 / 全行) で再計算され、100%になった時点で
// completed へ遷移します。completed_at は一度だけ刻印されます。
type AssignmentService interface {
	CreateAssignment(ctx context.Context, tenantID uuid.UUID, assignedBy *uuid.UUID, req *model.CreateAssignmentRequest) (*model.Assignment, error)
	BulkAssign(ctx context.Context, tenantID uuid.UUID, assignedBy *uuid.UUID, req *model.BulkAssignRequest) ([]*model.Assignment, error)
	GetAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) (*model.Assignment, error)
	ListAssignments(ctx context.Context, tenantID uuid.UUID, filter *model.AssignmentFilter) ([]*model.Assignment, int64, error)
	DeleteAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) error

	CompleteModule(ctx context.Context, tenantID, assignmentID, moduleID, actingUserID uuid.UUID, req *model.CompleteModuleRequest) (*model.ModuleProgress, error)
	SubmitQuiz(ctx context.Context, tenantID, assignmentID, moduleID, actingUserID uuid.UUID, req *model.SubmitQuizRequest) (*model.QuizResult, error)

	GetEmployeeDashboard(ctx context.Context, tenantID, userID uuid.UUID) (*model.EmployeeDashboard, error)
}

type assignmentService struct {
	db             *gorm.DB
	assignmentRepo repository.AssignmentRepository
	progressRepo   repository.ProgressRepository
	flowRepo       repository.FlowRepository
	moduleRepo     repository.ModuleRepository
	userRepo       repository.UserRepository
	tenantRepo     repository.TenantRepository
	dispatcher     *NotificationDispatcher
}

func NewAssignmentService(
	db *gorm.DB,
	assignmentRepo repository.AssignmentRepository,
	progressRepo repository.ProgressRepository,
	flowRepo repository.FlowRepository,
	moduleRepo repository.ModuleRepository,
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	dispatcher *NotificationDispatcher,
) AssignmentService {
	return &assignmentService{
		db:             db,
		assignmentRepo: assignmentRepo,
		progressRepo:   progressRepo,
		flowRepo:       flowRepo,
		moduleRepo:     moduleRepo,
		userRepo:       userRepo,
		tenantRepo:     tenantRepo,
		dispatcher:     dispatcher,
	}
}

// CreateAssignment はフローをユーザーに割り当て、現時点のモジュール構成から
// 進捗行を一括生成します。後からフローに追加されたモジュールは既存の
// アサインメントには反映されません。
func (s *assignmentService) CreateAssignment(ctx context.Context, tenantID uuid.UUID, assignedBy *uuid.UUID, req *model.CreateAssignmentRequest) (*model.Assignment, error) {
	logger := middleware.GetLogger(ctx)

	var created *model.Assignment
	var flow *model.Flow
	var user *model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		flow, err = s.flowRepo.FindByID(ctx, tx, tenantID, req.FlowID)
		if err != nil {
			return err
		}
		user, err = s.userRepo.FindByID(ctx, tx, tenantID, req.UserID)
		if err != nil {
			return err
		}

		// 同一(flow, user)の未完了アサインメントは1件まで
		_, err = s.assignmentRepo.FindActiveByFlowAndUser(ctx, tx, req.FlowID, req.UserID)
		if err == nil {
			logger.Warn("Active assignment already exists", "flow_id", req.FlowID, "user_id", req.UserID)
			return model.NewAppError("ALREADY_ASSIGNED", "このユーザーには既にこのフローが割り当てられています。", "user_id", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		assignment := &model.Assignment{
			AssignmentID:         uuid.New(),
			TenantID:             tenantID,
			FlowID:               req.FlowID,
			UserID:               req.UserID,
			Status:               model.StatusNotStarted,
			AssignedAt:           time.Now(),
			DueDate:              req.DueDate,
			CompletionPercentage: 0,
			AssignedBy:           assignedBy,
		}
		if err := s.assignmentRepo.Create(ctx, tx, assignment); err != nil {
			return err
		}

		modules, err := s.moduleRepo.FindByFlow(ctx, tx, req.FlowID)
		if err != nil {
			return err
		}
		records := make([]*model.ModuleProgress, 0, len(modules))
		for _, m := range modules {
			records = append(records, &model.ModuleProgress{
				ProgressID:   uuid.New(),
				AssignmentID: assignment.AssignmentID,
				ModuleID:     m.ModuleID,
			})
		}
		if err := s.progressRepo.CreateBatch(ctx, tx, records); err != nil {
			return err
		}

		created = assignment
		return nil
	})
	if err != nil {
		return nil, mapServiceError(ctx, err, "CreateAssignment")
	}

	// 通知はコミット後に送信(失敗してもアサイン自体は成功扱い)
	if s.dispatcher != nil {
		tenant, terr := s.tenantRepo.FindByID(ctx, s.db, tenantID)
		if terr == nil {
			s.dispatcher.SendAssignmentCreated(ctx, tenant, user, flow, created)
		}
	}

	logger.Info("Assignment created", "assignment_id", created.AssignmentID, "flow_id", req.FlowID, "user_id", req.UserID)
	return s.assignmentRepo.FindByID(ctx, s.db, tenantID, created.AssignmentID)
}

// BulkAssign は複数ユーザーに同じフローを割り当てます。
// 既に割り当て済みのユーザーはスキップされ、バッチ全体は中断しません。
func (s *assignmentService) BulkAssign(ctx context.Context, tenantID uuid.UUID, assignedBy *uuid.UUID, req *model.BulkAssignRequest) ([]*model.Assignment, error) {
	logger := middleware.GetLogger(ctx)

	created := make([]*model.Assignment, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		assignment, err := s.CreateAssignment(ctx, tenantID, assignedBy, &model.CreateAssignmentRequest{
			FlowID:  req.FlowID,
			UserID:  userID,
			DueDate: req.DueDate,
		})
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Info("Bulk assign: user skipped (already assigned)", "user_id", userID)
				continue
			}
			return nil, err
		}
		created = append(created, assignment)
	}

	logger.Info("Bulk assign finished", "requested", len(req.UserIDs), "created", len(created))
	return created, nil
}

func (s *assignmentService) GetAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) (*model.Assignment, error) {
	return s.assignmentRepo.FindByID(ctx, s.db, tenantID, assignmentID)
}

func (s *assignmentService) ListAssignments(ctx context.Context, tenantID uuid.UUID, filter *model.AssignmentFilter) ([]*model.Assignment, int64, error) {
	assignments, total, err := s.assignmentRepo.List(ctx, s.db, tenantID, filter)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list assignments", "error", err)
		return nil, 0, model.ErrInternalServer
	}
	return assignments, total, nil
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, tenantID, assignmentID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.assignmentRepo.FindByID(ctx, tx, tenantID, assignmentID); err != nil {
			return err
		}
		if err := s.progressRepo.DeleteByAssignment(ctx, tx, assignmentID); err != nil {
			return err
		}
		return s.assignmentRepo.Delete(ctx, tx, tenantID, assignmentID)
	})
}

// CompleteModule は非クイズモジュールを完了状態にします。
// 再完了は冪等に成功します(completed_atは上書きされますが、既に完了済みの
// アサインメントの completed_at は保持されます)。
func (s *assignmentService) CompleteModule(ctx context.Context, tenantID, assignmentID, moduleID, actingUserID uuid.UUID, req *model.CompleteModuleRequest) (*model.ModuleProgress, error) {
	logger := middleware.GetLogger(ctx)

	var result *model.ModuleProgress
	var completedNow bool
	var assignment *model.Assignment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		assignment, err = s.assignmentRepo.FindByID(ctx, tx, tenantID, assignmentID)
		if err != nil {
			return err
		}
		// 他人の進捗は更新できない(ロールに関わらず)
		if assignment.UserID != actingUserID {
			logger.Warn("Progress mutation forbidden", "assignment_id", assignmentID, "acting_user_id", actingUserID)
			return model.NewAppError("NOT_OWNER", "自分のアサインメント以外の進捗は更新できません。", "", model.ErrForbidden)
		}

		progress, err := s.progressRepo.FindByAssignmentAndModule(ctx, tx, assignmentID, moduleID)
		if err != nil {
			return err
		}

		module, err := s.moduleRepo.FindByID(ctx, tx, moduleID)
		if err != nil {
			return err
		}
		// クイズモジュールはクイズ合格によってのみ完了になる
		if module.IsQuiz() {
			return model.NewAppError("QUIZ_MODULE", "クイズモジュールはクイズの提出によって完了してください。", "module_id", model.ErrInvalidInput)
		}
		if module.RequiresCompletionConfirmation && !req.Confirmed {
			return model.NewAppError("CONFIRMATION_REQUIRED", "このモジュールの完了には確認が必要です。", "confirmed", model.ErrInvalidInput)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"is_completed": true,
			"completed_at": &now,
			// 経過時間は累積のみ(リセットしない)
			"time_spent_minutes": progress.TimeSpentMinutes + req.TimeSpentMinutes,
		}
		if req.Notes != "" {
			updates["notes"] = req.Notes
		}
		if err := s.progressRepo.Update(ctx, tx, progress.ProgressID, updates); err != nil {
			return err
		}

		if err := s.markStarted(ctx, tx, assignment, now); err != nil {
			return err
		}
		wasCompleted := assignment.Status == model.StatusCompleted
		if err := s.recomputeProgress(ctx, tx, assignment); err != nil {
			return err
		}
		completedNow = !wasCompleted && assignment.Status == model.StatusCompleted

		result, err = s.progressRepo.FindByAssignmentAndModule(ctx, tx, assignmentID, moduleID)
		return err
	})
	if err != nil {
		return nil, mapServiceError(ctx, err, "CompleteModule")
	}

	if completedNow {
		s.notifyCompleted(ctx, tenantID, assignment)
	}

	logger.Info("Module completed", "assignment_id", assignmentID, "module_id", moduleID)
	return result, nil
}

// SubmitQuiz はクイズの回答を採点し、合格時のみモジュールを完了にします。
// 不合格の試行もスコア・回答・経過時間は記録されます(再挑戦可能)。
func (s *assignmentService) SubmitQuiz(ctx context.Context, tenantID, assignmentID, moduleID, actingUserID uuid.UUID, req *model.SubmitQuizRequest) (*model.QuizResult, error) {
	logger := middleware.GetLogger(ctx)

	var result *model.QuizResult
	var completedNow bool
	var assignment *model.Assignment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		assignment, err = s.assignmentRepo.FindByID(ctx, tx, tenantID, assignmentID)
		if err != nil {
			return err
		}
		if assignment.UserID != actingUserID {
			logger.Warn("Progress mutation forbidden", "assignment_id", assignmentID, "acting_user_id", actingUserID)
			return model.NewAppError("NOT_OWNER", "自分のアサインメント以外の進捗は更新できません。", "", model.ErrForbidden)
		}

		progress, err := s.progressRepo.FindByAssignmentAndModule(ctx, tx, assignmentID, moduleID)
		if err != nil {
			return err
		}

		module, err := s.moduleRepo.FindByID(ctx, tx, moduleID)
		if err != nil {
			return err
		}
		if module.QuizData == nil {
			return model.NewAppError("NOT_A_QUIZ", "このモジュールはクイズではありません。", "module_id", model.ErrInvalidInput)
		}

		result = gradeQuiz(module.QuizData, req.Answers)

		now := time.Now()
		answers := make(model.JSONMap, len(req.Answers))
		for k, v := range req.Answers {
			answers[k] = v
		}
		updates := map[string]interface{}{
			"quiz_score":         result.Score,
			"quiz_passed":        result.Passed,
			"quiz_answers":       answers,
			"time_spent_minutes": progress.TimeSpentMinutes + req.TimeSpentMinutes,
		}
		if result.Passed {
			updates["is_completed"] = true
			updates["completed_at"] = &now
		}
		if err := s.progressRepo.Update(ctx, tx, progress.ProgressID, updates); err != nil {
			return err
		}

		// 不合格でも提出があれば着手扱いになる
		if err := s.markStarted(ctx, tx, assignment, now); err != nil {
			return err
		}

		// 合格時のみアサインメント全体を再計算する
		if result.Passed {
			wasCompleted := assignment.Status == model.StatusCompleted
			if err := s.recomputeProgress(ctx, tx, assignment); err != nil {
				return err
			}
			completedNow = !wasCompleted && assignment.Status == model.StatusCompleted
		}
		return nil
	})
	if err != nil {
		return nil, mapServiceError(ctx, err, "SubmitQuiz")
	}

	if completedNow {
		s.notifyCompleted(ctx, tenantID, assignment)
	}

	logger.Info("Quiz submitted", "assignment_id", assignmentID, "module_id", moduleID, "score", result.Score, "passed", result.Passed)
	return result, nil
}

// GetEmployeeDashboard は従業員の全アサインメントとステータス別の集計を返します
func (s *assignmentService) GetEmployeeDashboard(ctx context.Context, tenantID, userID uuid.UUID) (*model.EmployeeDashboard, error) {
	assignments, err := s.assignmentRepo.FindByUser(ctx, s.db, tenantID, userID)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to load assignments for dashboard", "error", err)
		return nil, model.ErrInternalServer
	}

	now := time.Now()
	dashboard := &model.EmployeeDashboard{
		TotalAssignments: len(assignments),
		Assignments:      assignments,
	}
	for _, a := range assignments {
		switch a.Status {
		case model.StatusCompleted:
			dashboard.Completed++
		case model.StatusInProgress:
			dashboard.InProgress++
		case model.StatusNotStarted:
			dashboard.NotStarted++
		case model.StatusExpired:
			// expiredは集計対象外(overdueは導出述語で数える)
		}
		if a.IsOverdue(now) {
			dashboard.Overdue++
		}
	}
	return dashboard, nil
}

// markStarted は初回の進捗操作で not_started → in_progress に遷移させます
func (s *assignmentService) markStarted(ctx context.Context, tx *gorm.DB, assignment *model.Assignment, now time.Time) error {
	if assignment.Status != model.StatusNotStarted {
		return nil
	}
	updates := map[string]interface{}{
		"status":     model.StatusInProgress,
		"started_at": &now,
	}
	if err := s.assignmentRepo.Update(ctx, tx, assignment.AssignmentID, updates); err != nil {
		return err
	}
	assignment.Status = model.StatusInProgress
	assignment.StartedAt = &now
	return nil
}

// recomputeProgress は完了率を floor(100 * 完了行 / 全行) で再計算します。
// 進捗行が0件の場合は0%に固定され、completedには到達しません。
// 100%到達時の completed_at は未設定の場合のみ刻印されます(再計算で上書きしない)。
func (s *assignmentService) recomputeProgress(ctx context.Context, tx *gorm.DB, assignment *model.Assignment) error {
	total, err := s.progressRepo.CountByAssignment(ctx, tx, assignment.AssignmentID)
	if err != nil {
		return err
	}
	if total == 0 {
		if assignment.CompletionPercentage != 0 {
			if err := s.assignmentRepo.Update(ctx, tx, assignment.AssignmentID, map[string]interface{}{"completion_percentage": 0}); err != nil {
				return err
			}
			assignment.CompletionPercentage = 0
		}
		return nil
	}

	completed, err := s.progressRepo.CountCompletedByAssignment(ctx, tx, assignment.AssignmentID)
	if err != nil {
		return err
	}
	percentage := int(100 * completed / total)

	updates := map[string]interface{}{
		"completion_percentage": percentage,
	}
	if percentage == 100 {
		updates["status"] = model.StatusCompleted
		if assignment.CompletedAt == nil {
			now := time.Now()
			updates["completed_at"] = &now
			assignment.CompletedAt = &now
		}
		assignment.Status = model.StatusCompleted
	}
	if err := s.assignmentRepo.Update(ctx, tx, assignment.AssignmentID, updates); err != nil {
		return err
	}
	assignment.CompletionPercentage = percentage
	return nil
}

// notifyCompleted は完了通知をアサインした管理者へ送信します(コミット後)
func (s *assignmentService) notifyCompleted(ctx context.Context, tenantID uuid.UUID, assignment *model.Assignment) {
	if s.dispatcher == nil || assignment.AssignedBy == nil {
		return
	}
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return
	}
	employee, err := s.userRepo.FindByID(ctx, s.db, tenantID, assignment.UserID)
	if err != nil {
		return
	}
	admin, err := s.userRepo.FindByID(ctx, s.db, tenantID, *assignment.AssignedBy)
	if err != nil {
		return
	}
	flow, err := s.flowRepo.FindByID(ctx, s.db, tenantID, assignment.FlowID)
	if err != nil {
		return
	}
	s.dispatcher.SendAssignmentCompleted(ctx, tenant, employee, admin, flow, assignment)
}

// gradeQuiz は設問順に回答を突き合わせてスコアを算出します。
// score = floor(100 * 正答数 / 設問数)、設問0件なら0。
// passed は score >= 合格基準(未設定なら70)。
func gradeQuiz(data *model.QuizData, answers map[string]int) *model.QuizResult {
	total := len(data.Questions)
	passingScore := data.EffectivePassingScore()

	if total == 0 {
		return &model.QuizResult{
			Score:          0,
			Passed:         false,
			PassingScore:   passingScore,
			CorrectAnswers: 0,
			TotalQuestions: 0,
		}
	}

	correct := 0
	for i, q := range data.Questions {
		submitted, ok := answers[strconv.Itoa(i)]
		if ok && submitted == q.CorrectAnswer {
			correct++
		}
	}

	score := 100 * correct / total
	return &model.QuizResult{
		Score:          score,
		Passed:         score >= passingScore,
		PassingScore:   passingScore,
		CorrectAnswers: correct,
		TotalQuestions: total,
	}
}

// mapServiceError はトランザクション内で発生したエラーを呼び出し元へ返す形に整えます。
// 既知のsentinel/AppErrorはそのまま、それ以外は内部エラーに丸めてログに残します。
func mapServiceError(ctx context.Context, err error, op string) error {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrConflict) ||
		errors.Is(err, model.ErrForbidden) ||
		errors.Is(err, model.ErrInvalidInput) {
		return err
	}
	middleware.GetLogger(ctx).Error("Transaction failed", "op", op, "error", err)
	return model.ErrInternalServer
}
