package service

import (
	"context"
	"math"
	"time"

	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/model"
	"go_5_onboard_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalyticsService は読み取り専用のロールアップを提供します。
// 集計は保存せず、要求のたびにアサインメント/進捗行から計算します。
type AnalyticsService interface {
	GetDashboardOverview(ctx context.Context, tenantID uuid.UUID) (*model.DashboardOverview, error)
	GetFlowAnalytics(ctx context.Context, tenantID, flowID uuid.UUID) (*model.FlowAnalytics, error)
	GetAllFlowsAnalytics(ctx context.Context, tenantID uuid.UUID) ([]*model.FlowAnalytics, error)
	// GetCompletionTrends は[start, end]両端含みの密な日次時系列を返します。
	GetCompletionTrends(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*model.CompletionTrends, error)
	GetUserProgressReport(ctx context.Context, tenantID, userID uuid.UUID) (*model.UserProgressReport, error)
}

type analyticsService struct {
	db             *gorm.DB
	assignmentRepo repository.AssignmentRepository
	progressRepo   repository.ProgressRepository
	flowRepo       repository.FlowRepository
	moduleRepo     repository.ModuleRepository
	userRepo       repository.UserRepository
}

func NewAnalyticsService(
	db *gorm.DB,
	assignmentRepo repository.AssignmentRepository,
	progressRepo repository.ProgressRepository,
	flowRepo repository.FlowRepository,
	moduleRepo repository.ModuleRepository,
	userRepo repository.UserRepository,
) AnalyticsService {
	return &analyticsService{
		db:             db,
		assignmentRepo: assignmentRepo,
		progressRepo:   progressRepo,
		flowRepo:       flowRepo,
		moduleRepo:     moduleRepo,
		userRepo:       userRepo,
	}
}

func (s *analyticsService) GetDashboardOverview(ctx context.Context, tenantID uuid.UUID) (*model.DashboardOverview, error) {
	logger := middleware.GetLogger(ctx)
	now := time.Now()

	totalUsers, err := s.userRepo.CountActiveByTenant(ctx, s.db, tenantID)
	if err != nil {
		logger.Error("Failed to count users for overview", "error", err)
		return nil, model.ErrInternalServer
	}
	totalFlows, err := s.flowRepo.CountActiveByTenant(ctx, s.db, tenantID)
	if err != nil {
		logger.Error("Failed to count flows for overview", "error", err)
		return nil, model.ErrInternalServer
	}
	totalAssignments, err := s.assignmentRepo.CountByTenant(ctx, s.db, tenantID)
	if err != nil {
		logger.Error("Failed to count assignments for overview", "error", err)
		return nil, model.ErrInternalServer
	}

	overview := &model.DashboardOverview{
		TotalUsers:       totalUsers,
		TotalFlows:       totalFlows,
		TotalAssignments: totalAssignments,
	}

	statuses := []struct {
		status model.AssignmentStatus
		dest   *int64
	}{
		{model.StatusNotStarted, &overview.AssignmentsNotStarted},
		{model.StatusInProgress, &overview.AssignmentsInProgress},
		{model.StatusCompleted, &overview.AssignmentsCompleted},
	}
	for _, st := range statuses {
		count, err := s.assignmentRepo.CountByTenantAndStatus(ctx, s.db, tenantID, st.status)
		if err != nil {
			logger.Error("Failed to count assignments by status", "error", err, "status", st.status)
			return nil, model.ErrInternalServer
		}
		*st.dest = count
	}

	overdue, err := s.assignmentRepo.CountOverdueByTenant(ctx, s.db, tenantID, now)
	if err != nil {
		logger.Error("Failed to count overdue assignments", "error", err)
		return nil, model.ErrInternalServer
	}
	overview.AssignmentsOverdue = overdue

	if totalAssignments > 0 {
		rate := float64(overview.AssignmentsCompleted) / float64(totalAssignments) * 100
		overview.OverallCompletionRate = math.Round(rate*100) / 100
	}

	// 完了までの平均日数 ((completed_at - assigned_at).days の平均)
	avgDays, err := s.avgCompletionDays(ctx, tenantID)
	if err != nil {
		logger.Error("Failed to compute avg completion time", "error", err)
		return nil, model.ErrInternalServer
	}
	overview.AvgCompletionTimeDays = avgDays

	weekAgo := now.AddDate(0, 0, -7)
	assignedThisWeek, err := s.assignmentRepo.CountAssignedBetween(ctx, s.db, tenantID, weekAgo, now)
	if err != nil {
		logger.Error("Failed to count weekly assignments", "error", err)
		return nil, model.ErrInternalServer
	}
	completedThisWeek, err := s.assignmentRepo.CountCompletedBetween(ctx, s.db, tenantID, weekAgo, now)
	if err != nil {
		logger.Error("Failed to count weekly completions", "error", err)
		return nil, model.ErrInternalServer
	}
	overview.AssignmentsThisWeek = assignedThisWeek
	overview.CompletionsThisWeek = completedThisWeek

	return overview, nil
}

func (s *analyticsService) GetFlowAnalytics(ctx context.Context, tenantID, flowID uuid.UUID) (*model.FlowAnalytics, error) {
	logger := middleware.GetLogger(ctx)

	flow, err := s.flowRepo.FindByID(ctx, s.db, tenantID, flowID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.FindByFlow(ctx, s.db, flowID)
	if err != nil {
		logger.Error("Failed to load assignments for flow analytics", "error", err)
		return nil, model.ErrInternalServer
	}

	analytics := &model.FlowAnalytics{
		FlowID:           flow.FlowID,
		FlowTitle:        flow.Title,
		TotalAssignments: len(assignments),
	}

	var totalDays float64
	var completedWithTimes int
	var totalProgress float64
	for _, a := range assignments {
		switch a.Status {
		case model.StatusCompleted:
			analytics.CompletedAssignments++
		case model.StatusInProgress:
			analytics.InProgressAssignments++
		case model.StatusNotStarted:
			analytics.NotStartedAssignments++
		case model.StatusExpired:
		}
		totalProgress += float64(a.CompletionPercentage)
		if a.CompletedAt != nil {
			totalDays += completionDays(a.AssignedAt, *a.CompletedAt)
			completedWithTimes++
		}
	}
	if len(assignments) > 0 {
		rate := float64(analytics.CompletedAssignments) / float64(len(assignments)) * 100
		analytics.CompletionRate = math.Round(rate*100) / 100
		analytics.AvgProgressPercentage = math.Round(totalProgress/float64(len(assignments))*100) / 100
	}
	if completedWithTimes > 0 {
		analytics.AvgCompletionTimeDays = math.Round(totalDays/float64(completedWithTimes)*100) / 100
	}

	if err := s.fillHardestModule(ctx, flowID, analytics); err != nil {
		logger.Error("Failed to compute hardest module", "error", err)
		return nil, model.ErrInternalServer
	}

	return analytics, nil
}

func (s *analyticsService) GetAllFlowsAnalytics(ctx context.Context, tenantID uuid.UUID) ([]*model.FlowAnalytics, error) {
	flows, err := s.flowRepo.FindByTenant(ctx, s.db, tenantID, true)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list flows for analytics", "error", err)
		return nil, model.ErrInternalServer
	}
	result := make([]*model.FlowAnalytics, 0, len(flows))
	for _, f := range flows {
		analytics, err := s.GetFlowAnalytics(ctx, tenantID, f.FlowID)
		if err != nil {
			return nil, err
		}
		result = append(result, analytics)
	}
	return result, nil
}

func (s *analyticsService) GetCompletionTrends(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*model.CompletionTrends, error) {
	logger := middleware.GetLogger(ctx)

	if end.Before(start) {
		return nil, model.NewAppError("INVALID_RANGE", "終了日は開始日以降を指定してください。", "end", model.ErrInvalidInput)
	}

	// 日付の境界に正規化する(時刻部分は捨てる)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())

	trends := &model.CompletionTrends{}
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)

		completions, err := s.assignmentRepo.CountCompletedBetween(ctx, s.db, tenantID, day, next)
		if err != nil {
			logger.Error("Failed to count completions for trend", "error", err, "date", day)
			return nil, model.ErrInternalServer
		}
		newAssignments, err := s.assignmentRepo.CountAssignedBetween(ctx, s.db, tenantID, day, next)
		if err != nil {
			logger.Error("Failed to count assignments for trend", "error", err, "date", day)
			return nil, model.ErrInternalServer
		}

		trends.Trends = append(trends.Trends, model.TrendPoint{
			Date:           day,
			Completions:    completions,
			NewAssignments: newAssignments,
		})
		trends.TotalCompletions += completions
		trends.TotalNewAssignments += newAssignments
	}
	return trends, nil
}

func (s *analyticsService) GetUserProgressReport(ctx context.Context, tenantID, userID uuid.UUID) (*model.UserProgressReport, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByID(ctx, s.db, tenantID, userID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.FindByUser(ctx, s.db, tenantID, userID)
	if err != nil {
		logger.Error("Failed to load assignments for user report", "error", err)
		return nil, model.ErrInternalServer
	}

	report := &model.UserProgressReport{
		UserID:           user.UserID,
		UserName:         user.FullName(),
		UserEmail:        user.Email,
		Department:       user.Department,
		TotalAssignments: len(assignments),
		Assignments:      assignments,
	}

	var totalProgress float64
	for _, a := range assignments {
		switch a.Status {
		case model.StatusCompleted:
			report.CompletedAssignments++
		case model.StatusInProgress:
			report.InProgressAssignments++
		case model.StatusNotStarted, model.StatusExpired:
		}
		totalProgress += float64(a.CompletionPercentage)

		records, err := s.progressRepo.FindByAssignment(ctx, s.db, a.AssignmentID)
		if err != nil {
			logger.Error("Failed to load progress for user report", "error", err)
			return nil, model.ErrInternalServer
		}
		for _, p := range records {
			report.TotalTimeSpentMinutes += p.TimeSpentMinutes
		}
	}
	if len(assignments) > 0 {
		report.OverallProgressPercentage = math.Round(totalProgress/float64(len(assignments))*100) / 100
	}
	return report, nil
}

// avgCompletionDays は完了済みアサインメントの平均所要日数を返します(0件なら0)
func (s *analyticsService) avgCompletionDays(ctx context.Context, tenantID uuid.UUID) (float64, error) {
	spans, err := s.assignmentRepo.ListCompletionSpans(ctx, s.db, tenantID)
	if err != nil {
		return 0, err
	}
	if len(spans) == 0 {
		return 0, nil
	}
	var totalDays float64
	for _, span := range spans {
		totalDays += completionDays(span.AssignedAt, span.CompletedAt)
	}
	return math.Round(totalDays/float64(len(spans))*100) / 100, nil
}

// completionDays はアサインから完了までの所要日数を返します。
// 各アサインメントごとに日未満を切り捨ててから平均する(36時間は1日)。
func completionDays(assignedAt, completedAt time.Time) float64 {
	return float64(int(completedAt.Sub(assignedAt).Hours()) / 24)
}

// fillHardestModule は完了率が最も低いモジュールを求めます。
// 完了率が同率の場合の選択は表示順で最初に現れたものになります(同率時の
// 選び方は保証されない参考値)。
func (s *analyticsService) fillHardestModule(ctx context.Context, flowID uuid.UUID, analytics *model.FlowAnalytics) error {
	modules, err := s.moduleRepo.FindByFlow(ctx, s.db, flowID)
	if err != nil {
		return err
	}

	var hardest *model.Module
	var hardestRate float64
	for _, m := range modules {
		records, err := s.progressRepo.FindByModule(ctx, s.db, m.ModuleID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			continue
		}
		completed := 0
		for _, p := range records {
			if p.IsCompleted {
				completed++
			}
		}
		rate := float64(completed) / float64(len(records)) * 100
		if hardest == nil || rate < hardestRate {
			hardest = m
			hardestRate = rate
		}
	}
	if hardest != nil {
		id := hardest.ModuleID
		rate := math.Round(hardestRate*100) / 100
		analytics.HardestModuleID = &id
		analytics.HardestModuleTitle = hardest.Title
		analytics.HardestModuleCompletionRate = &rate
	}
	return nil
}
