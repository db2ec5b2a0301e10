// internal/model/analytics.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardOverview はテナント全体のダッシュボード指標です(読み取り専用の集計)
type DashboardOverview struct {
	TotalUsers            int64   `json:"total_users"`
	TotalFlows            int64   `json:"total_flows"`
	TotalAssignments      int64   `json:"total_assignments"`
	AssignmentsNotStarted int64   `json:"assignments_not_started"`
	AssignmentsInProgress int64   `json:"assignments_in_progress"`
	AssignmentsCompleted  int64   `json:"assignments_completed"`
	AssignmentsOverdue    int64   `json:"assignments_overdue"`
	OverallCompletionRate float64 `json:"overall_completion_rate"` // % 小数2桁
	AvgCompletionTimeDays float64 `json:"avg_completion_time_days"`
	AssignmentsThisWeek   int64   `json:"assignments_this_week"`
	CompletionsThisWeek   int64   `json:"completions_this_week"`
}

// FlowAnalytics は1フロー分の分析指標です
type FlowAnalytics struct {
	FlowID                      uuid.UUID  `json:"flow_id"`
	FlowTitle                   string     `json:"flow_title"`
	TotalAssignments            int        `json:"total_assignments"`
	CompletedAssignments        int        `json:"completed_assignments"`
	InProgressAssignments       int        `json:"in_progress_assignments"`
	NotStartedAssignments       int        `json:"not_started_assignments"`
	CompletionRate              float64    `json:"completion_rate"`
	AvgCompletionTimeDays       float64    `json:"avg_completion_time_days"`
	AvgProgressPercentage       float64    `json:"avg_progress_percentage"`
	HardestModuleID             *uuid.UUID `json:"hardest_module_id,omitempty"`
	HardestModuleTitle          string     `json:"hardest_module_title,omitempty"`
	HardestModuleCompletionRate *float64   `json:"hardest_module_completion_rate,omitempty"`
}

// TrendPoint は1日分の活動量です
type TrendPoint struct {
	Date           time.Time `json:"date"`
	Completions    int64     `json:"completions"`
	NewAssignments int64     `json:"new_assignments"`
}

// CompletionTrends は日次の時系列です。
// 範囲[start, end]は両端含み、活動ゼロの日も必ず1点として含まれる(疎ではなく密)。
type CompletionTrends struct {
	Trends              []TrendPoint `json:"trends"`
	TotalCompletions    int64        `json:"total_completions"`
	TotalNewAssignments int64        `json:"total_new_assignments"`
}

// UserProgressReport はユーザー単位の進捗レポートです
type UserProgressReport struct {
	UserID                    uuid.UUID     `json:"user_id"`
	UserName                  string        `json:"user_name"`
	UserEmail                 string        `json:"user_email"`
	Department                string        `json:"department,omitempty"`
	TotalAssignments          int           `json:"total_assignments"`
	CompletedAssignments      int           `json:"completed_assignments"`
	InProgressAssignments     int           `json:"in_progress_assignments"`
	OverallProgressPercentage float64       `json:"overall_progress_percentage"`
	TotalTimeSpentMinutes     int           `json:"total_time_spent_minutes"`
	Assignments               []*Assignment `json:"assignments"`
}
