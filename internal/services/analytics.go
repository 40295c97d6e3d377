package services

import (
	"errors"
	"math"
	"sort"
	"time"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

// AnalyticsService answers read-only aggregate queries over tasks and their
// status history, always inside the caller's scope. Empty result sets come
// back as ErrNoData so callers can tell "nothing to report on" apart from a
// legitimately computed zero.
type AnalyticsService interface {
	StatusBreakdown(db *gorm.DB, caller models.Caller, dateFrom, dateTo *time.Time) (Breakdown, error)
	TopicBreakdown(db *gorm.DB, caller models.Caller) (Breakdown, error)
	AssigneeBreakdown(db *gorm.DB, caller models.Caller, includeUnassigned bool) (Breakdown, error)
	Summary(db *gorm.DB, caller models.Caller) (SummaryReport, error)
	Burndown(db *gorm.DB, caller models.Caller, dateFrom, dateTo *time.Time) ([]BurndownPoint, error)
	LeadTime(db *gorm.DB, caller models.Caller) (LeadTimeReport, error)
}

type BreakdownItem struct {
	Code    string  `json:"code,omitempty"`
	Label   string  `json:"label"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

type Breakdown struct {
	Total int64           `json:"total"`
	Items []BreakdownItem `json:"items"`
}

type SummaryReport struct {
	Total            int64 `json:"total"`
	Open             int64 `json:"open"`
	Done             int64 `json:"done"`
	Overdue          int64 `json:"overdue"`
	CreatedLast7Days int64 `json:"created_last_7_days"`
}

type BurndownPoint struct {
	Day       string `json:"day"`
	DoneCount int64  `json:"done_count"`
}

type LeadTimeReport struct {
	Count       int     `json:"count"`
	AvgHours    float64 `json:"avg_hours"`
	MedianHours float64 `json:"median_hours"`
	P90Hours    float64 `json:"p90_hours"`
}

type AnalyticsServiceImpl struct{}

func NewAnalyticsService() *AnalyticsServiceImpl {
	return &AnalyticsServiceImpl{}
}

// StatusBreakdown counts scoped tasks per catalog status. The join runs LEFT
// from the catalog so every status appears even with zero tasks; the scope
// and date predicates therefore belong in the join condition, not in WHERE.
func (s *AnalyticsServiceImpl) StatusBreakdown(db *gorm.DB, caller models.Caller, dateFrom, dateTo *time.Time) (Breakdown, error) {
	join := "LEFT JOIN tasks ON tasks.status_id = task_statuses.id"
	var args []interface{}

	if cond, scopeArgs := ScopeFor(caller).JoinCondition(); cond != "" {
		join += cond
		args = append(args, scopeArgs...)
	}
	if dateFrom != nil {
		join += " AND tasks.created_at >= ?"
		args = append(args, *dateFrom)
	}
	if dateTo != nil {
		join += " AND tasks.created_at < ?"
		args = append(args, *dateTo)
	}

	var rows []struct {
		Code  string
		Name  string
		Count int64
	}
	err := db.Table("task_statuses").
		Select("task_statuses.code AS code, task_statuses.name AS name, COUNT(tasks.id) AS count").
		Joins(join, args...).
		Group("task_statuses.id, task_statuses.code, task_statuses.name, task_statuses.sort_order").
		Order("task_statuses.sort_order ASC").
		Scan(&rows).Error
	if err != nil {
		return Breakdown{}, err
	}
	if len(rows) == 0 {
		return Breakdown{}, apperrors.Wrap(apperrors.ErrNoData, "status catalog is empty")
	}

	breakdown := Breakdown{Items: make([]BreakdownItem, 0, len(rows))}
	for _, row := range rows {
		breakdown.Total += row.Count
	}
	for _, row := range rows {
		breakdown.Items = append(breakdown.Items, BreakdownItem{
			Code:    row.Code,
			Label:   row.Name,
			Count:   row.Count,
			Percent: percentOf(row.Count, breakdown.Total),
		})
	}
	return breakdown, nil
}

// TopicBreakdown counts scoped tasks per topic, most used first. ErrNoData
// means the topic catalog itself is empty, not that the caller has no tasks.
func (s *AnalyticsServiceImpl) TopicBreakdown(db *gorm.DB, caller models.Caller) (Breakdown, error) {
	join := "LEFT JOIN tasks ON tasks.topic_id = topics.id"
	var args []interface{}
	if cond, scopeArgs := ScopeFor(caller).JoinCondition(); cond != "" {
		join += cond
		args = append(args, scopeArgs...)
	}

	var rows []struct {
		Name  string
		Count int64
	}
	err := db.Table("topics").
		Select("topics.name AS name, COUNT(tasks.id) AS count").
		Joins(join, args...).
		Group("topics.id, topics.name").
		Order("COUNT(tasks.id) DESC").
		Scan(&rows).Error
	if err != nil {
		return Breakdown{}, err
	}
	if len(rows) == 0 {
		return Breakdown{}, apperrors.Wrap(apperrors.ErrNoData, "topic catalog is empty")
	}

	breakdown := Breakdown{Items: make([]BreakdownItem, 0, len(rows))}
	for _, row := range rows {
		breakdown.Total += row.Count
	}
	for _, row := range rows {
		breakdown.Items = append(breakdown.Items, BreakdownItem{
			Label:   row.Name,
			Count:   row.Count,
			Percent: percentOf(row.Count, breakdown.Total),
		})
	}
	return breakdown, nil
}

func (s *AnalyticsServiceImpl) AssigneeBreakdown(db *gorm.DB, caller models.Caller, includeUnassigned bool) (Breakdown, error) {
	scope := ScopeFor(caller)

	join := "LEFT JOIN tasks ON tasks.assignee_id = users.id"
	var args []interface{}
	if cond, scopeArgs := scope.JoinCondition(); cond != "" {
		join += cond
		args = append(args, scopeArgs...)
	}

	var rows []struct {
		Name  string
		Count int64
	}
	err := db.Table("users").
		Select("users.name AS name, COUNT(tasks.id) AS count").
		Joins(join, args...).
		Group("users.id, users.name").
		Order("COUNT(tasks.id) DESC").
		Scan(&rows).Error
	if err != nil {
		return Breakdown{}, err
	}

	items := make([]BreakdownItem, 0, len(rows)+1)
	for _, row := range rows {
		items = append(items, BreakdownItem{Label: row.Name, Count: row.Count})
	}

	if includeUnassigned {
		var unassigned int64
		stmt := scope.Apply(db.Model(&models.Task{})).Where("assignee_id IS NULL")
		if err := stmt.Count(&unassigned).Error; err != nil {
			return Breakdown{}, err
		}
		if unassigned > 0 {
			items = append(items, BreakdownItem{Label: "unassigned", Count: unassigned})
		}
	}

	if len(items) == 0 {
		return Breakdown{}, apperrors.Wrap(apperrors.ErrNoData, "no assignees")
	}

	breakdown := Breakdown{Items: items}
	for _, item := range items {
		breakdown.Total += item.Count
	}
	for i := range breakdown.Items {
		breakdown.Items[i].Percent = percentOf(breakdown.Items[i].Count, breakdown.Total)
	}
	return breakdown, nil
}

func (s *AnalyticsServiceImpl) Summary(db *gorm.DB, caller models.Caller) (SummaryReport, error) {
	terminal, err := terminalStatus(db)
	if err != nil {
		return SummaryReport{}, err
	}

	scope := ScopeFor(caller)
	scoped := func() *gorm.DB { return scope.Apply(db.Model(&models.Task{})) }

	var report SummaryReport
	if err := scoped().Count(&report.Total).Error; err != nil {
		return SummaryReport{}, err
	}
	if err := scoped().Where("status_id = ?", terminal.ID).Count(&report.Done).Error; err != nil {
		return SummaryReport{}, err
	}
	report.Open = report.Total - report.Done

	today := truncateToDay(time.Now())
	err = scoped().
		Where("due_date IS NOT NULL AND due_date < ? AND status_id <> ?", today, terminal.ID).
		Count(&report.Overdue).Error
	if err != nil {
		return SummaryReport{}, err
	}

	weekAgo := today.AddDate(0, 0, -7)
	if err := scoped().Where("created_at >= ?", weekAgo).Count(&report.CreatedLast7Days).Error; err != nil {
		return SummaryReport{}, err
	}

	return report, nil
}

// Burndown counts, per calendar day, the tasks whose FIRST arrival at the
// terminal status fell on that day. Re-entering the terminal status later
// never moves a task to another day.
func (s *AnalyticsServiceImpl) Burndown(db *gorm.DB, caller models.Caller, dateFrom, dateTo *time.Time) ([]BurndownPoint, error) {
	arrivals, err := firstTerminalArrivals(db, caller)
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, arrival := range arrivals {
		day := arrival.DoneAt.Format("2006-01-02")
		if dateFrom != nil && day < dateFrom.Format("2006-01-02") {
			continue
		}
		if dateTo != nil && day >= dateTo.Format("2006-01-02") {
			continue
		}
		counts[day]++
	}
	if len(counts) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrNoData, "no completed tasks")
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]BurndownPoint, 0, len(days))
	for _, day := range days {
		points = append(points, BurndownPoint{Day: day, DoneCount: counts[day]})
	}
	return points, nil
}

func (s *AnalyticsServiceImpl) LeadTime(db *gorm.DB, caller models.Caller) (LeadTimeReport, error) {
	arrivals, err := firstTerminalArrivals(db, caller)
	if err != nil {
		return LeadTimeReport{}, err
	}

	hours := make([]float64, 0, len(arrivals))
	for _, arrival := range arrivals {
		if arrival.DoneAt.IsZero() || arrival.CreatedAt.IsZero() {
			continue
		}
		hours = append(hours, round2(arrival.DoneAt.Sub(arrival.CreatedAt).Hours()))
	}
	if len(hours) == 0 {
		return LeadTimeReport{}, apperrors.Wrap(apperrors.ErrNoData, "no completed tasks")
	}

	sort.Float64s(hours)
	var sum float64
	for _, h := range hours {
		sum += h
	}

	return LeadTimeReport{
		Count:       len(hours),
		AvgHours:    round2(sum / float64(len(hours))),
		MedianHours: round2(percentile(hours, 0.5)),
		P90Hours:    round2(percentile(hours, 0.9)),
	}, nil
}

type terminalArrival struct {
	TaskID    uint
	CreatedAt time.Time
	DoneAt    time.Time
}

// firstTerminalArrivals reconstructs, per scoped task, the earliest
// transition into the terminal status. History is the sole source of truth
// here; the task's current status is irrelevant.
func firstTerminalArrivals(db *gorm.DB, caller models.Caller) ([]terminalArrival, error) {
	terminal, err := terminalStatus(db)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		TaskID    uint
		CreatedAt time.Time
		ChangedAt time.Time
	}
	stmt := db.Table("task_status_history").
		Select("task_status_history.task_id AS task_id, tasks.created_at AS created_at, task_status_history.changed_at AS changed_at").
		Joins("JOIN tasks ON tasks.id = task_status_history.task_id").
		Where("task_status_history.to_status_id = ?", terminal.ID)
	stmt = ScopeFor(caller).Apply(stmt)
	if err := stmt.Order("task_status_history.changed_at ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	seen := map[uint]bool{}
	arrivals := make([]terminalArrival, 0, len(rows))
	for _, row := range rows {
		if seen[row.TaskID] {
			continue
		}
		seen[row.TaskID] = true
		arrivals = append(arrivals, terminalArrival{
			TaskID:    row.TaskID,
			CreatedAt: row.CreatedAt,
			DoneAt:    row.ChangedAt,
		})
	}
	return arrivals, nil
}

func terminalStatus(db *gorm.DB) (models.TaskStatus, error) {
	var status models.TaskStatus
	err := db.Where("is_terminal = ?", true).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return status, apperrors.Wrap(apperrors.ErrConfiguration, "no terminal status in catalog")
	}
	return status, err
}

func percentOf(count, total int64) float64 {
	if total == 0 {
		return 0.0
	}
	return round1(float64(count) / float64(total) * 100)
}

// percentile uses linear interpolation between order statistics, the same
// rule pandas and numpy apply by default: the value at fractional rank
// q*(n-1). The input must be sorted.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := q * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
