package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
)

// StatsService is the aggregation engine behind dashboards, statistics and
// exports. Repositories hand back whole seconds; hours are derived and
// rounded here, exactly once, at the output boundary.
type StatsService struct {
	stats    repository.StatsRepository
	users    repository.UserRepository
	entries  repository.TimeEntryRepository
	projects repository.ProjectRepository
	team     *TeamService
	loc      *time.Location
}

// NewStatsService creates a new stats service
func NewStatsService(
	stats repository.StatsRepository,
	users repository.UserRepository,
	entries repository.TimeEntryRepository,
	projects repository.ProjectRepository,
	team *TeamService,
	loc *time.Location,
) *StatsService {
	return &StatsService{
		stats:    stats,
		users:    users,
		entries:  entries,
		projects: projects,
		team:     team,
		loc:      loc,
	}
}

// RoundHours converts whole seconds to hours rounded half-up to two
// decimals. Totals are summed in seconds first so rounding happens once;
// rounding per entry and summing would drift.
func RoundHours(seconds int64) float64 {
	return math.Round(float64(seconds)/3600*100) / 100
}

// PeriodRange resolves a named period to an inclusive [from, to] range in
// the service's time zone.
func (s *StatsService) PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	now = now.In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	switch period {
	case "today":
		return dayStart, dayStart.AddDate(0, 0, 1).Add(-time.Second), nil
	case "week":
		// Monday-based week
		offset := (int(now.Weekday()) + 6) % 7
		start := dayStart.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7).Add(-time.Second), nil
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
		return start, start.AddDate(0, 1, 0).Add(-time.Second), nil
	case "quarter":
		q := (int(now.Month()) - 1) / 3
		start := time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, s.loc)
		return start, start.AddDate(0, 3, 0).Add(-time.Second), nil
	case "semester":
		h := (int(now.Month()) - 1) / 6
		start := time.Date(now.Year(), time.Month(h*6+1), 1, 0, 0, 0, 0, s.loc)
		return start, start.AddDate(0, 6, 0).Add(-time.Second), nil
	case "year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, s.loc)
		return start, start.AddDate(1, 0, 0).Add(-time.Second), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("période invalide: %s", period)
}

// scopeFor returns the user-id filter for the actor: nil (everyone) for
// admins, the resolved team plus self otherwise.
func (s *StatsService) scopeFor(ctx context.Context, actorUser *models.User) ([]uint, error) {
	if actorUser.IsAdmin() {
		return nil, nil
	}
	return s.team.ResolveWithSelf(ctx, actorUser)
}

// Summary computes the full aggregation for the actor's visible users over
// an inclusive window.
func (s *StatsService) Summary(ctx context.Context, actorUser *models.User, from, to time.Time) (*models.StatisticsSummary, error) {
	userIDs, err := s.scopeFor(ctx, actorUser)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, userIDs, from, to)
}

// UserSummary computes the aggregation for a single user.
func (s *StatsService) UserSummary(ctx context.Context, userID uint, from, to time.Time) (*models.StatisticsSummary, error) {
	return s.summarize(ctx, []uint{userID}, from, to)
}

func (s *StatsService) summarize(ctx context.Context, userIDs []uint, from, to time.Time) (*models.StatisticsSummary, error) {
	f := repository.StatsFilter{
		UserIDs:  userIDs,
		From:     from,
		To:       to,
		TimeZone: s.loc.String(),
	}

	totalSeconds, err := s.stats.TotalSeconds(ctx, f)
	if err != nil {
		return nil, err
	}

	totalEntries, err := s.stats.CountEntries(ctx, f)
	if err != nil {
		return nil, err
	}

	byDay, err := s.stats.SecondsByDay(ctx, f)
	if err != nil {
		return nil, err
	}

	byUser, err := s.stats.SecondsByUser(ctx, f)
	if err != nil {
		return nil, err
	}

	byProject, err := s.stats.SecondsByProject(ctx, f)
	if err != nil {
		return nil, err
	}

	byProjectUser, err := s.stats.SecondsByProjectAndUser(ctx, f)
	if err != nil {
		return nil, err
	}

	trend, err := s.Trend(ctx, f, from, to)
	if err != nil {
		return nil, err
	}

	summary := &models.StatisticsSummary{
		StartDate:      from,
		EndDate:        to,
		TotalEntries:   totalEntries,
		TotalHours:     RoundHours(totalSeconds),
		HoursByDay:     make([]models.DayHours, len(byDay)),
		HoursByUser:    make([]models.UserHours, len(byUser)),
		HoursByProject: make([]models.ProjectHours, len(byProject)),
		Trend:          trend,
	}

	for i, row := range byDay {
		summary.HoursByDay[i] = models.DayHours{Date: row.Day, Hours: RoundHours(row.Seconds)}
	}

	for i, row := range byUser {
		email := row.Email
		summary.HoursByUser[i] = models.UserHours{
			UserID: row.UserID,
			Name:   row.Name,
			Email:  &email,
			Hours:  RoundHours(row.Seconds),
		}
	}

	usersByProject := make(map[uint][]models.UserHours)
	for _, row := range byProjectUser {
		email := row.Email
		usersByProject[row.ProjectID] = append(usersByProject[row.ProjectID], models.UserHours{
			UserID: row.UserID,
			Name:   row.Name,
			Email:  &email,
			Hours:  RoundHours(row.Seconds),
		})
	}

	for i, row := range byProject {
		summary.HoursByProject[i] = models.ProjectHours{
			ProjectID: row.ProjectID,
			Name:      row.Name,
			Hours:     RoundHours(row.Seconds),
			Users:     usersByProject[row.ProjectID],
		}
	}

	return summary, nil
}

// trendDayThreshold is the widest window rendered with day buckets; wider
// windows switch to month buckets.
const trendDayThreshold = 31

// Trend builds the zero-filled trend series for a window. Every bucket in
// range is emitted even when no time was logged in it.
func (s *StatsService) Trend(ctx context.Context, f repository.StatsFilter, from, to time.Time) ([]models.TrendPoint, error) {
	days := int(to.Sub(from).Hours()/24) + 1

	if days <= trendDayThreshold {
		rows, err := s.stats.SecondsByDay(ctx, f)
		if err != nil {
			return nil, err
		}
		filled := make(map[string]int64, len(rows))
		for _, row := range rows {
			filled[row.Day] = row.Seconds
		}

		points := make([]models.TrendPoint, 0, days)
		for d := from.In(s.loc); !d.After(to.In(s.loc)); d = d.AddDate(0, 0, 1) {
			label := d.Format("2006-01-02")
			points = append(points, models.TrendPoint{Label: label, Hours: RoundHours(filled[label])})
		}
		return points, nil
	}

	rows, err := s.stats.SecondsByMonth(ctx, f)
	if err != nil {
		return nil, err
	}
	filled := make(map[string]int64, len(rows))
	for _, row := range rows {
		filled[row.Month] = row.Seconds
	}

	var points []models.TrendPoint
	start := time.Date(from.In(s.loc).Year(), from.In(s.loc).Month(), 1, 0, 0, 0, 0, s.loc)
	end := to.In(s.loc)
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		label := m.Format("2006-01")
		points = append(points, models.TrendPoint{Label: label, Hours: RoundHours(filled[label])})
	}
	return points, nil
}

// UserStatistics is the compact per-user block on the admin user page.
func (s *StatsService) UserStatistics(ctx context.Context, userID uint, from, to time.Time) (*models.UserStatistics, error) {
	f := repository.StatsFilter{
		UserIDs:  []uint{userID},
		From:     from,
		To:       to,
		TimeZone: s.loc.String(),
	}

	totalSeconds, err := s.stats.TotalSeconds(ctx, f)
	if err != nil {
		return nil, err
	}
	totalEntries, err := s.stats.CountEntries(ctx, f)
	if err != nil {
		return nil, err
	}
	activeProjects, err := s.stats.CountActiveProjects(ctx, f)
	if err != nil {
		return nil, err
	}

	return &models.UserStatistics{
		TotalEntries:   totalEntries,
		TotalHours:     RoundHours(totalSeconds),
		ActiveProjects: activeProjects,
	}, nil
}

// Dashboard assembles the role-dependent home screen: global totals for
// admins, the team rollup for managers, personal figures for everyone else.
func (s *StatsService) Dashboard(ctx context.Context, actorUser *models.User) (map[string]interface{}, error) {
	now := time.Now().In(s.loc)

	period := "week"
	if actorUser.IsAdmin() {
		period = "month"
	}
	from, to, err := s.PeriodRange(period, now)
	if err != nil {
		return nil, err
	}

	userIDs, err := s.scopeFor(ctx, actorUser)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, userIDs, from, to)
	if err != nil {
		return nil, err
	}

	openQuery := repository.NewListQuery()
	openQuery.Filters["open"] = "true"
	openQuery.PerPage = 0

	var open []models.TimeEntry
	if actorUser.IsAdmin() {
		open, _, err = s.entries.List(ctx, openQuery)
	} else {
		open, _, err = s.entries.ListForUsers(ctx, userIDs, openQuery)
	}
	if err != nil {
		return nil, err
	}

	active := make([]models.TimeEntryResponse, len(open))
	for i := range open {
		active[i] = open[i].ToResponse()
	}

	dashboard := map[string]interface{}{
		"period":         period,
		"summary":        summary,
		"active_entries": active,
	}

	if actorUser.IsAdmin() {
		userCount, err := s.users.Count(ctx)
		if err != nil {
			return nil, err
		}
		projectCount, err := s.projects.CountByStatus(ctx, models.ProjectStatusActive)
		if err != nil {
			return nil, err
		}
		dashboard["total_users"] = userCount
		dashboard["active_projects"] = projectCount
	}

	return dashboard, nil
}
