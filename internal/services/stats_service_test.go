package services

import (
	"context"
	"testing"
	"time"

	"github.com/besttime/besttime-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

type mockStatsRepo struct {
	repository.StatsRepository
	totalSeconds int64
	entries      int64
	byDay        []repository.DaySeconds
	byMonth      []repository.MonthSeconds
	byUser       []repository.UserSeconds
	byProject    []repository.ProjectSeconds
	byProjUser   []repository.ProjectUserSeconds
}

func (m *mockStatsRepo) TotalSeconds(ctx context.Context, f repository.StatsFilter) (int64, error) {
	return m.totalSeconds, nil
}

func (m *mockStatsRepo) CountEntries(ctx context.Context, f repository.StatsFilter) (int64, error) {
	return m.entries, nil
}

func (m *mockStatsRepo) SecondsByDay(ctx context.Context, f repository.StatsFilter) ([]repository.DaySeconds, error) {
	return m.byDay, nil
}

func (m *mockStatsRepo) SecondsByMonth(ctx context.Context, f repository.StatsFilter) ([]repository.MonthSeconds, error) {
	return m.byMonth, nil
}

func (m *mockStatsRepo) SecondsByUser(ctx context.Context, f repository.StatsFilter) ([]repository.UserSeconds, error) {
	return m.byUser, nil
}

func (m *mockStatsRepo) SecondsByProject(ctx context.Context, f repository.StatsFilter) ([]repository.ProjectSeconds, error) {
	return m.byProject, nil
}

func (m *mockStatsRepo) SecondsByProjectAndUser(ctx context.Context, f repository.StatsFilter) ([]repository.ProjectUserSeconds, error) {
	return m.byProjUser, nil
}

func newTestStatsService(stats *mockStatsRepo) *StatsService {
	loc, _ := time.LoadLocation("Europe/Brussels")
	return NewStatsService(stats, nil, nil, nil, nil, loc)
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 2.5, RoundHours(9000))
	assert.Equal(t, 0.0, RoundHours(0))
	assert.Equal(t, 1.0, RoundHours(3600))
	assert.Equal(t, 0.93, RoundHours(3333))
}

func TestRoundingHappensOnceOnTheSum(t *testing.T) {
	// Three entries of 3333s, 3333s and 3334s total 10000s = 2.7778h.
	// Rounding the sum gives 2.78; rounding each entry first and summing
	// gives 0.93*3 = 2.79. The first is the contract.
	total := RoundHours(3333 + 3333 + 3334)
	assert.Equal(t, 2.78, total)
	assert.Equal(t, 2.78, RoundHours(9999))

	perEntry := RoundHours(3333) + RoundHours(3333) + RoundHours(3334)
	assert.NotEqual(t, total, perEntry)
	assert.InDelta(t, 2.79, perEntry, 0.001)
}

func TestSummaryRoundsTotalsFromRawSeconds(t *testing.T) {
	stats := &mockStatsRepo{
		totalSeconds: 9999,
		entries:      3,
		byUser: []repository.UserSeconds{
			{UserID: 1, Name: "Jean", Email: "jean@example.com", Seconds: 9999},
		},
		byProject: []repository.ProjectSeconds{
			{ProjectID: 4, Name: "Chantier A", Seconds: 9999},
		},
		byProjUser: []repository.ProjectUserSeconds{
			{ProjectID: 4, UserID: 1, Name: "Jean", Email: "jean@example.com", Seconds: 9999},
		},
	}
	svc := newTestStatsService(stats)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 23, 59, 59, 0, time.UTC)

	summary, err := svc.summarize(context.Background(), []uint{1}, from, to)

	assert.NoError(t, err)
	assert.Equal(t, 2.78, summary.TotalHours)
	assert.Equal(t, int64(3), summary.TotalEntries)
	assert.Equal(t, 2.78, summary.HoursByUser[0].Hours)
	assert.Equal(t, 2.78, summary.HoursByProject[0].Hours)
	assert.Len(t, summary.HoursByProject[0].Users, 1)
}

func TestTrendFillsEmptyDays(t *testing.T) {
	stats := &mockStatsRepo{
		byDay: []repository.DaySeconds{
			{Day: "2026-03-02", Seconds: 7200},
			{Day: "2026-03-05", Seconds: 3600},
		},
	}
	svc := newTestStatsService(stats)

	loc, _ := time.LoadLocation("Europe/Brussels")
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 7, 23, 59, 59, 0, loc)

	trend, err := svc.Trend(context.Background(), repository.StatsFilter{}, from, to)

	assert.NoError(t, err)
	assert.Len(t, trend, 7, "every day in range must be present")

	hours := map[string]float64{}
	for _, p := range trend {
		hours[p.Label] = p.Hours
	}
	assert.Equal(t, 2.0, hours["2026-03-02"])
	assert.Equal(t, 1.0, hours["2026-03-05"])
	assert.Equal(t, 0.0, hours["2026-03-01"])
	assert.Equal(t, 0.0, hours["2026-03-07"])
}

func TestTrendSwitchesToMonthBucketsForWideWindows(t *testing.T) {
	stats := &mockStatsRepo{
		byMonth: []repository.MonthSeconds{
			{Month: "2026-02", Seconds: 36000},
		},
	}
	svc := newTestStatsService(stats)

	loc, _ := time.LoadLocation("Europe/Brussels")
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, loc)

	trend, err := svc.Trend(context.Background(), repository.StatsFilter{}, from, to)

	assert.NoError(t, err)
	assert.Len(t, trend, 3)
	assert.Equal(t, "2026-01", trend[0].Label)
	assert.Equal(t, 0.0, trend[0].Hours)
	assert.Equal(t, "2026-02", trend[1].Label)
	assert.Equal(t, 10.0, trend[1].Hours)
	assert.Equal(t, "2026-03", trend[2].Label)
}

func TestPeriodRange(t *testing.T) {
	svc := newTestStatsService(&mockStatsRepo{})
	loc, _ := time.LoadLocation("Europe/Brussels")

	// A Wednesday
	now := time.Date(2026, 3, 4, 15, 30, 0, 0, loc)

	from, to, err := svc.PeriodRange("today", now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2026, 3, 4, 23, 59, 59, 0, loc), to)

	from, to, err = svc.PeriodRange("week", now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), from, "weeks start on Monday")
	assert.Equal(t, time.Date(2026, 3, 8, 23, 59, 59, 0, loc), to)

	from, to, err = svc.PeriodRange("month", now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 0, loc), to)

	from, _, err = svc.PeriodRange("quarter", now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, loc), from)

	_, _, err = svc.PeriodRange("fortnight", now)
	assert.Error(t, err)
}
