package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func exportFixture() []models.TimeEntryResponse {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	end := start.Add(2*time.Hour + 30*time.Minute)
	duration := int64(9000)
	project := models.ProjectResponse{ID: 4, Name: "Chantier centre"}

	open := start.Add(24 * time.Hour)
	return []models.TimeEntryResponse{
		{
			ID:          1,
			UserName:    "Jean Dupont",
			Project:     &project,
			StartTime:   start,
			EndTime:     &end,
			Duration:    &duration,
			Description: "coulage dalle",
		},
		{
			ID:        2,
			UserName:  "Marie Curie",
			StartTime: open,
		},
	}
}

func TestEntriesCSV(t *testing.T) {
	svc := NewExportService()

	data, err := svc.EntriesCSV(exportFixture())
	assert.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 3)

	assert.Equal(t, entryExportHeader, rows[0])
	assert.Equal(t, []string{"1", "Jean Dupont", "Chantier centre", "2026-03-02 08:00", "2026-03-02 10:30", "2.50", "coulage dalle"}, rows[1])

	// Open entry: no end, no duration
	assert.Equal(t, "Marie Curie", rows[2][1])
	assert.Empty(t, rows[2][4])
	assert.Empty(t, rows[2][5])
}

func TestEntriesXLSX(t *testing.T) {
	svc := NewExportService()

	data, err := svc.EntriesXLSX(exportFixture())
	assert.NoError(t, err)
	// XLSX files are zip archives
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestTimesheetPDF(t *testing.T) {
	svc := NewExportService()

	summary := &models.StatisticsSummary{
		StartDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 3, 7, 23, 59, 59, 0, time.UTC),
		TotalEntries: 3,
		TotalHours:   2.78,
		HoursByDay: []models.DayHours{
			{Date: "2026-03-02", Hours: 2.0},
		},
		HoursByProject: []models.ProjectHours{
			{ProjectID: 4, Name: "Chantier centre", Hours: 2.78},
		},
	}

	data, err := svc.TimesheetPDF("Feuille de temps", summary)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
