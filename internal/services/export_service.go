package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ExportService renders time entries and statistics to downloadable files
type ExportService struct{}

// NewExportService creates a new export service
func NewExportService() *ExportService {
	return &ExportService{}
}

var entryExportHeader = []string{"ID", "Utilisateur", "Chantier", "Début", "Fin", "Durée (h)", "Description"}

func entryExportRow(e models.TimeEntryResponse) []string {
	project := ""
	if e.Project != nil {
		project = e.Project.Name
	}
	end := ""
	if e.EndTime != nil {
		end = e.EndTime.Format("2006-01-02 15:04")
	}
	hours := ""
	if e.Duration != nil {
		hours = fmt.Sprintf("%.2f", RoundHours(*e.Duration))
	}
	return []string{
		fmt.Sprintf("%d", e.ID),
		e.UserName,
		project,
		e.StartTime.Format("2006-01-02 15:04"),
		end,
		hours,
		e.Description,
	}
}

// EntriesCSV renders entries as a CSV document.
func (s *ExportService) EntriesCSV(entries []models.TimeEntryResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(entryExportHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write(entryExportRow(e)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EntriesXLSX renders entries as an Excel workbook.
func (s *ExportService) EntriesXLSX(entries []models.TimeEntryResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Pointages"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, title := range entryExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, e := range entries {
		for col, value := range entryExportRow(e) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	f.SetColWidth(sheet, "B", "C", 24)
	f.SetColWidth(sheet, "D", "E", 18)
	f.SetColWidth(sheet, "G", "G", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TimesheetPDF renders a statistics summary as a printable timesheet.
func (s *ExportService) TimesheetPDF(title string, summary *models.StatisticsSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Période: %s au %s",
		summary.StartDate.Format("02/01/2006"),
		summary.EndDate.Format("02/01/2006")))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f h sur %d pointages", summary.TotalHours, summary.TotalEntries))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "Heures par jour")
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(221, 235, 247)
	pdf.CellFormat(50, 7, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Heures", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, day := range summary.HoursByDay {
		pdf.CellFormat(50, 7, day.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", day.Hours), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	if len(summary.HoursByProject) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 8, "Heures par chantier")
		pdf.Ln(8)

		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(90, 7, "Chantier", "1", 0, "L", true, 0, "")
		pdf.CellFormat(40, 7, "Heures", "1", 1, "R", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, project := range summary.HoursByProject {
			pdf.CellFormat(90, 7, project.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", project.Hours), "1", 1, "R", false, 0, "")
		}
	}

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 8, fmt.Sprintf("Généré le %s", time.Now().Format("02/01/2006 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
