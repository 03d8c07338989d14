package infra

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// TimesheetRow is one employee's line in the attendance export.
type TimesheetRow struct {
	EmployeeNumber string
	Name           string
	DaysWorked     int
	TotalHours     time.Duration
	OvertimeHours  time.Duration
}

const timesheetSheet = "Timesheet"

// WriteTimesheetXLSX renders rows as a workbook with hours in decimal form.
func WriteTimesheetXLSX(from, to time.Time, rows []TimesheetRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), timesheetSheet); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Attendance %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err := f.SetCellValue(timesheetSheet, "A1", title); err != nil {
		return nil, err
	}
	header := []any{"Employee #", "Name", "Days worked", "Total hours", "Overtime hours"}
	if err := f.SetSheetRow(timesheetSheet, "A3", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(timesheetSheet, "A3", "E3", bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		values := []any{r.EmployeeNumber, r.Name, r.DaysWorked, roundHours(r.TotalHours), roundHours(r.OvertimeHours)}
		if err := f.SetSheetRow(timesheetSheet, cell, &values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(timesheetSheet, "A", "A", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(timesheetSheet, "B", "B", 30); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func roundHours(d time.Duration) float64 {
	return float64(d.Round(time.Minute)/time.Minute) / 60
}
