// Package export writes batch runs to Excel workbooks.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/batch"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/decision"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/redflag"
)

const (
	SummarySheet   = "Summary"
	DecisionsSheet = "Decisions"
	RedFlagsSheet  = "Red Flags"
)

var decisionHeaders = []string{
	"Candidate", "Position", "Status", "Decision", "Final Score", "Base Score",
	"Risk Penalty", "Red Flag Penalty", "Gate", "Gate Passed", "Reason", "Company Fit", "File",
}

var redFlagHeaders = []string{"Candidate", "Flag", "Severity", "Penalty", "Auto Reject", "Evidence"}

var decisionColors = map[string]string{
	string(decision.Hire):   "C6EFCE",
	string(decision.Hold):   "FFEB9C",
	string(decision.Reject): "FFC7CE",
}

// WriteXLSX saves the run to path, adding the .xlsx extension when missing,
// and returns the final path.
func WriteXLSX(run *batch.Run, path string) (string, error) {
	f, err := Workbook(run)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return path, nil
}

// Workbook builds the workbook in memory. The caller closes it.
func Workbook(run *batch.Run) (*excelize.File, error) {
	if run == nil {
		return nil, fmt.Errorf("batch run is required")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{DecisionsSheet, RedFlagsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	steps := []struct {
		name string
		fn   func(*excelize.File, *batch.Run) error
	}{
		{name: "summary", fn: writeSummary},
		{name: "decisions", fn: writeDecisions},
		{name: "red flags", fn: writeRedFlags},
	}
	for _, step := range steps {
		if err := step.fn(f, run); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create %s sheet: %w", step.name, err)
		}
	}

	return f, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}

	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeSummary(f *excelize.File, run *batch.Run) error {
	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{
		{"Run", run.ID},
		{"Snapshot", run.Snapshot},
		{"Started", run.StartedAt.Format("2006-01-02 15:04:05")},
		{"Duration", run.Summary.Duration.String()},
		{"Candidates", run.Summary.Total},
		{"Errors", run.Summary.Errors},
		{},
		{"Outcome", "Count"},
	}
	for _, outcome := range run.Summary.Outcomes() {
		rows = append(rows, []any{outcome, run.Summary.Counts[outcome]})
	}

	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		if err := writeRow(f, SummarySheet, i+1, values); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellStyle(SummarySheet, cell, cell, label); err != nil {
			return err
		}
	}

	return f.SetColWidth(SummarySheet, "A", "B", 24)
}

func writeDecisions(f *excelize.File, run *batch.Run) error {
	if err := writeHeader(f, DecisionsSheet, decisionHeaders); err != nil {
		return err
	}

	styles := make(map[string]int, len(decisionColors))
	for d, color := range decisionColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		styles[d] = style
	}

	for i, it := range run.Items {
		row := i + 2
		if err := writeRow(f, DecisionsSheet, row, decisionRow(it)); err != nil {
			return err
		}
		if style, ok := styles[it.Decision()]; ok {
			cell, _ := excelize.CoordinatesToCellName(4, row)
			if err := f.SetCellStyle(DecisionsSheet, cell, cell, style); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(DecisionsSheet, "A", "J", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(DecisionsSheet, "K", "K", 48); err != nil {
		return err
	}
	return f.SetPanes(DecisionsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func decisionRow(it batch.Item) []any {
	var id, position string
	if it.Candidate != nil {
		id, position = it.Candidate.ID, it.Candidate.Position
	}
	if id == "" {
		id = it.Report.CandidateID
	}

	if it.Err != nil {
		return []any{id, position, "error", it.Decision(), "", "", "", "", "", "", it.Error, "", it.Path}
	}

	ev := it.Report.Evaluation
	if ev == nil {
		return []any{id, position, string(it.Report.Status), it.Decision(), "", "", "", "", "", "", "", "", it.Path}
	}

	res := ev.Result
	var fit any = ""
	if it.CompanyFit != nil {
		fit = it.CompanyFit.CompanyFitScore
	}
	return []any{
		id, position, string(it.Report.Status), string(res.Decision),
		res.FinalScore, res.BaseScore, res.RiskPenalty, res.RedFlagPenalty,
		ev.Gate.Key, res.SkillGate.Passed, res.Reason, fit, it.Path,
	}
}

func writeRedFlags(f *excelize.File, run *batch.Run) error {
	if err := writeHeader(f, RedFlagsSheet, redFlagHeaders); err != nil {
		return err
	}

	row := 2
	for _, it := range run.Items {
		flags := itemFlags(it)
		if flags == nil {
			continue
		}
		for _, m := range flags.Matches {
			values := []any{
				it.Report.CandidateID, m.Code, string(m.Severity), m.Penalty, m.AutoReject,
				strings.Join(m.Evidence, "; "),
			}
			if err := writeRow(f, RedFlagsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	return f.SetColWidth(RedFlagsSheet, "A", "F", 18)
}

// itemFlags returns the red flags found for it. Candidates that could not be
// scored still carry the flags from their free text.
func itemFlags(it batch.Item) *redflag.Result {
	if it.Err != nil {
		return nil
	}
	if ev := it.Report.Evaluation; ev != nil {
		return &ev.RedFlags
	}
	return it.Report.RedFlags
}
