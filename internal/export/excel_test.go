package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/assessment"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/batch"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/config"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/redflag"
)

type fixedState struct{ state *config.State }

func (f fixedState) Current() *config.State { return f.state }

func testRun(t *testing.T) *batch.Run {
	t.Helper()

	state, err := config.NewState(config.Default())
	if err != nil {
		t.Fatalf("NewState() failed: %v", err)
	}

	dir := t.TempDir()
	files := map[string]string{
		"a.yaml": "position: mid\nratings: {communication: 5, accountability: 5, teamwork: 5, stress_resilience: 5, adaptability: 5, learning_agility: 5, integrity: 5, role_competence: 5}\n",
		"b.yaml": "position: mid\nratings: {role_competence: 5, integrity: 5}\nfree-text: ['Olursa döverim, bu benim suçum değil']\n",
		"c.yaml": "ratings: [broken\n",
	}
	var paths []string
	for _, name := range []string{"a.yaml", "b.yaml", "c.yaml"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(files[name]), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, path)
	}

	run, err := batch.NewRunner(fixedState{state: state}, nil, 2, nil).Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	return run
}

func TestWorkbookSheets(t *testing.T) {
	run := testRun(t)

	f, err := Workbook(run)
	if err != nil {
		t.Fatalf("Workbook() failed: %v", err)
	}
	defer f.Close()

	want := []string{SummarySheet, DecisionsSheet, RedFlagsSheet}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, got)
		}
	}

	rows, err := f.GetRows(DecisionsSheet)
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Candidate" || rows[0][3] != "Decision" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "a" || rows[1][3] != "HIRE" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][3] != "REJECT" {
		t.Fatalf("expected REJECT for b, got %v", rows[2])
	}
	if rows[3][2] != "error" {
		t.Fatalf("expected error row for c, got %v", rows[3])
	}

	flags, err := f.GetRows(RedFlagsSheet)
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(flags) < 2 || flags[1][0] != "b" || flags[1][1] != "RF_AGGRESSION" {
		t.Fatalf("unexpected red flag rows %v", flags)
	}

	id, err := f.GetCellValue(SummarySheet, "B1")
	if err != nil {
		t.Fatalf("GetCellValue() failed: %v", err)
	}
	if id != run.ID {
		t.Fatalf("expected run id %q, got %q", run.ID, id)
	}
}

func TestWorkbookListsFlagsOfUnscoredCandidates(t *testing.T) {
	run := &batch.Run{
		ID: "run-1",
		Items: []batch.Item{{
			Path: "d.yaml",
			Report: assessment.Report{
				CandidateID: "d",
				Status:      assessment.StatusAnalysisFailed,
				RedFlags: &redflag.Result{
					Matches: []redflag.Match{{
						Code: "RF_SUBSTANCE", Severity: redflag.SeverityCritical,
						AutoReject: true, Evidence: []string{"sarhoş çalıştım"},
					}},
					AutoReject: true,
					RejectFlag: "RF_SUBSTANCE",
				},
			},
		}},
	}

	f, err := Workbook(run)
	if err != nil {
		t.Fatalf("Workbook() failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(DecisionsSheet)
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(rows) != 2 || rows[1][3] != "analysis_failed" {
		t.Fatalf("unexpected decision rows %v", rows)
	}

	flags, err := f.GetRows(RedFlagsSheet)
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(flags) != 2 || flags[1][0] != "d" || flags[1][1] != "RF_SUBSTANCE" || flags[1][5] != "sarhoş çalıştım" {
		t.Fatalf("unexpected red flag rows %v", flags)
	}
}

func TestWriteXLSXEnsuresExtension(t *testing.T) {
	run := testRun(t)
	outputPath := filepath.Join(t.TempDir(), "report")

	path, err := WriteXLSX(run, outputPath)
	if err != nil {
		t.Fatalf("WriteXLSX() failed: %v", err)
	}
	if path != outputPath+".xlsx" {
		t.Fatalf("expected %s.xlsx, got %s", outputPath, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	defer f.Close()
}

func TestWorkbookRequiresRun(t *testing.T) {
	if _, err := Workbook(nil); err == nil {
		t.Fatal("expected error for nil run")
	}
}
