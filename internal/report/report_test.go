package report_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"blockscan/internal/compare"
	"blockscan/internal/findings"
	"blockscan/internal/ingest"
	"blockscan/internal/report"
)

func TestLineFormats(t *testing.T) {
	cases := []struct {
		finding compare.Finding
		want    string
	}{
		{
			compare.Finding{OwnerA: "Amal", OwnerB: "Badr", Modality: ingest.ModalityProject, Classification: compare.ClassExactDuplicate, Score: 100},
			"[EXACT DUPLICATE] Amal vs Badr | hash=identical",
		},
		{
			compare.Finding{OwnerA: "Amal", OwnerB: "Badr", Modality: ingest.ModalityProject, Classification: compare.ClassLogicMatch, Score: 92.54},
			"[LOGIC MATCH] Amal vs Badr | similarity=92.5%",
		},
		{
			compare.Finding{OwnerA: "Amal", OwnerB: "Badr", Modality: ingest.ModalityProject, Classification: compare.ClassSharedAssets, SharedAssets: 4},
			"[SHARED ASSETS] Amal vs Badr | shared_assets=4",
		},
		{
			compare.Finding{OwnerA: "Cara", OwnerB: "Dina", Modality: ingest.ModalityImage, Classification: compare.ClassVisualMatch, Score: 6},
			"[VISUAL MATCH] Cara vs Dina | score=6.0",
		},
		{
			compare.Finding{OwnerA: "Cara", OwnerB: "Dina", Modality: ingest.ModalityVideo, Classification: compare.ClassDuplicate},
			"[DUPLICATE] Cara vs Dina | hash=identical",
		},
	}
	for _, tc := range cases {
		if got := report.Line(tc.finding); got != tc.want {
			t.Errorf("Line(%v) = %q, want %q", tc.finding.Classification, got, tc.want)
		}
	}
}

func TestLinesDeduplicatesAndSorts(t *testing.T) {
	dup := compare.Finding{OwnerA: "Amal", OwnerB: "Badr", Modality: ingest.ModalityProject, Classification: compare.ClassExactDuplicate}
	other := compare.Finding{OwnerA: "Amal", OwnerB: "Badr", Modality: ingest.ModalityProject, Classification: compare.ClassSharedAssets, SharedAssets: 3}

	lines := report.Lines([]compare.Finding{other, dup, dup})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] >= lines[1] {
		t.Fatalf("lines not sorted: %v", lines)
	}
}

func TestRowsMatchHeaders(t *testing.T) {
	rows := report.Rows([]compare.Finding{
		{OwnerA: "Amal", OwnerB: "Badr", Modality: ingest.ModalityProject, Classification: compare.ClassLogicMatch, Score: 90, Note: "logic similarity 90.0% over 10 and 10 opcodes"},
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if len(rows[0]) != len(report.Headers()) {
		t.Fatalf("row width %d does not match header width %d", len(rows[0]), len(report.Headers()))
	}
	if rows[0][0] != "LOGIC MATCH" || rows[0][3] != "project" {
		t.Fatalf("unexpected row: %v", rows[0])
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	summary := &findings.BatchSummary{
		ID:        "b-123",
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Inputs:    []string{"submissions.zip"},
		Projects:  3,
		Warnings:  []string{"junk.bin: unsupported file type"},
	}
	results := []compare.Finding{
		{OwnerA: "Amal", OwnerB: "Badr", Modality: ingest.ModalityProject, Classification: compare.ClassExactDuplicate},
	}

	path, err := report.WriteFile(dir, summary, results)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"blockscan findings report",
		"batch: b-123",
		"inputs: submissions.zip",
		"junk.bin: unsupported file type",
		"[EXACT DUPLICATE] Amal vs Badr | hash=identical",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q in:\n%s", want, content)
		}
	}
}

func TestWriteFileEmptyFindings(t *testing.T) {
	dir := t.TempDir()
	summary := &findings.BatchSummary{ID: "b-1", CreatedAt: time.Now()}

	path, err := report.WriteFile(dir, summary, nil)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "no findings") {
		t.Fatalf("expected empty-findings marker in:\n%s", data)
	}
}
