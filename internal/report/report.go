// Package report renders findings for terminal display and file export.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"blockscan/internal/compare"
	"blockscan/internal/findings"
	"blockscan/internal/textutil"
)

// categoryLabels maps classifications to the bracketed category shown in
// exported lines.
var categoryLabels = map[compare.Classification]string{
	compare.ClassExactDuplicate: "EXACT DUPLICATE",
	compare.ClassLogicMatch:     "LOGIC MATCH",
	compare.ClassSharedAssets:   "SHARED ASSETS",
	compare.ClassVisualMatch:    "VISUAL MATCH",
	compare.ClassDuplicate:      "DUPLICATE",
}

func categoryLabel(class compare.Classification) string {
	if label, ok := categoryLabels[class]; ok {
		return label
	}
	return strings.ToUpper(string(class))
}

func metric(finding compare.Finding) string {
	switch finding.Classification {
	case compare.ClassExactDuplicate, compare.ClassDuplicate:
		return "hash=identical"
	case compare.ClassLogicMatch:
		return fmt.Sprintf("similarity=%.1f%%", finding.Score)
	case compare.ClassSharedAssets:
		return fmt.Sprintf("shared_assets=%d", finding.SharedAssets)
	case compare.ClassVisualMatch:
		return fmt.Sprintf("score=%.1f", finding.Score)
	default:
		return fmt.Sprintf("score=%.1f", finding.Score)
	}
}

// Line renders one finding as `[CATEGORY] ownerA vs ownerB | metric=value`.
func Line(finding compare.Finding) string {
	return fmt.Sprintf("[%s] %s vs %s | %s",
		categoryLabel(finding.Classification), finding.OwnerA, finding.OwnerB, metric(finding))
}

// Lines renders findings as export lines, deduplicated and sorted for a
// stable display order.
func Lines(results []compare.Finding) []string {
	seen := make(map[string]struct{}, len(results))
	lines := make([]string, 0, len(results))
	for _, finding := range results {
		line := Line(finding)
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}

// Headers returns the column headers for the findings table.
func Headers() []string {
	return []string{"Category", "Owner A", "Owner B", "Modality", "Metric", "Note"}
}

// Rows converts findings into table rows matching Headers.
func Rows(results []compare.Finding) [][]string {
	rows := make([][]string, 0, len(results))
	for _, finding := range results {
		rows = append(rows, []string{
			categoryLabel(finding.Classification),
			finding.OwnerA,
			finding.OwnerB,
			string(finding.Modality),
			metric(finding),
			finding.Note,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		for col := range rows[i] {
			if rows[i][col] != rows[j][col] {
				return rows[i][col] < rows[j][col]
			}
		}
		return false
	})
	return rows
}

// WriteFile exports a findings report with a header block to dir and returns
// the written path.
func WriteFile(dir string, summary *findings.BatchSummary, results []compare.Finding) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("batch summary is nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	name := textutil.SanitizeFileName(fmt.Sprintf("blockscan-%s-%s.txt",
		summary.CreatedAt.UTC().Format("20060102-150405"),
		textutil.SanitizeToken(summary.ID)))
	path := filepath.Join(dir, name)

	var b strings.Builder
	b.WriteString("blockscan findings report\n")
	fmt.Fprintf(&b, "generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "batch: %s (%s)\n", summary.ID, summary.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "inputs: %s\n", strings.Join(summary.Inputs, ", "))
	fmt.Fprintf(&b, "records: %s projects, %s images, %s videos\n",
		humanize.Comma(int64(summary.Projects)),
		humanize.Comma(int64(summary.Images)),
		humanize.Comma(int64(summary.Videos)))
	fmt.Fprintf(&b, "warnings: %d\n", len(summary.Warnings))
	for _, warning := range summary.Warnings {
		fmt.Fprintf(&b, "  %s\n", warning)
	}
	b.WriteString("\n")

	lines := Lines(results)
	if len(lines) == 0 {
		b.WriteString("no findings\n")
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
