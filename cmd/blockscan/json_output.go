package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"blockscan/internal/compare"
	"blockscan/internal/findings"
	"blockscan/internal/ingest"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type findingPayload struct {
	OwnerA         string  `json:"owner_a"`
	OwnerB         string  `json:"owner_b"`
	Modality       string  `json:"modality"`
	Classification string  `json:"classification"`
	Score          float64 `json:"score"`
	SharedAssets   int     `json:"shared_assets,omitempty"`
	Note           string  `json:"note,omitempty"`
}

type warningPayload struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type batchPayload struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Inputs    []string         `json:"inputs"`
	Projects  int              `json:"projects"`
	Images    int              `json:"images"`
	Videos    int              `json:"videos"`
	Warnings  []warningPayload `json:"warnings,omitempty"`
}

type analyzePayload struct {
	Batch      batchPayload     `json:"batch"`
	Findings   []findingPayload `json:"findings"`
	ReportPath string           `json:"report_path,omitempty"`
}

func newFindingPayloads(results []compare.Finding) []findingPayload {
	payloads := make([]findingPayload, 0, len(results))
	for _, finding := range results {
		payloads = append(payloads, findingPayload{
			OwnerA:         finding.OwnerA,
			OwnerB:         finding.OwnerB,
			Modality:       string(finding.Modality),
			Classification: string(finding.Classification),
			Score:          finding.Score,
			SharedAssets:   finding.SharedAssets,
			Note:           finding.Note,
		})
	}
	return payloads
}

func newAnalyzePayload(batch *ingest.Batch, results []compare.Finding, reportPath string) analyzePayload {
	warnings := make([]warningPayload, 0, len(batch.Warnings))
	for _, warning := range batch.Warnings {
		warnings = append(warnings, warningPayload{Path: warning.Path, Message: warning.Message})
	}
	return analyzePayload{
		Batch: batchPayload{
			ID:        batch.ID,
			CreatedAt: batch.CreatedAt,
			Inputs:    batch.Inputs,
			Projects:  len(batch.Projects),
			Images:    len(batch.Images),
			Videos:    len(batch.Videos),
			Warnings:  warnings,
		},
		Findings:   newFindingPayloads(results),
		ReportPath: reportPath,
	}
}

type reportPayload struct {
	Batch    summaryPayload   `json:"batch"`
	Findings []findingPayload `json:"findings"`
}

type summaryPayload struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Inputs    []string  `json:"inputs"`
	Projects  int       `json:"projects"`
	Images    int       `json:"images"`
	Videos    int       `json:"videos"`
	Warnings  []string  `json:"warnings,omitempty"`
	Findings  int       `json:"findings"`
}

func newSummaryPayload(summary *findings.BatchSummary) summaryPayload {
	return summaryPayload{
		ID:        summary.ID,
		CreatedAt: summary.CreatedAt,
		Inputs:    summary.Inputs,
		Projects:  summary.Projects,
		Images:    summary.Images,
		Videos:    summary.Videos,
		Warnings:  summary.Warnings,
		Findings:  summary.Findings,
	}
}
