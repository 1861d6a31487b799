package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"blockscan/internal/findings"
	"blockscan/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var exportFile bool
	var batchID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show findings from a stored analysis batch",
		Long: `Report prints the findings recorded by a previous analyze run. Without
--batch it shows the most recent batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := findings.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			reqCtx := cmd.Context()
			id := batchID
			if id == "" {
				id, err = store.LatestBatchID(reqCtx)
				if errors.Is(err, findings.ErrBatchNotFound) {
					return fmt.Errorf("no stored batches; run `blockscan analyze` first")
				}
				if err != nil {
					return err
				}
			}

			summary, err := store.GetBatch(reqCtx, id)
			if err != nil {
				return err
			}
			results, err := store.ListFindings(reqCtx, id)
			if err != nil {
				return err
			}

			var reportPath string
			if exportFile {
				reportPath, err = report.WriteFile(cfg.Paths.ReportDir, summary, results)
				if err != nil {
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd, reportPayload{
					Batch:    newSummaryPayload(summary),
					Findings: newFindingPayloads(results),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %s (%s): %d projects, %d images, %d videos\n",
				summary.ID, summary.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				summary.Projects, summary.Images, summary.Videos)
			for _, warning := range summary.Warnings {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No findings")
			} else {
				for _, line := range report.Lines(results) {
					fmt.Fprintln(out, line)
				}
			}
			if reportPath != "" {
				fmt.Fprintf(out, "Report written to %s\n", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	cmd.Flags().BoolVar(&exportFile, "export", false, "Export a findings report file")
	cmd.Flags().StringVar(&batchID, "batch", "", "Batch identifier (defaults to the most recent)")
	return cmd
}

func newBatchesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List stored analysis batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := findings.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.ListBatches(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				payloads := make([]summaryPayload, 0, len(summaries))
				for i := range summaries {
					payloads = append(payloads, newSummaryPayload(&summaries[i]))
				}
				return writeJSON(cmd, payloads)
			}

			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored batches")
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, summary := range summaries {
				rows = append(rows, []string{
					summary.ID,
					summary.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(summary.Projects),
					strconv.Itoa(summary.Images),
					strconv.Itoa(summary.Videos),
					strconv.Itoa(summary.Findings),
				})
			}
			headers := []string{"Batch", "Created", "Projects", "Images", "Videos", "Findings"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	return cmd
}
