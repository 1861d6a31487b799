package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"blockscan/internal/compare"
	"blockscan/internal/findings"
	"blockscan/internal/ingest"
	"blockscan/internal/report"
	"blockscan/internal/textutil"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var writeReport bool
	var noSave bool

	cmd := &cobra.Command{
		Use:   "analyze <input>...",
		Short: "Ingest submissions and flag suspicious pairs",
		Long: `Analyze ingests one or more submission inputs, each either a flat
submission file or a container archive organized by owner-named folders,
compares every pair within each modality, and records the findings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			inputs, err := readInputs(args)
			if err != nil {
				return err
			}

			walker := ingest.NewWalker(cfg, logger)
			batch, err := walker.Walk(signalCtx, inputs)
			if err != nil {
				return err
			}

			engine := compare.NewEngine(compare.OptionsFromConfig(cfg), logger)
			results, err := engine.Compare(signalCtx, batch)
			if err != nil {
				return err
			}

			var reportPath string
			if !noSave {
				store, err := findings.Open(cfg)
				if err != nil {
					return err
				}
				defer store.Close()

				if err := store.SaveBatch(signalCtx, batch, results); err != nil {
					return fmt.Errorf("save batch: %w", err)
				}
				if writeReport {
					summary, err := store.GetBatch(signalCtx, batch.ID)
					if err != nil {
						return err
					}
					reportPath, err = report.WriteFile(cfg.Paths.ReportDir, summary, results)
					if err != nil {
						return err
					}
				}
			}

			if jsonOutput {
				return writeJSON(cmd, newAnalyzePayload(batch, results, reportPath))
			}
			renderAnalyzeOutput(cmd, batch, results, reportPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	cmd.Flags().BoolVar(&writeReport, "report", false, "Export a findings report file")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Skip persisting the batch to the findings database")
	return cmd
}

func readInputs(paths []string) ([]ingest.Input, error) {
	inputs := make([]ingest.Input, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read input %s: %w", path, err)
		}
		inputs = append(inputs, ingest.Input{Name: filepath.Base(path), Data: data})
	}
	return inputs, nil
}

func renderAnalyzeOutput(cmd *cobra.Command, batch *ingest.Batch, results []compare.Finding, reportPath string) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Batch %s: %d projects, %d images, %d videos\n",
		batch.ID, len(batch.Projects), len(batch.Images), len(batch.Videos))

	for _, warning := range batch.Warnings {
		fmt.Fprintf(out, "warning: %s: %s\n", warning.Path, warning.Message)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No findings")
	} else {
		fmt.Fprintf(out, "%d %s\n", len(results),
			textutil.Ternary(len(results) == 1, "finding", "findings"))
		fmt.Fprintln(out, renderTable(report.Headers(), report.Rows(results), nil))
	}

	if reportPath != "" {
		fmt.Fprintf(out, "Report written to %s\n", reportPath)
	}
}
