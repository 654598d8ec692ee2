package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lingosort/internal/batch"
	"lingosort/internal/language"
	"lingosort/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var workers int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run [ROOT...]",
		Short: "Classify documents and move them into per-language directories",
		Long: "Scan ROOT directories (or paths.root_dirs) for documents, detect the language of each\n" +
			"and move it into the matching directory under the output tree. Documents in languages\n" +
			"without a routing entry stay where they are.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers < 0 {
				return errors.New("--workers must be >= 0")
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			report, err := batch.Run(cmd.Context(), cfg, batch.Options{
				Roots:     args,
				OutputDir: outputDir,
				Workers:   workers,
				DryRun:    dryRun,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRunReport(out, report)
			if isTerminal(out) {
				fmt.Fprintln(out, renderSummaryTable(report.Summary))
			}
			if report.Cancelled {
				fmt.Fprintln(cmd.ErrOrStderr(), "Run interrupted; unprocessed documents were left in place")
				return context.Canceled
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides paths.output_dir)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker count (overrides workers.count; 0 keeps the configured value)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify and log destinations without moving files")
	return cmd
}

func printRunReport(out io.Writer, report batch.Report) {
	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(out, "Run %s%s\n", report.RunID, mode)
	fmt.Fprintf(out, "Processed %d of %d documents with %d workers (%d logical CPUs)\n",
		report.Summary.Total, report.Queued, report.Workers, report.LogicalCPUs)
	fmt.Fprintf(out, "Outcomes: %s\n", outcomeLine(report.Summary))
	if report.RunLogPath != "" {
		fmt.Fprintf(out, "Run log: %s\n", report.RunLogPath)
	}
	fmt.Fprintf(out, "Elapsed time: %.2f seconds\n", report.Elapsed.Seconds())
}

func outcomeLine(summary workflow.Summary) string {
	parts := make([]string, 0, len(workflow.Outcomes))
	for _, o := range workflow.Outcomes {
		if n := summary.Count(o); n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", o, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func renderSummaryTable(summary workflow.Summary) string {
	rows := make([][]string, 0, len(workflow.Outcomes)+len(summary.Languages))
	for _, o := range workflow.Outcomes {
		if n := summary.Count(o); n > 0 {
			rows = append(rows, []string{string(o), "", strconv.Itoa(n)})
		}
	}
	for _, code := range summary.LanguageCodes() {
		rows = append(rows, []string{string(workflow.OutcomeRouted), code + " " + language.DisplayName(code), strconv.Itoa(summary.Languages[code])})
	}
	return renderTable([]string{"Outcome", "Language", "Documents"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
