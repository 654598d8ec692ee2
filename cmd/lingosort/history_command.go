package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lingosort/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List past runs, or the documents of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return errors.New("history unavailable: ledger.enabled is false")
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(runs))
				return nil
			}

			run, err := store.FindRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			entries, err := store.Entries(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			printRunDetail(out, run, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list (0 lists all)")
	return cmd
}

func renderRunsTable(runs []ledger.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			string(run.Status),
			strconv.Itoa(run.Total),
			strconv.Itoa(run.Routed),
			strconv.Itoa(run.Failed),
			formatElapsed(run.Elapsed),
			yesNo(run.DryRun),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Status", "Total", "Routed", "Failed", "Elapsed", "Dry run"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

func printRunDetail(out io.Writer, run ledger.Run, entries []ledger.Entry) {
	fmt.Fprintf(out, "Run:      %s\n", run.ID)
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Status:   %s\n", run.Status)
	fmt.Fprintf(out, "Roots:    %s\n", strings.Join(run.Roots, ", "))
	fmt.Fprintf(out, "Output:   %s\n", run.OutputDir)
	fmt.Fprintf(out, "Backend:  %s (seed %d), %d workers\n", run.Backend, run.Seed, run.Workers)
	fmt.Fprintf(out, "Totals:   %d documents, %d routed, %d failed in %s\n", run.Total, run.Routed, run.Failed, formatElapsed(run.Elapsed))
	if len(entries) == 0 {
		fmt.Fprintln(out, "No documents recorded")
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.Destination
		if e.Error != "" {
			detail = e.Error
		}
		rows = append(rows, []string{string(e.Outcome), e.Language, e.Path, detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Lang", "File", "Destination / error"}, rows, nil))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
