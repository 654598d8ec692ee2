package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"lingosort/internal/organizer"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Show the language routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, err := organizer.NewTable(cfg.Routing.Languages)
			if err != nil {
				return err
			}
			entries := table.Entries()
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Code, e.Name, filepath.Join(cfg.Paths.OutputDir, e.Directory)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Code", "Language", "Directory"}, rows, nil))
			fmt.Fprintln(out, "Documents in other languages stay where they are.")
			return nil
		},
	}
}
