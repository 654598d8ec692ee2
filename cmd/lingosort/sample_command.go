package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lingosort/internal/batch"
	"lingosort/internal/language"
)

func newSampleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sample FILE",
		Short: "Show the excerpt and detected language of one document without moving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			inspection, err := batch.Inspect(cmd.Context(), cfg, args[0], batch.Options{Logger: logger})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:        %s\n", inspection.Path)
			fmt.Fprintf(out, "Words:       %d\n", inspection.Words)
			fmt.Fprintf(out, "Seed:        %d\n", inspection.Seed)
			switch {
			case inspection.Excerpt == "":
				fmt.Fprintln(out, "Language:    none (no text extracted)")
			case !inspection.Result.Recognized():
				fmt.Fprintln(out, "Language:    unrecognized")
			default:
				fmt.Fprintf(out, "Language:    %s (%s), confidence %.2f\n",
					inspection.Result.Code, language.DisplayName(inspection.Result.Code), inspection.Result.Confidence)
			}
			if inspection.Routable {
				fmt.Fprintf(out, "Destination: %s\n", inspection.Placement.Path)
			} else {
				fmt.Fprintln(out, "Destination: stays in place")
			}
			if inspection.Excerpt != "" {
				fmt.Fprintf(out, "Excerpt:\n  %s\n", inspection.Excerpt)
			}
			return nil
		},
	}
}
