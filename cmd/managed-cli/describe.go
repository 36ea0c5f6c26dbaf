package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-managed/pkg/report"
)

func newDescribeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe TYPE",
		Short: "Print the extracted schema of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			structSchema, err := a.schema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			summary := report.Summarize(structSchema)

			switch format := a.v.GetString(keyFormat); format {
			case "json":
				return writeJSON(out, summary)
			case "full":
				return writeJSON(out, structSchema)
			case "markdown", "md":
				engine, err := report.New()
				if err != nil {
					return err
				}
				_, err = engine.Markdown(summary, out)
				return err
			case "html":
				engine, err := report.New()
				if err != nil {
					return err
				}
				_, err = engine.HTML(summary, out)
				return err
			default:
				return fmt.Errorf("managed-cli: unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringP(keyFormat, "f", "json", "output format: json, full, markdown or html")
	return cmd
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
