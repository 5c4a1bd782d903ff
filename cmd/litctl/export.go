package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"litrecord/internal/app"
	"litrecord/internal/service"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <case-id>",
	Short: "Write the chronology index of a case as xlsx or csv",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			var out *service.ExportOutput
			switch exportFormat {
			case "xlsx":
				out, err = a.Export.Export(ctx, caseID)
			case "csv":
				out, err = a.Export.ExportCSV(ctx, caseID)
			default:
				return fmt.Errorf("unknown format %q: want xlsx or csv", exportFormat)
			}
			if err != nil {
				return err
			}
			path := exportOutput
			if path == "" {
				path = out.Filename
			}
			if err := os.WriteFile(path, out.Content, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (defaults to a name derived from the case)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "Output format: xlsx or csv")
	rootCmd.AddCommand(exportCmd)
}
