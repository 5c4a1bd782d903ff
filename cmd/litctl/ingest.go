package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"litrecord/internal/app"
	"litrecord/internal/service"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <case-id> <file.pdf>...",
	Short: "Split, deduplicate and classify PDF documents into a case",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}

		files := make([]service.IngestFileInput, 0, len(args)-1)
		for _, path := range args[1:] {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			files = append(files, service.IngestFileInput{Filename: filepath.Base(path), Content: content})
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			results, err := a.Ingest.IngestBatch(ctx, caseID, files)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), results)
			}

			failed := 0
			for _, r := range results {
				if !r.Success {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %s\n", r.Filename, r.Error)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK    %s: %d pages, %d duplicates (document %s)\n",
					r.Filename, r.Result.PagesCreated, r.Result.DuplicatesFound, r.Result.DocumentID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
