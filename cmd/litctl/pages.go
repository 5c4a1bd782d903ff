package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"litrecord/internal/app"
	"litrecord/internal/domain"
)

var pageCategory string

var pagesCmd = &cobra.Command{
	Use:   "pages <case-id>",
	Short: "List the pages of a case in display order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			pages, err := a.Pages.ListByCategory(ctx, caseID, pageCategory)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), pages)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POS\tPAGE\tCATEGORY\tDOCUMENT\tINDEX")
			for _, p := range pages {
				category := string(p.Category)
				if p.ManualOverride {
					category += " (manual)"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.DisplayPosition, p.ID, category, p.DocumentID, p.PageIndex)
			}
			return tw.Flush()
		})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <page-id> <category>",
	Short: "Manually assign a category to a page",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			page, err := a.Pages.SetCategory(ctx, pageID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %s -> %s\n", page.ID, page.Category)
			return nil
		})
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <case-id> <page-id> <position>",
	Short: "Move a page to a new display position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		pageID, err := parseID(args[1])
		if err != nil {
			return err
		}
		position, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[2], domain.ErrInvalidTransition)
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			page, err := a.Pages.Reorder(ctx, caseID, pageID, position)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %s now at position %d\n", page.ID, page.DisplayPosition)
			return nil
		})
	},
}

var reclassifyCmd = &cobra.Command{
	Use:   "reclassify <case-id>",
	Short: "Re-run the classifier over every automatically classified page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			changed, err := a.Pages.Reclassify(ctx, caseID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pages reclassified\n", changed)
			return nil
		})
	},
}

func init() {
	pagesCmd.Flags().StringVar(&pageCategory, "category", "", "Only pages in this category")
	rootCmd.AddCommand(pagesCmd, moveCmd, reorderCmd, reclassifyCmd)
}
