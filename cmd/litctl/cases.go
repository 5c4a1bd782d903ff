package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"litrecord/internal/app"
	"litrecord/internal/domain"
	"litrecord/internal/service"
)

var (
	caseMode     string
	caseStatus   string
	caseOffset   int
	caseLimit    int
	setStatusArg string
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Manage cases",
}

var caseCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Open a new case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			created, err := a.Cases.Create(ctx, &service.CreateCaseInput{
				Name: args[0],
				Mode: domain.HandlingMode(caseMode),
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", created.ID, created.Mode, created.Name)
			return nil
		})
	},
}

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			cases, total, err := a.Cases.List(ctx, domain.CaseStatus(caseStatus), caseOffset, caseLimit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), cases)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tMODE\tNAME")
			for _, c := range cases {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Status, c.Mode, c.Name)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d cases\n", len(cases), total)
			return nil
		})
	},
}

var caseStatusCmd = &cobra.Command{
	Use:   "status <case-id>",
	Short: "Show or set the lifecycle status of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			var status domain.CaseStatus
			if setStatusArg != "" {
				updated, err := a.Cases.SetStatus(ctx, caseID, domain.CaseStatus(setStatusArg))
				if err != nil {
					return err
				}
				status = updated.Status
			} else {
				status, err = a.Cases.GetStatus(ctx, caseID)
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		})
	},
}

var caseToggleCmd = &cobra.Command{
	Use:   "toggle <case-id>",
	Short: "Switch a case between active and archived",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			updated, err := a.Cases.Toggle(ctx, caseID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), updated.Status)
			return nil
		})
	},
}

var caseDocsCmd = &cobra.Command{
	Use:   "documents <case-id>",
	Short: "List the documents ingested into a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			docs, err := a.Cases.ListDocuments(ctx, caseID)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), docs)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPAGES\tINGESTED\tFILENAME")
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", d.ID, d.PageCount, d.IngestedAt.Format("2006-01-02 15:04"), d.Filename)
			}
			return tw.Flush()
		})
	},
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

func init() {
	caseCreateCmd.Flags().StringVar(&caseMode, "mode", "", "Duplicate handling mode: hybrid, preserve or split")
	caseListCmd.Flags().StringVar(&caseStatus, "status", "", "Only cases with this status")
	caseListCmd.Flags().IntVar(&caseOffset, "offset", 0, "Number of cases to skip")
	caseListCmd.Flags().IntVar(&caseLimit, "limit", 50, "Maximum number of cases to list")
	caseStatusCmd.Flags().StringVar(&setStatusArg, "set", "", "New status: active or archived")

	caseCmd.AddCommand(caseCreateCmd, caseListCmd, caseStatusCmd, caseToggleCmd, caseDocsCmd)
	rootCmd.AddCommand(caseCmd)
}
