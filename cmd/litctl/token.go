package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"litrecord/internal/auth"
	"litrecord/internal/config"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue a bearer token for the HTTP API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		tokens := auth.NewTokenService(cfg.JWT)
		if tokens == nil {
			return errors.New("LITRECORD_JWT_SECRET is not set; the API does not require tokens")
		}
		token, err := tokens.Issue(args[0], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
