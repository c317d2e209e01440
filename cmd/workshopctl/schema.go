package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
)

func newInitCmd(factory serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the tables and seed the default session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := factory(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			result, err := svc.schema.Init(ctx)
			if err != nil {
				return fmt.Errorf("init failed: %w", err)
			}
			printSchemaResult(cmd, result)
			return nil
		},
	}
}

func newMigrateCmd(factory serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Backfill session criteria and convert legacy score columns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := factory(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			result, err := svc.schema.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			printSchemaResult(cmd, result)
			return nil
		},
	}
}

func printSchemaResult(cmd *cobra.Command, result dto.SchemaOperationResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Message)
	if result.DefaultSessionSeeded {
		fmt.Fprintln(out, "  default session seeded")
	}
	if result.SessionsUpdated > 0 {
		fmt.Fprintf(out, "  sessions backfilled: %d\n", result.SessionsUpdated)
	}
	if result.SubmissionsMigrated > 0 {
		fmt.Fprintf(out, "  submissions migrated: %d\n", result.SubmissionsMigrated)
	}
}
