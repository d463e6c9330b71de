package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eleven-am/eventhub/internal/repository"
	"github.com/eleven-am/eventhub/internal/store"
)

func newVerifyCommand() *cobra.Command {
	var schemaName string

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the database schema",
		Long: `Inspect the live database and report every table or column the API
reads or writes that is missing. Exits non-zero when problems are found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabaseURL(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := store.NewDBConfig(cfg.Database.URL).Connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			problems, err := store.Verify(ctx, db.DB, schemaName, repository.Tables())
			if err != nil {
				return err
			}
			return reportProblems(cmd, problems)
		},
	}
	verifyCmd.Flags().StringVar(&schemaName, "schema", "", "schema to inspect (default: the connection's current schema)")

	return verifyCmd
}

func reportProblems(cmd *cobra.Command, problems []store.Problem) error {
	if len(problems) == 0 {
		cmd.Println("Schema OK.")
		return nil
	}
	for _, p := range problems {
		cmd.Println(" -", p)
	}
	return fmt.Errorf("schema verification failed: %d problem(s)", len(problems))
}
