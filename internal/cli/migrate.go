package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eleven-am/eventhub/internal/store"
)

func newMigrateCommand() *cobra.Command {
	var createDBIfNotExists bool

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Apply, roll back or list the schema migrations embedded in the binary.
Migrations are tracked by goose in the goose_db_version table.`,
	}
	migrateCmd.PersistentFlags().BoolVar(&createDBIfNotExists, "create-db", false, "Create the database if it does not exist")

	withMigrator := func(fn func(ctx context.Context, cmd *cobra.Command, m *store.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := requireDatabaseURL(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			if createDBIfNotExists {
				if err := store.EnsureDatabaseExists(ctx, cfg.Database.URL); err != nil {
					return fmt.Errorf("failed to ensure database exists: %w", err)
				}
			}

			db, err := store.NewDBConfig(cfg.Database.URL).Connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := store.NewMigrator(db.DB)
			if err != nil {
				return err
			}
			return fn(ctx, cmd, m)
		}
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *store.Migrator) error {
			n, err := m.Up(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				cmd.Println("No pending migrations.")
				return nil
			}
			cmd.Printf("Applied %d migration(s).\n", n)
			return nil
		}),
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *store.Migrator) error {
			if err := m.Down(ctx); err != nil {
				return err
			}
			cmd.Println("Rolled back one migration.")
			return nil
		}),
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, m *store.Migrator) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			printStatus(cmd, statuses)
			return nil
		}),
	}

	migrateCmd.AddCommand(upCmd, downCmd, statusCmd)
	return migrateCmd
}

func printStatus(cmd *cobra.Command, statuses []store.MigrationStatus) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
	for _, s := range statuses {
		applied := "pending"
		if s.Applied {
			applied = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.Name, applied)
	}
	w.Flush()
}
