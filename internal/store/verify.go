package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
)

// Problem is one difference between the live schema and what the application reads and writes
type Problem struct {
	Table  string
	Column string
}

func (p Problem) String() string {
	if p.Column == "" {
		return fmt.Sprintf("missing table %s", p.Table)
	}
	return fmt.Sprintf("missing column %s.%s", p.Table, p.Column)
}

// Verify inspects the live schema with atlas and reports every required
// table or column that does not exist
func Verify(ctx context.Context, db *sql.DB, schemaName string, required map[string][]string) ([]Problem, error) {
	driver, err := postgres.Open(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create inspection driver: %w", err)
	}

	live, err := driver.InspectSchema(ctx, schemaName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}

	return compare(live, required), nil
}

func compare(live *schema.Schema, required map[string][]string) []Problem {
	tables := make([]string, 0, len(required))
	for name := range required {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	var problems []Problem
	for _, name := range tables {
		table, ok := live.Table(name)
		if !ok {
			problems = append(problems, Problem{Table: name})
			continue
		}
		for _, col := range required[name] {
			if _, ok := table.Column(col); !ok {
				problems = append(problems, Problem{Table: name, Column: col})
			}
		}
	}
	return problems
}
