package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/eleven-am/eventhub/internal/logger"
)

// EnsureDatabaseExists connects to the maintenance database of the server
// named by dsn and creates the target database when it is missing
func EnsureDatabaseExists(ctx context.Context, dsn string) error {
	dbName, adminDSN, err := parseDSNForDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN: %w", err)
	}

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}
	defer db.Close()

	_, err = createDatabase(ctx, db, dbName)
	return err
}

// createDatabase reports whether the database had to be created
func createDatabase(ctx context.Context, db *sql.DB, dbName string) (bool, error) {
	log := logger.DB()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := db.QueryRowContext(ctx, query, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return false, nil
	}

	log.Info().Str("database", dbName).Msg("database does not exist, creating")

	createSQL := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(dbName))
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return false, fmt.Errorf("failed to create database '%s': %w", dbName, err)
	}

	log.Info().Str("database", dbName).Msg("database created")
	return true, nil
}

// parseDSNForDB extracts the database name and returns a DSN for the
// "postgres" maintenance database on the same server
func parseDSNForDB(dsn string) (dbName string, adminDSN string, err error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("invalid database URL: %w", err)
		}
		dbName = strings.TrimPrefix(u.Path, "/")
		if dbName == "" || strings.Contains(dbName, "/") {
			return "", "", fmt.Errorf("invalid database URL format")
		}
		u.Path = "/postgres"
		return dbName, u.String(), nil
	}

	var adminParts []string
	for _, kv := range strings.Fields(dsn) {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if key == "dbname" {
			dbName = value
			value = "postgres"
		}
		adminParts = append(adminParts, key+"="+value)
	}
	if dbName == "" {
		return "", "", fmt.Errorf("no database name found in DSN")
	}

	return dbName, strings.Join(adminParts, " "), nil
}

// quoteIdentifier quotes a PostgreSQL identifier to prevent SQL injection
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// DatabaseURL builds a database URL from components
func DatabaseURL(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     "/" + dbname,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}
