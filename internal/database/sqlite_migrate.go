package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

const sqliteMigrationTable = "schema_migrations"

// ternSeparator splits a tern migration into its up and down halves.
const ternSeparator = "---- create above / drop below ----"

// migrateSQLite applies every embedded migration at most once, recording
// each file name in schema_migrations. It returns the number of applied
// migrations before and after the run.
func migrateSQLite(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS) (int, int, error) {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return 0, 0, fmt.Errorf("read migrations dir: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);`, sqliteMigrationTable)
	if _, err := sqlDB.ExecContext(ctx, createSQL); err != nil {
		return 0, 0, fmt.Errorf("ensure migration table: %w", err)
	}

	from := 0
	to := 0
	for _, file := range sqlFiles {
		applied, err := isApplied(ctx, sqlDB, file)
		if err != nil {
			return 0, 0, fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied {
			from++
			to++
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return 0, 0, fmt.Errorf("read migration %s: %w", file, err)
		}

		if err := applySQLiteMigration(ctx, sqlDB, file, extractUpMigration(string(content))); err != nil {
			return 0, 0, err
		}
		to++
	}

	return from, to, nil
}

func applySQLiteMigration(ctx context.Context, sqlDB *sql.DB, file, upSQL string) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction %s: %w", file, err)
	}

	if strings.TrimSpace(upSQL) != "" {
		if _, err := tx.ExecContext(ctx, upSQL); err != nil && !isAlreadyExistsError(err) {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", sqliteMigrationTable),
		file,
		time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", file, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file, err)
	}
	return nil
}

// extractUpMigration returns the part of a tern migration above the
// separator, or the whole file when there is none.
func extractUpMigration(content string) string {
	if idx := strings.Index(content, ternSeparator); idx >= 0 {
		return content[:idx]
	}
	return content
}

func isAlreadyExistsError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

func isApplied(ctx context.Context, sqlDB *sql.DB, name string) (bool, error) {
	var found int
	err := sqlDB.QueryRowContext(ctx, "SELECT 1 FROM "+sqliteMigrationTable+" WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
