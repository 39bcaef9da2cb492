package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// Embed all SQL files under migrations/ at compile time, one directory per
// dialect. Both use tern's file format.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. It is idempotent: tables are only
// created when absent and applied migrations are recorded.
func (db *Database) Migrate(ctx context.Context) error {
	return Migrate(ctx, db.log, db)
}

// Migrate runs the embedded migrations for db's dialect.
//
// PostgreSQL uses jackc/tern on a connection borrowed from the pool;
// SQLite uses the embedded applier in sqlite_migrate.go.
func Migrate(ctx context.Context, logger *zerolog.Logger, db *Database) error {
	subtree, err := fs.Sub(migrations, "migrations/"+db.Dialect.Name)
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	var from, to int
	switch db.Dialect.Name {
	case Postgres.Name:
		from, to, err = migratePostgres(ctx, db.DB, subtree)
	case SQLite.Name:
		from, to, err = migrateSQLite(ctx, db.DB, subtree)
	default:
		err = fmt.Errorf("no migrations for dialect %q", db.Dialect.Name)
	}
	if err != nil {
		return err
	}

	if from == to {
		logger.Debug().Msgf("database schema up to date, version %d", to)
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, to)
	}
	return nil
}

func migratePostgres(ctx context.Context, sqlDB *sql.DB, subtree fs.FS) (int, int, error) {
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("acquiring migration connection: %w", err)
	}
	defer conn.Close()

	var from, to int
	err = conn.Raw(func(driverConn any) error {
		pgxConn := driverConn.(*stdlib.Conn).Conn()

		// The migrator stores its version in the schema_version table.
		m, err := tern.NewMigrator(ctx, pgxConn, "schema_version")
		if err != nil {
			return fmt.Errorf("constructing database migrator: %w", err)
		}

		if err := m.LoadMigrations(subtree); err != nil {
			return fmt.Errorf("loading database migrations: %w", err)
		}

		current, err := m.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("retrieving current database migration version: %w", err)
		}
		from = int(current)

		if err := m.Migrate(ctx); err != nil {
			return err
		}
		to = len(m.Migrations)
		return nil
	})
	return from, to, err
}
