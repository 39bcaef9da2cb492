package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/deppfellow/estate-storage/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	msqlite "modernc.org/sqlite"
)

func TestGenerateErrorCode(t *testing.T) {
	tests := []struct {
		table string
		code  Code
		want  string
	}{
		{"users", UniqueViolation, "USER_ALREADY_EXISTS"},
		{"properties", NotNullViolation, "PROPERTY_REQUIRED"},
		{"property_images", ForeignKeyViolation, "PROPERTY_IMAGE_NOT_FOUND"},
		{"reviews", CheckViolation, "REVIEW_INVALID"},
		{"", Other, "RECORD_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, generateErrorCode(tt.table, tt.code))
		})
	}
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_users_email"))
	assert.Equal(t, "email", extractColumnForUniqueViolation("users_email_key"))
	assert.Equal(t, "reference", extractColumnForUniqueViolation("transactions_reference_ukey"))
	assert.Equal(t, "", extractColumnForUniqueViolation("users_pkey"))
	assert.Equal(t, "", extractColumnForUniqueViolation(""))
}

func TestHandleError_Postgres(t *testing.T) {
	pgErr := &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		TableName:      "users",
		ConstraintName: "users_email_key",
	}

	err := HandleError(fmt.Errorf("insert user: %w", pgErr))
	require.Error(t, err)

	var storeErr *errs.Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, errs.KindStore, storeErr.Kind)
	assert.Equal(t, "USER_ALREADY_EXISTS", storeErr.Code)
	assert.Equal(t, "A User with this Email already exists", storeErr.Message)
	assert.Equal(t, UniqueViolation, ErrCode(err))

	var original *pgconn.PgError
	assert.True(t, errors.As(err, &original), "driver error must stay reachable")
}

func TestHandleError_PostgresNotNull(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Severity:   "ERROR",
		Code:       "23502",
		TableName:  "properties",
		ColumnName: "listing_type",
	})

	var storeErr *errs.Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "PROPERTY_REQUIRED", storeErr.Code)
	assert.Equal(t, "The Listing Type is required", storeErr.Message)
	require.Len(t, storeErr.Errors, 1)
	assert.Equal(t, "listing_type", storeErr.Errors[0].Field)
}

func TestHandleError_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO users (email) VALUES ('a@example.com')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO users (email) VALUES ('a@example.com')`)
	require.Error(t, err)

	var liteErr *msqlite.Error
	require.True(t, errors.As(err, &liteErr))

	handled := HandleError(err)
	assert.True(t, errors.Is(handled, errs.ErrStore))
	assert.Equal(t, UniqueViolation, ErrCode(handled))

	var storeErr *errs.Error
	require.True(t, errors.As(handled, &storeErr))
	assert.Equal(t, "USER_ALREADY_EXISTS", storeErr.Code)
	assert.Equal(t, "A User with this Email already exists", storeErr.Message)

	_, err = db.ExecContext(ctx, `INSERT INTO users (email) VALUES (NULL)`)
	require.Error(t, err)
	assert.Equal(t, NotNullViolation, ErrCode(HandleError(err)))
}

func TestHandleError_Passthrough(t *testing.T) {
	assert.NoError(t, HandleError(nil))

	closed := errs.NewSessionClosedError("Save")
	assert.Same(t, closed, HandleError(closed))

	generic := HandleError(errors.New("connection reset"))
	assert.True(t, errors.Is(generic, errs.ErrStore))
	assert.Equal(t, Other, ErrCode(generic))

	canceled := HandleError(fmt.Errorf("query: %w", context.Canceled))
	assert.True(t, errors.Is(canceled, context.Canceled))
}
