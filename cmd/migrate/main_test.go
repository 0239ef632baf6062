package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"paysera-app/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE payments (id int);
ALTER TABLE payments ADD COLUMN order_id text;

-- +migrate Down
DROP TABLE payments;
`
	t.Run("Extract Up", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE payments")
		assert.Contains(t, up, "ALTER TABLE payments")
		assert.NotContains(t, up, "DROP TABLE payments")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("Extract Down", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE payments")
		assert.NotContains(t, down, "CREATE TABLE payments")
	})
}

func TestDatabaseURL(t *testing.T) {
	t.Run("DB_URL wins", func(t *testing.T) {
		t.Setenv("DB_URL", "postgres://u:p@db/app")
		assert.Equal(t, "postgres://u:p@db/app", databaseURL(&config.Config{DBHost: "other"}))
	})

	t.Run("Falls back to DB_*", func(t *testing.T) {
		t.Setenv("DB_URL", "")
		got := databaseURL(&config.Config{DBHost: "localhost", DBUser: "u", DBName: "app", DBPort: "5432"})
		assert.Contains(t, got, "host=localhost")
		assert.Contains(t, got, "dbname=app")
	})

	t.Run("Nothing configured", func(t *testing.T) {
		t.Setenv("DB_URL", "")
		assert.Empty(t, databaseURL(&config.Config{}))
	})
}

func writeMigration(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunMigrationsUp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first := writeMigration(t, dir, "0001_init.sql", "-- +migrate Up\nCREATE TABLE test (id int);\n-- +migrate Down\nDROP TABLE test;")
	second := writeMigration(t, dir, "0002_more.sql", "-- +migrate Up\nCREATE TABLE more (id int);\n-- +migrate Down\nDROP TABLE more;")

	t.Run("Applies pending and skips applied", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0001_init.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0002_more.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE more").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs("0002_more.sql").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, runMigrationsUp(ctx, db, []string{first, second}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failed migration rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
			WithArgs("0001_init.sql").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE test").WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		err = runMigrationsUp(ctx, db, []string{first})
		assert.ErrorContains(t, err, "0001_init.sql")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunMigrationsDown(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	file := writeMigration(t, dir, "0001_init.sql", "-- +migrate Up\nCREATE TABLE test (id int);\n-- +migrate Down\nDROP TABLE test;")

	t.Run("Rolls back latest", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_init.sql"))
		mock.ExpectBegin()
		mock.ExpectExec("DROP TABLE test").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM schema_migrations").
			WithArgs("0001_init.sql").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, runMigrationsDown(ctx, db, []string{file}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing applied", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}))

		require.NoError(t, runMigrationsDown(ctx, db, []string{file}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing file", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0009_gone.sql"))

		err = runMigrationsDown(ctx, db, []string{file})
		assert.ErrorContains(t, err, "0009_gone.sql")
	})
}

func TestRun_UnknownMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = run(context.Background(), db, "sideways", t.TempDir())
	assert.ErrorContains(t, err, "unknown mode")
}
