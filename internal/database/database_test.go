package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db, SQLite))
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openMigrated(t)
	require.NoError(t, Migrate(context.Background(), db, SQLite))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n))
	assert.Zero(t, n)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	require.Error(t, err)
}

func TestLockClause(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", MySQL.LockClause())
	assert.Empty(t, SQLite.LockClause())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1213}))
	assert.False(t, IsUniqueViolation(nil))

	db := openMigrated(t)
	now := time.Now().UTC()
	insert := func() error {
		_, err := db.Exec(`INSERT INTO page_content (page_name, content, updated_at) VALUES ('about', 'x', ?)`, now)
		return err
	}
	require.NoError(t, insert())
	assert.True(t, IsUniqueViolation(insert()))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1205}))
	assert.False(t, IsTransient(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsTransient(errors.New("boom")))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openMigrated(t)
	boom := errors.New("boom")
	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO page_content (page_name, content, updated_at) VALUES ('faq', 'x', ?)`, time.Now().UTC())
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM page_content`).Scan(&n))
	assert.Zero(t, n)
}

func TestWithTx_RetriesTransientOnce(t *testing.T) {
	db := openMigrated(t)
	calls := 0
	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		calls++
		return &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
	})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 2, calls)
}

func TestWithTx_NoRetryForOtherErrors(t *testing.T) {
	db := openMigrated(t)
	calls := 0
	_ = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		calls++
		return errors.New("business rule")
	})
	assert.Equal(t, 1, calls)
}
