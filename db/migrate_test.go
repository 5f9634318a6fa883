package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMigrateCreatesSchema(t *testing.T) {
	conn := openMemoryDB(t)
	require.NoError(t, Migrate(conn, nil))

	for _, table := range []string{"doctors", "doctor_schedule_overrides", "appointment_reminders", "job_executions", "backups"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "expected table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := openMemoryDB(t)
	require.NoError(t, Migrate(conn, nil))
	require.NoError(t, Migrate(conn, nil))

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 6, count)
}
