package clinic

// Minimal sqlmock tests to verify error propagation when the database
// misbehaves in ways an in-memory SQLite instance cannot reproduce.

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVerifiedDoctors_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM doctors WHERE is_verified").
		WillReturnError(assert.AnError)

	store := NewStore(db)
	_, err = store.ListVerifiedDoctors(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDoctors_CommitError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE doctors").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(assert.AnError)

	store := NewStore(db)
	d := testDoctor("D0001")
	d.UpdatedAt = time.Now()

	err = store.SaveDoctors(context.Background(), []*Doctor{d})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDoctors_EmptyBatchIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No expectations registered: an empty batch must not touch the DB.
	store := NewStore(db)
	require.NoError(t, store.SaveDoctors(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
