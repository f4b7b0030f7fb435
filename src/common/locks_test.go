package common

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	cbsdb "cbs/src/db"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

var slotLockColumns = []string{"id", "court_id", "start_time", "end_time", "owner_id", "expires_at", "created_at"}

func TestReleaseSlotLockIsIdempotent(t *testing.T) {
	d, mock := newMockDB(t)
	cbsdb.NewDB(d)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "slot_locks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	deleted, err := ReleaseSlotLock(1, time.Now(), time.Now().Add(time.Hour), 7)
	assert.Nil(t, err)
	assert.False(t, deleted)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestAcquireSlotLockFresh(t *testing.T) {
	d, mock := newMockDB(t)
	cbsdb.NewDB(d)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "slot_locks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "slot_locks"`).WillReturnRows(sqlmock.NewRows(slotLockColumns))
	mock.ExpectQuery(`INSERT INTO "slot_locks"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)
	lock, err := AcquireSlotLock(1, start, end, 7, 30*time.Second)
	assert.Nil(t, err)
	assert.NotNil(t, lock)
	assert.Equal(t, uint(7), lock.OwnerID)
	assert.True(t, lock.ExpiresAt.After(time.Now()))
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestAcquireSlotLockHeldByOther(t *testing.T) {
	d, mock := newMockDB(t)
	cbsdb.NewDB(d)

	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "slot_locks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "slot_locks"`).
		WillReturnRows(sqlmock.NewRows(slotLockColumns).
			AddRow(1, 1, start, end, 2, time.Now().Add(30*time.Second), time.Now()))
	mock.ExpectRollback()

	lock, err := AcquireSlotLock(1, start, end, 7, 30*time.Second)
	assert.Nil(t, lock)
	assert.ErrorIs(t, err, ErrSlotLockHeld)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestAcquireSlotLockRenewal(t *testing.T) {
	d, mock := newMockDB(t)
	cbsdb.NewDB(d)

	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "slot_locks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "slot_locks"`).
		WillReturnRows(sqlmock.NewRows(slotLockColumns).
			AddRow(1, 1, start, end, 7, time.Now().Add(5*time.Second), time.Now()))
	mock.ExpectExec(`UPDATE "slot_locks"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lock, err := AcquireSlotLock(1, start, end, 7, 30*time.Second)
	assert.Nil(t, err)
	assert.NotNil(t, lock)
	assert.True(t, lock.ExpiresAt.After(time.Now().Add(20*time.Second)))
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestAcquireSlotLockInsertRaceLoser(t *testing.T) {
	d, mock := newMockDB(t)
	cbsdb.NewDB(d)

	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	// Both racers pass the lookup before either insert lands; the loser's
	// insert collides on the unique key and must read as a held lock.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "slot_locks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "slot_locks"`).WillReturnRows(sqlmock.NewRows(slotLockColumns))
	mock.ExpectQuery(`INSERT INTO "slot_locks"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_slot_lock_key" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	lock, err := AcquireSlotLock(1, start, end, 7, 30*time.Second)
	assert.Nil(t, lock)
	assert.ErrorIs(t, err, ErrSlotLockHeld)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestAcquireSlotLockAfterExpiry(t *testing.T) {
	d, mock := newMockDB(t)
	cbsdb.NewDB(d)

	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	// The previous holder's lease has lapsed: the sweep removes it and a
	// different owner takes the slot fresh.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "slot_locks"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "slot_locks"`).WillReturnRows(sqlmock.NewRows(slotLockColumns))
	mock.ExpectQuery(`INSERT INTO "slot_locks"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	lock, err := AcquireSlotLock(1, start, end, 8, 30*time.Second)
	assert.Nil(t, err)
	assert.NotNil(t, lock)
	assert.Equal(t, uint(8), lock.OwnerID)
	assert.Nil(t, mock.ExpectationsWereMet())
}
