package common

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	cbsdb "cbs/src/db"
	"cbs/src/models"
	"cbs/src/types"
)

func TestCompletionPoints(t *testing.T) {
	assert.Equal(t, 100, CompletionPoints(100000))
	assert.Equal(t, 0, CompletionPoints(999))
	assert.Equal(t, 0, CompletionPoints(-500))
}

func TestInOffPeakWindow(t *testing.T) {
	assert.True(t, InOffPeakWindow(6, 6, 9))
	assert.True(t, InOffPeakWindow(8, 6, 9))
	assert.False(t, InOffPeakWindow(9, 6, 9))
	assert.False(t, InOffPeakWindow(5, 6, 9))
}

func TestConsecutiveDedupeKeyScopesToCalendarMonth(t *testing.T) {
	sameMonth := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	laterSameMonth := time.Date(2026, 9, 28, 22, 0, 0, 0, time.UTC)
	nextMonth := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, ConsecutiveDedupeKey(7, sameMonth), ConsecutiveDedupeKey(7, laterSameMonth))
	assert.NotEqual(t, ConsecutiveDedupeKey(7, sameMonth), ConsecutiveDedupeKey(7, nextMonth))
	assert.NotEqual(t, ConsecutiveDedupeKey(7, sameMonth), ConsecutiveDedupeKey(8, sameMonth))
}

func TestRewardCascadeIsolatesFailingRule(t *testing.T) {
	d, mock := newMockDB(t)
	cbsdb.NewDB(d)

	// Booked at a local hour inside the default off-peak window so the second
	// rule fires.
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day()+1, 7, 0, 0, 0, time.Local)
	reservation := models.Reservation{
		ID:        12,
		UserID:    3,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    types.RESERVATION_PENDING,
	}

	// The first-booking rule blows up mid-transaction; the off-peak rule must
	// still award in its own transaction.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reward_ledger_entries"`).
		WillReturnError(errors.New("ledger unavailable"))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "reward_ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	RunRewardCascade(&reservation)
	assert.Nil(t, mock.ExpectationsWereMet())
}
