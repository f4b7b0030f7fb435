package main

import (
	"cbs/src/common"
	"cbs/src/db"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

// testAuthMiddleware stands in for the JWT middleware so handler tests can
// exercise binding and status mapping without a token round trip.
func testAuthMiddleware(ctx *gin.Context) {
	ctx.Set("id", uint(1))
}

func (s *TestSuite) SetupSuite() {
	registerValidators()

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestCreateBookingValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testAuthMiddleware)
	bookingHandlers(apiv1)

	post := func(body map[string]any) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		sbody, _ := json.Marshal(&body)
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)
		return w
	}

	s.Run("Should reject a body with missing fields", func() {
		w := post(map[string]any{"court_id": 1})
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject a start time in the past", func() {
		start := time.Now().Add(-2 * time.Hour)
		w := post(map[string]any{
			"court_id":   1,
			"start_time": start.Format(time.RFC3339),
			"end_time":   start.Add(time.Hour).Format(time.RFC3339),
		})
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject an end time before the start time", func() {
		start := time.Now().Add(2 * time.Hour)
		w := post(map[string]any{
			"court_id":   1,
			"start_time": start.Format(time.RFC3339),
			"end_time":   start.Add(-time.Hour).Format(time.RFC3339),
		})
		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestBookingErrorStatus() {
	cases := []struct {
		err    error
		status int
	}{
		{common.ErrCourtNotFound, http.StatusNotFound},
		{common.ErrCourtUnavailable, http.StatusBadRequest},
		{common.ErrSlotTaken, http.StatusConflict},
		{common.ErrSlotLockHeld, http.StatusConflict},
		{&common.PromotionInvalidError{Reason: "already used"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", common.ErrSlotTaken), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(s.T(), c.status, bookingErrorStatus(c.err))
	}
}

func (s *TestSuite) TestLockConflictReturnsConflictStatus() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testAuthMiddleware)
	bookingHandlers(apiv1)

	start := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	end := start.Add(time.Hour)

	// A live lease owned by someone else surfaces as an immediate 409; the
	// transactional path is never reached.
	s.Mock.ExpectBegin()
	s.Mock.ExpectExec(`DELETE FROM "slot_locks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "slot_locks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "court_id", "start_time", "end_time", "owner_id", "expires_at", "created_at"}).
			AddRow(1, 1, start, end, 99, time.Now().Add(30*time.Second), time.Now()))
	s.Mock.ExpectRollback()

	w := httptest.NewRecorder()
	body := map[string]any{
		"court_id":   1,
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}
	sbody, _ := json.Marshal(&body)
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 409, w.Code)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
