package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/infras/otel/mocks"
	"resort/infras/postgres"
	"resort/internal/domains/booking/model"
	"resort/internal/domains/booking/repository"
	"resort/shared"
	"resort/shared/constant"
)

const bookedUnits = "SELECT COALESCE(SUM(rooms), 0) FROM bookings WHERE room_id = $1 AND status = $2 AND check_in < $3 AND check_out > $4"

func newRepository(t *testing.T) (repository.Booking, sqlmock.Sqlmock, *sqlx.DB) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	db := sqlx.NewDb(sqlDB, "postgres")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return repository.New(&postgres.Connection{Read: db, Write: db}, mocks.NewOtel()), mock, db
}

func TestBookedUnits(t *testing.T) {
	repo, mock, _ := newRepository(t)

	checkIn := time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 3)

	mock.ExpectPrepare(bookedUnits).
		ExpectQuery().
		WithArgs("room-1", model.StatusConfirmed, checkOut, checkIn).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))

	units, err := repo.BookedUnits(context.Background(), "room-1", checkIn, checkOut)

	require.NoError(t, err)
	assert.Equal(t, 3, units)
}

func TestBookedUnits_QueryError(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectPrepare(bookedUnits).
		ExpectQuery().
		WillReturnError(errors.New("connection reset"))

	_, err := repo.BookedUnits(context.Background(), "room-1", time.Now(), time.Now().AddDate(0, 0, 1))

	assert.ErrorContains(t, err, "failed to sum booked units")
}

func TestLockAvailabilityTx(t *testing.T) {
	repo, mock, db := newRepository(t)

	checkIn := time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 2)

	mock.ExpectBegin()
	mock.ExpectPrepare("SELECT inventory FROM rooms WHERE id = $1 FOR UPDATE").
		ExpectQuery().
		WithArgs("room-1").
		WillReturnRows(sqlmock.NewRows([]string{"inventory"}).AddRow(2))
	mock.ExpectPrepare(bookedUnits).
		ExpectQuery().
		WithArgs("room-1", model.StatusConfirmed, checkOut, checkIn).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	inventory, booked, err := repo.LockAvailabilityTx(context.Background(), tx, "room-1", checkIn, checkOut)

	require.NoError(t, err)
	assert.Equal(t, 2, inventory)
	assert.Equal(t, 3, booked)
	require.NoError(t, tx.Rollback())
}

func TestLockAvailabilityTx_MissingRoom(t *testing.T) {
	repo, mock, db := newRepository(t)

	mock.ExpectBegin()
	mock.ExpectPrepare("SELECT inventory FROM rooms WHERE id = $1 FOR UPDATE").
		ExpectQuery().
		WithArgs("room-9").
		WillReturnRows(sqlmock.NewRows([]string{"inventory"}))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	_, _, err = repo.LockAvailabilityTx(context.Background(), tx, "room-9", time.Now(), time.Now().AddDate(0, 0, 1))

	assert.ErrorContains(t, err, "failed to lock room inventory")
	require.NoError(t, tx.Rollback())
}

func TestDelete_PaymentsBlockDeletion(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectExec("DELETE FROM bookings WHERE (bookings.id = $1)").
		WithArgs("b1").
		WillReturnError(&pq.Error{Code: constant.PqErrorCodeFkViolation, Constraint: "payments_booking_id_fkey"})

	err := repo.Delete(context.Background(), shared.FilterByID("b1", model.FieldID, model.TableName))

	require.Error(t, err)
	assert.True(t, shared.IsFkViolation(err))
}
