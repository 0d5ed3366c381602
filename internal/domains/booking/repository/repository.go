package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/internal/domains/booking/model"
	roomModel "resort/internal/domains/room/model"
	"resort/shared/constant"
	gDto "resort/shared/dto"
	"resort/shared/logger"
	gRepo "resort/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Booking interface {
	gRepo.CRUD[model.Booking]

	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Booking) error
	UpdateTxAffected(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) (int64, error)
	BookedUnits(ctx context.Context, roomID string, checkIn, checkOut time.Time) (int, error)
	LockAvailabilityTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, checkIn, checkOut time.Time) (inventory, booked int, err error)
}

type namedPreparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// BookedUnits sums the rooms held by confirmed bookings overlapping [checkIn, checkOut).
func (r *repositoryImpl) BookedUnits(ctx context.Context, roomID string, checkIn, checkOut time.Time) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".BookedUnits")
	defer scope.End()

	units, err := r.sumUnits(ctx, r.db.Read, roomID, checkIn, checkOut)
	if err != nil {
		scope.TraceError(err)

		return 0, err
	}

	return units, nil
}

// LockAvailabilityTx takes a row lock on the room until sqltx ends, then counts confirmed units
// with the lock held. Confirmations for the same room therefore see each other's writes.
func (r *repositoryImpl) LockAvailabilityTx(
	ctx context.Context,
	sqltx *sqlx.Tx,
	roomID string,
	checkIn, checkOut time.Time,
) (inventory, booked int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".LockAvailabilityTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = :room_id FOR UPDATE",
		roomModel.FieldInventory, roomModel.TableName, roomModel.FieldID)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := sqltx.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, 0, fmt.Errorf("failed to prepare statement (%s): %w", roomModel.EntityName, err)
	}
	defer prepare.Close()

	if err = prepare.GetContext(ctx, &inventory, map[string]any{"room_id": roomID}); err != nil {
		logger.ErrorWithStack(err)

		return 0, 0, fmt.Errorf("failed to lock room inventory: %w", err)
	}

	booked, err = r.sumUnits(ctx, sqltx, roomID, checkIn, checkOut)
	if err != nil {
		return 0, 0, err
	}

	return inventory, booked, nil
}

func (r *repositoryImpl) sumUnits(ctx context.Context, db namedPreparer, roomID string, checkIn, checkOut time.Time) (int, error) {
	query := fmt.Sprintf(
		"SELECT COALESCE(SUM(%s), 0) FROM %s WHERE %s = :room_id AND %s = :status AND %s < :check_out AND %s > :check_in",
		model.FieldRooms, model.TableName, model.FieldRoomID, model.FieldStatus, model.FieldCheckIn, model.FieldCheckOut,
	)

	prepare, err := db.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	var units int

	err = prepare.GetContext(ctx, &units, map[string]any{
		"room_id":   roomID,
		"status":    model.StatusConfirmed,
		"check_in":  checkIn,
		"check_out": checkOut,
	})
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to sum booked units: %w", err)
	}

	return units, nil
}
