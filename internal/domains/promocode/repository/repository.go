package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/internal/domains/promocode/model"
	"resort/shared/constant"
	"resort/shared/logger"
	gRepo "resort/shared/repository"

	"github.com/jmoiron/sqlx"
)

type PromoCode interface {
	gRepo.CRUD[model.PromoCode]

	IncrementUsageTx(ctx context.Context, sqltx *sqlx.Tx, id string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.PromoCode]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) PromoCode {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.PromoCode](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// IncrementUsageTx bumps used_count unless the cap is reached. It reports whether a row was updated.
func (r *repositoryImpl) IncrementUsageTx(ctx context.Context, sqltx *sqlx.Tx, id string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".IncrementUsageTx")
	defer scope.End()

	query := fmt.Sprintf(
		"UPDATE %s SET %s = %s + 1 WHERE %s = :id AND (%s IS NULL OR %s < %s)",
		model.TableName,
		model.FieldUsedCount, model.FieldUsedCount,
		model.FieldID,
		model.FieldMaxUses, model.FieldUsedCount, model.FieldMaxUses,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.NamedExecContext(ctx, query, map[string]any{"id": id})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to increment promo code usage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		scope.TraceError(err)

		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
