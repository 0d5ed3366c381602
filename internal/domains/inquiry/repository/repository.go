package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/internal/domains/inquiry/model"
	gRepo "resort/shared/repository"
)

type Inquiry interface {
	gRepo.CRUD[model.Inquiry]
}

func New(db *postgres.Connection, otel otel.Otel) Inquiry {
	repo := gRepo.NewRepository[model.Inquiry](model.EntityName, model.TableName, model.FieldID, db, otel)

	return &repo
}
