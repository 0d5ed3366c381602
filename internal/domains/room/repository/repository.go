package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/internal/domains/room/model"
	gRepo "resort/shared/repository"
)

type Room interface {
	gRepo.CRUD[model.Room]
}

// New needs nothing beyond the shared CRUD queries over the rooms table.
func New(db *postgres.Connection, otel otel.Otel) Room {
	repo := gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel)

	return &repo
}
