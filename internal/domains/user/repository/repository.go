package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"resort/infras/otel"
	"resort/infras/postgres"
	"resort/internal/domains/user/model"
	gRepo "resort/shared/repository"
)

type User interface {
	gRepo.CRUD[model.User]
}

// New needs nothing beyond the shared CRUD queries over the users table.
func New(db *postgres.Connection, otel otel.Otel) User {
	repo := gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel)

	return &repo
}
