package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"shareit/infras/otel"
	"shareit/infras/postgres"
	"shareit/internal/domains/user/model"
	"shareit/shared/constant"
	gDto "shareit/shared/dto"
	gRepo "shareit/shared/repository"
)

type User interface {
	Insert(ctx context.Context, user model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, fields map[string]any, id string) error
	Delete(ctx context.Context, id string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otl),
		db:         db,
		otel:       otl,
	}
}

func filterBy(field, value string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: field, Value: value, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func (repo *repositoryImpl) FindByID(ctx context.Context, id string) (model.User, error) {
	return repo.Get(ctx, filterBy(model.FieldID, id)) //nolint:wrapcheck
}

func (repo *repositoryImpl) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return repo.Get(ctx, filterBy(model.FieldEmail, email)) //nolint:wrapcheck
}

func (repo *repositoryImpl) FindAll(ctx context.Context) ([]model.User, error) {
	params := gDto.QueryParams{
		SortBy:  model.TableName + "." + constant.FieldCreatedAt,
		SortDir: gDto.SortDirAsc,
	}

	return repo.GetAll(ctx, params, gDto.FilterGroup{}) //nolint:wrapcheck
}

func (repo *repositoryImpl) Update(ctx context.Context, fields map[string]any, id string) error {
	return repo.Repository.Update(ctx, fields, filterBy(model.FieldID, id)) //nolint:wrapcheck
}

func (repo *repositoryImpl) Delete(ctx context.Context, id string) error {
	return repo.Repository.Delete(ctx, filterBy(model.FieldID, id)) //nolint:wrapcheck
}
