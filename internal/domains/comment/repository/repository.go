package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"shareit/infras/otel"
	"shareit/infras/postgres"
	"shareit/internal/domains/comment/model"
	gDto "shareit/shared/dto"
	gRepo "shareit/shared/repository"
)

const sortByCreated = model.TableName + ".created_at"

type Comment interface {
	Insert(ctx context.Context, comment model.Comment) error
	FindAllByItemID(ctx context.Context, itemID string) ([]model.Comment, error)
	FindForItems(ctx context.Context, itemIDs []string) ([]model.Comment, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Comment]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) Comment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Comment](model.EntityName, model.TableName, model.FieldID, db, otl),
		db:         db,
		otel:       otl,
	}
}

func (repo *repositoryImpl) FindAllByItemID(ctx context.Context, itemID string) ([]model.Comment, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldItemID, Value: itemID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	params := gDto.QueryParams{SortBy: sortByCreated, SortDir: gDto.SortDirAsc}

	return repo.GetAll(ctx, params, filter) //nolint:wrapcheck
}

// FindForItems loads the comments of every item in the set with one query,
// oldest first.
func (repo *repositoryImpl) FindForItems(ctx context.Context, itemIDs []string) ([]model.Comment, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{ArgName: "item_ids", Field: model.FieldItemID, Value: itemIDs, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		},
	}

	params := gDto.QueryParams{SortBy: sortByCreated, SortDir: gDto.SortDirAsc}

	return repo.GetAll(ctx, params, filter) //nolint:wrapcheck
}
