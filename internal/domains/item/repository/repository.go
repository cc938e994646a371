package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"shareit/infras/otel"
	"shareit/infras/postgres"
	"shareit/internal/domains/item/model"
	gDto "shareit/shared/dto"
	gRepo "shareit/shared/repository"
)

const sortByCreated = model.TableName + ".created_at"

type Item interface {
	Insert(ctx context.Context, item model.Item) error
	FindByID(ctx context.Context, id string) (model.Item, error)
	FindAllByOwner(ctx context.Context, ownerID string) ([]model.Item, error)
	Search(ctx context.Context, text string) ([]model.Item, error)
	Update(ctx context.Context, fields map[string]any, id string) error
	Delete(ctx context.Context, id string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Item]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) Item {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Item](model.EntityName, model.TableName, model.FieldID, db, otl),
		db:         db,
		otel:       otl,
	}
}

func filterByID(id string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func (repo *repositoryImpl) FindByID(ctx context.Context, id string) (model.Item, error) {
	return repo.Get(ctx, filterByID(id)) //nolint:wrapcheck
}

func (repo *repositoryImpl) FindAllByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldOwnerID, Value: ownerID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	params := gDto.QueryParams{SortBy: sortByCreated, SortDir: gDto.SortDirAsc}

	return repo.GetAll(ctx, params, filter) //nolint:wrapcheck
}

// Search matches the text against name and description, case-insensitive,
// and only returns items currently available for booking.
func (repo *repositoryImpl) Search(ctx context.Context, text string) ([]model.Item, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.FilterGroup{
				Operator: gDto.FilterGroupOperatorOr,
				Filters: []any{
					gDto.Filter{ArgName: "text_name", Field: model.FieldName, Value: text, Operator: gDto.FilterOperatorLike, Table: model.TableName},
					gDto.Filter{ArgName: "text_description", Field: model.FieldDescription, Value: text, Operator: gDto.FilterOperatorLike, Table: model.TableName},
				},
			},
		},
	}

	params := gDto.QueryParams{SortBy: sortByCreated, SortDir: gDto.SortDirAsc}

	return repo.GetAll(ctx, params, filter) //nolint:wrapcheck
}

func (repo *repositoryImpl) Update(ctx context.Context, fields map[string]any, id string) error {
	return repo.Repository.Update(ctx, fields, filterByID(id)) //nolint:wrapcheck
}

func (repo *repositoryImpl) Delete(ctx context.Context, id string) error {
	return repo.Repository.Delete(ctx, filterByID(id)) //nolint:wrapcheck
}
