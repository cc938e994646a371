package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	"shareit/infras/otel"
	"shareit/infras/postgres"
	"shareit/internal/domains/booking/model"
	"shareit/shared/constant"
	gDto "shareit/shared/dto"
	gRepo "shareit/shared/repository"
)

const (
	sortByStart = model.TableName + "." + model.FieldStartDate
	sortByEnd   = model.TableName + "." + model.FieldEndDate

	itemsTable        = "items"
	itemsFieldOwnerID = "owner_id"
)

type Booking interface {
	Insert(ctx context.Context, booking model.Booking) error
	FindByID(ctx context.Context, id string) (model.Booking, error)
	FindAllByBooker(ctx context.Context, bookerID string, state model.State, now time.Time) ([]model.Booking, error)
	FindAllByOwner(ctx context.Context, ownerID string, state model.State, now time.Time) ([]model.Booking, error)
	Update(ctx context.Context, fields map[string]any, id string) error
	UpdateStatusIfWaiting(ctx context.Context, id string, status model.Status, actor string, now time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	ExistsFinishedBooking(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error)
	FindLastApprovedForItems(ctx context.Context, itemIDs []string, now time.Time) ([]model.Booking, error)
	FindNextApprovedForItems(ctx context.Context, itemIDs []string, now time.Time) ([]model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otl),
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

func (repo *repositoryImpl) FindByID(ctx context.Context, id string) (model.Booking, error) {
	return repo.Get(ctx, filterByID(id)) //nolint:wrapcheck
}

func (repo *repositoryImpl) FindAllByBooker(ctx context.Context, bookerID string, state model.State, now time.Time) ([]model.Booking, error) {
	subject := gDto.Filter{
		Field:    model.FieldBookerID,
		Value:    bookerID,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	}

	return repo.findAllByState(ctx, subject, state, now)
}

func (repo *repositoryImpl) FindAllByOwner(ctx context.Context, ownerID string, state model.State, now time.Time) ([]model.Booking, error) {
	subject := gDto.Filter{
		Field:    itemsFieldOwnerID,
		Value:    ownerID,
		Operator: gDto.FilterOperatorEq,
		Table:    itemsTable,
	}

	return repo.findAllByState(ctx, subject, state, now)
}

// findAllByState lists bookings matching the subject predicate narrowed by
// the state token, ordered ascending by start.
func (repo *repositoryImpl) findAllByState(ctx context.Context, subject gDto.Filter, state model.State, now time.Time) ([]model.Booking, error) {
	params := gDto.QueryParams{SortBy: sortByStart, SortDir: gDto.SortDirAsc}

	return repo.GetAll(ctx, params, stateFilter(subject, state, now)) //nolint:wrapcheck
}

// stateFilter appends the temporal or status predicate for the given state
// token to the subject predicate. CURRENT is inclusive of both bounds; PAST
// means now is strictly after the end, FUTURE strictly before the start.
func stateFilter(subject gDto.Filter, state model.State, now time.Time) gDto.FilterGroup {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{subject},
	}

	switch state {
	case model.StateAll:
	case model.StateCurrent:
		filter.Filters = append(filter.Filters,
			gDto.Filter{ArgName: "now_start", Field: model.FieldStartDate, Value: now, Operator: gDto.FilterOperatorLessEq, Table: model.TableName},
			gDto.Filter{ArgName: "now_end", Field: model.FieldEndDate, Value: now, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
		)
	case model.StatePast:
		filter.Filters = append(filter.Filters,
			gDto.Filter{ArgName: "now", Field: model.FieldEndDate, Value: now, Operator: gDto.FilterOperatorLess, Table: model.TableName},
		)
	case model.StateFuture:
		filter.Filters = append(filter.Filters,
			gDto.Filter{ArgName: "now", Field: model.FieldStartDate, Value: now, Operator: gDto.FilterOperatorGreater, Table: model.TableName},
		)
	case model.StateWaiting:
		filter.Filters = append(filter.Filters,
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusWaiting, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		)
	case model.StateRejected:
		filter.Filters = append(filter.Filters,
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusRejected, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		)
	}

	return filter
}

func (repo *repositoryImpl) Update(ctx context.Context, fields map[string]any, id string) error {
	return repo.Repository.Update(ctx, fields, filterByID(id)) //nolint:wrapcheck
}

// UpdateStatusIfWaiting performs the approval transition as a single
// compare-and-set: the row is only written when its status is still
// WAITING, so racing approvals cannot decide a booking twice.
func (repo *repositoryImpl) UpdateStatusIfWaiting(ctx context.Context, id string, status model.Status, actor string, now time.Time) (bool, error) {
	fields := map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: actor,
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{ArgName: "current_status", Field: model.FieldStatus, Value: model.StatusWaiting, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	affected, err := repo.UpdateWithCount(ctx, fields, filter)
	if err != nil {
		return false, err //nolint:wrapcheck
	}

	return affected > 0, nil
}

func (repo *repositoryImpl) Delete(ctx context.Context, id string) error {
	return repo.Repository.Delete(ctx, filterByID(id)) //nolint:wrapcheck
}

// ExistsFinishedBooking reports whether the booker has any booking of the
// item that has already concluded, regardless of its status.
func (repo *repositoryImpl) ExistsFinishedBooking(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldBookerID, Value: bookerID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldItemID, Value: itemID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{ArgName: "now", Field: model.FieldEndDate, Value: now, Operator: gDto.FilterOperatorLess, Table: model.TableName},
		},
	}

	return repo.Exist(ctx, filter) //nolint:wrapcheck
}

func approvedForItems(itemIDs []string) []any {
	return []any{
		gDto.Filter{ArgName: "item_ids", Field: model.FieldItemID, Value: itemIDs, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		gDto.Filter{Field: model.FieldStatus, Value: model.StatusApproved, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	}
}

// FindLastApprovedForItems returns every approved booking across the item
// set that ended before now, most recent first, so callers can pick the
// first record per item as its "last booking".
func (repo *repositoryImpl) FindLastApprovedForItems(ctx context.Context, itemIDs []string, now time.Time) ([]model.Booking, error) {
	return repo.findApprovedForItems(ctx, itemIDs, now, true)
}

// FindNextApprovedForItems is the forward-looking counterpart: approved
// bookings starting at or after now, soonest first.
func (repo *repositoryImpl) FindNextApprovedForItems(ctx context.Context, itemIDs []string, now time.Time) ([]model.Booking, error) {
	return repo.findApprovedForItems(ctx, itemIDs, now, false)
}

func (repo *repositoryImpl) findApprovedForItems(ctx context.Context, itemIDs []string, now time.Time, past bool) ([]model.Booking, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  approvedForItems(itemIDs),
	}

	params := gDto.QueryParams{}

	if past {
		filter.Filters = append(filter.Filters,
			gDto.Filter{ArgName: "now", Field: model.FieldEndDate, Value: now, Operator: gDto.FilterOperatorLess, Table: model.TableName},
		)
		params.SortBy = sortByEnd
		params.SortDir = gDto.SortDirDesc
	} else {
		filter.Filters = append(filter.Filters,
			gDto.Filter{ArgName: "now", Field: model.FieldStartDate, Value: now, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
		)
		params.SortBy = sortByStart
		params.SortDir = gDto.SortDirAsc
	}

	return repo.GetAll(ctx, params, filter) //nolint:wrapcheck
}
