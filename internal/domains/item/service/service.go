package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"shareit/config"
	"shareit/infras/otel"
	bookingModel "shareit/internal/domains/booking/model"
	bookingRepo "shareit/internal/domains/booking/repository"
	commentDto "shareit/internal/domains/comment/model/dto"
	commentRepo "shareit/internal/domains/comment/repository"
	"shareit/internal/domains/item/model"
	"shareit/internal/domains/item/model/dto"
	"shareit/internal/domains/item/repository"
	userRepo "shareit/internal/domains/user/repository"
	"shareit/shared"
	"shareit/shared/cache"
	"shareit/shared/clock"
	"shareit/shared/constant"
	"shareit/shared/failure"
)

const (
	cacheSearchItems = "item:search"
)

type Item interface {
	Create(ctx context.Context, ownerID string, req dto.CreateItemRequest) (dto.ItemResponse, error)
	Update(ctx context.Context, ownerID, itemID string, req dto.UpdateItemRequest) (dto.ItemResponse, error)
	Get(ctx context.Context, itemID, userID string) (dto.ItemSummaryResponse, error)
	GetAllByOwner(ctx context.Context, ownerID string) ([]dto.ItemSummaryResponse, error)
	Search(ctx context.Context, text string) ([]dto.ItemResponse, error)
	AddComment(ctx context.Context, itemID, authorID string, req commentDto.NewCommentRequest) (commentDto.CommentResponse, error)
	Delete(ctx context.Context, ownerID, itemID string) error
}

type serviceImpl struct {
	repo        repository.Item
	bookingRepo bookingRepo.Booking
	commentRepo commentRepo.Comment
	userRepo    userRepo.User
	cfg         *config.Config
	cache       cache.RedisCache
	clock       clock.Clock
	otel        otel.Otel
}

func New(
	repo repository.Item,
	bookings bookingRepo.Booking,
	comments commentRepo.Comment,
	users userRepo.User,
	cfg *config.Config,
	redisCache cache.RedisCache,
	clk clock.Clock,
	otl otel.Otel,
) Item {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookings,
		commentRepo: comments,
		userRepo:    users,
		cfg:         cfg,
		cache:       redisCache,
		clock:       clk,
		otel:        otl,
	}
}

func (s *serviceImpl) findUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return failure.NotFound(fmt.Sprintf("user with id %s not found", userID)) //nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) findItem(ctx context.Context, itemID string) (model.Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return item, fmt.Errorf("failed to get item: %w", err)
	}

	if item.ID == constant.Empty {
		return item, failure.NotFound(fmt.Sprintf("item with id %s not found", itemID)) //nolint:wrapcheck
	}

	return item, nil
}

func (s *serviceImpl) Create(ctx context.Context, ownerID string, req dto.CreateItemRequest) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.findUser(ctx, ownerID); err != nil {
		return res, err
	}

	item := req.ToModel(ownerID, s.clock.Now())

	if err = s.repo.Insert(ctx, item); err != nil {
		log.Error().Err(err).Msg("failed to create item")

		return res, fmt.Errorf("failed to create item: %w", err)
	}

	s.invalidateSearch(ctx)

	res.FromModel(item)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, ownerID, itemID string, req dto.UpdateItemRequest) (res dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.findUser(ctx, ownerID); err != nil {
		return res, err
	}

	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return res, err
	}

	if item.OwnerID != ownerID {
		return res, failure.Forbidden("only the item owner may edit the item") //nolint:wrapcheck
	}

	fields := shared.TransformFields(req, ownerID)
	if err = s.repo.Update(ctx, fields, itemID); err != nil {
		log.Error().Err(err).Msg("failed to update item")

		return res, fmt.Errorf("failed to update item: %w", err)
	}

	updated, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return res, fmt.Errorf("failed to get item: %w", err)
	}

	s.invalidateSearch(ctx)

	res.FromModel(updated)

	return res, nil
}

// Get returns the item with its comments. The closest approved bookings
// are only disclosed to the owner.
func (s *serviceImpl) Get(ctx context.Context, itemID, userID string) (res dto.ItemSummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return res, err
	}

	res.FromModel(item)

	comments, err := s.commentRepo.FindAllByItemID(ctx, itemID)
	if err != nil {
		return res, fmt.Errorf("failed to get comments: %w", err)
	}

	res.Comments = commentDto.FromModels(comments)

	if item.OwnerID != userID {
		return res, nil
	}

	now := s.clock.Now()

	last, err := s.bookingRepo.FindLastApprovedForItems(ctx, []string{itemID}, now)
	if err != nil {
		return res, fmt.Errorf("failed to get last booking: %w", err)
	}

	next, err := s.bookingRepo.FindNextApprovedForItems(ctx, []string{itemID}, now)
	if err != nil {
		return res, fmt.Errorf("failed to get next booking: %w", err)
	}

	if len(last) > 0 {
		res.LastBooking = &dto.BookingBrief{ID: last[0].ID, BookerID: last[0].BookerID}
	}

	if len(next) > 0 {
		res.NextBooking = &dto.BookingBrief{ID: next[0].ID, BookerID: next[0].BookerID}
	}

	return res, nil
}

// GetAllByOwner assembles the owner's item summaries with a fixed number
// of queries: one for the items, one per direction for the closest
// approved bookings, one for the comments. The booking and comment
// streams come back pre-sorted, so the first record seen for an item is
// the one its summary wants.
func (s *serviceImpl) GetAllByOwner(ctx context.Context, ownerID string) (res []dto.ItemSummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAllByOwner")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.findUser(ctx, ownerID); err != nil {
		return res, err
	}

	items, err := s.repo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get items")

		return res, fmt.Errorf("failed to get items: %w", err)
	}

	res = make([]dto.ItemSummaryResponse, 0, len(items))

	if len(items) == 0 {
		return res, nil
	}

	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}

	now := s.clock.Now()

	lastBookings, err := s.bookingRepo.FindLastApprovedForItems(ctx, itemIDs, now)
	if err != nil {
		return res, fmt.Errorf("failed to get last bookings: %w", err)
	}

	nextBookings, err := s.bookingRepo.FindNextApprovedForItems(ctx, itemIDs, now)
	if err != nil {
		return res, fmt.Errorf("failed to get next bookings: %w", err)
	}

	comments, err := s.commentRepo.FindForItems(ctx, itemIDs)
	if err != nil {
		return res, fmt.Errorf("failed to get comments: %w", err)
	}

	lastByItem := firstBookingPerItem(lastBookings)
	nextByItem := firstBookingPerItem(nextBookings)

	commentsByItem := make(map[string][]commentDto.CommentResponse, len(items))
	for _, comment := range comments {
		c := commentDto.CommentResponse{}
		c.FromModel(comment)

		commentsByItem[comment.ItemID] = append(commentsByItem[comment.ItemID], c)
	}

	for _, item := range items {
		summary := dto.ItemSummaryResponse{}
		summary.FromModel(item)

		if booking, ok := lastByItem[item.ID]; ok {
			summary.LastBooking = &dto.BookingBrief{ID: booking.ID, BookerID: booking.BookerID}
		}

		if booking, ok := nextByItem[item.ID]; ok {
			summary.NextBooking = &dto.BookingBrief{ID: booking.ID, BookerID: booking.BookerID}
		}

		if itemComments, ok := commentsByItem[item.ID]; ok {
			summary.Comments = itemComments
		}

		res = append(res, summary)
	}

	return res, nil
}

// firstBookingPerItem keeps, for every item id in the stream, the first
// booking encountered. The repository orders each stream so that the
// first record per item is the closest one.
func firstBookingPerItem(bookings []bookingModel.Booking) map[string]bookingModel.Booking {
	byItem := make(map[string]bookingModel.Booking, len(bookings))

	for _, booking := range bookings {
		if _, ok := byItem[booking.ItemID]; !ok {
			byItem[booking.ItemID] = booking
		}
	}

	return byItem
}

func (s *serviceImpl) Search(ctx context.Context, text string) (res []dto.ItemResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Search")
	defer scope.End()
	defer scope.TraceIfError(err)

	res = []dto.ItemResponse{}

	if text == constant.Empty {
		return res, nil
	}

	cacheKey := shared.BuildCacheKey(cacheSearchItems, text)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for item search")

		return res, nil
	}

	items, err := s.repo.Search(ctx, text)
	if err != nil {
		log.Error().Err(err).Msg("failed to search items")

		return res, fmt.Errorf("failed to search items: %w", err)
	}

	res = dto.FromModels(items)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save item search to cache")
		}
	}()

	return res, nil
}

// AddComment lets a user comment on an item once they have a booking of
// it that already ended.
func (s *serviceImpl) AddComment(ctx context.Context, itemID, authorID string, req commentDto.NewCommentRequest) (res commentDto.CommentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AddComment")
	defer scope.End()
	defer scope.TraceIfError(err)

	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if author.ID == constant.Empty {
		return res, failure.NotFound(fmt.Sprintf("user with id %s not found", authorID)) //nolint:wrapcheck
	}

	if _, err = s.findItem(ctx, itemID); err != nil {
		return res, err
	}

	now := s.clock.Now()

	eligible, err := s.bookingRepo.ExistsFinishedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return res, fmt.Errorf("failed to check booking history: %w", err)
	}

	if !eligible {
		return res, failure.BadRequestFromString(fmt.Sprintf("user %s may not comment without having used the item", authorID)) //nolint:wrapcheck
	}

	comment := req.ToModel(itemID, authorID, now)

	if err = s.commentRepo.Insert(ctx, comment); err != nil {
		log.Error().Err(err).Msg("failed to create comment")

		return res, fmt.Errorf("failed to create comment: %w", err)
	}

	comment.AuthorName = author.Name

	res.FromModel(comment)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, ownerID, itemID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return err
	}

	if item.OwnerID != ownerID {
		return failure.Forbidden("only the item owner may delete the item") //nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, itemID); err != nil {
		log.Error().Err(err).Msg("failed to delete item")

		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.invalidateSearch(ctx)

	return nil
}

func (s *serviceImpl) invalidateSearch(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheSearchItems)
	}()
}
