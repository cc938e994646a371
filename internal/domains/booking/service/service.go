package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"shareit/infras/otel"
	"shareit/internal/domains/booking/model"
	"shareit/internal/domains/booking/model/dto"
	"shareit/internal/domains/booking/repository"
	itemRepo "shareit/internal/domains/item/repository"
	userRepo "shareit/internal/domains/user/repository"
	"shareit/shared/clock"
	"shareit/shared/constant"
	"shareit/shared/failure"
)

type Booking interface {
	Create(ctx context.Context, bookerID string, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, bookingID, userID string) (dto.BookingResponse, error)
	GetAllByBooker(ctx context.Context, bookerID, state string) ([]dto.BookingResponse, error)
	GetAllByOwner(ctx context.Context, ownerID, state string) ([]dto.BookingResponse, error)
	Update(ctx context.Context, userID string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	Approve(ctx context.Context, bookingID, userID string, approved bool) (dto.BookingResponse, error)
	Delete(ctx context.Context, bookingID string) error
}

type serviceImpl struct {
	repo     repository.Booking
	userRepo userRepo.User
	itemRepo itemRepo.Item
	clock    clock.Clock
	otel     otel.Otel
}

func New(repo repository.Booking, userRepo userRepo.User, itemRepo itemRepo.Item, clk clock.Clock, otl otel.Otel) Booking {
	return &serviceImpl{
		repo:     repo,
		userRepo: userRepo,
		itemRepo: itemRepo,
		clock:    clk,
		otel:     otl,
	}
}

func (s *serviceImpl) findUser(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return "", failure.NotFound(fmt.Sprintf("user with id %s not found", userID)) //nolint:wrapcheck
	}

	return user.Name, nil
}

func (s *serviceImpl) Create(ctx context.Context, bookerID string, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	bookerName, err := s.findUser(ctx, bookerID)
	if err != nil {
		return res, err
	}

	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return res, fmt.Errorf("failed to get item: %w", err)
	}

	if item.ID == constant.Empty {
		return res, failure.NotFound(fmt.Sprintf("item with id %s not found", req.ItemID)) //nolint:wrapcheck
	}

	if !item.Available {
		return res, failure.BadRequestFromString("item is not available for booking") //nolint:wrapcheck
	}

	if item.OwnerID == bookerID {
		return res, failure.BadRequestFromString("the owner may not book their own item") //nolint:wrapcheck
	}

	booking, err := req.ToModel(bookerID, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) //nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ItemName = item.Name
	booking.ItemOwnerID = item.OwnerID
	booking.BookerName = bookerName

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) findBooking(ctx context.Context, bookingID string) (model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound(fmt.Sprintf("booking with id %s not found", bookingID)) //nolint:wrapcheck
	}

	return booking, nil
}

func (s *serviceImpl) Get(ctx context.Context, bookingID, userID string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return res, err
	}

	if booking.BookerID != userID && booking.ItemOwnerID != userID {
		return res, failure.BadRequestFromString("booking can be viewed only by its booker or the item owner") //nolint:wrapcheck
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAllByBooker(ctx context.Context, bookerID, state string) (res []dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAllByBooker")
	defer scope.End()
	defer scope.TraceIfError(err)

	parsed, err := model.ParseState(state)
	if err != nil {
		return res, failure.BadRequestFromString(err.Error()) //nolint:wrapcheck
	}

	if _, err = s.findUser(ctx, bookerID); err != nil {
		return res, err
	}

	bookings, err := s.repo.FindAllByBooker(ctx, bookerID, parsed, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings by booker")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	return dto.FromModels(bookings), nil
}

func (s *serviceImpl) GetAllByOwner(ctx context.Context, ownerID, state string) (res []dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAllByOwner")
	defer scope.End()
	defer scope.TraceIfError(err)

	parsed, err := model.ParseState(state)
	if err != nil {
		return res, failure.BadRequestFromString(err.Error()) //nolint:wrapcheck
	}

	if _, err = s.findUser(ctx, ownerID); err != nil {
		return res, err
	}

	bookings, err := s.repo.FindAllByOwner(ctx, ownerID, parsed, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings by owner items")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	return dto.FromModels(bookings), nil
}

func (s *serviceImpl) Update(ctx context.Context, userID string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.ID == constant.Empty {
		return res, failure.BadRequestFromString("booking id must be specified") //nolint:wrapcheck
	}

	if _, err = s.findUser(ctx, userID); err != nil {
		return res, err
	}

	booking, err := s.findBooking(ctx, req.ID)
	if err != nil {
		return res, err
	}

	if booking.BookerID != userID && booking.ItemOwnerID != userID {
		return res, failure.BadRequestFromString("booking can be changed only by its booker or the item owner") //nolint:wrapcheck
	}

	fields, err := req.UpdatedFields(userID, s.clock.Now())
	if err != nil {
		return res, failure.BadRequestFromString(err.Error()) //nolint:wrapcheck
	}

	if err = s.repo.Update(ctx, fields, req.ID); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return res, fmt.Errorf("failed to update booking: %w", err)
	}

	updated, err := s.findBooking(ctx, req.ID)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) Approve(ctx context.Context, bookingID, userID string, approved bool) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return res, err
	}

	// Re-resolve the item rather than trusting the joined columns.
	item, err := s.itemRepo.FindByID(ctx, booking.ItemID)
	if err != nil {
		return res, fmt.Errorf("failed to get item: %w", err)
	}

	if item.ID == constant.Empty {
		return res, failure.NotFound(fmt.Sprintf("item with id %s not found", booking.ItemID)) //nolint:wrapcheck
	}

	if item.OwnerID != userID {
		return res, failure.Forbidden("only the item owner may change booking status") //nolint:wrapcheck
	}

	status := model.StatusRejected
	if approved {
		status = model.StatusApproved
	}

	transitioned, err := s.repo.UpdateStatusIfWaiting(ctx, bookingID, status, userID, s.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to change booking status")

		return res, fmt.Errorf("failed to change booking status: %w", err)
	}

	if !transitioned {
		return res, failure.BadRequestFromString("item is already booked") //nolint:wrapcheck
	}

	booking.Status = status

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, bookingID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = s.findBooking(ctx, bookingID); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, bookingID); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	return nil
}
