package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"shareit/infras/otel"
	"shareit/internal/domains/booking/model/dto"
	"shareit/internal/domains/booking/service"
	"shareit/shared"
	"shareit/shared/constant"
	"shareit/shared/failure"
	"shareit/shared/validator"
	"shareit/transport/http/response"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookingsByBooker)
		routerGroup.Get("/owner", handler.GetBookingsByOwner)
		routerGroup.Put("/", handler.UpdateBooking)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Patch("/{id}", handler.ApproveBooking)
		routerGroup.Delete("/{id}", handler.DeleteBooking)
	})
}

func sharerID(r *http.Request, w http.ResponseWriter) (string, bool) {
	userID, _ := r.Context().Value(constant.ContextKeyUserID).(string)
	if userID == constant.Empty {
		response.WithError(w, failure.MissingSharerHeader)

		return constant.Empty, false
	}

	return userID, true
}

// CreateBooking registers a booking request for an item on behalf of the
// sharer identified by the request header.
func (handler *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	bookerID, ok := sharerID(r, w)
	if !ok {
		return
	}

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Create(ctx, bookerID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking created successfully by user " + bookerID)

	response.WithJSON(w, http.StatusCreated, booking)
}

// GetBookingsByBooker lists the caller's own bookings, filtered by the
// state query parameter (ALL when omitted).
func (handler *Handler) GetBookingsByBooker(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingsByBooker")
	defer scope.End()

	bookerID, ok := sharerID(r, w)
	if !ok {
		return
	}

	state := r.URL.Query().Get(constant.RequestParamState)
	if state == constant.Empty {
		state = constant.DefaultValueState
	}

	bookings, err := handler.service.GetAllByBooker(ctx, bookerID, state)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingsByOwner lists the bookings of every item the caller owns.
func (handler *Handler) GetBookingsByOwner(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingsByOwner")
	defer scope.End()

	ownerID, ok := sharerID(r, w)
	if !ok {
		return
	}

	state := r.URL.Query().Get(constant.RequestParamState)
	if state == constant.Empty {
		state = constant.DefaultValueState
	}

	bookings, err := handler.service.GetAllByOwner(ctx, ownerID, state)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get owner bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	userID, ok := sharerID(r, w)
	if !ok {
		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// ApproveBooking decides a waiting booking. The approved query parameter
// selects between approval and rejection.
func (handler *Handler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ApproveBooking")
	defer scope.End()

	userID, ok := sharerID(r, w)
	if !ok {
		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	approved := shared.ConvertStringToBool(r.URL.Query().Get(constant.RequestParamApproved))
	if approved == nil {
		response.WithError(w, failure.BadRequestFromString("approved query parameter is required"))

		return
	}

	booking, err := handler.service.Approve(ctx, id, userID, *approved)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to approve booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking decided by user " + userID)

	response.WithJSON(w, http.StatusOK, booking)
}

func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	userID, ok := sharerID(r, w)
	if !ok {
		return
	}

	req := dto.UpdateBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Update(ctx, userID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

func (handler *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteBooking")
	defer scope.End()

	if _, ok := sharerID(r, w); !ok {
		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete booking")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Booking deleted successfully")
}
