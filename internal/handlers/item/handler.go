package item

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"shareit/infras/otel"
	commentDto "shareit/internal/domains/comment/model/dto"
	"shareit/internal/domains/item/model/dto"
	"shareit/internal/domains/item/service"
	"shareit/shared/constant"
	"shareit/shared/failure"
	"shareit/shared/validator"
	"shareit/transport/http/response"
)

type Handler struct {
	service service.Item
	otel    otel.Otel
}

func New(service service.Item, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/items", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateItem)
		routerGroup.Get("/", handler.GetItems)
		routerGroup.Get("/search", handler.SearchItems)
		routerGroup.Get("/{id}", handler.GetItemByID)
		routerGroup.Patch("/{id}", handler.UpdateItem)
		routerGroup.Delete("/{id}", handler.DeleteItem)
		routerGroup.Post("/{id}/comment", handler.AddComment)
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

func (handler *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateItem")
	defer scope.End()

	ownerID, ok := sharerID(r, w)
	if !ok {
		return
	}

	req := dto.CreateItemRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	item, err := handler.service.Create(ctx, ownerID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create item")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Item created successfully by user " + ownerID)

	response.WithJSON(w, http.StatusCreated, item)
}

// GetItems lists the caller's items, each enriched with its closest
// approved bookings and comments.
func (handler *Handler) GetItems(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetItems")
	defer scope.End()

	ownerID, ok := sharerID(r, w)
	if !ok {
		return
	}

	items, err := handler.service.GetAllByOwner(ctx, ownerID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get items")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, items)
}

func (handler *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchItems")
	defer scope.End()

	text := r.URL.Query().Get(constant.RequestParamText)

	items, err := handler.service.Search(ctx, text)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search items")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, items)
}

func (handler *Handler) GetItemByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetItemByID")
	defer scope.End()

	userID, ok := sharerID(r, w)
	if !ok {
		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	item, err := handler.service.Get(ctx, id, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get item by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, item)
}

func (handler *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateItem")
	defer scope.End()

	ownerID, ok := sharerID(r, w)
	if !ok {
		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateItemRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	item, err := handler.service.Update(ctx, ownerID, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update item")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, item)
}

func (handler *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteItem")
	defer scope.End()

	ownerID, ok := sharerID(r, w)
	if !ok {
		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, ownerID, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete item")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Item deleted successfully")
}

// AddComment lets a past booker leave feedback on an item.
func (handler *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AddComment")
	defer scope.End()

	authorID, ok := sharerID(r, w)
	if !ok {
		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	req := commentDto.NewCommentRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	comment, err := handler.service.AddComment(ctx, id, authorID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to add comment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Comment added by user " + authorID)

	response.WithJSON(w, http.StatusCreated, comment)
}
