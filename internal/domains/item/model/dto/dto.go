package dto

import (
	"time"

	"github.com/google/uuid"

	commentDto "shareit/internal/domains/comment/model/dto"
	"shareit/internal/domains/item/model"
	gModel "shareit/shared/model"
)

type CreateItemRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description" validate:"required"`
	Available   *bool  `json:"available"   validate:"required"`
}

func (r CreateItemRequest) ToModel(ownerID string, now time.Time) model.Item {
	return model.Item{
		ID:          uuid.NewString(),
		Name:        r.Name,
		Description: r.Description,
		Available:   *r.Available,
		OwnerID:     ownerID,
		Metadata:    gModel.NewMetadata(now, ownerID),
	}
}

// UpdateItemRequest carries a patch merge: nil fields leave the stored
// value untouched.
type UpdateItemRequest struct {
	Name        *string `json:"name"        db:"name"`
	Description *string `json:"description" db:"description"`
	Available   *bool   `json:"available"   db:"available"`
}

type ItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

func (r *ItemResponse) FromModel(item model.Item) {
	r.ID = item.ID
	r.Name = item.Name
	r.Description = item.Description
	r.Available = item.Available
}

func FromModels(items []model.Item) []ItemResponse {
	responses := make([]ItemResponse, 0, len(items))

	for _, item := range items {
		res := ItemResponse{}
		res.FromModel(item)

		responses = append(responses, res)
	}

	return responses
}

// BookingBrief is the reduced view of a booking carried inside an item
// summary.
type BookingBrief struct {
	ID       string `json:"id"`
	BookerID string `json:"bookerId"`
}

// ItemSummaryResponse is an item enriched with its closest approved
// bookings and its comments.
type ItemSummaryResponse struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Available   bool                         `json:"available"`
	LastBooking *BookingBrief                `json:"lastBooking"`
	NextBooking *BookingBrief                `json:"nextBooking"`
	Comments    []commentDto.CommentResponse `json:"comments"`
}

func (r *ItemSummaryResponse) FromModel(item model.Item) {
	r.ID = item.ID
	r.Name = item.Name
	r.Description = item.Description
	r.Available = item.Available
	r.Comments = []commentDto.CommentResponse{}
}
