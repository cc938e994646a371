package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"shareit/internal/domains/booking/model"
	"shareit/shared/constant"
	gModel "shareit/shared/model"
	"shareit/shared/timezone"
)

type CreateBookingRequest struct {
	ItemID string `json:"itemId" validate:"required"`
	Start  string `json:"start"  validate:"required"`
	End    string `json:"end"    validate:"required"`
}

func (r CreateBookingRequest) ToModel(bookerID string, now time.Time) (model.Booking, error) {
	start, err := timezone.Parse(constant.DateFormat, r.Start)
	if err != nil {
		return model.Booking{}, fmt.Errorf("parsing start: %w", err)
	}

	end, err := timezone.Parse(constant.DateFormat, r.End)
	if err != nil {
		return model.Booking{}, fmt.Errorf("parsing end: %w", err)
	}

	return model.Booking{
		ID:        uuid.NewString(),
		StartDate: start,
		EndDate:   end,
		Status:    model.StatusWaiting,
		ItemID:    r.ItemID,
		BookerID:  bookerID,
		Metadata:  gModel.NewMetadata(now, bookerID),
	}, nil
}

// UpdateBookingRequest carries a patch merge: nil fields leave the stored
// value untouched.
type UpdateBookingRequest struct {
	ID       string  `json:"id"`
	Start    *string `json:"start"`
	End      *string `json:"end"`
	ItemID   *string `json:"itemId"`
	BookerID *string `json:"bookerId"`
	Status   *string `json:"status"`
}

// UpdatedFields translates the non-nil request fields into column updates.
func (r UpdateBookingRequest) UpdatedFields(actor string, now time.Time) (map[string]any, error) {
	fields := map[string]any{}

	if r.Start != nil {
		start, err := timezone.Parse(constant.DateFormat, *r.Start)
		if err != nil {
			return nil, fmt.Errorf("parsing start: %w", err)
		}

		fields[model.FieldStartDate] = start
	}

	if r.End != nil {
		end, err := timezone.Parse(constant.DateFormat, *r.End)
		if err != nil {
			return nil, fmt.Errorf("parsing end: %w", err)
		}

		fields[model.FieldEndDate] = end
	}

	if r.ItemID != nil {
		fields[model.FieldItemID] = *r.ItemID
	}

	if r.BookerID != nil {
		fields[model.FieldBookerID] = *r.BookerID
	}

	if r.Status != nil {
		status, err := model.ParseStatus(*r.Status)
		if err != nil {
			return nil, err
		}

		fields[model.FieldStatus] = status
	}

	fields[constant.FieldModifiedAt] = now
	fields[constant.FieldModifiedBy] = actor

	return fields, nil
}

type BookedItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Booker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID     string     `json:"id"`
	Start  string     `json:"start"`
	End    string     `json:"end"`
	Status string     `json:"status"`
	Item   BookedItem `json:"item"`
	Booker Booker     `json:"booker"`
}

func (r *BookingResponse) FromModel(booking model.Booking) {
	r.ID = booking.ID
	r.Start = timezone.Format(booking.StartDate.Truncate(time.Second), constant.DateFormat)
	r.End = timezone.Format(booking.EndDate.Truncate(time.Second), constant.DateFormat)
	r.Status = string(booking.Status)
	r.Item = BookedItem{ID: booking.ItemID, Name: booking.ItemName}
	r.Booker = Booker{ID: booking.BookerID, Name: booking.BookerName}
}

func FromModels(bookings []model.Booking) []BookingResponse {
	responses := make([]BookingResponse, 0, len(bookings))

	for _, booking := range bookings {
		res := BookingResponse{}
		res.FromModel(booking)

		responses = append(responses, res)
	}

	return responses
}
