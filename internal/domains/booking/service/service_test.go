package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shareit/infras/otel/mocks"
	bookingMocks "shareit/internal/domains/booking/mocks"
	"shareit/internal/domains/booking/model"
	"shareit/internal/domains/booking/model/dto"
	"shareit/internal/domains/booking/service"
	itemMocks "shareit/internal/domains/item/mocks"
	itemModel "shareit/internal/domains/item/model"
	userMocks "shareit/internal/domains/user/mocks"
	userModel "shareit/internal/domains/user/model"
	"shareit/shared/clock"
	"shareit/shared/failure"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type bookingMockSet struct {
	repo     *bookingMocks.MockBooking
	userRepo *userMocks.MockUser
	itemRepo *itemMocks.MockItem
}

func newBookingService(t *testing.T) (service.Booking, bookingMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)

	set := bookingMockSet{
		repo:     bookingMocks.NewMockBooking(ctrl),
		userRepo: userMocks.NewMockUser(ctrl),
		itemRepo: itemMocks.NewMockItem(ctrl),
	}

	svc := service.New(set.repo, set.userRepo, set.itemRepo, clock.Fixed(testNow), mocks.NewOtel())

	return svc, set
}

func waitingBooking() model.Booking {
	return model.Booking{
		ID:          "booking-1",
		StartDate:   testNow.Add(24 * time.Hour),
		EndDate:     testNow.Add(48 * time.Hour),
		Status:      model.StatusWaiting,
		ItemID:      "item-1",
		BookerID:    "booker-1",
		ItemName:    "Drill",
		ItemOwnerID: "owner-1",
		BookerName:  "Alice",
	}
}

func availableItem() itemModel.Item {
	return itemModel.Item{
		ID:        "item-1",
		Name:      "Drill",
		Available: true,
		OwnerID:   "owner-1",
	}
}

func TestBookingService_Create(t *testing.T) {
	validReq := dto.CreateBookingRequest{
		ItemID: "item-1",
		Start:  testNow.Add(24 * time.Hour).Format(time.RFC3339),
		End:    testNow.Add(48 * time.Hour).Format(time.RFC3339),
	}

	tests := []struct {
		name      string
		bookerID  string
		req       dto.CreateBookingRequest
		setupMock func(set bookingMockSet)
		wantCode  int
	}{
		{
			name:     "successful creation starts in WAITING",
			bookerID: "booker-1",
			req:      validReq,
			setupMock: func(set bookingMockSet) {
				set.userRepo.EXPECT().
					FindByID(gomock.Any(), "booker-1").
					Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(availableItem(), nil)
				set.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name:     "unknown booker",
			bookerID: "ghost",
			req:      validReq,
			setupMock: func(set bookingMockSet) {
				set.userRepo.EXPECT().
					FindByID(gomock.Any(), "ghost").
					Return(userModel.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unknown item",
			bookerID: "booker-1",
			req:      validReq,
			setupMock: func(set bookingMockSet) {
				set.userRepo.EXPECT().
					FindByID(gomock.Any(), "booker-1").
					Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(itemModel.Item{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unavailable item rejected",
			bookerID: "booker-1",
			req:      validReq,
			setupMock: func(set bookingMockSet) {
				set.userRepo.EXPECT().
					FindByID(gomock.Any(), "booker-1").
					Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)

				item := availableItem()
				item.Available = false
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(item, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "owner may not book own item",
			bookerID: "owner-1",
			req:      validReq,
			setupMock: func(set bookingMockSet) {
				set.userRepo.EXPECT().
					FindByID(gomock.Any(), "owner-1").
					Return(userModel.User{ID: "owner-1", Name: "Olga"}, nil)
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(availableItem(), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed start date",
			bookerID: "booker-1",
			req: dto.CreateBookingRequest{
				ItemID: "item-1",
				Start:  "yesterday",
				End:    validReq.End,
			},
			setupMock: func(set bookingMockSet) {
				set.userRepo.EXPECT().
					FindByID(gomock.Any(), "booker-1").
					Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(availableItem(), nil)
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, set := newBookingService(t)
			tt.setupMock(set)

			res, err := svc.Create(context.Background(), tt.bookerID, tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, string(model.StatusWaiting), res.Status)
			assert.Equal(t, "item-1", res.Item.ID)
			assert.Equal(t, "Drill", res.Item.Name)
			assert.Equal(t, "booker-1", res.Booker.ID)
			assert.Equal(t, "Alice", res.Booker.Name)
		})
	}
}

func TestBookingService_Approve(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		approved   bool
		setupMock  func(set bookingMockSet)
		wantCode   int
		wantStatus model.Status
	}{
		{
			name:     "owner approves waiting booking",
			userID:   "owner-1",
			approved: true,
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					FindByID(gomock.Any(), "booking-1").
					Return(waitingBooking(), nil)
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(availableItem(), nil)
				set.repo.EXPECT().
					UpdateStatusIfWaiting(gomock.Any(), "booking-1", model.StatusApproved, "owner-1", testNow).
					Return(true, nil)
			},
			wantStatus: model.StatusApproved,
		},
		{
			name:     "owner rejects waiting booking",
			userID:   "owner-1",
			approved: false,
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					FindByID(gomock.Any(), "booking-1").
					Return(waitingBooking(), nil)
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(availableItem(), nil)
				set.repo.EXPECT().
					UpdateStatusIfWaiting(gomock.Any(), "booking-1", model.StatusRejected, "owner-1", testNow).
					Return(true, nil)
			},
			wantStatus: model.StatusRejected,
		},
		{
			name:     "second decision fails, terminal status is absorbing",
			userID:   "owner-1",
			approved: true,
			setupMock: func(set bookingMockSet) {
				booking := waitingBooking()
				booking.Status = model.StatusApproved
				set.repo.EXPECT().
					FindByID(gomock.Any(), "booking-1").
					Return(booking, nil)
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(availableItem(), nil)
				set.repo.EXPECT().
					UpdateStatusIfWaiting(gomock.Any(), "booking-1", model.StatusApproved, "owner-1", testNow).
					Return(false, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "non-owner is forbidden",
			userID:   "booker-1",
			approved: true,
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					FindByID(gomock.Any(), "booking-1").
					Return(waitingBooking(), nil)
				set.itemRepo.EXPECT().
					FindByID(gomock.Any(), "item-1").
					Return(availableItem(), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unknown booking",
			userID:   "owner-1",
			approved: true,
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					FindByID(gomock.Any(), "booking-1").
					Return(model.Booking{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, set := newBookingService(t)
			tt.setupMock(set)

			res, err := svc.Approve(context.Background(), "booking-1", tt.userID, tt.approved)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, string(tt.wantStatus), res.Status)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		wantCode int
	}{
		{name: "booker may view", userID: "booker-1"},
		{name: "item owner may view", userID: "owner-1"},
		{name: "stranger may not view", userID: "stranger", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, set := newBookingService(t)

			set.repo.EXPECT().
				FindByID(gomock.Any(), "booking-1").
				Return(waitingBooking(), nil)

			res, err := svc.Get(context.Background(), "booking-1", tt.userID)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "booking-1", res.ID)
		})
	}
}

func TestBookingService_GetAllByBooker(t *testing.T) {
	t.Run("unknown state fails before any store access", func(t *testing.T) {
		svc, _ := newBookingService(t)

		_, err := svc.GetAllByBooker(context.Background(), "booker-1", "BOGUS")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("state tokens are case-sensitive", func(t *testing.T) {
		svc, _ := newBookingService(t)

		_, err := svc.GetAllByBooker(context.Background(), "booker-1", "all")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, set := newBookingService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "ghost").
			Return(userModel.User{}, nil)

		_, err := svc.GetAllByBooker(context.Background(), "ghost", "ALL")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("dispatches parsed state and pinned now", func(t *testing.T) {
		svc, set := newBookingService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "booker-1").
			Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)
		set.repo.EXPECT().
			FindAllByBooker(gomock.Any(), "booker-1", model.StateCurrent, testNow).
			Return([]model.Booking{waitingBooking()}, nil)

		res, err := svc.GetAllByBooker(context.Background(), "booker-1", "CURRENT")

		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "booking-1", res[0].ID)
	})
}

func TestBookingService_GetAllByOwner(t *testing.T) {
	t.Run("dispatches to the owner query", func(t *testing.T) {
		svc, set := newBookingService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "owner-1").
			Return(userModel.User{ID: "owner-1", Name: "Olga"}, nil)
		set.repo.EXPECT().
			FindAllByOwner(gomock.Any(), "owner-1", model.StateWaiting, testNow).
			Return([]model.Booking{waitingBooking()}, nil)

		res, err := svc.GetAllByOwner(context.Background(), "owner-1", "WAITING")

		require.NoError(t, err)
		require.Len(t, res, 1)
	})

	t.Run("unknown state fails before any store access", func(t *testing.T) {
		svc, _ := newBookingService(t)

		_, err := svc.GetAllByOwner(context.Background(), "owner-1", "FINISHED")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestBookingService_Update(t *testing.T) {
	t.Run("id is required", func(t *testing.T) {
		svc, _ := newBookingService(t)

		_, err := svc.Update(context.Background(), "booker-1", dto.UpdateBookingRequest{})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("stranger may not change the booking", func(t *testing.T) {
		svc, set := newBookingService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "stranger").
			Return(userModel.User{ID: "stranger", Name: "Mallory"}, nil)
		set.repo.EXPECT().
			FindByID(gomock.Any(), "booking-1").
			Return(waitingBooking(), nil)

		_, err := svc.Update(context.Background(), "stranger", dto.UpdateBookingRequest{ID: "booking-1"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("patch merges only the provided fields", func(t *testing.T) {
		svc, set := newBookingService(t)

		newStart := testNow.Add(72 * time.Hour)
		startStr := newStart.Format(time.RFC3339)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "booker-1").
			Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)
		set.repo.EXPECT().
			FindByID(gomock.Any(), "booking-1").
			Return(waitingBooking(), nil)
		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), "booking-1").
			DoAndReturn(func(_ context.Context, fields map[string]any, _ string) error {
				assert.Contains(t, fields, model.FieldStartDate)
				assert.NotContains(t, fields, model.FieldEndDate)
				assert.NotContains(t, fields, model.FieldStatus)

				return nil
			})

		updated := waitingBooking()
		updated.StartDate = newStart
		set.repo.EXPECT().
			FindByID(gomock.Any(), "booking-1").
			Return(updated, nil)

		res, err := svc.Update(context.Background(), "booker-1", dto.UpdateBookingRequest{
			ID:    "booking-1",
			Start: &startStr,
		})

		require.NoError(t, err)
		assert.Equal(t, startStr, res.Start)
	})

	t.Run("invalid status token in patch", func(t *testing.T) {
		svc, set := newBookingService(t)

		bad := "MAYBE"

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "booker-1").
			Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)
		set.repo.EXPECT().
			FindByID(gomock.Any(), "booking-1").
			Return(waitingBooking(), nil)

		_, err := svc.Update(context.Background(), "booker-1", dto.UpdateBookingRequest{
			ID:     "booking-1",
			Status: &bad,
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestBookingService_Delete(t *testing.T) {
	t.Run("unknown booking", func(t *testing.T) {
		svc, set := newBookingService(t)

		set.repo.EXPECT().
			FindByID(gomock.Any(), "booking-1").
			Return(model.Booking{}, nil)

		err := svc.Delete(context.Background(), "booking-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("successful delete", func(t *testing.T) {
		svc, set := newBookingService(t)

		set.repo.EXPECT().
			FindByID(gomock.Any(), "booking-1").
			Return(waitingBooking(), nil)
		set.repo.EXPECT().
			Delete(gomock.Any(), "booking-1").
			Return(nil)

		err := svc.Delete(context.Background(), "booking-1")

		require.NoError(t, err)
	})

	t.Run("repository error surfaces", func(t *testing.T) {
		svc, set := newBookingService(t)

		set.repo.EXPECT().
			FindByID(gomock.Any(), "booking-1").
			Return(waitingBooking(), nil)
		set.repo.EXPECT().
			Delete(gomock.Any(), "booking-1").
			Return(errors.New("database error"))

		err := svc.Delete(context.Background(), "booking-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}
