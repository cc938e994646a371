package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shareit/config"
	"shareit/infras/otel/mocks"
	bookingMocks "shareit/internal/domains/booking/mocks"
	bookingModel "shareit/internal/domains/booking/model"
	commentMocks "shareit/internal/domains/comment/mocks"
	commentModel "shareit/internal/domains/comment/model"
	commentDto "shareit/internal/domains/comment/model/dto"
	itemMocks "shareit/internal/domains/item/mocks"
	"shareit/internal/domains/item/model"
	"shareit/internal/domains/item/model/dto"
	"shareit/internal/domains/item/service"
	userMocks "shareit/internal/domains/user/mocks"
	userModel "shareit/internal/domains/user/model"
	cacheMocks "shareit/shared/cache/mocks"
	"shareit/shared/clock"
	"shareit/shared/failure"
	gModel "shareit/shared/model"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type itemMockSet struct {
	repo        *itemMocks.MockItem
	bookingRepo *bookingMocks.MockBooking
	commentRepo *commentMocks.MockComment
	userRepo    *userMocks.MockUser
	cache       *cacheMocks.MockRedisCache
}

func newItemService(t *testing.T) (service.Item, itemMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)

	set := itemMockSet{
		repo:        itemMocks.NewMockItem(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		commentRepo: commentMocks.NewMockComment(ctrl),
		userRepo:    userMocks.NewMockUser(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(set.repo, set.bookingRepo, set.commentRepo, set.userRepo, cfg, set.cache, clock.Fixed(testNow), mocks.NewOtel())

	return svc, set
}

func owner() userModel.User {
	return userModel.User{ID: "owner-1", Name: "Olga"}
}

func ownedItem(id string) model.Item {
	return model.Item{
		ID:        id,
		Name:      "Item " + id,
		Available: true,
		OwnerID:   "owner-1",
	}
}

func approvedBooking(id, itemID string) bookingModel.Booking {
	return bookingModel.Booking{
		ID:       id,
		ItemID:   itemID,
		BookerID: "booker-" + id,
		Status:   bookingModel.StatusApproved,
	}
}

func TestItemService_Create(t *testing.T) {
	t.Run("owner must exist", func(t *testing.T) {
		svc, set := newItemService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "ghost").
			Return(userModel.User{}, nil)

		available := true
		_, err := svc.Create(context.Background(), "ghost", dto.CreateItemRequest{
			Name:        "Drill",
			Description: "A drill",
			Available:   &available,
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("successful creation", func(t *testing.T) {
		svc, set := newItemService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "owner-1").
			Return(owner(), nil)
		set.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)
		set.cache.EXPECT().
			Clear(gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()

		available := true
		res, err := svc.Create(context.Background(), "owner-1", dto.CreateItemRequest{
			Name:        "Drill",
			Description: "A drill",
			Available:   &available,
		})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "Drill", res.Name)
		assert.True(t, res.Available)
	})
}

func TestItemService_Update(t *testing.T) {
	t.Run("only the owner may edit", func(t *testing.T) {
		svc, set := newItemService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "intruder").
			Return(userModel.User{ID: "intruder", Name: "Ivan"}, nil)
		set.repo.EXPECT().
			FindByID(gomock.Any(), "item-1").
			Return(ownedItem("item-1"), nil)

		name := "Stolen"
		_, err := svc.Update(context.Background(), "intruder", "item-1", dto.UpdateItemRequest{Name: &name})

		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("owner patches a single field", func(t *testing.T) {
		svc, set := newItemService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "owner-1").
			Return(owner(), nil)
		set.repo.EXPECT().
			FindByID(gomock.Any(), "item-1").
			Return(ownedItem("item-1"), nil)
		set.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), "item-1").
			DoAndReturn(func(_ context.Context, fields map[string]any, _ string) error {
				assert.Contains(t, fields, model.FieldName)
				assert.NotContains(t, fields, model.FieldDescription)
				assert.NotContains(t, fields, model.FieldAvailable)

				return nil
			})

		updated := ownedItem("item-1")
		updated.Name = "Hammer drill"
		set.repo.EXPECT().
			FindByID(gomock.Any(), "item-1").
			Return(updated, nil)
		set.cache.EXPECT().
			Clear(gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()

		name := "Hammer drill"
		res, err := svc.Update(context.Background(), "owner-1", "item-1", dto.UpdateItemRequest{Name: &name})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "Hammer drill", res.Name)
	})
}

func TestItemService_Get(t *testing.T) {
	t.Run("owner sees closest bookings", func(t *testing.T) {
		svc, set := newItemService(t)

		set.repo.EXPECT().
			FindByID(gomock.Any(), "item-1").
			Return(ownedItem("item-1"), nil)
		set.commentRepo.EXPECT().
			FindAllByItemID(gomock.Any(), "item-1").
			Return([]commentModel.Comment{{ID: "c1", Text: "Great", ItemID: "item-1", AuthorName: "Alice"}}, nil)
		set.bookingRepo.EXPECT().
			FindLastApprovedForItems(gomock.Any(), []string{"item-1"}, testNow).
			Return([]bookingModel.Booking{approvedBooking("b1", "item-1")}, nil)
		set.bookingRepo.EXPECT().
			FindNextApprovedForItems(gomock.Any(), []string{"item-1"}, testNow).
			Return([]bookingModel.Booking{approvedBooking("b2", "item-1")}, nil)

		res, err := svc.Get(context.Background(), "item-1", "owner-1")

		require.NoError(t, err)
		require.NotNil(t, res.LastBooking)
		require.NotNil(t, res.NextBooking)
		assert.Equal(t, "b1", res.LastBooking.ID)
		assert.Equal(t, "b2", res.NextBooking.ID)
		assert.Len(t, res.Comments, 1)
	})

	t.Run("non-owner sees comments but no bookings", func(t *testing.T) {
		svc, set := newItemService(t)

		set.repo.EXPECT().
			FindByID(gomock.Any(), "item-1").
			Return(ownedItem("item-1"), nil)
		set.commentRepo.EXPECT().
			FindAllByItemID(gomock.Any(), "item-1").
			Return([]commentModel.Comment{}, nil)

		res, err := svc.Get(context.Background(), "item-1", "visitor")

		require.NoError(t, err)
		assert.Nil(t, res.LastBooking)
		assert.Nil(t, res.NextBooking)
	})
}

func TestItemService_GetAllByOwner(t *testing.T) {
	t.Run("query count stays fixed regardless of item count", func(t *testing.T) {
		svc, set := newItemService(t)

		items := []model.Item{ownedItem("i1"), ownedItem("i2"), ownedItem("i3"), ownedItem("i4"), ownedItem("i5")}
		ids := []string{"i1", "i2", "i3", "i4", "i5"}

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "owner-1").
			Return(owner(), nil)
		set.repo.EXPECT().
			FindAllByOwner(gomock.Any(), "owner-1").
			Return(items, nil).
			Times(1)
		set.bookingRepo.EXPECT().
			FindLastApprovedForItems(gomock.Any(), ids, testNow).
			Return(nil, nil).
			Times(1)
		set.bookingRepo.EXPECT().
			FindNextApprovedForItems(gomock.Any(), ids, testNow).
			Return(nil, nil).
			Times(1)
		set.commentRepo.EXPECT().
			FindForItems(gomock.Any(), ids).
			Return(nil, nil).
			Times(1)

		res, err := svc.GetAllByOwner(context.Background(), "owner-1")

		require.NoError(t, err)
		assert.Len(t, res, 5)
	})

	t.Run("grouping keys strictly by item id, first record wins", func(t *testing.T) {
		svc, set := newItemService(t)

		items := []model.Item{ownedItem("i1"), ownedItem("i2"), ownedItem("i3")}
		ids := []string{"i1", "i2", "i3"}

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "owner-1").
			Return(owner(), nil)
		set.repo.EXPECT().
			FindAllByOwner(gomock.Any(), "owner-1").
			Return(items, nil)
		// i1 has two past bookings, the stream is pre-sorted so the
		// first one is the most recent; i3 has none at all.
		set.bookingRepo.EXPECT().
			FindLastApprovedForItems(gomock.Any(), ids, testNow).
			Return([]bookingModel.Booking{
				approvedBooking("b-recent", "i1"),
				approvedBooking("b-older", "i1"),
				approvedBooking("b-i2", "i2"),
			}, nil)
		set.bookingRepo.EXPECT().
			FindNextApprovedForItems(gomock.Any(), ids, testNow).
			Return([]bookingModel.Booking{
				approvedBooking("b-next-i2", "i2"),
			}, nil)
		set.commentRepo.EXPECT().
			FindForItems(gomock.Any(), ids).
			Return([]commentModel.Comment{
				{ID: "c1", Text: "ok", ItemID: "i3", AuthorName: "Alice", Metadata: gModel.Metadata{CreatedAt: testNow}},
			}, nil)

		res, err := svc.GetAllByOwner(context.Background(), "owner-1")

		require.NoError(t, err)
		require.Len(t, res, 3)

		byID := map[string]dto.ItemSummaryResponse{}
		for _, summary := range res {
			byID[summary.ID] = summary
		}

		require.NotNil(t, byID["i1"].LastBooking)
		assert.Equal(t, "b-recent", byID["i1"].LastBooking.ID)
		assert.Nil(t, byID["i1"].NextBooking)

		require.NotNil(t, byID["i2"].NextBooking)
		assert.Equal(t, "b-next-i2", byID["i2"].NextBooking.ID)

		// An item with no approved bookings maps to absence, never to
		// some other item's booking.
		assert.Nil(t, byID["i3"].LastBooking)
		assert.Nil(t, byID["i3"].NextBooking)
		assert.Len(t, byID["i3"].Comments, 1)
	})

	t.Run("no items short-circuits the batched queries", func(t *testing.T) {
		svc, set := newItemService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "owner-1").
			Return(owner(), nil)
		set.repo.EXPECT().
			FindAllByOwner(gomock.Any(), "owner-1").
			Return([]model.Item{}, nil)

		res, err := svc.GetAllByOwner(context.Background(), "owner-1")

		require.NoError(t, err)
		assert.Empty(t, res)
	})
}

func TestItemService_Search(t *testing.T) {
	t.Run("blank text returns empty without touching the store", func(t *testing.T) {
		svc, _ := newItemService(t)

		res, err := svc.Search(context.Background(), "")

		require.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("cache miss falls through to the repository", func(t *testing.T) {
		svc, set := newItemService(t)

		set.cache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(assert.AnError)
		set.repo.EXPECT().
			Search(gomock.Any(), "drill").
			Return([]model.Item{ownedItem("item-1")}, nil)
		set.cache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), 3600).
			Return(nil).
			AnyTimes()

		res, err := svc.Search(context.Background(), "drill")

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "item-1", res[0].ID)
	})
}

func TestItemService_AddComment(t *testing.T) {
	req := commentDto.NewCommentRequest{Text: "worked great"}

	t.Run("rejected without a finished booking", func(t *testing.T) {
		svc, set := newItemService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "booker-1").
			Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)
		set.repo.EXPECT().
			FindByID(gomock.Any(), "item-1").
			Return(ownedItem("item-1"), nil)
		set.bookingRepo.EXPECT().
			ExistsFinishedBooking(gomock.Any(), "booker-1", "item-1", testNow).
			Return(false, nil)

		_, err := svc.AddComment(context.Background(), "item-1", "booker-1", req)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("allowed once a booking has concluded", func(t *testing.T) {
		svc, set := newItemService(t)

		set.userRepo.EXPECT().
			FindByID(gomock.Any(), "booker-1").
			Return(userModel.User{ID: "booker-1", Name: "Alice"}, nil)
		set.repo.EXPECT().
			FindByID(gomock.Any(), "item-1").
			Return(ownedItem("item-1"), nil)
		set.bookingRepo.EXPECT().
			ExistsFinishedBooking(gomock.Any(), "booker-1", "item-1", testNow).
			Return(true, nil)
		set.commentRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		res, err := svc.AddComment(context.Background(), "item-1", "booker-1", req)

		require.NoError(t, err)
		assert.Equal(t, "worked great", res.Text)
		assert.Equal(t, "Alice", res.AuthorName)
	})
}
