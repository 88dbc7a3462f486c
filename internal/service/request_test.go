package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/peertrade/peertrade/internal/apperr"
	"github.com/peertrade/peertrade/internal/repository"
)

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByID(gomock.Any(), "owner-1").
			Return(&repository.User{ID: "owner-1", AcceptedTerms: true}, nil)
		f.requests.EXPECT().CountByUserAndStatus(gomock.Any(), "owner-1", repository.RequestStatusOpen).Return(0, nil)
		f.transactions.EXPECT().CountOpenByUser(gomock.Any(), "owner-1").Return(0, nil)

		var created *repository.Request
		f.requests.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *repository.Request) error {
				created = req
				return nil
			})

		req, err := f.svc.CreateRequest(ctx, "owner-1", NewRequest{
			ItemName:   "ladder",
			Type:       repository.RequestTypeRenting,
			ExpireDate: f.now.Add(48 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, created, req)
		assert.Equal(t, repository.RequestStatusOpen, req.Status)
		assert.Equal(t, f.now, req.PostDate)
		assert.False(t, req.Duplicate)
	})

	t.Run("terms of service not accepted", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByID(gomock.Any(), "owner-1").
			Return(&repository.User{ID: "owner-1"}, nil)

		_, err := f.svc.CreateRequest(ctx, "owner-1", NewRequest{
			ItemName:   "ladder",
			Type:       repository.RequestTypeRenting,
			ExpireDate: f.now.Add(time.Hour),
		})
		assert.Equal(t, apperr.KindNotAllowed, apperr.KindOf(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByID(gomock.Any(), "owner-1").
			Return(&repository.User{ID: "owner-1", AcceptedTerms: true}, nil)

		_, err := f.svc.CreateRequest(ctx, "owner-1", NewRequest{
			ItemName:   "ladder",
			Type:       "bartering",
			ExpireDate: f.now.Add(time.Hour),
		})
		assert.Equal(t, apperr.KindIllegalArgument, apperr.KindOf(err))
	})

	t.Run("expire date in the past", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByID(gomock.Any(), "owner-1").
			Return(&repository.User{ID: "owner-1", AcceptedTerms: true}, nil)

		_, err := f.svc.CreateRequest(ctx, "owner-1", NewRequest{
			ItemName:   "ladder",
			Type:       repository.RequestTypeBuying,
			ExpireDate: f.now.Add(-time.Minute),
		})
		assert.Equal(t, apperr.KindIllegalArgument, apperr.KindOf(err))
	})

	t.Run("open request ceiling reached", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByID(gomock.Any(), "owner-1").
			Return(&repository.User{ID: "owner-1", AcceptedTerms: true}, nil)
		f.requests.EXPECT().CountByUserAndStatus(gomock.Any(), "owner-1", repository.RequestStatusOpen).
			Return(DefaultLimits().MaxOpenRequests, nil)

		_, err := f.svc.CreateRequest(ctx, "owner-1", NewRequest{
			ItemName:   "ladder",
			Type:       repository.RequestTypeBuying,
			ExpireDate: f.now.Add(time.Hour),
		})
		assert.Equal(t, apperr.KindNotAllowed, apperr.KindOf(err))
	})

	t.Run("combined ceiling counts open transactions", func(t *testing.T) {
		f := newFixture(t)

		limits := DefaultLimits()
		f.users.EXPECT().GetByID(gomock.Any(), "owner-1").
			Return(&repository.User{ID: "owner-1", AcceptedTerms: true}, nil)
		f.requests.EXPECT().CountByUserAndStatus(gomock.Any(), "owner-1", repository.RequestStatusOpen).
			Return(limits.MaxOpenRequests-1, nil)
		f.transactions.EXPECT().CountOpenByUser(gomock.Any(), "owner-1").
			Return(limits.MaxCombinedRequests-limits.MaxOpenRequests+1, nil)

		_, err := f.svc.CreateRequest(ctx, "owner-1", NewRequest{
			ItemName:   "ladder",
			Type:       repository.RequestTypeBuying,
			ExpireDate: f.now.Add(time.Hour),
		})
		assert.Equal(t, apperr.KindNotAllowed, apperr.KindOf(err))
	})
}

func TestGetRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("returns request with fresh owner snapshot", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		owner := &repository.User{ID: "owner-1", Username: "alice"}

		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.users.EXPECT().GetByID(gomock.Any(), "owner-1").Return(owner, nil)

		detail, err := f.svc.GetRequest(ctx, "req-1")
		require.NoError(t, err)
		assert.Equal(t, req, detail.Request)
		assert.Equal(t, owner, detail.Owner)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.requests.EXPECT().GetByID(gomock.Any(), "missing").
			Return(nil, repository.ErrObjectNotFound)

		_, err := f.svc.GetRequest(ctx, "missing")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestCloseRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("owner closes and pending offers cascade", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		competing := f.pendingResponse("resp-9", "req-1", "user-9")

		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.requests.EXPECT().Update(gomock.Any(), req).Return(nil)
		f.responses.EXPECT().GetPendingByRequestID(gomock.Any(), "req-1").
			Return([]*repository.Response{competing}, nil)
		f.responses.EXPECT().Update(gomock.Any(), competing).Return(nil)

		err := f.svc.CloseRequest(ctx, "owner-1", "req-1")
		require.NoError(t, err)
		assert.Equal(t, repository.RequestStatusClosed, req.Status)
		assert.Equal(t, repository.ResponseStatusClosed, competing.Status)
		assert.Equal(t, repository.BuyerStatusClosed, competing.BuyerStatus)
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)

		err := f.svc.CloseRequest(ctx, "intruder", "req-1")
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("already closed", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		req.Status = repository.RequestStatusClosed
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)

		err := f.svc.CloseRequest(ctx, "owner-1", "req-1")
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})
}

func TestFlagInappropriate(t *testing.T) {
	ctx := context.Background()

	t.Run("flags and fans out to admins", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.requests.EXPECT().Update(gomock.Any(), req).Return(nil)
		f.admins.EXPECT().ListAdmins(gomock.Any()).Return([]string{"admin-1", "admin-2"}, nil)

		err := f.svc.FlagInappropriate(ctx, "user-5", "req-1")
		require.NoError(t, err)
		assert.True(t, req.Inappropriate)
	})

	t.Run("already flagged is a no-op", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		req.Inappropriate = true
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)

		err := f.svc.FlagInappropriate(ctx, "user-5", "req-1")
		assert.NoError(t, err)
	})
}

func TestSearchOpenRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("passes blocked users through", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByID(gomock.Any(), "caller-1").
			Return(&repository.User{ID: "caller-1", BlockedUsers: []string{"spammer"}}, nil)
		f.requests.EXPECT().SearchOpen(gomock.Any(), "tools", "drill", []string{"spammer"}).
			Return([]*repository.Request{}, nil)

		_, err := f.svc.SearchOpenRequests(ctx, "caller-1", "tools", "drill")
		assert.NoError(t, err)
	})

	t.Run("anonymous search skips the caller lookup", func(t *testing.T) {
		f := newFixture(t)

		f.requests.EXPECT().SearchOpen(gomock.Any(), "", "", gomock.Nil()).
			Return([]*repository.Request{}, nil)

		_, err := f.svc.SearchOpenRequests(ctx, "", "", "")
		assert.NoError(t, err)
	})
}
