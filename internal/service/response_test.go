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

func TestCreateResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("success on a demand request", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().CountByResponderAndStatus(gomock.Any(), "responder-1", repository.ResponseStatusPending).Return(0, nil)
		f.transactions.EXPECT().CountOpenByUser(gomock.Any(), "responder-1").Return(0, nil)

		var created *repository.Response
		f.responses.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, resp *repository.Response) error {
				created = resp
				return nil
			})

		resp, err := f.svc.CreateResponse(ctx, "responder-1", NewResponse{
			RequestID:  "req-1",
			OfferPrice: 100,
			PriceType:  repository.PriceTypePerDay,
		})
		require.NoError(t, err)
		assert.Equal(t, created, resp)
		assert.Equal(t, repository.BuyerStatusOpen, resp.BuyerStatus)
		assert.Equal(t, repository.SellerStatusOffered, resp.SellerStatus)
		assert.Equal(t, repository.ResponseStatusPending, resp.Status)
		assert.False(t, resp.OfferToBuyOrRent)
	})

	t.Run("inventory listing clones a per-offer thread", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().CountByResponderAndStatus(gomock.Any(), "responder-1", repository.ResponseStatusPending).Return(0, nil)
		f.transactions.EXPECT().CountOpenByUser(gomock.Any(), "responder-1").Return(0, nil)

		var clone *repository.Request
		f.requests.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *repository.Request) error {
				clone = r
				return nil
			})
		f.responses.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := f.svc.CreateResponse(ctx, "responder-1", NewResponse{
			RequestID:  "req-1",
			OfferPrice: 100,
			PriceType:  repository.PriceTypeFlat,
		})
		require.NoError(t, err)
		require.NotNil(t, clone)
		assert.True(t, clone.Duplicate)
		require.NotNil(t, clone.SourceListingID)
		assert.Equal(t, "req-1", *clone.SourceListingID)
		assert.NotEqual(t, "req-1", clone.ID)
		// The response threads on the clone so acceptance never touches
		// the listing itself.
		assert.Equal(t, clone.ID, resp.RequestID)
		assert.True(t, resp.OfferToBuyOrRent)
	})

	t.Run("self response rejected", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)

		_, err := f.svc.CreateResponse(ctx, "owner-1", NewResponse{
			RequestID: "req-1",
			PriceType: repository.PriceTypeFlat,
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("expired request is closed first and the offer rejected", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		req.ExpireDate = f.now.Add(-time.Minute)

		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.requests.EXPECT().Update(gomock.Any(), req).Return(nil)
		f.responses.EXPECT().GetPendingByRequestID(gomock.Any(), "req-1").
			Return(nil, nil)

		_, err := f.svc.CreateResponse(ctx, "responder-1", NewResponse{
			RequestID: "req-1",
			PriceType: repository.PriceTypeFlat,
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
		// The lazy close persisted even though the operation failed.
		assert.Equal(t, repository.RequestStatusClosed, req.Status)
	})

	t.Run("offer below minimum rejected", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)

		_, err := f.svc.CreateResponse(ctx, "responder-1", NewResponse{
			RequestID:  "req-1",
			OfferPrice: DefaultLimits().MinOfferPrice - 1,
			PriceType:  repository.PriceTypeFlat,
		})
		assert.Equal(t, apperr.KindIllegalArgument, apperr.KindOf(err))
	})

	t.Run("free offer allowed", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().CountByResponderAndStatus(gomock.Any(), "responder-1", repository.ResponseStatusPending).Return(0, nil)
		f.transactions.EXPECT().CountOpenByUser(gomock.Any(), "responder-1").Return(0, nil)
		f.responses.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.CreateResponse(ctx, "responder-1", NewResponse{
			RequestID:  "req-1",
			OfferPrice: 0,
			PriceType:  repository.PriceTypeFlat,
		})
		assert.NoError(t, err)
	})

	t.Run("pending offer ceiling reached", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().CountByResponderAndStatus(gomock.Any(), "responder-1", repository.ResponseStatusPending).
			Return(DefaultLimits().MaxPendingResponses, nil)

		_, err := f.svc.CreateResponse(ctx, "responder-1", NewResponse{
			RequestID:  "req-1",
			OfferPrice: 100,
			PriceType:  repository.PriceTypeFlat,
		})
		assert.Equal(t, apperr.KindNotAllowed, apperr.KindOf(err))
	})
}

func TestUpdateResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("mutual acceptance opens the transaction", func(t *testing.T) {
		f := newFixture(t)

		// Selling listing: owner is the seller, responder the buyer.
		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")
		resp.SellerStatus = repository.SellerStatusAccepted
		competing := f.pendingResponse("resp-2", "req-1", "responder-2")

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().Update(gomock.Any(), resp).Return(nil).Times(2)

		f.transactions.EXPECT().GetActiveByRequestID(gomock.Any(), "req-1").
			Return(nil, repository.ErrObjectNotFound)

		var txn *repository.Transaction
		f.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tx *repository.Transaction) error {
				txn = tx
				return nil
			})
		f.requests.EXPECT().Update(gomock.Any(), req).Return(nil)
		f.responses.EXPECT().GetPendingByRequestID(gomock.Any(), "req-1").
			Return([]*repository.Response{resp, competing}, nil)
		f.responses.EXPECT().Update(gomock.Any(), competing).Return(nil)

		out, err := f.svc.UpdateResponse(ctx, "responder-1", "resp-1", UpdateResponseInput{
			BuyerStatus: ptr(repository.BuyerStatusAccepted),
		})
		require.NoError(t, err)
		assert.Equal(t, repository.ResponseStatusAccepted, out.Status)
		assert.Equal(t, repository.RequestStatusTransactionPending, req.Status)

		require.NotNil(t, txn)
		assert.Equal(t, "owner-1", txn.SellerID)
		assert.Equal(t, "responder-1", txn.BuyerID)
		assert.Equal(t, "req-1", txn.RequestID)
		assert.Equal(t, "resp-1", txn.ResponseID)

		// The competing offer lost the race and was cascade-closed.
		assert.Equal(t, repository.ResponseStatusClosed, competing.Status)
	})

	t.Run("acceptance on an offer thread leaves the listing alone", func(t *testing.T) {
		f := newFixture(t)

		// The clone carries the negotiation; the listing itself is never
		// loaded or updated here.
		thread := f.openRequest("thread-1", "owner-1", repository.RequestTypeSelling)
		thread.Duplicate = true
		thread.SourceListingID = ptr("req-1")
		resp := f.pendingResponse("resp-1", "thread-1", "responder-1")
		resp.SellerStatus = repository.SellerStatusAccepted

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "thread-1").Return(thread, nil)
		f.responses.EXPECT().Update(gomock.Any(), resp).Return(nil).Times(2)
		f.transactions.EXPECT().GetActiveByRequestID(gomock.Any(), "thread-1").
			Return(nil, repository.ErrObjectNotFound)
		f.transactions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.requests.EXPECT().Update(gomock.Any(), thread).Return(nil)
		f.responses.EXPECT().GetPendingByRequestID(gomock.Any(), "thread-1").
			Return([]*repository.Response{resp}, nil)

		out, err := f.svc.UpdateResponse(ctx, "responder-1", "resp-1", UpdateResponseInput{
			BuyerStatus: ptr(repository.BuyerStatusAccepted),
		})
		require.NoError(t, err)
		assert.Equal(t, repository.ResponseStatusAccepted, out.Status)
		assert.Equal(t, repository.RequestStatusTransactionPending, thread.Status)
	})

	t.Run("one-sided acceptance stays pending", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().Update(gomock.Any(), resp).Return(nil)

		out, err := f.svc.UpdateResponse(ctx, "responder-1", "resp-1", UpdateResponseInput{
			BuyerStatus: ptr(repository.BuyerStatusAccepted),
		})
		require.NoError(t, err)
		assert.Equal(t, repository.BuyerStatusAccepted, out.BuyerStatus)
		assert.Equal(t, repository.ResponseStatusPending, out.Status)
	})

	t.Run("caller cannot set the other side's status", func(t *testing.T) {
		f := newFixture(t)

		// Selling: the responder is the buyer and must not touch seller status.
		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)

		_, err := f.svc.UpdateResponse(ctx, "responder-1", "resp-1", UpdateResponseInput{
			SellerStatus: ptr(repository.SellerStatusAccepted),
		})
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("role inversion on demand requests", func(t *testing.T) {
		f := newFixture(t)

		// Renting request: the owner wants the item, so the owner is the buyer
		// and the responder the seller.
		req := f.openRequest("req-1", "owner-1", repository.RequestTypeRenting)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().Update(gomock.Any(), resp).Return(nil)

		out, err := f.svc.UpdateResponse(ctx, "responder-1", "resp-1", UpdateResponseInput{
			SellerStatus: ptr(repository.SellerStatusAccepted),
		})
		require.NoError(t, err)
		assert.Equal(t, repository.SellerStatusAccepted, out.SellerStatus)
	})

	t.Run("term change reopens the counterpart's acceptance", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")
		resp.BuyerStatus = repository.BuyerStatusAccepted

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().Update(gomock.Any(), resp).Return(nil)

		// The owner (seller) raises the price; the buyer's acceptance resets.
		out, err := f.svc.UpdateResponse(ctx, "owner-1", "resp-1", UpdateResponseInput{
			OfferPrice: ptr(int64(200)),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(200), out.OfferPrice)
		assert.Equal(t, repository.BuyerStatusOpen, out.BuyerStatus)
	})

	t.Run("decline closes the response", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().Update(gomock.Any(), resp).Return(nil)

		out, err := f.svc.UpdateResponse(ctx, "responder-1", "resp-1", UpdateResponseInput{
			BuyerStatus: ptr(repository.BuyerStatusDeclined),
		})
		require.NoError(t, err)
		assert.Equal(t, repository.ResponseStatusClosed, out.Status)
	})

	t.Run("closed response rejects edits", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")
		resp.Status = repository.ResponseStatusClosed

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)

		_, err := f.svc.UpdateResponse(ctx, "responder-1", "resp-1", UpdateResponseInput{
			Message: ptr("still interested?"),
		})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("outsider rejected", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)

		_, err := f.svc.UpdateResponse(ctx, "lurker", "resp-1", UpdateResponseInput{
			Message: ptr("hello"),
		})
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("acceptance races a live transaction", func(t *testing.T) {
		f := newFixture(t)

		req := f.openRequest("req-1", "owner-1", repository.RequestTypeSelling)
		resp := f.pendingResponse("resp-1", "req-1", "responder-1")
		resp.SellerStatus = repository.SellerStatusAccepted

		f.responses.EXPECT().GetByID(gomock.Any(), "resp-1").Return(resp, nil)
		f.requests.EXPECT().GetByID(gomock.Any(), "req-1").Return(req, nil)
		f.responses.EXPECT().Update(gomock.Any(), resp).Return(nil)
		f.transactions.EXPECT().GetActiveByRequestID(gomock.Any(), "req-1").
			Return(f.transaction("txn-0", "req-1", "resp-0", "owner-1", "someone"), nil)

		_, err := f.svc.UpdateResponse(ctx, "responder-1", "resp-1", UpdateResponseInput{
			BuyerStatus: ptr(repository.BuyerStatusAccepted),
		})
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})
}
