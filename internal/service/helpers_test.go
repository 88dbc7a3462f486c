package service

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/peertrade/peertrade/internal/repository"
	mock_service "github.com/peertrade/peertrade/internal/service/mocks"
)

const testCode = "AB3DEF2G"

type fixture struct {
	requests     *mock_service.MockRequestRepository
	responses    *mock_service.MockResponseRepository
	transactions *mock_service.MockTransactionRepository
	users        *mock_service.MockUserRepository
	notifier     *mock_service.MockNotifier
	payments     *mock_service.MockPaymentGateway
	admins       *mock_service.MockAdminDirectory

	svc *Service
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		requests:     mock_service.NewMockRequestRepository(ctrl),
		responses:    mock_service.NewMockResponseRepository(ctrl),
		transactions: mock_service.NewMockTransactionRepository(ctrl),
		users:        mock_service.NewMockUserRepository(ctrl),
		notifier:     mock_service.NewMockNotifier(ctrl),
		payments:     mock_service.NewMockPaymentGateway(ctrl),
		admins:       mock_service.NewMockAdminDirectory(ctrl),
		now:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	f.svc = New(f.requests, f.responses, f.transactions, f.users,
		f.notifier, f.payments, f.admins, nil, DefaultLimits(), zap.NewNop())
	f.svc.timeNow = func() time.Time { return f.now }

	seq := 0
	f.svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	f.svc.newCode = func() string { return testCode }

	// Notification delivery is best effort and not under test here.
	f.notifier.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).AnyTimes()

	return f
}

func (f *fixture) openRequest(id, ownerID string, typ repository.RequestType) *repository.Request {
	return &repository.Request{
		ID:         id,
		UserID:     ownerID,
		ItemName:   "cordless drill",
		Type:       typ,
		PostDate:   f.now.Add(-time.Hour),
		ExpireDate: f.now.Add(24 * time.Hour),
		Status:     repository.RequestStatusOpen,
		CreatedAt:  f.now.Add(-time.Hour),
		UpdatedAt:  f.now.Add(-time.Hour),
	}
}

func (f *fixture) pendingResponse(id, requestID, responderID string) *repository.Response {
	return &repository.Response{
		ID:           id,
		RequestID:    requestID,
		ResponderID:  responderID,
		OfferPrice:   100,
		PriceType:    repository.PriceTypeFlat,
		BuyerStatus:  repository.BuyerStatusOpen,
		SellerStatus: repository.SellerStatusOffered,
		Status:       repository.ResponseStatusPending,
		CreatedAt:    f.now.Add(-30 * time.Minute),
		UpdatedAt:    f.now.Add(-30 * time.Minute),
	}
}

func (f *fixture) transaction(id, requestID, responseID, sellerID, buyerID string) *repository.Transaction {
	return &repository.Transaction{
		ID:         id,
		RequestID:  requestID,
		ResponseID: responseID,
		SellerID:   sellerID,
		BuyerID:    buyerID,
		CreatedAt:  f.now.Add(-time.Hour),
		UpdatedAt:  f.now.Add(-time.Hour),
	}
}

func ptr[T any](v T) *T { return &v }
