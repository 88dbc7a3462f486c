//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=mock_service
package service

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/peertrade/peertrade/internal/repository"
)

type RequestRepository interface {
	Create(ctx context.Context, req *repository.Request) error
	GetByID(ctx context.Context, id string) (*repository.Request, error)
	Update(ctx context.Context, req *repository.Request) error
	CountByUserAndStatus(ctx context.Context, userID string, status repository.RequestStatus) (int, error)
	GetAllOpen(ctx context.Context) ([]*repository.Request, error)
	SearchOpen(ctx context.Context, category, keyword string, excludeUserIDs []string) ([]*repository.Request, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, resp *repository.Response) error
	GetByID(ctx context.Context, id string) (*repository.Response, error)
	Update(ctx context.Context, resp *repository.Response) error
	GetByRequestID(ctx context.Context, requestID string) ([]*repository.Response, error)
	GetPendingByRequestID(ctx context.Context, requestID string) ([]*repository.Response, error)
	CountByResponderAndStatus(ctx context.Context, responderID string, status repository.ResponseStatus) (int, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *repository.Transaction) error
	GetByID(ctx context.Context, id string) (*repository.Transaction, error)
	Update(ctx context.Context, txn *repository.Transaction) error
	GetActiveByRequestID(ctx context.Context, requestID string) (*repository.Transaction, error)
	CountOpenByUser(ctx context.Context, userID string) (int, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*repository.User, error)
	ValidateUser(ctx context.Context, username, password string) (string, error)
}

// Notifier delivers a push message to a user. Best effort: the core logs
// delivery failures and moves on.
type Notifier interface {
	Send(ctx context.Context, recipientID, title, message, notificationType string, data map[string]string) error
}

// PaymentGateway captures a charge against the buyer's stored payment method,
// routed to the seller's payout account. A failure here is fatal to the
// calling operation.
type PaymentGateway interface {
	Charge(ctx context.Context, buyerID, sellerID string, amount int64) (string, error)
}

type AdminDirectory interface {
	ListAdmins(ctx context.Context) ([]string, error)
}

type RequestCache interface {
	Get(requestID string) (*repository.Request, bool)
	Set(req *repository.Request)
	Delete(requestID string)
}

// Limits holds the business ceilings enforced on request/response creation
// and the verification code lifetime.
type Limits struct {
	MaxOpenRequests      int
	MaxCombinedRequests  int
	MaxPendingResponses  int
	MaxCombinedResponses int
	MinOfferPrice        int64
	CodeTTL              time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxOpenRequests:      5,
		MaxCombinedRequests:  20,
		MaxPendingResponses:  5,
		MaxCombinedResponses: 10,
		MinOfferPrice:        50,
		CodeTTL:              3 * time.Minute,
	}
}

// LimitsFromEnv overlays DefaultLimits with LIMIT_* environment overrides.
func LimitsFromEnv() Limits {
	limits := DefaultLimits()
	if v, err := strconv.Atoi(os.Getenv("LIMIT_MAX_OPEN_REQUESTS")); err == nil && v > 0 {
		limits.MaxOpenRequests = v
	}
	if v, err := strconv.Atoi(os.Getenv("LIMIT_MAX_COMBINED_REQUESTS")); err == nil && v > 0 {
		limits.MaxCombinedRequests = v
	}
	if v, err := strconv.Atoi(os.Getenv("LIMIT_MAX_PENDING_RESPONSES")); err == nil && v > 0 {
		limits.MaxPendingResponses = v
	}
	if v, err := strconv.Atoi(os.Getenv("LIMIT_MAX_COMBINED_RESPONSES")); err == nil && v > 0 {
		limits.MaxCombinedResponses = v
	}
	if v, err := strconv.ParseInt(os.Getenv("LIMIT_MIN_OFFER_PRICE"), 10, 64); err == nil && v > 0 {
		limits.MinOfferPrice = v
	}
	if v, err := strconv.Atoi(os.Getenv("LIMIT_CODE_TTL_SECONDS")); err == nil && v > 0 {
		limits.CodeTTL = time.Duration(v) * time.Second
	}
	return limits
}

// Service owns the request lifecycle, the response negotiation handshake and
// the transaction state machine. It is request-scoped and stateless: every
// operation validates against freshly read rows and persists at the end of
// its success path.
type Service struct {
	requests     RequestRepository
	responses    ResponseRepository
	transactions TransactionRepository
	users        UserRepository
	notifier     Notifier
	payments     PaymentGateway
	admins       AdminDirectory
	cache        RequestCache
	limits       Limits
	logger       *zap.Logger

	timeNow func() time.Time
	newID   func() string
	newCode func() string
}

func New(
	requests RequestRepository,
	responses ResponseRepository,
	transactions TransactionRepository,
	users UserRepository,
	notifier Notifier,
	payments PaymentGateway,
	admins AdminDirectory,
	cache RequestCache,
	limits Limits,
	logger *zap.Logger,
) *Service {
	return &Service{
		requests:     requests,
		responses:    responses,
		transactions: transactions,
		users:        users,
		notifier:     notifier,
		payments:     payments,
		admins:       admins,
		cache:        cache,
		limits:       limits,
		logger:       logger,
		timeNow:      func() time.Time { return time.Now().UTC() },
		newID:        newID,
		newCode:      generateCode,
	}
}

// notify sends a push and logs failures without surfacing them: notification
// delivery must never block or fail business logic.
func (s *Service) notify(ctx context.Context, recipientID, title, message, notificationType string, data map[string]string) {
	if err := s.notifier.Send(ctx, recipientID, title, message, notificationType, data); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("recipient_id", recipientID),
			zap.String("type", notificationType),
			zap.Error(err))
	}
}
