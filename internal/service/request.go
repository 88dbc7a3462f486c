package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/peertrade/peertrade/internal/apperr"
	"github.com/peertrade/peertrade/internal/metrics"
	"github.com/peertrade/peertrade/internal/repository"
)

type NewRequest struct {
	ItemName    string
	Category    string
	Type        repository.RequestType
	Description string
	ExpireDate  time.Time
}

// RequestDetail carries a request together with a freshly read owner profile;
// the owner snapshot is refreshed on every read rather than stored.
type RequestDetail struct {
	Request *repository.Request
	Owner   *repository.User
}

func validRequestType(t repository.RequestType) bool {
	switch t {
	case repository.RequestTypeRenting, repository.RequestTypeBuying,
		repository.RequestTypeSelling, repository.RequestTypeLoaning:
		return true
	}
	return false
}

func (s *Service) CreateRequest(ctx context.Context, ownerID string, in NewRequest) (*repository.Request, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}
	if !owner.AcceptedTerms {
		return nil, apperr.New(apperr.KindNotAllowed, "terms of service not accepted")
	}
	if !validRequestType(in.Type) {
		return nil, apperr.Newf(apperr.KindIllegalArgument, "unknown request type %q", in.Type)
	}
	if in.ItemName == "" {
		return nil, apperr.New(apperr.KindIllegalArgument, "item name is required")
	}

	now := s.timeNow()
	if !in.ExpireDate.After(now) {
		return nil, apperr.New(apperr.KindIllegalArgument, "expire date must be in the future")
	}

	allowed, err := s.canCreateRequest(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.New(apperr.KindNotAllowed, "too many open requests")
	}

	req := &repository.Request{
		ID:          s.newID(),
		UserID:      ownerID,
		ItemName:    in.ItemName,
		Category:    in.Category,
		Type:        in.Type,
		Description: in.Description,
		PostDate:    now,
		ExpireDate:  in.ExpireDate,
		Status:      repository.RequestStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create request", err)
	}
	s.cacheSet(req)
	metrics.RequestsCreatedTotal.Inc()

	s.logger.Info("request created",
		zap.String("request_id", req.ID),
		zap.String("user_id", ownerID),
		zap.String("type", string(req.Type)))
	return req, nil
}

// canCreateRequest enforces the per-user ceilings: open requests alone, and
// open requests combined with transactions still in flight.
func (s *Service) canCreateRequest(ctx context.Context, userID string) (bool, error) {
	openRequests, err := s.requests.CountByUserAndStatus(ctx, userID, repository.RequestStatusOpen)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to count open requests", err)
	}
	if openRequests >= s.limits.MaxOpenRequests {
		return false, nil
	}

	openTransactions, err := s.transactions.CountOpenByUser(ctx, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to count open transactions", err)
	}
	return openRequests+openTransactions < s.limits.MaxCombinedRequests, nil
}

func (s *Service) GetRequest(ctx context.Context, requestID string) (*RequestDetail, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, req.UserID)
	if err != nil && !errors.Is(err, repository.ErrObjectNotFound) {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load request owner", err)
	}
	return &RequestDetail{Request: req, Owner: owner}, nil
}

func (s *Service) SearchOpenRequests(ctx context.Context, callerID, category, keyword string) ([]*repository.Request, error) {
	var blocked []string
	if callerID != "" {
		caller, err := s.users.GetByID(ctx, callerID)
		if err != nil && !errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to load caller", err)
		}
		if caller != nil {
			blocked = caller.BlockedUsers
		}
	}

	reqs, err := s.requests.SearchOpen(ctx, category, keyword, blocked)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to search requests", err)
	}
	return reqs, nil
}

// CloseRequest is the owner's withdrawal path: the request goes to CLOSED and
// every pending offer on it is cascade-closed.
func (s *Service) CloseRequest(ctx context.Context, callerID, requestID string) error {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.UserID != callerID {
		return apperr.New(apperr.KindUnauthorized, "only the request owner may close it")
	}
	if req.Status != repository.RequestStatusOpen {
		return apperr.New(apperr.KindBadRequest, "request is not open")
	}

	req.Status = repository.RequestStatusClosed
	req.UpdatedAt = s.timeNow()
	if err := s.requests.Update(ctx, req); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to close request", err)
	}
	s.cacheSet(req)

	s.closePendingResponses(ctx, req, "",
		"Request withdrawn", fmt.Sprintf("The request %q has been withdrawn.", req.ItemName))
	return nil
}

// FlagInappropriate marks a listing for moderation and fans out to every
// admin account.
func (s *Service) FlagInappropriate(ctx context.Context, callerID, requestID string) error {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Inappropriate {
		return nil
	}

	req.Inappropriate = true
	req.UpdatedAt = s.timeNow()
	if err := s.requests.Update(ctx, req); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to flag request", err)
	}
	s.cacheSet(req)

	admins, err := s.admins.ListAdmins(ctx)
	if err != nil {
		s.logger.Warn("failed to list admins for moderation fan-out", zap.Error(err))
		return nil
	}
	for _, adminID := range admins {
		s.notify(ctx, adminID, "Listing flagged",
			fmt.Sprintf("Request %q was flagged as inappropriate.", req.ItemName),
			"moderation", map[string]string{"request_id": req.ID, "flagged_by": callerID})
	}
	return nil
}

func (s *Service) loadRequest(ctx context.Context, requestID string) (*repository.Request, error) {
	if s.cache != nil {
		if req, ok := s.cache.Get(requestID); ok {
			return req, nil
		}
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "request not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load request", err)
	}
	return req, nil
}

func (s *Service) cacheSet(req *repository.Request) {
	if s.cache != nil {
		s.cache.Set(req)
	}
}

// ensureNotExpired is the lazy expiry guard invoked at the top of every
// mutating operation that touches an OPEN request. When the request turned
// out to be expired it is closed and its responders notified; that side
// effect persists even though the caller's own operation then fails.
func (s *Service) ensureNotExpired(ctx context.Context, req *repository.Request) (nowClosed bool, err error) {
	if req.Status != repository.RequestStatusOpen || !req.IsExpired(s.timeNow()) {
		return false, nil
	}

	req.Status = repository.RequestStatusClosed
	req.UpdatedAt = s.timeNow()
	if err := s.requests.Update(ctx, req); err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to close expired request", err)
	}
	s.cacheSet(req)
	metrics.RequestsExpiredTotal.Inc()

	s.closePendingResponses(ctx, req, "",
		"Request expired", fmt.Sprintf("The request %q has expired.", req.ItemName))
	return true, nil
}

// closePendingResponses closes every PENDING response on the request except
// exceptID and notifies each responder.
func (s *Service) closePendingResponses(ctx context.Context, req *repository.Request, exceptID, title, message string) {
	pending, err := s.responses.GetPendingByRequestID(ctx, req.ID)
	if err != nil {
		s.logger.Error("failed to load pending responses for cascade close",
			zap.String("request_id", req.ID), zap.Error(err))
		return
	}

	for _, resp := range pending {
		if resp.ID == exceptID {
			continue
		}
		resp.BuyerStatus = repository.BuyerStatusClosed
		resp.Status = repository.ResponseStatusClosed
		resp.UpdatedAt = s.timeNow()
		if err := s.responses.Update(ctx, resp); err != nil {
			s.logger.Error("failed to cascade-close response",
				zap.String("response_id", resp.ID), zap.Error(err))
			continue
		}
		s.notify(ctx, resp.ResponderID, title, message, "response_closed",
			map[string]string{"request_id": req.ID, "response_id": resp.ID})
	}
}
