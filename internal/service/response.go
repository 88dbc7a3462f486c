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

type NewResponse struct {
	RequestID        string
	OfferPrice       int64
	PriceType        repository.PriceType
	ExchangeLocation string
	ReturnLocation   string
	ExchangeTime     *time.Time
	ReturnTime       *time.Time
	Message          string
}

// UpdateResponseInput carries the mutable offer terms plus at most one status
// change for the side of the deal the caller controls. Nil fields are left
// untouched.
type UpdateResponseInput struct {
	OfferPrice       *int64
	PriceType        *repository.PriceType
	ExchangeLocation *string
	ReturnLocation   *string
	ExchangeTime     *time.Time
	ReturnTime       *time.Time
	Message          *string
	BuyerStatus      *repository.BuyerStatus
	SellerStatus     *repository.SellerStatus
}

func validPriceType(t repository.PriceType) bool {
	switch t {
	case repository.PriceTypeFlat, repository.PriceTypePerHour, repository.PriceTypePerDay:
		return true
	}
	return false
}

// CreateResponse records a new offer against an open request. For inventory
// listings (selling/loaning) a duplicate request record is cloned per offer so
// each responder negotiates on its own thread without mutating the listing.
func (s *Service) CreateResponse(ctx context.Context, responderID string, in NewResponse) (*repository.Response, error) {
	req, err := s.loadRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req.Duplicate {
		return nil, apperr.New(apperr.KindBadRequest, "offer threads do not accept further responses")
	}
	if req.UserID == responderID {
		return nil, apperr.New(apperr.KindBadRequest, "cannot respond to your own request")
	}

	nowClosed, err := s.ensureNotExpired(ctx, req)
	if err != nil {
		return nil, err
	}
	if nowClosed {
		return nil, apperr.New(apperr.KindBadRequest, "request has expired")
	}
	if req.Status != repository.RequestStatusOpen {
		return nil, apperr.New(apperr.KindBadRequest, "request is not open")
	}

	if !validPriceType(in.PriceType) {
		return nil, apperr.Newf(apperr.KindIllegalArgument, "unknown price type %q", in.PriceType)
	}
	// Zero means a free offer; anything else must clear the minimum.
	if in.OfferPrice != 0 && in.OfferPrice < s.limits.MinOfferPrice {
		return nil, apperr.Newf(apperr.KindIllegalArgument,
			"offer price must be 0 or at least %d", s.limits.MinOfferPrice)
	}

	allowed, err := s.canCreateResponse(ctx, responderID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.New(apperr.KindNotAllowed, "too many pending offers")
	}

	now := s.timeNow()
	threadID := req.ID
	if req.IsInventoryListing() {
		clone := *req
		clone.ID = s.newID()
		clone.Duplicate = true
		clone.SourceListingID = &req.ID
		clone.CreatedAt = now
		clone.UpdatedAt = now
		if err := s.requests.Create(ctx, &clone); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to clone listing for offer thread", err)
		}
		// The offer is attached to the clone; acceptance and the resulting
		// transaction run against it while the listing stays OPEN.
		threadID = clone.ID
	}

	resp := &repository.Response{
		ID:               s.newID(),
		RequestID:        threadID,
		ResponderID:      responderID,
		OfferPrice:       in.OfferPrice,
		PriceType:        in.PriceType,
		ExchangeLocation: in.ExchangeLocation,
		ReturnLocation:   in.ReturnLocation,
		ExchangeTime:     in.ExchangeTime,
		ReturnTime:       in.ReturnTime,
		Message:          in.Message,
		BuyerStatus:      repository.BuyerStatusOpen,
		SellerStatus:     repository.SellerStatusOffered,
		Status:           repository.ResponseStatusPending,
		OfferToBuyOrRent: req.IsInventoryListing(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create response", err)
	}
	metrics.ResponsesCreatedTotal.Inc()

	s.notify(ctx, req.UserID, "New offer",
		fmt.Sprintf("You received a new offer on %q.", req.ItemName),
		"response_created", map[string]string{"request_id": req.ID, "response_id": resp.ID})

	s.logger.Info("response created",
		zap.String("response_id", resp.ID),
		zap.String("request_id", req.ID),
		zap.String("responder_id", responderID))
	return resp, nil
}

// canCreateResponse stops a user from overcommitting across concurrent
// negotiations: pending offers alone, and pending offers combined with
// transactions still in flight.
func (s *Service) canCreateResponse(ctx context.Context, userID string) (bool, error) {
	pending, err := s.responses.CountByResponderAndStatus(ctx, userID, repository.ResponseStatusPending)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to count pending responses", err)
	}
	if pending >= s.limits.MaxPendingResponses {
		return false, nil
	}

	openTransactions, err := s.transactions.CountOpenByUser(ctx, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.KindInternal, "failed to count open transactions", err)
	}
	return pending+openTransactions < s.limits.MaxCombinedResponses, nil
}

// callerRole resolves which side of the deal the caller controls on this
// response, applying the inventory-listing role inversion.
func callerRole(req *repository.Request, resp *repository.Response, callerID string) (repository.Role, error) {
	ownerRole, responderRole := repository.Roles(req.Type)
	switch callerID {
	case req.UserID:
		return ownerRole, nil
	case resp.ResponderID:
		return responderRole, nil
	}
	return "", apperr.New(apperr.KindUnauthorized, "caller is not a party to this response")
}

// UpdateResponse is the negotiation handshake: term edits, the mutual accept
// dance, and decline/withdraw. Editing terms after the counterpart accepted
// reopens their status so they must re-accept the new terms.
func (s *Service) UpdateResponse(ctx context.Context, callerID, responseID string, in UpdateResponseInput) (*repository.Response, error) {
	resp, err := s.loadRequestResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, resp.RequestID)
	if err != nil {
		return nil, err
	}

	role, err := callerRole(req, resp, callerID)
	if err != nil {
		return nil, err
	}

	if resp.Status == repository.ResponseStatusClosed {
		return nil, apperr.New(apperr.KindBadRequest, "response is closed")
	}

	nowClosed, err := s.ensureNotExpired(ctx, req)
	if err != nil {
		return nil, err
	}
	if nowClosed {
		return nil, apperr.New(apperr.KindBadRequest, "request has expired")
	}
	switch req.Status {
	case repository.RequestStatusOpen, repository.RequestStatusFulfilled:
		// Open negotiations and post-fulfillment late edits are allowed.
	default:
		return nil, apperr.New(apperr.KindBadRequest, "request is no longer negotiable")
	}

	changed := s.applyTermChanges(resp, in)
	if changed {
		s.reopenCounterpart(ctx, req, resp, role)
	}

	var accepted, closed bool
	if in.BuyerStatus != nil {
		if role != repository.RoleBuyer {
			return nil, apperr.New(apperr.KindUnauthorized, "caller does not control the buyer status")
		}
		accepted, closed, err = applyBuyerStatus(resp, *in.BuyerStatus)
	}
	if err == nil && in.SellerStatus != nil {
		if role != repository.RoleSeller {
			return nil, apperr.New(apperr.KindUnauthorized, "caller does not control the seller status")
		}
		accepted, closed, err = applySellerStatus(resp, *in.SellerStatus)
	}
	if err != nil {
		return nil, err
	}

	resp.UpdatedAt = s.timeNow()
	if err := s.responses.Update(ctx, resp); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update response", err)
	}

	if closed {
		other := resp.ResponderID
		if callerID == resp.ResponderID {
			other = req.UserID
		}
		s.notify(ctx, other, "Offer closed",
			fmt.Sprintf("The offer on %q was declined or withdrawn.", req.ItemName),
			"response_closed", map[string]string{"request_id": req.ID, "response_id": resp.ID})
	}

	if accepted {
		if err := s.acceptResponse(ctx, req, resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (s *Service) loadRequestResponse(ctx context.Context, responseID string) (*repository.Response, error) {
	resp, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "response not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load response", err)
	}
	return resp, nil
}

// applyTermChanges diffs every mutable offer field against the incoming value
// and applies the ones that differ, reporting whether anything changed.
func (s *Service) applyTermChanges(resp *repository.Response, in UpdateResponseInput) bool {
	changed := false

	if in.OfferPrice != nil && *in.OfferPrice != resp.OfferPrice {
		resp.OfferPrice = *in.OfferPrice
		changed = true
	}
	if in.PriceType != nil && *in.PriceType != resp.PriceType {
		resp.PriceType = *in.PriceType
		changed = true
	}
	if in.ExchangeLocation != nil && *in.ExchangeLocation != resp.ExchangeLocation {
		resp.ExchangeLocation = *in.ExchangeLocation
		changed = true
	}
	if in.ReturnLocation != nil && *in.ReturnLocation != resp.ReturnLocation {
		resp.ReturnLocation = *in.ReturnLocation
		changed = true
	}
	if in.ExchangeTime != nil && !timePtrEqual(in.ExchangeTime, resp.ExchangeTime) {
		resp.ExchangeTime = in.ExchangeTime
		changed = true
	}
	if in.ReturnTime != nil && !timePtrEqual(in.ReturnTime, resp.ReturnTime) {
		resp.ReturnTime = in.ReturnTime
		changed = true
	}
	if in.Message != nil && *in.Message != resp.Message {
		resp.Message = *in.Message
		changed = true
	}
	return changed
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// reopenCounterpart resets the other side's ACCEPTED status after a term
// change: new terms require a new acceptance.
func (s *Service) reopenCounterpart(ctx context.Context, req *repository.Request, resp *repository.Response, editorRole repository.Role) {
	reopened := false
	var counterpartID string

	if editorRole == repository.RoleBuyer && resp.SellerStatus == repository.SellerStatusAccepted {
		resp.SellerStatus = repository.SellerStatusOffered
		reopened = true
	}
	if editorRole == repository.RoleSeller && resp.BuyerStatus == repository.BuyerStatusAccepted {
		resp.BuyerStatus = repository.BuyerStatusOpen
		reopened = true
	}
	if !reopened {
		return
	}

	ownerRole, _ := repository.Roles(req.Type)
	if editorRole == ownerRole {
		counterpartID = resp.ResponderID
	} else {
		counterpartID = req.UserID
	}
	s.notify(ctx, counterpartID, "Offer terms changed",
		fmt.Sprintf("The terms of an offer on %q changed, please review and accept again.", req.ItemName),
		"response_renegotiated", map[string]string{"request_id": req.ID, "response_id": resp.ID})
}

func applyBuyerStatus(resp *repository.Response, status repository.BuyerStatus) (accepted, closed bool, err error) {
	switch status {
	case repository.BuyerStatusAccepted:
		resp.BuyerStatus = repository.BuyerStatusAccepted
		return resp.SellerStatus == repository.SellerStatusAccepted, false, nil
	case repository.BuyerStatusDeclined:
		resp.BuyerStatus = repository.BuyerStatusDeclined
		resp.Status = repository.ResponseStatusClosed
		return false, true, nil
	default:
		return false, false, apperr.Newf(apperr.KindIllegalArgument, "buyer status cannot be set to %q", status)
	}
}

func applySellerStatus(resp *repository.Response, status repository.SellerStatus) (accepted, closed bool, err error) {
	switch status {
	case repository.SellerStatusAccepted:
		resp.SellerStatus = repository.SellerStatusAccepted
		return resp.BuyerStatus == repository.BuyerStatusAccepted, false, nil
	case repository.SellerStatusWithdrawn:
		resp.SellerStatus = repository.SellerStatusWithdrawn
		resp.Status = repository.ResponseStatusClosed
		return false, true, nil
	default:
		return false, false, apperr.Newf(apperr.KindIllegalArgument, "seller status cannot be set to %q", status)
	}
}

// acceptResponse fires once both sides hold ACCEPTED: it opens the single
// transaction for the request, closes every competing pending offer and moves
// the request to TRANSACTION_PENDING.
func (s *Service) acceptResponse(ctx context.Context, req *repository.Request, resp *repository.Response) error {
	// Check-then-act against a fresh read; the storage layer additionally
	// carries a partial unique index on (request_id) WHERE NOT canceled.
	_, err := s.transactions.GetActiveByRequestID(ctx, req.ID)
	if err == nil {
		return apperr.New(apperr.KindInternal, "an active transaction already exists for this request")
	}
	if !errors.Is(err, repository.ErrObjectNotFound) {
		return apperr.Wrap(apperr.KindInternal, "failed to check for active transaction", err)
	}

	ownerRole, _ := repository.Roles(req.Type)
	sellerID, buyerID := req.UserID, resp.ResponderID
	if ownerRole == repository.RoleBuyer {
		sellerID, buyerID = resp.ResponderID, req.UserID
	}

	now := s.timeNow()
	txn := &repository.Transaction{
		ID:         s.newID(),
		RequestID:  req.ID,
		ResponseID: resp.ID,
		SellerID:   sellerID,
		BuyerID:    buyerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to open transaction", err)
	}
	metrics.TransactionsOpenedTotal.Inc()

	resp.Status = repository.ResponseStatusAccepted
	resp.UpdatedAt = now
	if err := s.responses.Update(ctx, resp); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to mark response accepted", err)
	}

	req.Status = repository.RequestStatusTransactionPending
	req.UpdatedAt = now
	if err := s.requests.Update(ctx, req); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update request status", err)
	}
	s.cacheSet(req)

	s.closePendingResponses(ctx, req, resp.ID,
		"Offer not selected", fmt.Sprintf("Another offer on %q was accepted.", req.ItemName))

	for _, partyID := range []string{sellerID, buyerID} {
		s.notify(ctx, partyID, "Offer accepted",
			fmt.Sprintf("The offer on %q was accepted by both parties.", req.ItemName),
			"response_accepted", map[string]string{
				"request_id":     req.ID,
				"response_id":    resp.ID,
				"transaction_id": txn.ID,
			})
	}

	s.logger.Info("transaction opened",
		zap.String("transaction_id", txn.ID),
		zap.String("request_id", req.ID),
		zap.String("seller_id", sellerID),
		zap.String("buyer_id", buyerID))
	return nil
}
