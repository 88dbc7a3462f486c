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

// Code direction: the party handing the item over generates the code, the
// party receiving it enters it. At exchange the seller hands over, at return
// the buyer hands back.

func (s *Service) loadTransactionForParty(ctx context.Context, callerID, transactionID string) (*repository.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "transaction not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load transaction", err)
	}
	if txn.RoleOf(callerID) == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "caller is not a party to this transaction")
	}
	if txn.Canceled {
		return nil, apperr.New(apperr.KindBadRequest, "transaction is canceled")
	}
	return txn, nil
}

func (s *Service) GetTransaction(ctx context.Context, callerID, transactionID string) (*repository.Transaction, error) {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "transaction not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load transaction", err)
	}
	if txn.RoleOf(callerID) == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "caller is not a party to this transaction")
	}
	return txn, nil
}

// GenerateExchangeCode issues the seller's handoff code. Re-issuing simply
// overwrites the previous code and restarts its lifetime.
func (s *Service) GenerateExchangeCode(ctx context.Context, callerID, transactionID string) (string, time.Time, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return "", time.Time{}, err
	}
	if txn.Exchanged {
		return "", time.Time{}, apperr.New(apperr.KindBadRequest, "already exchanged")
	}
	if txn.RoleOf(callerID) != repository.RoleSeller {
		return "", time.Time{}, apperr.New(apperr.KindUnauthorized, "only the seller generates the exchange code")
	}

	code := s.newCode()
	expires := s.timeNow().Add(s.limits.CodeTTL)
	txn.ExchangeCode = &code
	txn.ExchangeCodeExpireDate = &expires
	txn.UpdatedAt = s.timeNow()
	if err := s.transactions.Update(ctx, txn); err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.KindInternal, "failed to store exchange code", err)
	}
	return code, expires, nil
}

// GenerateReturnCode issues the buyer's handback code for rentals.
func (s *Service) GenerateReturnCode(ctx context.Context, callerID, transactionID string) (string, time.Time, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return "", time.Time{}, err
	}
	req, err := s.loadRequest(ctx, txn.RequestID)
	if err != nil {
		return "", time.Time{}, err
	}
	if !req.IsRental() {
		return "", time.Time{}, apperr.New(apperr.KindBadRequest, "request is not a rental")
	}
	if !txn.Exchanged {
		return "", time.Time{}, apperr.New(apperr.KindBadRequest, "not yet exchanged")
	}
	if txn.Returned {
		return "", time.Time{}, apperr.New(apperr.KindBadRequest, "already returned")
	}
	if txn.RoleOf(callerID) != repository.RoleBuyer {
		return "", time.Time{}, apperr.New(apperr.KindUnauthorized, "only the renter generates the return code")
	}

	code := s.newCode()
	expires := s.timeNow().Add(s.limits.CodeTTL)
	txn.ReturnCode = &code
	txn.ReturnCodeExpireDate = &expires
	txn.UpdatedAt = s.timeNow()
	if err := s.transactions.Update(ctx, txn); err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.KindInternal, "failed to store return code", err)
	}
	return code, expires, nil
}

// checkCode validates an entered code against the issued one: a mismatch and
// an expired-but-correct code are distinct failures.
func (s *Service) checkCode(entered string, issued *string, expires *time.Time) error {
	if issued == nil {
		return apperr.New(apperr.KindBadRequest, "no code has been issued")
	}
	if !codesMatch(entered, *issued) {
		return apperr.New(apperr.KindUnauthorized, "code does not match")
	}
	if expires == nil || !expires.After(s.timeNow()) {
		return apperr.New(apperr.KindCredentialExpired, "code has expired")
	}
	return nil
}

// EnterExchangeCode records the physical handoff. Non-rentals are priced here
// because nothing further happens before payment; rentals price at return.
func (s *Service) EnterExchangeCode(ctx context.Context, callerID, transactionID, code string) (*repository.Transaction, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Exchanged {
		return nil, apperr.New(apperr.KindBadRequest, "already exchanged")
	}
	if txn.RoleOf(callerID) != repository.RoleBuyer {
		return nil, apperr.New(apperr.KindUnauthorized, "only the buyer enters the exchange code")
	}
	if err := s.checkCode(code, txn.ExchangeCode, txn.ExchangeCodeExpireDate); err != nil {
		return nil, err
	}

	now := s.timeNow()
	txn.Exchanged = true
	txn.ExchangeTime = &now
	if err := s.settleAfterHandoff(ctx, txn, false); err != nil {
		return nil, err
	}
	metrics.ExchangesRecordedTotal.Inc()
	return txn, nil
}

// EnterReturnCode records the rental handback and prices the elapsed period.
func (s *Service) EnterReturnCode(ctx context.Context, callerID, transactionID, code string) (*repository.Transaction, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, txn.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.IsRental() {
		return nil, apperr.New(apperr.KindBadRequest, "request is not a rental")
	}
	if !txn.Exchanged {
		return nil, apperr.New(apperr.KindBadRequest, "not yet exchanged")
	}
	if txn.Returned {
		return nil, apperr.New(apperr.KindBadRequest, "already returned")
	}
	if txn.RoleOf(callerID) != repository.RoleSeller {
		return nil, apperr.New(apperr.KindUnauthorized, "only the owner enters the return code")
	}
	if err := s.checkCode(code, txn.ReturnCode, txn.ReturnCodeExpireDate); err != nil {
		return nil, err
	}

	now := s.timeNow()
	txn.Returned = true
	txn.ReturnTime = &now
	if err := s.settleAfterHandoff(ctx, txn, true); err != nil {
		return nil, err
	}
	metrics.ReturnsRecordedTotal.Inc()
	return txn, nil
}

// settleAfterHandoff persists the recorded exchange or return, computes the
// price when this handoff concludes the physical part of the deal, and
// notifies both parties. returned distinguishes the return leg from exchange.
func (s *Service) settleAfterHandoff(ctx context.Context, txn *repository.Transaction, returned bool) error {
	req, err := s.loadRequest(ctx, txn.RequestID)
	if err != nil {
		return err
	}

	priceNow := returned || !req.IsRental()
	if priceNow {
		if err := s.priceTransaction(ctx, req, txn); err != nil {
			return err
		}
	}

	txn.UpdatedAt = s.timeNow()
	if err := s.transactions.Update(ctx, txn); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update transaction", err)
	}

	event, title := "exchange_recorded", "Exchange confirmed"
	if returned {
		event, title = "return_recorded", "Return confirmed"
	}
	for _, partyID := range []string{txn.SellerID, txn.BuyerID} {
		s.notify(ctx, partyID, title,
			fmt.Sprintf("The handoff for %q has been recorded.", req.ItemName),
			event, map[string]string{"transaction_id": txn.ID, "request_id": req.ID})
	}
	return nil
}

// priceTransaction computes calculatedPrice from the accepted offer. A free
// FLAT offer needs no seller confirmation and auto-finalizes the deal.
func (s *Service) priceTransaction(ctx context.Context, req *repository.Request, txn *repository.Transaction) error {
	resp, err := s.loadRequestResponse(ctx, txn.ResponseID)
	if err != nil {
		return err
	}

	start := s.timeNow()
	if txn.ExchangeTime != nil {
		start = *txn.ExchangeTime
	}
	end := s.timeNow()
	if txn.Returned && txn.ReturnTime != nil {
		end = *txn.ReturnTime
	}

	price := calculatePrice(resp.OfferPrice, resp.PriceType, start, end)
	txn.CalculatedPrice = &price

	// A free flat offer has nothing for the seller to confirm.
	if resp.PriceType == repository.PriceTypeFlat && resp.OfferPrice == 0 {
		txn.FinalPrice = &price
		txn.SellerAccepted = true
		if err := s.fulfillRequest(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) fulfillRequest(ctx context.Context, req *repository.Request) error {
	req.Status = repository.RequestStatusFulfilled
	req.UpdatedAt = s.timeNow()
	if err := s.requests.Update(ctx, req); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to mark request fulfilled", err)
	}
	s.cacheSet(req)
	return nil
}

// CreateExchangeOverride proposes a manual exchange confirmation when no code
// was scanned. The proposer's side is recorded as accepted; the counterpart
// must confirm before the exchange counts.
func (s *Service) CreateExchangeOverride(ctx context.Context, callerID, transactionID string, proposedTime *time.Time) (*repository.Transaction, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Exchanged {
		return nil, apperr.New(apperr.KindBadRequest, "already exchanged")
	}
	if proposedTime == nil {
		return nil, apperr.New(apperr.KindIllegalArgument, "override time is required")
	}
	if proposedTime.After(s.timeNow()) {
		return nil, apperr.New(apperr.KindIllegalArgument, "override time cannot be in the future")
	}

	txn.ExchangeOverrideTime = proposedTime
	txn.ExchangeOverrideDeclined = false
	txn.ExchangeOverrideSellerAccepted = callerID == txn.SellerID
	txn.ExchangeOverrideBuyerAccepted = callerID == txn.BuyerID
	txn.UpdatedAt = s.timeNow()
	if err := s.transactions.Update(ctx, txn); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store exchange override", err)
	}

	s.notify(ctx, txn.CounterpartOf(callerID), "Exchange confirmation requested",
		"The other party asks you to confirm the exchange happened.",
		"exchange_override_proposed", map[string]string{"transaction_id": txn.ID})
	return txn, nil
}

// CreateReturnOverride mirrors CreateExchangeOverride for the return leg.
func (s *Service) CreateReturnOverride(ctx context.Context, callerID, transactionID string, proposedTime *time.Time) (*repository.Transaction, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, txn.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.IsRental() {
		return nil, apperr.New(apperr.KindBadRequest, "request is not a rental")
	}
	if !txn.Exchanged {
		return nil, apperr.New(apperr.KindBadRequest, "not yet exchanged")
	}
	if txn.Returned {
		return nil, apperr.New(apperr.KindBadRequest, "already returned")
	}
	if proposedTime == nil {
		return nil, apperr.New(apperr.KindIllegalArgument, "override time is required")
	}
	if proposedTime.After(s.timeNow()) {
		return nil, apperr.New(apperr.KindIllegalArgument, "override time cannot be in the future")
	}

	txn.ReturnOverrideTime = proposedTime
	txn.ReturnOverrideDeclined = false
	txn.ReturnOverrideSellerAccepted = callerID == txn.SellerID
	txn.ReturnOverrideBuyerAccepted = callerID == txn.BuyerID
	txn.UpdatedAt = s.timeNow()
	if err := s.transactions.Update(ctx, txn); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store return override", err)
	}

	s.notify(ctx, txn.CounterpartOf(callerID), "Return confirmation requested",
		"The other party asks you to confirm the item was returned.",
		"return_override_proposed", map[string]string{"transaction_id": txn.ID})
	return txn, nil
}

// RespondToExchangeOverride lets the counterpart accept (committing the
// proposed time exactly as if the code had been entered) or decline, leaving
// the negotiation open for a fresh override or code entry.
func (s *Service) RespondToExchangeOverride(ctx context.Context, callerID, transactionID string, accept bool) (*repository.Transaction, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Exchanged {
		return nil, apperr.New(apperr.KindBadRequest, "already exchanged")
	}
	if txn.ExchangeOverrideTime == nil || txn.ExchangeOverrideDeclined {
		return nil, apperr.New(apperr.KindBadRequest, "no exchange override is pending")
	}
	alreadyAccepted := (callerID == txn.SellerID && txn.ExchangeOverrideSellerAccepted) ||
		(callerID == txn.BuyerID && txn.ExchangeOverrideBuyerAccepted)
	if alreadyAccepted {
		return nil, apperr.New(apperr.KindBadRequest, "waiting for the other party to respond")
	}

	if !accept {
		txn.ExchangeOverrideDeclined = true
		txn.UpdatedAt = s.timeNow()
		if err := s.transactions.Update(ctx, txn); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to decline exchange override", err)
		}
		s.notify(ctx, txn.CounterpartOf(callerID), "Exchange confirmation declined",
			"Your exchange confirmation request was declined.",
			"exchange_override_declined", map[string]string{"transaction_id": txn.ID})
		return txn, nil
	}

	txn.ExchangeOverrideSellerAccepted = txn.ExchangeOverrideSellerAccepted || callerID == txn.SellerID
	txn.ExchangeOverrideBuyerAccepted = txn.ExchangeOverrideBuyerAccepted || callerID == txn.BuyerID
	txn.Exchanged = true
	txn.ExchangeTime = txn.ExchangeOverrideTime
	if err := s.settleAfterHandoff(ctx, txn, false); err != nil {
		return nil, err
	}
	metrics.ExchangesRecordedTotal.Inc()
	return txn, nil
}

// RespondToReturnOverride mirrors RespondToExchangeOverride for the return leg.
func (s *Service) RespondToReturnOverride(ctx context.Context, callerID, transactionID string, accept bool) (*repository.Transaction, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Returned {
		return nil, apperr.New(apperr.KindBadRequest, "already returned")
	}
	if txn.ReturnOverrideTime == nil || txn.ReturnOverrideDeclined {
		return nil, apperr.New(apperr.KindBadRequest, "no return override is pending")
	}
	alreadyAccepted := (callerID == txn.SellerID && txn.ReturnOverrideSellerAccepted) ||
		(callerID == txn.BuyerID && txn.ReturnOverrideBuyerAccepted)
	if alreadyAccepted {
		return nil, apperr.New(apperr.KindBadRequest, "waiting for the other party to respond")
	}

	if !accept {
		txn.ReturnOverrideDeclined = true
		txn.UpdatedAt = s.timeNow()
		if err := s.transactions.Update(ctx, txn); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to decline return override", err)
		}
		s.notify(ctx, txn.CounterpartOf(callerID), "Return confirmation declined",
			"Your return confirmation request was declined.",
			"return_override_declined", map[string]string{"transaction_id": txn.ID})
		return txn, nil
	}

	txn.ReturnOverrideSellerAccepted = txn.ReturnOverrideSellerAccepted || callerID == txn.SellerID
	txn.ReturnOverrideBuyerAccepted = txn.ReturnOverrideBuyerAccepted || callerID == txn.BuyerID
	txn.Returned = true
	txn.ReturnTime = txn.ReturnOverrideTime
	if err := s.settleAfterHandoff(ctx, txn, true); err != nil {
		return nil, err
	}
	metrics.ReturnsRecordedTotal.Inc()
	return txn, nil
}

// VerifyPrice is the seller's final confirmation. The final price may only be
// lowered relative to the calculated one, never raised. A positive final
// price routes through payment capture before the request is fulfilled.
func (s *Service) VerifyPrice(ctx context.Context, callerID, transactionID string, overridePrice *int64) (*repository.Transaction, error) {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.RoleOf(callerID) != repository.RoleSeller {
		return nil, apperr.New(apperr.KindUnauthorized, "only the seller confirms the price")
	}
	if txn.SellerAccepted {
		return nil, apperr.New(apperr.KindIllegalArgument, "price already confirmed")
	}
	if txn.CalculatedPrice == nil {
		return nil, apperr.New(apperr.KindBadRequest, "price has not been calculated yet")
	}
	if *txn.CalculatedPrice < 0 {
		return nil, apperr.New(apperr.KindBadRequest, "calculated price is invalid")
	}
	if overridePrice != nil {
		if *overridePrice < 0 {
			return nil, apperr.New(apperr.KindIllegalArgument, "price cannot be negative")
		}
		if *overridePrice > *txn.CalculatedPrice {
			return nil, apperr.New(apperr.KindIllegalArgument, "price may only be decreased")
		}
	}

	final := *txn.CalculatedPrice
	if overridePrice != nil {
		final = *overridePrice
	}
	txn.PriceOverride = overridePrice
	txn.FinalPrice = &final
	txn.SellerAccepted = true
	txn.UpdatedAt = s.timeNow()
	if err := s.transactions.Update(ctx, txn); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to confirm price", err)
	}

	req, err := s.loadRequest(ctx, txn.RequestID)
	if err != nil {
		return nil, err
	}

	if final == 0 {
		if err := s.fulfillRequest(ctx, req); err != nil {
			return nil, err
		}
		return txn, nil
	}

	req.Status = repository.RequestStatusProcessingPayment
	req.UpdatedAt = s.timeNow()
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update request status", err)
	}
	s.cacheSet(req)

	chargeID, err := s.payments.Charge(ctx, txn.BuyerID, txn.SellerID, final)
	if err != nil {
		// Payment failure is fatal: the request stays in PROCESSING_PAYMENT
		// and the operation surfaces a generic internal error.
		metrics.OperationErrorsTotal.WithLabelValues("charge").Inc()
		s.logger.Error("payment capture failed",
			zap.String("transaction_id", txn.ID),
			zap.Int64("amount", final),
			zap.Error(err))
		return nil, apperr.Wrap(apperr.KindInternal, "payment capture failed", err)
	}
	metrics.PaymentsCapturedTotal.Inc()

	if err := s.fulfillRequest(ctx, req); err != nil {
		return nil, err
	}

	s.notify(ctx, txn.BuyerID, "Payment captured",
		fmt.Sprintf("Your payment for %q has been processed.", req.ItemName),
		"payment_captured", map[string]string{
			"transaction_id": txn.ID,
			"charge_id":      chargeID,
		})

	s.logger.Info("transaction completed",
		zap.String("transaction_id", txn.ID),
		zap.String("charge_id", chargeID),
		zap.Int64("final_price", final))
	return txn, nil
}

// CancelTransaction aborts an in-flight deal. A responder cancellation reopens
// the request for new offers; an owner cancellation closes it.
func (s *Service) CancelTransaction(ctx context.Context, callerID, transactionID, reason string) error {
	txn, err := s.loadTransactionForParty(ctx, callerID, transactionID)
	if err != nil {
		return err
	}
	if txn.FinalPrice != nil {
		return apperr.New(apperr.KindBadRequest, "transaction is already completed")
	}

	now := s.timeNow()
	txn.Canceled = true
	txn.CanceledBy = &callerID
	txn.CanceledReason = &reason
	txn.UpdatedAt = now
	if err := s.transactions.Update(ctx, txn); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to cancel transaction", err)
	}
	metrics.TransactionsCanceledTotal.Inc()

	req, err := s.loadRequest(ctx, txn.RequestID)
	if err != nil {
		return err
	}
	if callerID == req.UserID {
		req.Status = repository.RequestStatusClosed
	} else {
		// The responder backed out; the request goes back on the market.
		req.Status = repository.RequestStatusOpen
	}
	req.UpdatedAt = now
	if err := s.requests.Update(ctx, req); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update request after cancellation", err)
	}
	s.cacheSet(req)

	resp, err := s.loadRequestResponse(ctx, txn.ResponseID)
	if err != nil {
		return err
	}
	resp.BuyerStatus = repository.BuyerStatusClosed
	resp.Status = repository.ResponseStatusClosed
	resp.UpdatedAt = now
	if err := s.responses.Update(ctx, resp); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to close response after cancellation", err)
	}

	for _, partyID := range []string{txn.SellerID, txn.BuyerID} {
		s.notify(ctx, partyID, "Transaction canceled",
			fmt.Sprintf("The transaction for %q was canceled: %s", req.ItemName, reason),
			"transaction_canceled", map[string]string{
				"transaction_id": txn.ID,
				"canceled_by":    callerID,
			})
	}

	s.logger.Info("transaction canceled",
		zap.String("transaction_id", txn.ID),
		zap.String("canceled_by", callerID),
		zap.String("reason", reason))
	return nil
}
