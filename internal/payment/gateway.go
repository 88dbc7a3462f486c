package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// PlatformFeePercent is deducted from the amount routed to the seller.
const PlatformFeePercent = 5

type chargeRequest struct {
	BuyerRef  string `json:"buyer_ref"`
	SellerRef string `json:"seller_ref"`
	Amount    int64  `json:"amount"`
	FeeAmount int64  `json:"fee_amount"`
}

type chargeResponse struct {
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
}

// ProviderGateway captures charges against an external payment provider. The
// call runs through a circuit breaker so a down provider fails fast instead
// of holding request handlers open.
type ProviderGateway struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	baseURL string
	logger  *zap.Logger
}

func NewProviderGateway(baseURL, apiKey string, logger *zap.Logger) *ProviderGateway {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(0).
		SetAuthToken(apiKey)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-provider",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("payment circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &ProviderGateway{
		client:  client,
		breaker: breaker,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (g *ProviderGateway) Charge(ctx context.Context, buyerID, sellerID string, amount int64) (string, error) {
	fee := amount * PlatformFeePercent / 100

	result, err := g.breaker.Execute(func() (interface{}, error) {
		var out chargeResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(chargeRequest{
				BuyerRef:  buyerID,
				SellerRef: sellerID,
				Amount:    amount,
				FeeAmount: fee,
			}).
			SetResult(&out).
			Post(g.baseURL + "/v1/charges")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("payment provider returned %d", resp.StatusCode())
		}
		return out.ChargeID, nil
	})
	if err != nil {
		return "", fmt.Errorf("charge failed: %w", err)
	}

	chargeID := result.(string)
	g.logger.Info("charge captured",
		zap.String("charge_id", chargeID),
		zap.Int64("amount", amount),
		zap.Int64("fee", fee))
	return chargeID, nil
}

// NoopGateway approves every charge, for local development and tests.
type NoopGateway struct {
	logger *zap.Logger
}

func NewNoopGateway(logger *zap.Logger) *NoopGateway {
	return &NoopGateway{logger: logger}
}

func (g *NoopGateway) Charge(ctx context.Context, buyerID, sellerID string, amount int64) (string, error) {
	g.logger.Info("noop charge",
		zap.String("buyer_id", buyerID),
		zap.String("seller_id", sellerID),
		zap.Int64("amount", amount))
	return "noop-charge", nil
}
