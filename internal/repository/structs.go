package repository

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("not found")

type RequestType string

const (
	RequestTypeRenting RequestType = "renting"
	RequestTypeBuying  RequestType = "buying"
	RequestTypeSelling RequestType = "selling"
	RequestTypeLoaning RequestType = "loaning"
)

type RequestStatus string

const (
	RequestStatusOpen               RequestStatus = "OPEN"
	RequestStatusClosed             RequestStatus = "CLOSED"
	RequestStatusTransactionPending RequestStatus = "TRANSACTION_PENDING"
	RequestStatusProcessingPayment  RequestStatus = "PROCESSING_PAYMENT"
	RequestStatusFulfilled          RequestStatus = "FULFILLED"
)

type Request struct {
	ID              string        `db:"id"`
	UserID          string        `db:"user_id"`
	ItemName        string        `db:"item_name"`
	Category        string        `db:"category"`
	Type            RequestType   `db:"type"`
	Description     string        `db:"description"`
	PostDate        time.Time     `db:"post_date"`
	ExpireDate      time.Time     `db:"expire_date"`
	Status          RequestStatus `db:"status"`
	Inappropriate   bool          `db:"inappropriate"`
	Duplicate       bool          `db:"duplicate"`
	SourceListingID *string       `db:"source_listing_id"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

// IsRental reports whether the item comes back to its owner after use, which
// is what gates the return leg of a transaction.
func (r *Request) IsRental() bool {
	return r.Type == RequestTypeRenting || r.Type == RequestTypeLoaning
}

// IsInventoryListing reports whether the request owner already holds the item
// (selling/loaning). For these the owner acts as seller and the responder as
// buyer, inverting role resolution everywhere statuses are touched.
func (r *Request) IsInventoryListing() bool {
	return r.Type == RequestTypeLoaning || r.Type == RequestTypeSelling
}

func (r *Request) IsExpired(now time.Time) bool {
	return r.ExpireDate.Before(now)
}

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Roles resolves which side of the deal the request owner and the responder
// play for a given request type. Renting/buying requests are posted by the
// party who wants the item; selling/loaning listings are posted by the party
// who has it.
func Roles(t RequestType) (owner Role, responder Role) {
	if t == RequestTypeLoaning || t == RequestTypeSelling {
		return RoleSeller, RoleBuyer
	}
	return RoleBuyer, RoleSeller
}

type PriceType string

const (
	PriceTypeFlat    PriceType = "FLAT"
	PriceTypePerHour PriceType = "PER_HOUR"
	PriceTypePerDay  PriceType = "PER_DAY"
)

type BuyerStatus string

const (
	BuyerStatusOpen     BuyerStatus = "OPEN"
	BuyerStatusClosed   BuyerStatus = "CLOSED"
	BuyerStatusAccepted BuyerStatus = "ACCEPTED"
	BuyerStatusDeclined BuyerStatus = "DECLINED"
)

type SellerStatus string

const (
	SellerStatusOffered   SellerStatus = "OFFERED"
	SellerStatusAccepted  SellerStatus = "ACCEPTED"
	SellerStatusWithdrawn SellerStatus = "WITHDRAWN"
)

type ResponseStatus string

const (
	ResponseStatusPending  ResponseStatus = "PENDING"
	ResponseStatusAccepted ResponseStatus = "ACCEPTED"
	ResponseStatusClosed   ResponseStatus = "CLOSED"
)

type Response struct {
	ID               string         `db:"id"`
	RequestID        string         `db:"request_id"`
	ResponderID      string         `db:"responder_id"`
	OfferPrice       int64          `db:"offer_price"`
	PriceType        PriceType      `db:"price_type"`
	ExchangeLocation string         `db:"exchange_location"`
	ReturnLocation   string         `db:"return_location"`
	ExchangeTime     *time.Time     `db:"exchange_time"`
	ReturnTime       *time.Time     `db:"return_time"`
	Message          string         `db:"message"`
	BuyerStatus      BuyerStatus    `db:"buyer_status"`
	SellerStatus     SellerStatus   `db:"seller_status"`
	Status           ResponseStatus `db:"status"`
	OfferToBuyOrRent bool           `db:"offer_to_buy_or_rent"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type Transaction struct {
	ID         string `db:"id"`
	RequestID  string `db:"request_id"`
	ResponseID string `db:"response_id"`
	SellerID   string `db:"seller_id"`
	BuyerID    string `db:"buyer_id"`

	Exchanged    bool       `db:"exchanged"`
	ExchangeTime *time.Time `db:"exchange_time"`
	Returned     bool       `db:"returned"`
	ReturnTime   *time.Time `db:"return_time"`

	ExchangeCode           *string    `db:"exchange_code"`
	ExchangeCodeExpireDate *time.Time `db:"exchange_code_expire_date"`
	ReturnCode             *string    `db:"return_code"`
	ReturnCodeExpireDate   *time.Time `db:"return_code_expire_date"`

	CalculatedPrice *int64 `db:"calculated_price"`
	PriceOverride   *int64 `db:"price_override"`
	FinalPrice      *int64 `db:"final_price"`
	SellerAccepted  bool   `db:"seller_accepted"`

	ExchangeOverrideTime           *time.Time `db:"exchange_override_time"`
	ExchangeOverrideBuyerAccepted  bool       `db:"exchange_override_buyer_accepted"`
	ExchangeOverrideSellerAccepted bool       `db:"exchange_override_seller_accepted"`
	ExchangeOverrideDeclined       bool       `db:"exchange_override_declined"`

	ReturnOverrideTime           *time.Time `db:"return_override_time"`
	ReturnOverrideBuyerAccepted  bool       `db:"return_override_buyer_accepted"`
	ReturnOverrideSellerAccepted bool       `db:"return_override_seller_accepted"`
	ReturnOverrideDeclined       bool       `db:"return_override_declined"`

	Canceled       bool    `db:"canceled"`
	CanceledBy     *string `db:"canceled_by"`
	CanceledReason *string `db:"canceled_reason"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// RoleOf returns the role the given user plays in this transaction, or an
// empty role when the user is not a party to it.
func (t *Transaction) RoleOf(userID string) Role {
	switch userID {
	case t.SellerID:
		return RoleSeller
	case t.BuyerID:
		return RoleBuyer
	default:
		return ""
	}
}

func (t *Transaction) CounterpartOf(userID string) string {
	if userID == t.SellerID {
		return t.BuyerID
	}
	return t.SellerID
}

type User struct {
	ID            string    `db:"id"`
	Username      string    `db:"username"`
	Password      string    `db:"password"`
	Admin         bool      `db:"admin"`
	AcceptedTerms bool      `db:"accepted_terms"`
	BlockedUsers  []string  `db:"blocked_users"`
	CreatedAt     time.Time `db:"created_at"`
}

type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "CREATED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusDone       TaskStatus = "DONE"
)

// OutboxTask is a durably queued notification. Delivery to the broker happens
// asynchronously in the publisher, never inline with business logic.
type OutboxTask struct {
	ID          uuid.UUID       `db:"id"`
	Status      TaskStatus      `db:"status"`
	Payload     json.RawMessage `db:"payload"`
	Topic       string          `db:"topic"`
	Attempts    int             `db:"attempts"`
	LastError   *string         `db:"last_error"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

// NotificationPayload is the message shape shipped through the outbox to the
// push-delivery consumer.
type NotificationPayload struct {
	Timestamp   time.Time         `json:"timestamp"`
	RecipientID string            `json:"recipient_id"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Type        string            `json:"type"`
	Data        map[string]string `json:"data,omitempty"`
}
