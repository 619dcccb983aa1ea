// Package gateway talks to the hosted-checkout payment provider: submit an
// order to obtain a hosted payment URL, and query an order for its
// settlement status.
package gateway

import "context"

// Transaction statuses reported by the provider
const (
	StatusAuthorised = "AUTHORISED"
	StatusCaptured   = "CAPTURED"
	StatusPaid       = "PAID"
	StatusRefused    = "REFUSED"
	StatusCancelled  = "CANCELLED"
	StatusExpired    = "EXPIRED"
	StatusAbandoned  = "ABANDONED"
)

// ErrorCodeOrderNotOpened is returned by the status query while the payer
// has not yet opened the hosted page; it is a pending condition, not a
// failure.
const ErrorCodeOrderNotOpened = "PSP_010"

// API is the outbound surface of the provider. Both calls are synchronous
// with a bounded timeout.
type API interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	QueryOrder(ctx context.Context, orderID string) (*QueryOrderResponse, error)
}

// InstallmentDue is one entry of an explicit installment schedule
type InstallmentDue struct {
	DueDate     string `json:"dueDate"`
	AmountMinor int64  `json:"amount"`
}

// CreateOrderRequest carries the order in provider wire format. Amounts are
// in minor currency units. Exactly one of Installments / Schedule is set
// depending on the configured contract version.
type CreateOrderRequest struct {
	OrderID      string           `json:"orderId"`
	AmountMinor  int64            `json:"amount"`
	Currency     string           `json:"currency"`
	Channel      string           `json:"channel"`
	Installments int              `json:"installmentCount,omitempty"`
	Schedule     []InstallmentDue `json:"paymentSchedule,omitempty"`
}

type CreateOrderResponse struct {
	PaymentURL string `json:"paymentURL"`
}

// CardDetails is the card-level fragment of a transaction answer
type CardDetails struct {
	InstallmentNumber int    `json:"installmentNumber"`
	AuthCode          string `json:"authorizationId"`
}

// TransactionDetails nests card and settlement metadata
type TransactionDetails struct {
	InstallmentNumber int          `json:"installmentNumber"`
	CardDetails       *CardDetails `json:"cardDetails"`
	BatchNumber       string       `json:"sequenceNumber"`
}

// Transaction is one payment attempt reported by the status query
type Transaction struct {
	UUID              string              `json:"uuid"`
	Status            string              `json:"status"`
	DetailedStatus    string              `json:"detailedStatus"`
	InstallmentNumber int                 `json:"installmentNumber"`
	Details           *TransactionDetails `json:"transactionDetails"`
}

// QueryOrderResponse is the provider's status-query answer. Status is
// SUCCESS or ERROR; on ERROR the code/message pair is populated.
type QueryOrderResponse struct {
	Status       string        `json:"status"`
	ErrorCode    string        `json:"errorCode,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	OrderStatus  string        `json:"orderStatus,omitempty"`
	Transactions []Transaction `json:"transactions,omitempty"`
}

// IsError reports whether the answer is a logical provider error
func (r *QueryOrderResponse) IsError() bool {
	return r.Status != "SUCCESS"
}

// OrderNotOpened reports the "payer has not opened the order yet" condition
func (r *QueryOrderResponse) OrderNotOpened() bool {
	return r.IsError() && r.ErrorCode == ErrorCodeOrderNotOpened
}

// FirstTransaction returns the first reported transaction, or nil
func (r *QueryOrderResponse) FirstTransaction() *Transaction {
	if len(r.Transactions) == 0 {
		return nil
	}
	return &r.Transactions[0]
}

// IsSettled reports whether the transaction reached an authorized, captured
// or paid status
func (t *Transaction) IsSettled() bool {
	switch t.Status {
	case StatusAuthorised, StatusCaptured, StatusPaid:
		return true
	}
	return false
}

// IsVoided reports whether the transaction ended refused, cancelled,
// expired or abandoned
func (t *Transaction) IsVoided() bool {
	switch t.Status {
	case StatusRefused, StatusCancelled, StatusExpired, StatusAbandoned:
		return true
	}
	return false
}

// installmentExtractors probe the known payload locations for the settled
// installment count, in order. The first positive value wins.
var installmentExtractors = []func(*Transaction) int{
	func(t *Transaction) int { return t.InstallmentNumber },
	func(t *Transaction) int {
		if t.Details != nil && t.Details.CardDetails != nil {
			return t.Details.CardDetails.InstallmentNumber
		}
		return 0
	},
	func(t *Transaction) int {
		if t.Details != nil {
			return t.Details.InstallmentNumber
		}
		return 0
	},
}

// SettledInstallments extracts the installment count the payer actually
// chose. The provider has moved this field across payload revisions, so the
// known locations are tried in order, defaulting to 1.
func (t *Transaction) SettledInstallments() int {
	for _, extract := range installmentExtractors {
		if n := extract(t); n > 0 {
			return n
		}
	}
	return 1
}

// AuthorizationCode returns the settlement auth code, if present
func (t *Transaction) AuthorizationCode() string {
	if t.Details != nil && t.Details.CardDetails != nil {
		return t.Details.CardDetails.AuthCode
	}
	return ""
}

// SettlementBatch returns the batch/lot number, if present
func (t *Transaction) SettlementBatch() string {
	if t.Details != nil {
		return t.Details.BatchNumber
	}
	return ""
}
