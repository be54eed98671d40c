package payment

import (
	"time"

	"github.com/foodnow-ng/payment-service-go/internal/paystack"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusAbandoned Status = "abandoned"
)

// Card holds the non-sensitive metadata Paystack reports for card charges.
type Card struct {
	Last4 string `json:"last4,omitempty"`
	Brand string `json:"brand,omitempty"`
	Bank  string `json:"bank,omitempty"`
}

// Transaction mirrors one row of payment_transactions. Rows are created when
// a payment is initiated and only ever mutated by the webhook handler or the
// verification service; they are never deleted.
type Transaction struct {
	Reference       string     `json:"reference"`
	OrderID         string     `json:"orderId,omitempty"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	Status          Status     `json:"status"`
	GatewayResponse string     `json:"gatewayResponse,omitempty"`
	Channel         string     `json:"channel,omitempty"`
	Fees            int64      `json:"fees"`
	Card            Card       `json:"card"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ChargeUpdate is the slice of a gateway charge payload this service persists.
type ChargeUpdate struct {
	Reference       string
	Status          Status
	GatewayResponse string
	Channel         string
	Fees            int64
	Card            Card
	PaidAt          *time.Time
}

// StatusFromGateway maps Paystack's charge status strings onto the local enum.
func StatusFromGateway(s string) Status {
	switch s {
	case "success":
		return StatusSuccess
	case "failed":
		return StatusFailed
	case "abandoned":
		return StatusAbandoned
	default:
		return StatusPending
	}
}

// ChargeUpdateFromGateway converts a verified gateway payload into the update
// applied to payment_transactions. Used by both writers, webhook and
// verification, so they persist the exact same shape.
func ChargeUpdateFromGateway(data *paystack.ChargeData) ChargeUpdate {
	return ChargeUpdate{
		Reference:       data.Reference,
		Status:          StatusFromGateway(data.Status),
		GatewayResponse: data.GatewayResponse,
		Channel:         data.Channel,
		Fees:            data.Fees,
		Card: Card{
			Last4: data.Authorization.Last4,
			Brand: data.Authorization.Brand,
			Bank:  data.Authorization.Bank,
		},
		PaidAt: data.PaidAt,
	}
}
