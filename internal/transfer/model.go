package transfer

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusReversed Status = "reversed"
)

// Transfer records the outcome of a Paystack payout to a rider or restaurant.
type Transfer struct {
	Reference    string    `json:"reference"`
	TransferCode string    `json:"transferCode,omitempty"`
	Recipient    string    `json:"recipient,omitempty"`
	Amount       int64     `json:"amount"`
	Reason       string    `json:"reason,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Result is what a transfer.* webhook carries about a payout.
type Result struct {
	Reference    string
	TransferCode string
	Recipient    string
	Amount       int64
	Reason       string
	Status       Status
}
