package events

import "time"

type PaymentSucceeded struct {
	EventType string    `json:"eventType"`
	EventID   string    `json:"eventId"`
	OrderID   string    `json:"orderId"`
	Reference string    `json:"reference"`
	Amount    int64     `json:"amount"`
	Channel   string    `json:"channel,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type PaymentFailed struct {
	EventType string    `json:"eventType"`
	EventID   string    `json:"eventId"`
	OrderID   string    `json:"orderId"`
	Reference string    `json:"reference"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
