package paystack

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event types this service reacts to. Anything else is acknowledged and ignored.
const (
	EventChargeSuccess    = "charge.success"
	EventChargeFailed     = "charge.failed"
	EventTransferSuccess  = "transfer.success"
	EventTransferFailed   = "transfer.failed"
	EventTransferReversed = "transfer.reversed"
)

var (
	// ErrMalformedJSON means the body is not valid JSON at all.
	ErrMalformedJSON = errors.New("malformed json")
	// ErrInvalidPayload means valid JSON that does not match the event schema.
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Metadata is the pass-through blob FoodNow attaches when initializing a
// transaction. Paystack echoes it back on webhooks; it sends "" when nothing
// was attached, so decoding is lenient.
type Metadata struct {
	OrderID string `json:"order_id"`
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	type plain Metadata
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*m = Metadata{}
		return nil
	}
	*m = Metadata(p)
	return nil
}

type Authorization struct {
	Last4   string `json:"last4"`
	Brand   string `json:"brand"`
	Bank    string `json:"bank"`
	Channel string `json:"channel"`
}

type Customer struct {
	Email string `json:"email"`
}

// ChargeData is the payload of charge.* events and of the verify API response.
type ChargeData struct {
	Reference       string        `json:"reference"`
	Status          string        `json:"status"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	GatewayResponse string        `json:"gateway_response"`
	Channel         string        `json:"channel"`
	Fees            int64         `json:"fees"`
	PaidAt          *time.Time    `json:"paid_at"`
	Authorization   Authorization `json:"authorization"`
	Customer        Customer      `json:"customer"`
	Metadata        Metadata      `json:"metadata"`
}

// TransferData is the payload of transfer.* events (rider/restaurant payouts).
type TransferData struct {
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	TransferCode string `json:"transfer_code"`
	Reason       string `json:"reason"`
	Recipient    struct {
		Name string `json:"name"`
	} `json:"recipient"`
}

// Event is a tagged union keyed by the event string. Exactly one of Charge
// and Transfer is set for recognized families; Raw always holds the data
// object as delivered.
type Event struct {
	Type     string
	Charge   *ChargeData
	Transfer *TransferData
	Raw      json.RawMessage
}

// Recognized reports whether this service has a handler for the event type.
func (e Event) Recognized() bool {
	switch e.Type {
	case EventChargeSuccess, EventChargeFailed,
		EventTransferSuccess, EventTransferFailed, EventTransferReversed:
		return true
	}
	return false
}

// Reference returns the gateway reference carried by the event data.
func (e Event) Reference() string {
	switch {
	case e.Charge != nil:
		return e.Charge.Reference
	case e.Transfer != nil:
		return e.Transfer.Reference
	}
	var data struct {
		Reference string `json:"reference"`
	}
	_ = json.Unmarshal(e.Raw, &data)
	return data.Reference
}

// ParseEvent decodes and validates a webhook body. Syntactically invalid JSON
// fails with ErrMalformedJSON; structurally wrong payloads (missing event tag,
// missing data object, data without a reference) fail with ErrInvalidPayload.
func ParseEvent(body []byte) (Event, error) {
	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if envelope.Event == "" {
		return Event{}, fmt.Errorf("%w: missing event type", ErrInvalidPayload)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return Event{}, fmt.Errorf("%w: missing data object", ErrInvalidPayload)
	}

	ev := Event{Type: envelope.Event, Raw: envelope.Data}

	switch {
	case strings.HasPrefix(envelope.Event, "charge."):
		var data ChargeData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return Event{}, fmt.Errorf("%w: charge data: %v", ErrInvalidPayload, err)
		}
		if data.Reference == "" {
			return Event{}, fmt.Errorf("%w: data missing reference", ErrInvalidPayload)
		}
		ev.Charge = &data
	case strings.HasPrefix(envelope.Event, "transfer."):
		var data TransferData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return Event{}, fmt.Errorf("%w: transfer data: %v", ErrInvalidPayload, err)
		}
		if data.Reference == "" {
			return Event{}, fmt.Errorf("%w: data missing reference", ErrInvalidPayload)
		}
		ev.Transfer = &data
	default:
		var data struct {
			Reference string `json:"reference"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return Event{}, fmt.Errorf("%w: data is not an object", ErrInvalidPayload)
		}
		if data.Reference == "" {
			return Event{}, fmt.Errorf("%w: data missing reference", ErrInvalidPayload)
		}
	}

	return ev, nil
}
