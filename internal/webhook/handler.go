package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/foodnow-ng/payment-service-go/internal/order"
	"github.com/foodnow-ng/payment-service-go/internal/payment"
	"github.com/foodnow-ng/payment-service-go/internal/paystack"
	"github.com/foodnow-ng/payment-service-go/internal/transfer"
)

const maxBodyBytes = 1 << 20

// OutcomePublisher notifies the rest of FoodNow about charge outcomes.
// Publish failures never change the webhook response; retry of the webhook
// itself stays with the gateway.
type OutcomePublisher interface {
	PublishPaymentSucceeded(ctx context.Context, orderID, reference string, amount int64, channel string) error
	PublishPaymentFailed(ctx context.Context, orderID, reference, reason string) error
}

// Handler is the webhook entry point. Each delivery runs the same path:
// rate limit (router) -> signature -> parse -> schema -> dispatch, with the
// HTTP status as the only terminal state. No state is kept between
// deliveries; everything durable lives in Postgres.
type Handler struct {
	secret    []byte
	payments  payment.Repository
	orders    order.Repository
	transfers transfer.Repository
	publisher OutcomePublisher
	logger    *log.Logger
}

func NewHandler(secret string, payments payment.Repository, orders order.Repository, transfers transfer.Repository, publisher OutcomePublisher, logger *log.Logger) *Handler {
	return &Handler{
		secret:    []byte(secret),
		payments:  payments,
		orders:    orders,
		transfers: transfers,
		publisher: publisher,
		logger:    logger,
	}
}

// Liveness answers gateway connectivity probes. No auth, no side effects.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "FoodNow payment webhook active",
		"timestamp": time.Now().UTC(),
	})
}

// Receive handles one webhook delivery from Paystack.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	// The signature covers the exact bytes on the wire, so the body must be
	// captured before any JSON decoding.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unable to read request body")
		return
	}

	sig := r.Header.Get(paystack.SignatureHeader)
	if sig == "" {
		writeError(w, http.StatusBadRequest, "No signature provided")
		return
	}
	if !paystack.VerifySignature(h.secret, body, sig) {
		h.logger.Printf("webhook: rejected delivery with bad signature")
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	ev, err := paystack.ParseEvent(body)
	if err != nil {
		h.logger.Printf("webhook: %v", err)
		if errors.Is(err, paystack.ErrMalformedJSON) {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid event payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var ok bool
	switch ev.Type {
	case paystack.EventChargeSuccess, paystack.EventChargeFailed:
		ok = h.handleCharge(ctx, ev)
	case paystack.EventTransferSuccess, paystack.EventTransferFailed, paystack.EventTransferReversed:
		ok = h.handleTransfer(ctx, ev)
	default:
		// Unknown events are acknowledged so the gateway does not retry
		// deliveries this service will never care about.
		h.logger.Printf("webhook: ignoring event type %q (reference %s)", ev.Type, ev.Reference())
		writeJSON(w, http.StatusOK, map[string]string{"message": "Event received"})
		return
	}

	if !ok {
		writeError(w, http.StatusInternalServerError, "Event processing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Webhook processed"})
}

// handleCharge applies charge.success / charge.failed to the payment row and,
// when the charge is order-linked, to the order row.
func (h *Handler) handleCharge(ctx context.Context, ev paystack.Event) bool {
	data := ev.Charge

	applied, err := h.payments.ApplyChargeResult(ctx, payment.ChargeUpdateFromGateway(data))
	if err != nil {
		h.logger.Printf("webhook %s: update payment %s: %v", ev.Type, data.Reference, err)
		return false
	}
	if !applied {
		// The audit row is missing (e.g. the initialize call never landed).
		// The order update is the user-visible consequence, so keep going.
		h.logger.Printf("webhook %s: no payment_transactions row for reference %s", ev.Type, data.Reference)
	}

	orderID := data.Metadata.OrderID
	if orderID == "" {
		// Not every charge is order-linked; standalone payments are fine.
		return true
	}

	switch ev.Type {
	case paystack.EventChargeSuccess:
		if data.Status != "success" {
			h.logger.Printf("webhook charge.success for %s carries status %q, skipping order update", data.Reference, data.Status)
			return true
		}
		updated, err := h.orders.MarkPaid(ctx, orderID, data.Reference, data.PaidAt)
		if err != nil {
			h.logger.Printf("webhook charge.success: order %s (reference %s): %v", orderID, data.Reference, err)
			return false
		}
		if !updated {
			h.logger.Printf("webhook charge.success: order %s already cancelled, ignoring late success for %s", orderID, data.Reference)
			return true
		}
		h.publishSucceeded(ctx, orderID, data)
	case paystack.EventChargeFailed:
		if err := h.orders.MarkPaymentFailed(ctx, orderID, data.Reference); err != nil {
			h.logger.Printf("webhook charge.failed: order %s (reference %s): %v", orderID, data.Reference, err)
			return false
		}
		h.publishFailed(ctx, orderID, data)
	}
	return true
}

// handleTransfer records payout outcomes for riders and restaurants.
func (h *Handler) handleTransfer(ctx context.Context, ev paystack.Event) bool {
	data := ev.Transfer

	var status transfer.Status
	switch ev.Type {
	case paystack.EventTransferSuccess:
		status = transfer.StatusSuccess
	case paystack.EventTransferFailed:
		status = transfer.StatusFailed
	case paystack.EventTransferReversed:
		status = transfer.StatusReversed
	}

	err := h.transfers.RecordResult(ctx, transfer.Result{
		Reference:    data.Reference,
		TransferCode: data.TransferCode,
		Recipient:    data.Recipient.Name,
		Amount:       data.Amount,
		Reason:       data.Reason,
		Status:       status,
	})
	if err != nil {
		h.logger.Printf("webhook %s: record transfer %s: %v", ev.Type, data.Reference, err)
		return false
	}
	return true
}

func (h *Handler) publishSucceeded(ctx context.Context, orderID string, data *paystack.ChargeData) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishPaymentSucceeded(ctx, orderID, data.Reference, data.Amount, data.Channel); err != nil {
		h.logger.Printf("publish payment.succeeded for order %s: %v", orderID, err)
	}
}

func (h *Handler) publishFailed(ctx context.Context, orderID string, data *paystack.ChargeData) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishPaymentFailed(ctx, orderID, data.Reference, data.GatewayResponse); err != nil {
		h.logger.Printf("publish payment.failed for order %s: %v", orderID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
