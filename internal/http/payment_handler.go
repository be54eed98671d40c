package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foodnow-ng/payment-service-go/internal/payment"
	"github.com/foodnow-ng/payment-service-go/internal/paystack"
)

// Verifier is the slice of payment.VerifyService the API needs.
type Verifier interface {
	Verify(ctx context.Context, reference string) (payment.Transaction, error)
}

type Handler struct {
	payments payment.Repository
	verifier Verifier
}

func NewHandler(payments payment.Repository, verifier Verifier) *Handler {
	return &Handler{payments: payments, verifier: verifier}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "payment-service",
	})
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tx, err := h.payments.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load payment")
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// VerifyPayment asks the gateway for the authoritative transaction state and
// returns the refreshed row. This is the rarer second writer next to the
// webhook; both converge on the same terminal state.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	tx, err := h.verifier.Verify(ctx, reference)
	if err != nil {
		if errors.Is(err, paystack.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found on gateway")
			return
		}
		writeError(w, http.StatusBadGateway, "gateway verification failed")
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
