package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/foodnow-ng/payment-service-go/internal/order"
	"github.com/foodnow-ng/payment-service-go/internal/paystack"
)

// GatewayVerifier is the slice of the Paystack client this service needs.
type GatewayVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.ChargeData, error)
}

// VerifyService is the synchronous, client-initiated counterpart to the
// webhook: it asks the gateway for the authoritative transaction state and
// applies the same updates the webhook would. Both writers converge on the
// same terminal row state; verified_at is last-write-wins.
type VerifyService struct {
	gateway  GatewayVerifier
	payments Repository
	orders   order.Repository
	logger   *log.Logger
}

func NewVerifyService(gateway GatewayVerifier, payments Repository, orders order.Repository, logger *log.Logger) *VerifyService {
	return &VerifyService{gateway: gateway, payments: payments, orders: orders, logger: logger}
}

// Verify fetches the transaction from the gateway, persists the outcome, and
// returns the refreshed local row.
func (s *VerifyService) Verify(ctx context.Context, reference string) (Transaction, error) {
	data, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return Transaction{}, err
	}

	applied, err := s.payments.ApplyChargeResult(ctx, ChargeUpdateFromGateway(data))
	if err != nil {
		return Transaction{}, err
	}
	if !applied {
		s.logger.Printf("verify %s: no payment_transactions row to update", reference)
	}

	if err := s.updateOrder(ctx, data); err != nil {
		return Transaction{}, err
	}

	return s.payments.GetByReference(ctx, reference)
}

func (s *VerifyService) updateOrder(ctx context.Context, data *paystack.ChargeData) error {
	orderID := data.Metadata.OrderID
	if orderID == "" {
		return nil
	}

	switch StatusFromGateway(data.Status) {
	case StatusSuccess:
		updated, err := s.orders.MarkPaid(ctx, orderID, data.Reference, data.PaidAt)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return fmt.Errorf("verify %s: order %s not found: %w", data.Reference, orderID, err)
			}
			return err
		}
		if !updated {
			s.logger.Printf("verify %s: order %s already cancelled, leaving it", data.Reference, orderID)
		}
	case StatusFailed:
		if err := s.orders.MarkPaymentFailed(ctx, orderID, data.Reference); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				return fmt.Errorf("verify %s: order %s not found: %w", data.Reference, orderID, err)
			}
			return err
		}
	}
	return nil
}
