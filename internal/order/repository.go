package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("order not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	GetByID(ctx context.Context, orderID string) (Order, error)
	// MarkPaid confirms an order off a successful charge. It reports false
	// without error when the order exists but was already cancelled: a
	// cancellation is never reversed automatically. A missing order is
	// ErrNotFound.
	MarkPaid(ctx context.Context, orderID, reference string, paidAt *time.Time) (bool, error)
	// MarkPaymentFailed cancels an order off a failed charge.
	MarkPaymentFailed(ctx context.Context, orderID, reference string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (Order, error) {
	var o Order
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, restaurant_id, total_amount, status, payment_status,
		       COALESCE(payment_reference, ''), paid_at, created_at
		FROM orders
		WHERE id = $1
	`, orderID)
	err := row.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.TotalAmount, &o.Status,
		&o.PaymentStatus, &o.PaymentReference, &o.PaidAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("select order: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) MarkPaid(ctx context.Context, orderID, reference string, paidAt *time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'paid',
		    status = 'confirmed',
		    payment_reference = $2,
		    paid_at = COALESCE($3, now()),
		    updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
	`, orderID, reference, paidAt)
	if err != nil {
		return false, fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	err = r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)
	`, orderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	// Order is cancelled; leave it alone.
	return false, nil
}

func (r *PostgresRepository) MarkPaymentFailed(ctx context.Context, orderID, reference string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'failed',
		    status = 'cancelled',
		    payment_reference = $2,
		    updated_at = now()
		WHERE id = $1
	`, orderID, reference)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
