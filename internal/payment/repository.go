package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("payment transaction not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByReference(ctx context.Context, reference string) (Transaction, error)
	// ApplyChargeResult records a gateway charge outcome. It reports false
	// when no row exists for the reference; re-applying the same outcome, or
	// a stale non-success outcome after success, is a no-op reported as true.
	ApplyChargeResult(ctx context.Context, u ChargeUpdate) (bool, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, tx *Transaction) error {
	if tx.Status == "" {
		tx.Status = StatusPending
	}
	if tx.Currency == "" {
		tx.Currency = "NGN"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payment_transactions (reference, order_id, amount, currency, status)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
	`, tx.Reference, tx.OrderID, tx.Amount, tx.Currency, tx.Status)
	if err != nil {
		return fmt.Errorf("insert payment_transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByReference(ctx context.Context, reference string) (Transaction, error) {
	var tx Transaction
	row := r.pool.QueryRow(ctx, `
		SELECT reference, COALESCE(order_id, ''), amount, currency, status,
		       gateway_response, channel, fees,
		       card_last4, card_brand, card_bank,
		       paid_at, verified_at, created_at
		FROM payment_transactions
		WHERE reference = $1
	`, reference)
	err := row.Scan(
		&tx.Reference, &tx.OrderID, &tx.Amount, &tx.Currency, &tx.Status,
		&tx.GatewayResponse, &tx.Channel, &tx.Fees,
		&tx.Card.Last4, &tx.Card.Brand, &tx.Card.Bank,
		&tx.PaidAt, &tx.VerifiedAt, &tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, fmt.Errorf("select payment_transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresRepository) ApplyChargeResult(ctx context.Context, u ChargeUpdate) (bool, error) {
	// The status guard keeps a terminal success from regressing when a stale
	// or duplicate delivery lands after the fact.
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_transactions
		SET status = $2,
		    gateway_response = $3,
		    channel = COALESCE(NULLIF($4, ''), channel),
		    fees = $5,
		    card_last4 = COALESCE(NULLIF($6, ''), card_last4),
		    card_brand = COALESCE(NULLIF($7, ''), card_brand),
		    card_bank = COALESCE(NULLIF($8, ''), card_bank),
		    paid_at = COALESCE($9, paid_at),
		    verified_at = now(),
		    updated_at = now()
		WHERE reference = $1 AND (status <> 'success' OR $2 = 'success')
	`, u.Reference, u.Status, u.GatewayResponse, u.Channel, u.Fees,
		u.Card.Last4, u.Card.Brand, u.Card.Bank, u.PaidAt)
	if err != nil {
		return false, fmt.Errorf("update payment_transaction: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Zero rows is either a missing reference or the no-regress guard
	// holding; only the former is worth surfacing to the caller.
	var exists bool
	err = r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM payment_transactions WHERE reference = $1)
	`, u.Reference).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check payment_transaction: %w", err)
	}
	return exists, nil
}
