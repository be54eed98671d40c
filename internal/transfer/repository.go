package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("transfer not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	GetByReference(ctx context.Context, reference string) (Transfer, error)
	// RecordResult upserts the payout row for a gateway reference. The
	// webhook is the sole writer here, so an unseen reference simply creates
	// the row rather than erroring.
	RecordResult(ctx context.Context, res Result) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetByReference(ctx context.Context, reference string) (Transfer, error) {
	var t Transfer
	row := r.pool.QueryRow(ctx, `
		SELECT reference, transfer_code, recipient, amount, reason, status, created_at
		FROM transfers
		WHERE reference = $1
	`, reference)
	err := row.Scan(&t.Reference, &t.TransferCode, &t.Recipient, &t.Amount, &t.Reason, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transfer{}, ErrNotFound
		}
		return Transfer{}, fmt.Errorf("select transfer: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) RecordResult(ctx context.Context, res Result) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transfers (reference, transfer_code, recipient, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (reference) DO UPDATE SET
			transfer_code = COALESCE(NULLIF(EXCLUDED.transfer_code, ''), transfers.transfer_code),
			recipient = COALESCE(NULLIF(EXCLUDED.recipient, ''), transfers.recipient),
			amount = EXCLUDED.amount,
			reason = COALESCE(NULLIF(EXCLUDED.reason, ''), transfers.reason),
			status = EXCLUDED.status,
			updated_at = now()
	`, res.Reference, res.TransferCode, res.Recipient, res.Amount, res.Reason, res.Status)
	if err != nil {
		return fmt.Errorf("upsert transfer: %w", err)
	}
	return nil
}
