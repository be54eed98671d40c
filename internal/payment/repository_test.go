package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	mock.ExpectExec("INSERT INTO payment_transactions").
		WithArgs("ref123", "order-abc", int64(250000), "NGN", StatusPending).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx := &Transaction{Reference: "ref123", OrderID: "order-abc", Amount: 250000}
	if err := repo.Create(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.Status != StatusPending || tx.Currency != "NGN" {
		t.Fatalf("defaults not applied: %+v", tx)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_GetByReference(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	created := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	paid := created.Add(30 * time.Minute)

	mock.ExpectQuery("SELECT reference").
		WithArgs("ref123").
		WillReturnRows(pgxmock.NewRows([]string{
			"reference", "order_id", "amount", "currency", "status",
			"gateway_response", "channel", "fees",
			"card_last4", "card_brand", "card_bank",
			"paid_at", "verified_at", "created_at",
		}).AddRow(
			"ref123", "order-abc", int64(250000), "NGN", StatusSuccess,
			"Successful", "card", int64(3750),
			"4081", "visa", "TEST BANK",
			&paid, &paid, created,
		))

	tx, err := repo.GetByReference(ctx, "ref123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tx.Status != StatusSuccess || tx.OrderID != "order-abc" || tx.Card.Last4 != "4081" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.PaidAt == nil || !tx.PaidAt.Equal(paid) {
		t.Fatalf("paid_at mismatch: %v", tx.PaidAt)
	}
}

func TestPostgresRepository_GetByReference_Missing(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery("SELECT reference").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByReference(ctx, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_ApplyChargeResult(t *testing.T) {
	ctx := context.Background()
	paid := time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC)

	update := ChargeUpdate{
		Reference:       "ref123",
		Status:          StatusSuccess,
		GatewayResponse: "Successful",
		Channel:         "card",
		Fees:            3750,
		Card:            Card{Last4: "4081", Brand: "visa", Bank: "TEST BANK"},
		PaidAt:          &paid,
	}

	t.Run("row updated", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectExec("UPDATE payment_transactions").
			WithArgs("ref123", StatusSuccess, "Successful", "card", int64(3750),
				"4081", "visa", "TEST BANK", &paid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		applied, err := repo.ApplyChargeResult(ctx, update)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !applied {
			t.Fatalf("expected applied=true")
		}
	})

	t.Run("missing reference", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectExec("UPDATE payment_transactions").
			WithArgs("ref123", StatusSuccess, "Successful", "card", int64(3750),
				"4081", "visa", "TEST BANK", &paid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("ref123").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		applied, err := repo.ApplyChargeResult(ctx, update)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if applied {
			t.Fatalf("expected applied=false for missing row")
		}
	})

	t.Run("stale failure after success is a no-op", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		stale := update
		stale.Status = StatusFailed
		stale.PaidAt = nil

		// The guard keeps the UPDATE from matching; the row still exists.
		mock.ExpectExec("UPDATE payment_transactions").
			WithArgs("ref123", StatusFailed, "Successful", "card", int64(3750),
				"4081", "visa", "TEST BANK", nil).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("ref123").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		applied, err := repo.ApplyChargeResult(ctx, stale)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !applied {
			t.Fatalf("terminal no-op must not look like a missing row")
		}
	})

	t.Run("db error surfaces", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectExec("UPDATE payment_transactions").
			WithArgs("ref123", StatusSuccess, "Successful", "card", int64(3750),
				"4081", "visa", "TEST BANK", &paid).
			WillReturnError(errors.New("connection reset"))

		if _, err := repo.ApplyChargeResult(ctx, update); err == nil {
			t.Fatalf("expected error")
		}
	})
}
