package order

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

func TestPostgresRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	created := time.Date(2025, 8, 1, 11, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id").
		WithArgs("order-abc").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "restaurant_id", "total_amount", "status",
			"payment_status", "payment_reference", "paid_at", "created_at",
		}).AddRow(
			"order-abc", "user-1", "rest-9", int64(250000), StatusCreated,
			PaymentUnpaid, "", nil, created,
		))

	o, err := repo.GetByID(ctx, "order-abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.ID != "order-abc" || o.Status != StatusCreated || o.PaymentStatus != PaymentUnpaid {
		t.Fatalf("unexpected order: %+v", o)
	}
}

func TestPostgresRepository_GetByID_Missing(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	mock.ExpectQuery("SELECT id").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(ctx, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_MarkPaid(t *testing.T) {
	ctx := context.Background()
	paid := time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC)

	t.Run("confirms the order", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectExec("UPDATE orders").
			WithArgs("order-abc", "ref123", &paid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		updated, err := repo.MarkPaid(ctx, "order-abc", "ref123", &paid)
		if err != nil {
			t.Fatalf("mark paid: %v", err)
		}
		if !updated {
			t.Fatalf("expected updated=true")
		}
	})

	t.Run("missing order is ErrNotFound", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectExec("UPDATE orders").
			WithArgs("ghost", "ref123", &paid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.MarkPaid(ctx, "ghost", "ref123", &paid)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("cancelled order stays cancelled", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectExec("UPDATE orders").
			WithArgs("order-abc", "ref123", &paid).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("order-abc").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		updated, err := repo.MarkPaid(ctx, "order-abc", "ref123", &paid)
		if err != nil {
			t.Fatalf("mark paid: %v", err)
		}
		if updated {
			t.Fatalf("cancelled order must not be confirmed")
		}
	})
}

func TestPostgresRepository_MarkPaymentFailed(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels the order", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectExec("UPDATE orders").
			WithArgs("order-abc", "ref123").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		if err := repo.MarkPaymentFailed(ctx, "order-abc", "ref123"); err != nil {
			t.Fatalf("mark failed: %v", err)
		}
	})

	t.Run("missing order is ErrNotFound", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectExec("UPDATE orders").
			WithArgs("ghost", "ref123").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.MarkPaymentFailed(ctx, "ghost", "ref123")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
