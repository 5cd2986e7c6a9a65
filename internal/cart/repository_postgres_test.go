package cart

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var itemRowColumns = []string{"id", "user_id", "product_id", "quantity", "created_at", "updated_at"}

func TestPostgresAdd_Upserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("ON CONFLICT \\(user_id, product_id\\)").
		WithArgs(4, 9, 2, now).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).AddRow(11, 4, 9, 5, now, now))

	item, err := repo.Add(context.Background(), 4, 9, 2, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID != 11 || item.Quantity != 5 {
		t.Fatalf("unexpected item %+v", item)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSetQuantity_NotOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now()
	mock.ExpectQuery("UPDATE cart_items").WithArgs(3, now, 11, 5).WillReturnError(sql.ErrNoRows)
	if _, err := repo.SetQuantity(context.Background(), 5, 11, 3, now); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	mock.ExpectExec("DELETE FROM cart_items WHERE id").WithArgs(11, 5).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Remove(context.Background(), 5, 11); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	mock.ExpectExec("DELETE FROM cart_items WHERE user_id").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 3))
	if err := repo.Clear(context.Background(), 5); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
