package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
		db.Close()
	})
	return &Store{db: db}, mock
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts row", func(t *testing.T) {
		store, mock := newMockStore(t)
		user := models.NewUser("alice", "hash")

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
			WithArgs(user.ID, "alice", "hash", "", user.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	})

	t.Run("maps unique violation", func(t *testing.T) {
		store, mock := newMockStore(t)
		user := models.NewUser("alice", "hash")

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
			WithArgs(user.ID, "alice", "hash", "", user.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		if err := store.CreateUser(ctx, user); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("CreateUser error = %v, want ErrAlreadyExists", err)
		}
	})
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()

	t.Run("scans NULL partner as empty", func(t *testing.T) {
		store, mock := newMockStore(t)

		rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "partner_id", "created_at"}).
			AddRow("u1", "alice", "hash", nil, int64(1700000000))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password_hash, partner_id, created_at FROM users WHERE id =`)).
			WithArgs("u1").
			WillReturnRows(rows)

		user, err := store.GetUserByID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if user.PartnerID != "" {
			t.Errorf("PartnerID = %q, want empty", user.PartnerID)
		}
	})

	t.Run("maps no rows", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password_hash, partner_id, created_at FROM users WHERE id =`)).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "partner_id", "created_at"}))

		if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetUserByID error = %v, want ErrNotFound", err)
		}
	})
}

func TestSetPartner(t *testing.T) {
	ctx := context.Background()

	t.Run("updates one row", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET partner_id =`)).
			WithArgs("u2", "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := store.SetPartner(ctx, "u1", "u2"); err != nil {
			t.Fatalf("SetPartner failed: %v", err)
		}
	})

	t.Run("missing user maps to ErrNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET partner_id =`)).
			WithArgs("u2", "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := store.SetPartner(ctx, "missing", "u2"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("SetPartner error = %v, want ErrNotFound", err)
		}
	})
}

func TestClearPairing(t *testing.T) {
	ctx := context.Background()
	clearStmt := regexp.QuoteMeta(`UPDATE users SET partner_id = NULL WHERE id =`)

	t.Run("clears both sides in one transaction", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(clearStmt).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(clearStmt).WithArgs("u2").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := store.ClearPairing(ctx, "u1", "u2"); err != nil {
			t.Fatalf("ClearPairing failed: %v", err)
		}
	})

	t.Run("rolls back when second side fails", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(clearStmt).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(clearStmt).WithArgs("u2").WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		err := store.ClearPairing(ctx, "u1", "u2")
		if err == nil {
			t.Fatal("Expected ClearPairing to fail")
		}
		if errors.Is(err, storage.ErrPartialWrite) {
			t.Error("Clean rollback must not report a partial write")
		}
	})

	t.Run("failed rollback surfaces as partial write", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(clearStmt).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(clearStmt).WithArgs("u2").WillReturnError(errors.New("boom"))
		mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

		if err := store.ClearPairing(ctx, "u1", "u2"); !errors.Is(err, storage.ErrPartialWrite) {
			t.Errorf("ClearPairing error = %v, want ErrPartialWrite", err)
		}
	})
}

func TestCreateSharedPair(t *testing.T) {
	ctx := context.Background()
	insertStmt := regexp.QuoteMeta(`INSERT INTO transactions`)

	mine := &models.Transaction{
		UserID: "u1", Date: "2026-08-11", Description: "dinner",
		Amount: decimal.RequireFromString("25.01"), Category: "food", IsShared: true,
	}
	partners := &models.Transaction{
		UserID: "u2", Date: "2026-08-11", Description: "dinner",
		Amount: decimal.RequireFromString("25.00"), Category: "food", IsShared: true,
	}

	t.Run("commits both inserts", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(insertStmt).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertStmt).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := store.CreateSharedPair(ctx, mine, partners); err != nil {
			t.Fatalf("CreateSharedPair failed: %v", err)
		}
		if mine.ID == "" || partners.ID == "" {
			t.Error("Expected IDs to be assigned")
		}
	})

	t.Run("rolls back when second insert fails", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(insertStmt).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertStmt).WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		if err := store.CreateSharedPair(ctx, mine, partners); err == nil {
			t.Fatal("Expected CreateSharedPair to fail")
		}
	})
}

func TestQueryTransactions(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "txn_date", "description", "amount", "category", "is_shared", "created_at"}).
		AddRow("t2", "u1", "2026-08-11", "dinner", "25.01", "food", true, int64(1700000100)).
		AddRow("t1", "u1", "2026-08-10", "lunch", "12.50", "food", false, int64(1700000000))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM transactions WHERE user_id =`)).
		WithArgs("u1").
		WillReturnRows(rows)

	txns, err := store.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("ListTransactions count = %d, want 2", len(txns))
	}
	if !txns[0].Amount.Equal(decimal.RequireFromString("25.01")) {
		t.Errorf("Amount = %s, want 25.01", txns[0].Amount)
	}
	if !txns[0].IsShared || txns[1].IsShared {
		t.Error("IsShared flags did not round-trip")
	}
}

func TestCategoryTotals(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"category", "total"}).
		AddRow("food", "37.51").
		AddRow(models.Uncategorized, "3")
	mock.ExpectQuery(regexp.QuoteMeta(`SUM(amount) AS total`)).
		WithArgs("u1").
		WillReturnRows(rows)

	totals, err := store.CategoryTotals(ctx, "u1", "", "")
	if err != nil {
		t.Fatalf("CategoryTotals failed: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("CategoryTotals count = %d, want 2", len(totals))
	}
	if !totals[0].Total.Equal(decimal.RequireFromString("37.51")) {
		t.Errorf("food total = %s, want 37.51", totals[0].Total)
	}
}

func TestUpdateCategoryOwnership(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE transactions SET category =`)).
		WithArgs("snacks", "t1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.UpdateCategory(ctx, "t1", "intruder", "snacks"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateCategory error = %v, want ErrNotFound", err)
	}
}

func TestGetBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("scans limit as decimal", func(t *testing.T) {
		store, mock := newMockStore(t)

		rows := sqlmock.NewRows([]string{"user_id", "month", "spend_limit"}).
			AddRow("u1", "2026-08", "750.50")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, month, spend_limit FROM budgets`)).
			WithArgs("u1", "2026-08").
			WillReturnRows(rows)

		budget, err := store.GetBudget(ctx, "u1", "2026-08")
		if err != nil {
			t.Fatalf("GetBudget failed: %v", err)
		}
		if !budget.Limit.Equal(decimal.RequireFromString("750.50")) {
			t.Errorf("Limit = %s, want 750.50", budget.Limit)
		}
	})

	t.Run("maps no rows", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, month, spend_limit FROM budgets`)).
			WithArgs("u1", "2026-09").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "month", "spend_limit"}))

		if _, err := store.GetBudget(ctx, "u1", "2026-09"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetBudget error = %v, want ErrNotFound", err)
		}
	})
}
