package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/loeitech/booker/internal/models"
)

func TestTransactionRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	due := now.Add(7 * 24 * time.Hour)
	mock.ExpectQuery(`INSERT INTO transactions \(user_id, book_id, due_date, status\)`).
		WithArgs(5, 2, due, "borrowed").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "book_id", "due_date", "status", "created_at"}).
			AddRow(10, 5, 2, due, "borrowed", now))

	repo := NewTransactionRepo(db)
	tx, err := repo.Create(context.Background(), 5, 2, due)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.ID != 10 || tx.Status != models.StatusBorrowed {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if got := tx.DueDate.Sub(now); got != 7*24*time.Hour {
		t.Errorf("due date offset: got %v, want 168h", got)
	}
	if tx.ReturnDate != nil {
		t.Errorf("new transaction must have no return date: %+v", tx.ReturnDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTransactionRepo_MarkReturned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	returnedAt := now.Add(48 * time.Hour)
	mock.ExpectQuery(`UPDATE transactions`).
		WithArgs(10, "returned", returnedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "book_id", "due_date", "status", "return_date", "created_at"}).
			AddRow(10, 5, 2, now.Add(7*24*time.Hour), "returned", returnedAt, now))

	repo := NewTransactionRepo(db)
	tx, err := repo.MarkReturned(context.Background(), 10, returnedAt)
	if err != nil {
		t.Fatalf("MarkReturned: %v", err)
	}
	if tx.Status != models.StatusReturned {
		t.Errorf("status: got %q, want returned", tx.Status)
	}
	if tx.ReturnDate == nil || !tx.ReturnDate.Equal(returnedAt) {
		t.Errorf("return date: got %v, want %v", tx.ReturnDate, returnedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTransactionRepo_HistoryByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	newer := now.Add(time.Hour)
	mock.ExpectQuery(`FROM transactions t\s+LEFT JOIN books b`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "book_id", "due_date", "status", "return_date", "created_at", "title", "author",
		}).
			AddRow(11, 5, 3, newer.Add(7*24*time.Hour), "borrowed", nil, newer, "Dune", "Frank Herbert").
			AddRow(10, 5, 2, now.Add(7*24*time.Hour), "returned", now.Add(time.Minute), now, "Emma", "Jane Austen"))

	repo := NewTransactionRepo(db)
	entries, err := repo.HistoryByUser(context.Background(), 5)
	if err != nil {
		t.Fatalf("HistoryByUser: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first
	if !entries[0].CreatedAt.After(entries[1].CreatedAt) {
		t.Errorf("history not sorted newest-first: %v then %v", entries[0].CreatedAt, entries[1].CreatedAt)
	}
	if entries[0].BookTitle != "Dune" || entries[0].BookAuthor != "Frank Herbert" {
		t.Errorf("joined book fields missing: %+v", entries[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTransactionRepo_ListBorrowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE t.status =`).
		WithArgs("borrowed").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "book_id", "due_date", "status", "return_date", "created_at", "username", "title", "author",
		}).
			AddRow(11, 5, 3, now.Add(7*24*time.Hour), "borrowed", nil, now, "alice", "Dune", "Frank Herbert"))

	repo := NewTransactionRepo(db)
	entries, err := repo.ListBorrowed(context.Background())
	if err != nil {
		t.Fatalf("ListBorrowed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Status != models.StatusBorrowed || e.Username != "alice" || e.BookTitle != "Dune" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTransactionRepo_CountOverdue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions`).
		WithArgs("borrowed", now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	repo := NewTransactionRepo(db)
	n, err := repo.CountOverdue(context.Background(), now)
	if err != nil {
		t.Fatalf("CountOverdue: %v", err)
	}
	if n != 4 {
		t.Errorf("count: got %d, want 4", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
