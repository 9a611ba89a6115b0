package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/loeitech/booker/internal/models"
)

// ==========================
// TransactionRepo
// ==========================
// Loan records are append-and-update-once: created by borrow, flipped to
// returned by return, never deleted.
type TransactionRepo struct {
	DB *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{DB: db}
}

// ==========================
// Create (borrow)
// ==========================
func (r *TransactionRepo) Create(ctx context.Context, userID, bookID int, dueDate time.Time) (models.Transaction, error) {
	var t models.Transaction
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, book_id, due_date, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, book_id, due_date, status, created_at`,
		userID, bookID, dueDate, models.StatusBorrowed,
	).Scan(&t.ID, &t.UserID, &t.BookID, &t.DueDate, &t.Status, &t.CreatedAt)
	return t, err
}

// ==========================
// Get By ID
// ==========================
func (r *TransactionRepo) GetByID(ctx context.Context, id int) (models.Transaction, error) {
	var t models.Transaction
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, book_id, due_date, status, return_date, created_at
		 FROM transactions
		 WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.UserID, &t.BookID, &t.DueDate, &t.Status, &t.ReturnDate, &t.CreatedAt)
	return t, err
}

// ==========================
// Mark Returned
// ==========================
func (r *TransactionRepo) MarkReturned(ctx context.Context, id int, returnedAt time.Time) (models.Transaction, error) {
	var t models.Transaction
	err := r.DB.QueryRowContext(ctx,
		`UPDATE transactions
		 SET status = $2, return_date = $3
		 WHERE id = $1
		 RETURNING id, user_id, book_id, due_date, status, return_date, created_at`,
		id, models.StatusReturned, returnedAt,
	).Scan(&t.ID, &t.UserID, &t.BookID, &t.DueDate, &t.Status, &t.ReturnDate, &t.CreatedAt)
	return t, err
}

// ==========================
// History By User
// ==========================
// All of one user's transactions, newest first, each joined with the book's
// title and author. A LEFT JOIN keeps history rows whose book was deleted.
func (r *TransactionRepo) HistoryByUser(ctx context.Context, userID int) ([]models.HistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.book_id, t.due_date, t.status, t.return_date, t.created_at,
		        COALESCE(b.title, ''), COALESCE(b.author, '')
		 FROM transactions t
		 LEFT JOIN books b ON b.id = t.book_id
		 WHERE t.user_id = $1
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.BookID, &e.DueDate, &e.Status, &e.ReturnDate, &e.CreatedAt,
			&e.BookTitle, &e.BookAuthor,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ==========================
// List Borrowed
// ==========================
// Admin overview: every open loan joined with borrower and book.
func (r *TransactionRepo) ListBorrowed(ctx context.Context) ([]models.BorrowedEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.book_id, t.due_date, t.status, t.return_date, t.created_at,
		        COALESCE(u.username, ''), COALESCE(b.title, ''), COALESCE(b.author, '')
		 FROM transactions t
		 LEFT JOIN users u ON u.id = t.user_id
		 LEFT JOIN books b ON b.id = t.book_id
		 WHERE t.status = $1
		 ORDER BY t.created_at DESC`,
		models.StatusBorrowed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.BorrowedEntry
	for rows.Next() {
		var e models.BorrowedEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.BookID, &e.DueDate, &e.Status, &e.ReturnDate, &e.CreatedAt,
			&e.Username, &e.BookTitle, &e.BookAuthor,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ==========================
// Count Overdue
// ==========================
// Open loans whose due date has passed, for the sweep and its gauge.
func (r *TransactionRepo) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE status = $1 AND due_date < $2`,
		models.StatusBorrowed, now,
	).Scan(&n)
	return n, err
}
