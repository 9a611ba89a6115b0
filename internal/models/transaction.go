package models

import "time"

const StatusBorrowed = "borrowed"
const StatusReturned = "returned"

// Transaction is a loan record. It starts borrowed and may transition to
// returned exactly once; records are never deleted.
type Transaction struct {
	ID         int        `json:"id"`
	UserID     int        `json:"user_id"`
	BookID     int        `json:"book_id"`
	DueDate    time.Time  `json:"due_date"`
	Status     string     `json:"status"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// HistoryEntry is a transaction joined with its book for the member history view.
type HistoryEntry struct {
	Transaction
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
}

// BorrowedEntry is an open loan joined with both the borrower and the book,
// for the admin overview.
type BorrowedEntry struct {
	Transaction
	Username   string `json:"username"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
}
