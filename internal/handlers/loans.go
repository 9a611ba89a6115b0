package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/loeitech/booker/internal/metrics"
	"github.com/loeitech/booker/internal/models"
	"github.com/loeitech/booker/internal/repo"
)

// LoanPeriod is how long a borrowed book is out before it is due.
const LoanPeriod = 7 * 24 * time.Hour

// ==========================
// LoanHandler
// ==========================
// Borrow and return are sequences of independent store writes with no
// transactional scope between them. Two concurrent borrows of the same book
// can both pass the stock check; the stock counter can go negative. That
// matches the system this one replaces and is left as-is.
type LoanHandler struct {
	Books        *repo.BookRepo
	Transactions *repo.TransactionRepo

	// now is swapped in tests to pin due dates.
	now func() time.Time
}

func NewLoanHandler(books *repo.BookRepo, transactions *repo.TransactionRepo) *LoanHandler {
	return &LoanHandler{
		Books:        books,
		Transactions: transactions,
		now:          time.Now,
	}
}

// ==========================
// Borrow
// ==========================
// Check stock, create the loan, then decrement the counter. A failure after
// the insert but before the decrement leaves stock uncharged.
func (h *LoanHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID int `json:"user_id"`
		BookID int `json:"book_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	book, err := h.Books.GetByID(r.Context(), input.BookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Book not found", http.StatusNotFound)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if book.Quantity < 1 {
		JSONError(w, "Book out of stock", http.StatusBadRequest)
		return
	}

	dueDate := h.now().Add(LoanPeriod)

	transaction, err := h.Transactions.Create(r.Context(), input.UserID, input.BookID, dueDate)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.Books.AdjustQuantity(r.Context(), input.BookID, -1); err != nil {
		slog.Error("borrow: stock decrement failed after loan insert",
			"transaction_id", transaction.ID, "book_id", input.BookID, "err", err)
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.IncBorrows()
	slog.Info("borrow", "user_id", input.UserID, "book_id", input.BookID,
		"transaction_id", transaction.ID, "due_date", transaction.DueDate)

	JSON(w, map[string]interface{}{
		"message":     "Borrow successful",
		"transaction": transaction,
	}, http.StatusCreated)
}

// ==========================
// Return
// ==========================
// A loan is returnable exactly once. The restock is skipped without error
// when the book was deleted in the meantime.
func (h *LoanHandler) Return(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TransactionID int `json:"transaction_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	transaction, err := h.Transactions.GetByID(r.Context(), input.TransactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if transaction.Status == models.StatusReturned {
		JSONError(w, "Already returned", http.StatusBadRequest)
		return
	}

	transaction, err = h.Transactions.MarkReturned(r.Context(), input.TransactionID, h.now())
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.Books.AdjustQuantity(r.Context(), transaction.BookID, 1); err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.IncReturns()
	slog.Info("return", "transaction_id", transaction.ID, "book_id", transaction.BookID)

	JSON(w, map[string]interface{}{
		"message":     "Return successful",
		"transaction": transaction,
	}, http.StatusOK)
}

// ==========================
// History
// ==========================
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "user_id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	entries, err := h.Transactions.HistoryByUser(r.Context(), userID)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	JSON(w, entries, http.StatusOK)
}

// ==========================
// List Borrowed (admin)
// ==========================
func (h *LoanHandler) ListBorrowed(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Transactions.ListBorrowed(r.Context())
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []models.BorrowedEntry{}
	}

	JSON(w, entries, http.StatusOK)
}
