package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/loeitech/booker/internal/models"
	"github.com/loeitech/booker/internal/repo"
)

type BookHandler struct {
	Books *repo.BookRepo
}

// bookInput is shared by create and update; PUT replaces all three fields,
// like the original API.
type bookInput struct {
	Title    string `json:"title" validate:"required,min=1,max=255"`
	Author   string `json:"author" validate:"required,min=1,max=255"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// bookWithStatus annotates a book with the derived status_text label for
// list responses.
type bookWithStatus struct {
	models.Book
	StatusText string `json:"status_text"`
}

//
// ==========================
// List Books
// ==========================
//

func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Books.List(r.Context())
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]bookWithStatus, 0, len(books))
	for _, b := range books {
		out = append(out, bookWithStatus{Book: b, StatusText: b.StatusText()})
	}

	JSON(w, out, http.StatusOK)
}

//
// ==========================
// Create Book
// ==========================
//

func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var input bookInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	book, err := h.Books.Create(r.Context(), input.Title, input.Author, input.Quantity)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSON(w, book, http.StatusCreated)
}

//
// ==========================
// Update Book
// ==========================
//

func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid book id", http.StatusBadRequest)
		return
	}

	var input bookInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	book, err := h.Books.UpdateByID(r.Context(), id, input.Title, input.Author, input.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Book not found", http.StatusNotFound)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSON(w, book, http.StatusOK)
}

//
// ==========================
// Delete Book
// ==========================
//

func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid book id", http.StatusBadRequest)
		return
	}

	if err := h.Books.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Book not found", http.StatusNotFound)
			return
		}
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSON(w, map[string]string{"message": "Book deleted successfully"}, http.StatusOK)
}
