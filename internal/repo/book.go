package repo

import (
	"context"
	"database/sql"

	"github.com/loeitech/booker/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type BookRepo struct {
	DB *sql.DB
}

func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{DB: db}
}

// ========================
// CREATE BOOK
// ========================

func (r *BookRepo) Create(ctx context.Context, title, author string, quantity int) (models.Book, error) {
	var book models.Book
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO books (title, author, quantity)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, author, quantity, created_at`,
		title, author, quantity,
	).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Quantity,
		&book.CreatedAt,
	)
	return book, err
}

// ========================
// GET BOOK BY ID
// ========================

func (r *BookRepo) GetByID(ctx context.Context, id int) (models.Book, error) {
	var book models.Book
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, author, quantity, created_at
		 FROM books
		 WHERE id = $1`,
		id,
	).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Quantity,
		&book.CreatedAt,
	)
	return book, err
}

// ========================
// UPDATE BOOK BY ID
// ========================

func (r *BookRepo) UpdateByID(ctx context.Context, id int, title, author string, quantity int) (models.Book, error) {
	var book models.Book
	err := r.DB.QueryRowContext(ctx,
		`UPDATE books
		 SET title = $1, author = $2, quantity = $3
		 WHERE id = $4
		 RETURNING id, title, author, quantity, created_at`,
		title, author, quantity, id,
	).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Quantity,
		&book.CreatedAt,
	)
	return book, err
}

// ========================
// DELETE BOOK BY ID
// ========================

// DeleteByID removes the book. Returns sql.ErrNoRows when the id does not exist.
func (r *BookRepo) DeleteByID(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ========================
// LIST ALL BOOKS
// ========================

func (r *BookRepo) List(ctx context.Context) ([]models.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, title, author, quantity, created_at FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Quantity, &b.CreatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// ========================
// ADJUST QUANTITY
// ========================

// AdjustQuantity applies delta to the book's stock counter in a single
// statement. Borrow passes -1, return passes +1. When the book no longer
// exists the update matches no rows and that is not an error: a return
// against a deleted book silently skips the restock.
func (r *BookRepo) AdjustQuantity(ctx context.Context, id, delta int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE books SET quantity = quantity + $2 WHERE id = $1`,
		id, delta,
	)
	return err
}
