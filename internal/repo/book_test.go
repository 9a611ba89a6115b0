package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestBookRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO books \(title, author, quantity\)`).
		WithArgs("Dune", "Frank Herbert", 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "quantity", "created_at"}).
			AddRow(1, "Dune", "Frank Herbert", 3, now))

	repo := NewBookRepo(db)
	book, err := repo.Create(context.Background(), "Dune", "Frank Herbert", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if book.ID != 1 || book.Title != "Dune" || book.Quantity != 3 {
		t.Errorf("unexpected book: %+v", book)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, author, quantity, created_at`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	repo := NewBookRepo(db)
	_, err = repo.GetByID(context.Background(), 999)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookRepo_UpdateByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE books`).
		WithArgs("Dune", "F. Herbert", 5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "quantity", "created_at"}).
			AddRow(1, "Dune", "F. Herbert", 5, now))

	repo := NewBookRepo(db)
	book, err := repo.UpdateByID(context.Background(), 1, "Dune", "F. Herbert", 5)
	if err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	if book.Author != "F. Herbert" || book.Quantity != 5 {
		t.Errorf("unexpected book: %+v", book)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookRepo_DeleteByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM books WHERE id =`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewBookRepo(db)
	err = repo.DeleteByID(context.Background(), 42)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows for missing book, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookRepo_AdjustQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE books SET quantity = quantity`).
		WithArgs(1, -1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewBookRepo(db)
	if err := repo.AdjustQuantity(context.Background(), 1, -1); err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// A restock against a deleted book matches no rows; that is not an error.
func TestBookRepo_AdjustQuantity_MissingBook(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE books SET quantity = quantity`).
		WithArgs(7, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewBookRepo(db)
	if err := repo.AdjustQuantity(context.Background(), 7, 1); err != nil {
		t.Fatalf("AdjustQuantity on missing book should be silent, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
