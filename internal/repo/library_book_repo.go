package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
)

const libraryBookSelect = "SELECT lb.id, lb.library_id, lb.book_id, lb.custom_title, lb.added_at FROM library_books lb"

type LibraryBookRepo struct {
	db    *sql.DB
	books *BookRepo
}

func NewLibraryBookRepo(db *sql.DB) *LibraryBookRepo {
	return &LibraryBookRepo{db: db, books: NewBookRepo(db)}
}

func (r *LibraryBookRepo) GetByID(ctx context.Context, id string) (*model.LibraryBook, error) {
	sqlStr, args := dbutil.Finalize(libraryBookSelect+" WHERE lb.id = ?", []interface{}{id})
	var lb model.LibraryBook
	err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&lb.ID, &lb.LibraryID, &lb.BookID, &lb.CustomTitle, &lb.AddedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	book, err := r.books.GetByID(ctx, lb.BookID)
	if err != nil {
		return nil, err
	}
	lb.Book = book
	return &lb, nil
}

// ListByLibrary returns every entry of the library with its book loaded.
func (r *LibraryBookRepo) ListByLibrary(ctx context.Context, libraryID string) ([]*model.LibraryBook, error) {
	sqlStr, args := dbutil.Finalize(libraryBookSelect+" WHERE lb.library_id = ? ORDER BY lb.added_at", []interface{}{libraryID})
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]*model.LibraryBook, 0)
	bookIDs := make([]string, 0)
	for rows.Next() {
		var lb model.LibraryBook
		if err := rows.Scan(&lb.ID, &lb.LibraryID, &lb.BookID, &lb.CustomTitle, &lb.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, &lb)
		bookIDs = append(bookIDs, lb.BookID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookIDs) == 0 {
		return items, nil
	}
	books, err := r.books.query(ctx, "SELECT "+prefixed("b", bookColumns)+" FROM books b WHERE b.id IN ("+placeholders(len(bookIDs))+")", toArgs(bookIDs))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	for _, lb := range items {
		lb.Book = byID[lb.BookID]
	}
	return items, nil
}
