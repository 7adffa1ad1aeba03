package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
)

var bookColumns = []string{
	"id", "primary_isbn_13", "isbn_10", "title", "subtitle", "description", "publisher",
	"publication_date", "page_count", "language", "cover_url", "source", "ctime", "mtime",
}

type BookRepo struct {
	db *sql.DB
}

func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{db: db}
}

func scanBook(row rowScanner) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(&b.ID, &b.ISBN13, &b.ISBN10, &b.Title, &b.Subtitle, &b.Description, &b.Publisher,
		&b.PublicationDate, &b.PageCount, &b.Language, &b.CoverURL, &b.Source, &b.Ctime, &b.Mtime); err != nil {
		return nil, err
	}
	b.Authors = []model.Author{}
	return &b, nil
}

func bookData(b *model.Book) map[string]interface{} {
	return map[string]interface{}{
		"id":               b.ID,
		"primary_isbn_13":  b.ISBN13,
		"isbn_10":          b.ISBN10,
		"title":            b.Title,
		"subtitle":         b.Subtitle,
		"description":      b.Description,
		"publisher":        b.Publisher,
		"publication_date": b.PublicationDate,
		"page_count":       b.PageCount,
		"language":         b.Language,
		"cover_url":        b.CoverURL,
		"source":           b.Source,
		"ctime":            b.Ctime,
		"mtime":            b.Mtime,
	}
}

// Create stores the book and links b.Authors, which must already exist.
func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	sqlStr, args, err := builder.BuildInsert("books", []map[string]interface{}{bookData(b)})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	if err := insertBookAuthors(ctx, tx, b.ID, b.Authors); err != nil {
		return err
	}
	return tx.Commit()
}

func insertBookAuthors(ctx context.Context, tx *sql.Tx, bookID string, authors []model.Author) error {
	if len(authors) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(authors))
	seen := make(map[string]struct{}, len(authors))
	for i, a := range authors {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		rows = append(rows, map[string]interface{}{
			"book_id":   bookID,
			"author_id": a.ID,
			"position":  i,
		})
	}
	sqlStr, args, err := builder.BuildInsert("book_authors", rows)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = tx.ExecContext(ctx, sqlStr, args...)
	return err
}

// Update writes the descriptive fields and, when authors is non-nil,
// replaces the author links.
func (r *BookRepo) Update(ctx context.Context, b *model.Book, authors []model.Author) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	update := bookData(b)
	delete(update, "id")
	delete(update, "ctime")
	sqlStr, args, err := builder.BuildUpdate("books", map[string]interface{}{"id": b.ID}, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := tx.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	if authors != nil {
		delStr, delArgs, err := builder.BuildDelete("book_authors", map[string]interface{}{"book_id": b.ID})
		if err != nil {
			return err
		}
		delStr, delArgs = dbutil.Finalize(delStr, delArgs)
		if _, err := tx.ExecContext(ctx, delStr, delArgs...); err != nil {
			return err
		}
		if err := insertBookAuthors(ctx, tx, b.ID, authors); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *BookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	return r.getOne(ctx, map[string]interface{}{"id": id})
}

// GetByISBN matches either identifier column.
func (r *BookRepo) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	if isbn == "" {
		return nil, appErr.ErrNotFound
	}
	return r.getOne(ctx, map[string]interface{}{
		"_custom_isbn": builder.Custom("(primary_isbn_13 = ? OR isbn_10 = ?)", isbn, isbn),
		"_limit":       []uint{0, 1},
	})
}

func (r *BookRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Book, error) {
	sqlStr, args, err := builder.BuildSelect("books", where, bookColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	b, err := scanBook(r.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachAuthors(ctx, []*model.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// Search returns books matching q in any text field or author name,
// narrowed by scope. Scoring happens in the service.
func (r *BookRepo) Search(ctx context.Context, q string, scope model.SearchScope) ([]*model.Book, error) {
	pattern := likePattern(q)
	var sb strings.Builder
	args := []interface{}{}
	sb.WriteString("SELECT DISTINCT " + prefixed("b", bookColumns) + " FROM books b")
	if scope.LibraryID != "" {
		sb.WriteString(" JOIN library_books lb ON lb.book_id = b.id")
	}
	sb.WriteString(" WHERE (b.title ILIKE ? OR b.subtitle ILIKE ? OR b.description ILIKE ? OR b.publisher ILIKE ?" +
		" OR b.primary_isbn_13 ILIKE ? OR b.isbn_10 ILIKE ?" +
		" OR EXISTS (SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id WHERE ba.book_id = b.id AND a.name ILIKE ?))")
	for i := 0; i < 7; i++ {
		args = append(args, pattern)
	}
	if scope.Author != "" {
		sb.WriteString(" AND EXISTS (SELECT 1 FROM book_authors ba2 JOIN authors a2 ON a2.id = ba2.author_id WHERE ba2.book_id = b.id AND a2.name ILIKE ?)")
		args = append(args, likePattern(scope.Author))
	}
	if scope.LibraryID != "" {
		sb.WriteString(" AND lb.library_id = ?")
		args = append(args, scope.LibraryID)
		if scope.Tag != "" {
			sb.WriteString(" AND EXISTS (SELECT 1 FROM library_book_tags lbt JOIN tags t ON t.id = lbt.tag_id WHERE lbt.library_book_id = lb.id AND t.name ILIKE ?)")
			args = append(args, likePattern(scope.Tag))
		}
		if scope.Shelf != "" {
			sb.WriteString(" AND EXISTS (SELECT 1 FROM shelf_items si JOIN shelves s ON s.id = si.shelf_id WHERE si.library_book_id = lb.id AND s.name ILIKE ?)")
			args = append(args, likePattern(scope.Shelf))
		}
		if scope.MinRating > 0 {
			sb.WriteString(" AND EXISTS (SELECT 1 FROM ratings rt WHERE rt.library_book_id = lb.id AND rt.stars >= ?)")
			args = append(args, scope.MinRating)
		}
	}
	sb.WriteString(" ORDER BY b.title")
	return r.query(ctx, sb.String(), args)
}

// ListWithDescription returns the books that have text to embed.
func (r *BookRepo) ListWithDescription(ctx context.Context, libraryID string) ([]*model.Book, error) {
	sqlStr := "SELECT " + prefixed("b", bookColumns) + " FROM books b"
	args := []interface{}{}
	if libraryID != "" {
		sqlStr += " JOIN library_books lb ON lb.book_id = b.id AND lb.library_id = ?"
		args = append(args, libraryID)
	}
	sqlStr += " WHERE b.description <> '' ORDER BY b.ctime"
	return r.query(ctx, sqlStr, args)
}

func (r *BookRepo) query(ctx context.Context, sqlStr string, args []interface{}) ([]*model.Book, error) {
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := make([]*model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachAuthors(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookRepo) attachAuthors(ctx context.Context, books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]string, 0, len(books))
	byID := make(map[string]*model.Book, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
		byID[b.ID] = b
	}
	sqlStr := fmt.Sprintf("SELECT ba.book_id, a.id, a.name, a.ctime, a.mtime FROM book_authors ba "+
		"JOIN authors a ON a.id = ba.author_id WHERE ba.book_id IN (%s) ORDER BY ba.book_id, ba.position", placeholders(len(ids)))
	sqlStr, args := dbutil.Finalize(sqlStr, toArgs(ids))
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookID string
		var a model.Author
		if err := rows.Scan(&bookID, &a.ID, &a.Name, &a.Ctime, &a.Mtime); err != nil {
			return err
		}
		if b, ok := byID[bookID]; ok {
			b.Authors = append(b.Authors, a)
		}
	}
	return rows.Err()
}
