package repo

import (
	"context"
	"database/sql"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/dbutil"
)

const bookFileSelect = "SELECT f.id, f.library_book_id, lb.library_id, COALESCE(NULLIF(lb.custom_title, ''), b.title), " +
	"f.file_type, f.file_path, f.text_extracted, f.extracted_text, f.ctime " +
	"FROM book_files f JOIN library_books lb ON lb.id = f.library_book_id JOIN books b ON b.id = lb.book_id"

type BookFileRepo struct {
	db *sql.DB
}

func NewBookFileRepo(db *sql.DB) *BookFileRepo {
	return &BookFileRepo{db: db}
}

// SearchText matches only files whose text has been extracted.
func (r *BookFileRepo) SearchText(ctx context.Context, q string, libraryID string) ([]*model.BookFile, error) {
	sqlStr := bookFileSelect + " WHERE f.text_extracted AND f.extracted_text ILIKE ?"
	args := []interface{}{likePattern(q)}
	if libraryID != "" {
		sqlStr += " AND lb.library_id = ?"
		args = append(args, libraryID)
	}
	return r.query(ctx, sqlStr+" ORDER BY f.ctime DESC", args)
}

func (r *BookFileRepo) ListWithText(ctx context.Context, libraryID string) ([]*model.BookFile, error) {
	sqlStr := bookFileSelect + " WHERE f.text_extracted AND f.extracted_text <> ''"
	args := []interface{}{}
	if libraryID != "" {
		sqlStr += " AND lb.library_id = ?"
		args = append(args, libraryID)
	}
	return r.query(ctx, sqlStr+" ORDER BY f.ctime", args)
}

func (r *BookFileRepo) query(ctx context.Context, sqlStr string, args []interface{}) ([]*model.BookFile, error) {
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	files := make([]*model.BookFile, 0)
	for rows.Next() {
		var f model.BookFile
		if err := rows.Scan(&f.ID, &f.LibraryBookID, &f.LibraryID, &f.BookTitle, &f.FileType, &f.FilePath,
			&f.TextExtracted, &f.ExtractedText, &f.Ctime); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}
