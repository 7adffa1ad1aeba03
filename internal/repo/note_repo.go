package repo

import (
	"context"
	"database/sql"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/dbutil"
)

const noteSelect = "SELECT n.id, n.library_book_id, lb.library_id, n.title, n.content_markdown, n.ctime, n.mtime " +
	"FROM notes n JOIN library_books lb ON lb.id = n.library_book_id"

type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

func (r *NoteRepo) Search(ctx context.Context, q string, libraryID string) ([]*model.Note, error) {
	pattern := likePattern(q)
	sqlStr := noteSelect + " WHERE (n.title ILIKE ? OR n.content_markdown ILIKE ?)"
	args := []interface{}{pattern, pattern}
	if libraryID != "" {
		sqlStr += " AND lb.library_id = ?"
		args = append(args, libraryID)
	}
	return r.query(ctx, sqlStr+" ORDER BY n.mtime DESC", args)
}

// List returns notes with content, optionally limited to one library.
func (r *NoteRepo) List(ctx context.Context, libraryID string) ([]*model.Note, error) {
	sqlStr := noteSelect + " WHERE n.content_markdown <> ''"
	args := []interface{}{}
	if libraryID != "" {
		sqlStr += " AND lb.library_id = ?"
		args = append(args, libraryID)
	}
	return r.query(ctx, sqlStr+" ORDER BY n.ctime", args)
}

func (r *NoteRepo) query(ctx context.Context, sqlStr string, args []interface{}) ([]*model.Note, error) {
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notes := make([]*model.Note, 0)
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.LibraryBookID, &n.LibraryID, &n.Title, &n.ContentMarkdown, &n.Ctime, &n.Mtime); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
