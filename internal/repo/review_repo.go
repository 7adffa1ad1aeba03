package repo

import (
	"context"
	"database/sql"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/dbutil"
)

const reviewSelect = "SELECT rv.id, rv.library_book_id, lb.library_id, rv.title, rv.body_markdown, rv.ctime, rv.mtime " +
	"FROM reviews rv JOIN library_books lb ON lb.id = rv.library_book_id"

type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func (r *ReviewRepo) Search(ctx context.Context, q string, libraryID string) ([]*model.Review, error) {
	pattern := likePattern(q)
	sqlStr := reviewSelect + " WHERE (rv.title ILIKE ? OR rv.body_markdown ILIKE ?)"
	args := []interface{}{pattern, pattern}
	if libraryID != "" {
		sqlStr += " AND lb.library_id = ?"
		args = append(args, libraryID)
	}
	return r.query(ctx, sqlStr+" ORDER BY rv.mtime DESC", args)
}

func (r *ReviewRepo) List(ctx context.Context, libraryID string) ([]*model.Review, error) {
	sqlStr := reviewSelect + " WHERE rv.body_markdown <> ''"
	args := []interface{}{}
	if libraryID != "" {
		sqlStr += " AND lb.library_id = ?"
		args = append(args, libraryID)
	}
	return r.query(ctx, sqlStr+" ORDER BY rv.ctime", args)
}

func (r *ReviewRepo) query(ctx context.Context, sqlStr string, args []interface{}) ([]*model.Review, error) {
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := make([]*model.Review, 0)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.LibraryBookID, &rv.LibraryID, &rv.Title, &rv.BodyMarkdown, &rv.Ctime, &rv.Mtime); err != nil {
			return nil, err
		}
		reviews = append(reviews, &rv)
	}
	return reviews, rows.Err()
}
