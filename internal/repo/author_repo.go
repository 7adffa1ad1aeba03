package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
)

var authorColumns = []string{"id", "name", "ctime", "mtime"}

type AuthorRepo struct {
	db *sql.DB
}

func NewAuthorRepo(db *sql.DB) *AuthorRepo {
	return &AuthorRepo{db: db}
}

func (r *AuthorRepo) GetByName(ctx context.Context, name string) (*model.Author, error) {
	sqlStr, args, err := builder.BuildSelect("authors", map[string]interface{}{"name": name}, authorColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var a model.Author
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&a.ID, &a.Name, &a.Ctime, &a.Mtime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetOrCreate inserts author unless one with the same name exists and
// returns whichever row is stored.
func (r *AuthorRepo) GetOrCreate(ctx context.Context, author *model.Author) (*model.Author, error) {
	sqlStr, args := dbutil.Finalize(
		"INSERT INTO authors (id, name, ctime, mtime) VALUES (?, ?, ?, ?) ON CONFLICT (name) DO NOTHING",
		[]interface{}{author.ID, author.Name, author.Ctime, author.Mtime},
	)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, err
	}
	return r.GetByName(ctx, author.Name)
}
