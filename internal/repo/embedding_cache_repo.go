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

const embeddingTable = "search_embeddings"

type EmbeddingCacheRepo struct {
	db *sql.DB
}

func NewEmbeddingCacheRepo(db *sql.DB) *EmbeddingCacheRepo {
	return &EmbeddingCacheRepo{db: db}
}

func (r *EmbeddingCacheRepo) Get(ctx context.Context, owner model.OwnerRef, modelName string) (*model.EmbeddingCache, error) {
	where := map[string]interface{}{
		"owner_type": string(owner.Kind()),
		"owner_id":   owner.ID(),
		"model":      modelName,
	}
	sqlStr, args, err := builder.BuildSelect(embeddingTable, where, []string{"owner_type", "owner_id", "model", "vector", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var item model.EmbeddingCache
	var kind string
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&kind, &item.OwnerID, &item.ModelName, &item.Vector, &item.Ctime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	item.OwnerKind = model.OwnerKind(kind)
	return &item, nil
}

// Create is a plain insert; an existing key is reported as ErrConflict so the
// caller can re-read the winner.
func (r *EmbeddingCacheRepo) Create(ctx context.Context, item *model.EmbeddingCache) error {
	data := map[string]interface{}{
		"owner_type": string(item.OwnerKind),
		"owner_id":   item.OwnerID,
		"model":      item.ModelName,
		"vector":     item.Vector,
		"created_at": item.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert(embeddingTable, []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *EmbeddingCacheRepo) Delete(ctx context.Context, owner model.OwnerRef, modelName string) error {
	where := map[string]interface{}{
		"owner_type": string(owner.Kind()),
		"owner_id":   owner.ID(),
		"model":      modelName,
	}
	sqlStr, args, err := builder.BuildDelete(embeddingTable, where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *EmbeddingCacheRepo) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	sqlStr, args, err := builder.BuildDelete(embeddingTable, map[string]interface{}{"created_at <": cutoff})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *EmbeddingCacheRepo) CountByModel(ctx context.Context, modelName string) (int64, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(1) FROM "+embeddingTable+" WHERE model = ?", []interface{}{modelName})
	var n int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
