package embedcache

import (
	"context"
	"errors"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/ai"
	"github.com/xxxsen/mlibrary/internal/model"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
	"github.com/xxxsen/mlibrary/internal/pkg/timeutil"
)

// Store persists cache entries. Get returns appErr.ErrNotFound on a miss and
// Create returns appErr.ErrConflict when the key already exists.
type Store interface {
	Get(ctx context.Context, owner model.OwnerRef, modelName string) (*model.EmbeddingCache, error)
	Create(ctx context.Context, item *model.EmbeddingCache) error
	Delete(ctx context.Context, owner model.OwnerRef, modelName string) error
}

// Cache memoizes embedder output per owner and model. It has no notion of
// content freshness: callers that need a new vector call Invalidate first.
type Cache struct {
	embedder ai.IEmbedder
	store    Store
}

func New(embedder ai.IEmbedder, store Store) *Cache {
	return &Cache{embedder: embedder, store: store}
}

func (c *Cache) Enabled() bool {
	return c.embedder != nil && c.embedder.IsEnabled()
}

func (c *Cache) ModelName() string {
	if c.embedder == nil {
		return ""
	}
	return c.embedder.ModelName()
}

// GetOrCreate returns the stored vector for owner, computing and storing it
// on a miss. A nil vector with a nil error means the embedder produced
// nothing; nothing is stored in that case.
func (c *Cache) GetOrCreate(ctx context.Context, owner model.OwnerRef, text string) ([]float32, error) {
	if !c.Enabled() {
		return nil, ai.ErrUnavailable
	}
	if owner.IsZero() {
		return nil, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner", owner.String()))
	modelName := c.embedder.ModelName()

	vec, state, err := c.load(ctx, owner, modelName)
	if err != nil {
		return nil, err
	}
	if state == entryValid {
		logger.Debug("embedding cache hit")
		return vec, nil
	}

	vec, err = c.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("create embedding failed", zap.Error(err))
		return nil, nil
	}
	if vec == nil || state == entryCorrupt {
		// a corrupt row stays until an explicit invalidate or purge
		return vec, nil
	}
	encoded, err := EncodeVector(vec)
	if err != nil {
		logger.Warn("encode embedding failed", zap.Error(err))
		return nil, nil
	}
	err = c.store.Create(ctx, &model.EmbeddingCache{
		OwnerKind: owner.Kind(),
		OwnerID:   owner.ID(),
		ModelName: modelName,
		Vector:    encoded,
		Ctime:     timeutil.NowUnix(),
	})
	if err == nil {
		return vec, nil
	}
	if errors.Is(err, appErr.ErrConflict) {
		// another request stored it first
		stored, st, rerr := c.load(ctx, owner, modelName)
		if rerr == nil && st == entryValid {
			return stored, nil
		}
		return vec, nil
	}
	logger.Warn("store embedding failed", zap.Error(err))
	return vec, nil
}

// Has reports whether a vector for owner is stored under the current model.
func (c *Cache) Has(ctx context.Context, owner model.OwnerRef) (bool, error) {
	_, err := c.store.Get(ctx, owner, c.ModelName())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, appErr.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (c *Cache) Invalidate(ctx context.Context, owner model.OwnerRef) error {
	return c.store.Delete(ctx, owner, c.ModelName())
}

type entryState int

const (
	entryMissing entryState = iota
	entryValid
	entryCorrupt
)

func (c *Cache) load(ctx context.Context, owner model.OwnerRef, modelName string) ([]float32, entryState, error) {
	item, err := c.store.Get(ctx, owner, modelName)
	if err != nil {
		if errors.Is(err, appErr.ErrNotFound) {
			return nil, entryMissing, nil
		}
		return nil, entryMissing, err
	}
	vec, err := DecodeVector(item.Vector)
	if err != nil {
		logutil.GetLogger(ctx).Warn("undecodable embedding treated as miss", zap.String("owner", owner.String()), zap.Error(err))
		return nil, entryCorrupt, nil
	}
	return vec, entryValid, nil
}
