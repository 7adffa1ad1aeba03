package service

import (
	"context"
	"errors"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/ai"
	"github.com/xxxsen/mlibrary/internal/model"
)

type BackfillReport struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Backfill makes sure every embeddable item of the given kinds has a cached
// vector for the current model. force drops the stored vector before
// recomputing it. Items that already have a vector count as skipped.
func (s *SearchService) Backfill(ctx context.Context, kinds []model.OwnerKind, force bool) (*BackfillReport, error) {
	if !s.cache.Enabled() {
		return nil, ai.ErrUnavailable
	}
	if len(kinds) == 0 {
		kinds = model.OwnerKinds()
	}
	report := &BackfillReport{}
	for _, kind := range kinds {
		items, err := s.candidates(ctx, kind, "")
		if err != nil {
			return report, err
		}
		for _, c := range items {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			s.backfillOne(ctx, c, force, report)
		}
		logutil.GetLogger(ctx).Info("embedding backfill kind finished",
			zap.String("kind", string(kind)),
			zap.Int("items", len(items)),
			zap.Int("created", report.Created),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
	}
	return report, nil
}

func (s *SearchService) backfillOne(ctx context.Context, c semanticCandidate, force bool, report *BackfillReport) {
	logger := logutil.GetLogger(ctx).With(zap.String("owner", c.owner.String()))
	if force {
		if err := s.cache.Invalidate(ctx, c.owner); err != nil {
			logger.Error("invalidate embedding failed", zap.Error(err))
			report.Failed++
			return
		}
	} else if cached, err := s.cache.Has(ctx, c.owner); err == nil && cached {
		report.Skipped++
		return
	}
	vec, err := s.cache.GetOrCreate(ctx, c.owner, c.text)
	if err != nil || vec == nil {
		if err != nil {
			logger.Error("backfill embedding failed", zap.Error(err))
		}
		report.Failed++
		return
	}
	report.Created++
}

type embeddingPurgeStore interface {
	DeleteBefore(ctx context.Context, cutoff int64) (int64, error)
}

// PurgeEmbeddings removes cache entries created before cutoff. It is the
// only path besides a forced backfill that deletes cached vectors.
func PurgeEmbeddings(ctx context.Context, store embeddingPurgeStore, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, errors.New("purge cutoff is required")
	}
	n, err := store.DeleteBefore(ctx, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	logutil.GetLogger(ctx).Info("purged embedding cache", zap.Time("before", cutoff), zap.Int64("deleted", n))
	return n, nil
}
