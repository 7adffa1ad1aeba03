package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/service"
)

type embeddingBackfiller interface {
	Backfill(ctx context.Context, kinds []model.OwnerKind, force bool) (*service.BackfillReport, error)
}

// EmbeddingBackfillJob fills missing embeddings for every owner kind. It
// never forces a refresh, so existing vectors are kept.
type EmbeddingBackfillJob struct {
	search embeddingBackfiller
}

func NewEmbeddingBackfillJob(search embeddingBackfiller) *EmbeddingBackfillJob {
	return &EmbeddingBackfillJob{search: search}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	report, err := j.search.Backfill(ctx, model.OwnerKinds(), false)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("embedding backfill done",
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return nil
}
