package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/service"
)

type recordingBackfiller struct {
	kinds []model.OwnerKind
	force bool
	err   error
}

func (r *recordingBackfiller) Backfill(ctx context.Context, kinds []model.OwnerKind, force bool) (*service.BackfillReport, error) {
	r.kinds = kinds
	r.force = force
	if r.err != nil {
		return nil, r.err
	}
	return &service.BackfillReport{Created: 2}, nil
}

func TestEmbeddingBackfillJobRun(t *testing.T) {
	b := &recordingBackfiller{force: true}
	j := NewEmbeddingBackfillJob(b)
	require.Equal(t, "embedding_backfill", j.Name())
	require.NoError(t, j.Run(context.Background()))
	require.False(t, b.force)
	require.Equal(t, model.OwnerKinds(), b.kinds)

	b.err = errors.New("ai down")
	require.Error(t, j.Run(context.Background()))
}
