package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mlibrary/internal/model"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
	"github.com/xxxsen/mlibrary/internal/testutil"
)

func TestEmbeddingCacheRepoPostgres(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()
	r := NewEmbeddingCacheRepo(conn)
	owner := model.BookOwner(uuid.NewString())

	_, err := r.Get(ctx, owner, "test:model")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	item := &model.EmbeddingCache{
		OwnerKind: owner.Kind(),
		OwnerID:   owner.ID(),
		ModelName: "test:model",
		Vector:    []byte{0, 1, 0, 0, 0x3f, 0x80, 0, 0},
		Ctime:     time.Now().Unix(),
	}
	require.NoError(t, r.Create(ctx, item))
	require.ErrorIs(t, r.Create(ctx, item), appErr.ErrConflict)
	n, err := r.CountByModel(ctx, "test:model")
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, int64(1))

	got, err := r.Get(ctx, owner, "test:model")
	require.NoError(t, err)
	require.Equal(t, item.Vector, got.Vector)
	require.Equal(t, model.OwnerKindBook, got.OwnerKind)

	require.NoError(t, r.Delete(ctx, owner, "test:model"))
	_, err = r.Get(ctx, owner, "test:model")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestBookRepoPostgres(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()
	authors := NewAuthorRepo(conn)
	books := NewBookRepo(conn)
	now := time.Now().Unix()

	author, err := authors.GetOrCreate(ctx, &model.Author{ID: uuid.NewString(), Name: "Author " + uuid.NewString(), Ctime: now, Mtime: now})
	require.NoError(t, err)
	again, err := authors.GetOrCreate(ctx, &model.Author{ID: uuid.NewString(), Name: author.Name, Ctime: now, Mtime: now})
	require.NoError(t, err)
	require.Equal(t, author.ID, again.ID)

	isbn := "979" + uuid.NewString()[:10]
	book := &model.Book{
		ID:       uuid.NewString(),
		ISBN13:   isbn,
		Title:    "Introduction to Go " + isbn,
		Language: "en",
		Source:   model.BookSourceManual,
		Authors:  []model.Author{*author},
		Ctime:    now,
		Mtime:    now,
	}
	require.NoError(t, books.Create(ctx, book))

	got, err := books.GetByISBN(ctx, isbn)
	require.NoError(t, err)
	require.Equal(t, book.ID, got.ID)
	require.Len(t, got.Authors, 1)
	require.Equal(t, author.Name, got.Authors[0].Name)

	found, err := books.Search(ctx, isbn, model.SearchScope{})
	require.NoError(t, err)
	require.Len(t, found, 1)

	got.Description = "A tour of the language"
	require.NoError(t, books.Update(ctx, got, nil))
	withDesc, err := books.ListWithDescription(ctx, "")
	require.NoError(t, err)
	var seen bool
	for _, b := range withDesc {
		if b.ID == book.ID {
			seen = true
		}
	}
	require.True(t, seen)

	other := &model.Book{
		ID:       uuid.NewString(),
		ISBN10:   uuid.NewString()[:10],
		Title:    "Another " + isbn,
		Language: "en",
		Source:   model.BookSourceManual,
		Ctime:    now,
		Mtime:    now,
	}
	require.NoError(t, books.Create(ctx, other))
	other.ISBN13 = isbn
	require.ErrorIs(t, books.Update(ctx, other, nil), appErr.ErrConflict)
}
