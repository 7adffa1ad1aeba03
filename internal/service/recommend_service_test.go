package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mlibrary/internal/model"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
)

func entry(id, libraryID string, b *model.Book) *model.LibraryBook {
	return &model.LibraryBook{ID: id, LibraryID: libraryID, BookID: b.ID, Book: b}
}

func TestScoreSingleSharedAuthor(t *testing.T) {
	a := &model.Book{Authors: []model.Author{{Name: "Ursula K. Le Guin"}}, Language: "en"}
	b := &model.Book{Authors: []model.Author{{Name: "ursula k. le guin"}}, Language: "fr"}
	assert.Equal(t, 10.0, ScoreSimilarity(a, b))
	assert.Equal(t, []string{"Same author: Ursula K. Le Guin"}, SimilarityReasons(a, b))

	c := &model.Book{Authors: []model.Author{{Name: "Someone"}}}
	assert.Equal(t, 0.0, ScoreSimilarity(a, c))
	assert.Empty(t, SimilarityReasons(a, c))
}

func TestScoreAllFactors(t *testing.T) {
	a := &model.Book{
		Authors:         []model.Author{{Name: "A"}, {Name: "B"}},
		Publisher:       "Ace",
		Language:        "EN",
		PublicationDate: "1965-08-01",
	}
	b := &model.Book{
		Authors:         []model.Author{{Name: "b"}, {Name: "a"}},
		Publisher:       "ace",
		Language:        "en",
		PublicationDate: "1970-01-01",
	}
	assert.Equal(t, 27.0, ScoreSimilarity(a, b))
	assert.Equal(t, []string{
		"Same author: A, B",
		"Same publisher: Ace",
		"Same language: EN",
		"Similar publication year: 1965 vs 1970",
	}, SimilarityReasons(a, b))

	b.PublicationDate = "1971-01-01"
	assert.Equal(t, 25.0, ScoreSimilarity(a, b))
}

func TestRecommendOrdersAndExcludes(t *testing.T) {
	anchorBook := &model.Book{ID: "b0", Authors: []model.Author{{Name: "X"}}, Language: "en"}
	anchor := entry("lb0", "lib", anchorBook)
	pool := []*model.LibraryBook{
		anchor,
		entry("lb1", "lib", &model.Book{ID: "b1", Title: "Same lang", Language: "en"}),
		entry("lb2", "lib", &model.Book{ID: "b2", Title: "Nothing"}),
		entry("lb3", "lib", &model.Book{ID: "b3", Title: "Same author", Authors: []model.Author{{Name: "x"}}, CoverURL: "https://c"}),
		entry("lb4", "lib", &model.Book{ID: "b4", Title: "Also lang", Language: "EN"}),
	}

	items := Recommend(anchor, pool, 5)
	require.Len(t, items, 3)
	assert.Equal(t, "lb3", items[0].LibraryBookID)
	assert.Equal(t, "b3", items[0].BookID)
	assert.Equal(t, 10.0, items[0].Score)
	assert.Equal(t, "https://c", items[0].CoverURL)
	assert.Equal(t, "/api/v1/library-books/lb3", items[0].URL)
	assert.Equal(t, "lb1", items[1].LibraryBookID)
	assert.Equal(t, "lb4", items[2].LibraryBookID)

	assert.Len(t, Recommend(anchor, pool, 1), 1)
}

func TestForLibraryBook(t *testing.T) {
	anchorBook := &model.Book{ID: "b0", Publisher: "Ace"}
	store := &fakeLibraryBookStore{entries: []*model.LibraryBook{
		entry("lb0", "lib", anchorBook),
		entry("lb1", "lib", &model.Book{ID: "b1", Publisher: "Ace"}),
		entry("lb2", "other", &model.Book{ID: "b2", Publisher: "Ace"}),
	}}
	svc := NewRecommendService(store, 0)

	items, err := svc.ForLibraryBook(context.Background(), "lb0", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "lb1", items[0].LibraryBookID)
	assert.Equal(t, []string{"Same publisher: Ace"}, items[0].Reasons)

	_, err = svc.ForLibraryBook(context.Background(), "missing", 0)
	assert.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = svc.ForLibraryBook(context.Background(), " ", 0)
	assert.ErrorIs(t, err, appErr.ErrInvalid)
}
