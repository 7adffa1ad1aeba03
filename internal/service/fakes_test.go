package service

import (
	"context"
	"errors"
	"strings"

	"github.com/xxxsen/mlibrary/internal/metadata"
	"github.com/xxxsen/mlibrary/internal/model"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
)

type fakeBookStore struct {
	books     map[string]*model.Book
	createErr error
	updateErr error
	searchErr error
	updates   int
}

func newFakeBookStore(books ...*model.Book) *fakeBookStore {
	s := &fakeBookStore{books: make(map[string]*model.Book)}
	for _, b := range books {
		s.books[b.ID] = b
	}
	return s
}

func (s *fakeBookStore) GetByID(ctx context.Context, id string) (*model.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *fakeBookStore) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	for _, b := range s.books {
		if b.ISBN13 == isbn || b.ISBN10 == isbn {
			clone := *b
			return &clone, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *fakeBookStore) Create(ctx context.Context, b *model.Book) error {
	if s.createErr != nil {
		return s.createErr
	}
	clone := *b
	s.books[b.ID] = &clone
	return nil
}

func (s *fakeBookStore) Update(ctx context.Context, b *model.Book, authors []model.Author) error {
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	clone := *b
	if authors != nil {
		clone.Authors = authors
	}
	s.books[b.ID] = &clone
	return nil
}

func (s *fakeBookStore) Search(ctx context.Context, q string, scope model.SearchScope) ([]*model.Book, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	out := make([]*model.Book, 0)
	for _, b := range s.books {
		if BookScore(b, q) > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookStore) ListWithDescription(ctx context.Context, libraryID string) ([]*model.Book, error) {
	out := make([]*model.Book, 0)
	for _, b := range s.books {
		if b.Description != "" {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeAuthorStore struct {
	byName map[string]*model.Author
}

func (s *fakeAuthorStore) GetOrCreate(ctx context.Context, author *model.Author) (*model.Author, error) {
	if s.byName == nil {
		s.byName = make(map[string]*model.Author)
	}
	if a, ok := s.byName[author.Name]; ok {
		return a, nil
	}
	s.byName[author.Name] = author
	return author, nil
}

type fakeNoteStore struct{ notes []*model.Note }

func (s *fakeNoteStore) Search(ctx context.Context, q string, libraryID string) ([]*model.Note, error) {
	out := make([]*model.Note, 0)
	for _, n := range s.notes {
		if containsFold(n.Title, q) || containsFold(n.ContentMarkdown, q) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeNoteStore) List(ctx context.Context, libraryID string) ([]*model.Note, error) {
	return s.notes, nil
}

type fakeReviewStore struct{ err error }

func (s *fakeReviewStore) Search(ctx context.Context, q string, libraryID string) ([]*model.Review, error) {
	return nil, s.err
}

func (s *fakeReviewStore) List(ctx context.Context, libraryID string) ([]*model.Review, error) {
	return nil, s.err
}

type fakeFileStore struct{ files []*model.BookFile }

func (s *fakeFileStore) SearchText(ctx context.Context, q string, libraryID string) ([]*model.BookFile, error) {
	out := make([]*model.BookFile, 0)
	for _, f := range s.files {
		if containsFold(f.ExtractedText, q) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeFileStore) ListWithText(ctx context.Context, libraryID string) ([]*model.BookFile, error) {
	return s.files, nil
}

type fakeResolver struct {
	result metadata.LookupResult
	calls  int
}

func (r *fakeResolver) Resolve(ctx context.Context, isbn string) metadata.LookupResult {
	r.calls++
	return r.result
}

func (r *fakeResolver) Enrich(ctx context.Context, isbn string, existing *model.BookRecord) *model.BookRecord {
	r.calls++
	if !r.result.Found() {
		return existing
	}
	return metadata.MergeRecord(existing, r.result.Record)
}

// fakeCache embeds text with the local bag-of-words model and remembers
// what it produced.
type fakeCache struct {
	enabled bool
	stored  map[string][]float32
	fail    map[string]bool
	creates int
}

func newFakeCache() *fakeCache {
	return &fakeCache{enabled: true, stored: make(map[string][]float32), fail: make(map[string]bool)}
}

func (c *fakeCache) Enabled() bool     { return c.enabled }
func (c *fakeCache) ModelName() string { return "local:bow" }

func (c *fakeCache) GetOrCreate(ctx context.Context, owner model.OwnerRef, text string) ([]float32, error) {
	if c.fail[owner.String()] {
		return nil, errors.New("embed failed")
	}
	if v, ok := c.stored[owner.String()]; ok {
		return v, nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	c.creates++
	v := fakeVector(text)
	c.stored[owner.String()] = v
	return v, nil
}

func (c *fakeCache) Has(ctx context.Context, owner model.OwnerRef) (bool, error) {
	_, ok := c.stored[owner.String()]
	return ok, nil
}

func (c *fakeCache) Invalidate(ctx context.Context, owner model.OwnerRef) error {
	delete(c.stored, owner.String())
	return nil
}

// fakeVector counts a fixed vocabulary so that vectors of different texts
// share axes.
func fakeVector(text string) []float32 {
	vocab := []string{"go", "rust", "dune", "spice", "desert", "compiler"}
	out := make([]float32, len(vocab))
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?")
		for i, v := range vocab {
			if v == w {
				out[i]++
			}
		}
	}
	return out
}

type fakeQueryEmbedder struct {
	err error
}

func (e *fakeQueryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return fakeVector(text), nil
}

func (e *fakeQueryEmbedder) ModelName() string { return "local:bow" }
func (e *fakeQueryEmbedder) IsEnabled() bool   { return true }

type fakeLibraryBookStore struct {
	entries []*model.LibraryBook
}

func (s *fakeLibraryBookStore) GetByID(ctx context.Context, id string) (*model.LibraryBook, error) {
	for _, lb := range s.entries {
		if lb.ID == id {
			return lb, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *fakeLibraryBookStore) ListByLibrary(ctx context.Context, libraryID string) ([]*model.LibraryBook, error) {
	out := make([]*model.LibraryBook, 0)
	for _, lb := range s.entries {
		if lb.LibraryID == libraryID {
			out = append(out, lb)
		}
	}
	return out, nil
}

type fakePurgeStore struct {
	cutoff int64
}

func (s *fakePurgeStore) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	s.cutoff = cutoff
	return 3, nil
}
