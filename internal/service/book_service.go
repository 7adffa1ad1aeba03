package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/metadata"
	"github.com/xxxsen/mlibrary/internal/model"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
	"github.com/xxxsen/mlibrary/internal/pkg/timeutil"
)

const defaultLanguage = "en"

type BookService struct {
	books    bookStore
	authors  authorStore
	resolver metadataResolver
}

func NewBookService(books bookStore, authors authorStore, resolver metadataResolver) *BookService {
	return &BookService{books: books, authors: authors, resolver: resolver}
}

// Lookup prefers the local catalog and only asks the external sources when
// the identifier is unknown locally.
func (s *BookService) Lookup(ctx context.Context, isbn string) (*model.BookRecord, error) {
	clean := metadata.CleanISBN(isbn)
	if clean == "" {
		return nil, appErr.ErrInvalid
	}
	book, err := s.books.GetByISBN(ctx, clean)
	if err == nil {
		return model.RecordFromBook(book), nil
	}
	if !errors.Is(err, appErr.ErrNotFound) {
		return nil, err
	}
	res := s.resolver.Resolve(ctx, clean)
	if !res.Found() {
		return nil, appErr.ErrNotFound
	}
	return res.Record, nil
}

// Ingest returns the local book for isbn, creating it from external
// metadata when needed. created reports whether a new row was written.
func (s *BookService) Ingest(ctx context.Context, isbn string) (book *model.Book, created bool, err error) {
	clean := metadata.CleanISBN(isbn)
	if clean == "" {
		return nil, false, appErr.ErrInvalid
	}
	existing, err := s.books.GetByISBN(ctx, clean)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, appErr.ErrNotFound) {
		return nil, false, err
	}
	res := s.resolver.Resolve(ctx, clean)
	if !res.Found() {
		logutil.GetLogger(ctx).Info("no metadata for isbn", zap.String("isbn", clean), zap.String("status", res.Status.String()))
		return nil, false, appErr.ErrNotFound
	}
	rec := res.Record
	authors, err := s.ensureAuthors(ctx, rec.Authors)
	if err != nil {
		return nil, false, err
	}
	now := timeutil.NowUnix()
	book = &model.Book{ID: newID(), Ctime: now, Mtime: now}
	applyRecord(book, rec)
	book.Authors = authors
	if err := s.books.Create(ctx, book); err != nil {
		if errors.Is(err, appErr.ErrConflict) {
			// concurrent ingest of the same identifier
			existing, gerr := s.books.GetByISBN(ctx, clean)
			if gerr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	logutil.GetLogger(ctx).Info("book ingested", zap.String("isbn", clean), zap.String("book_id", book.ID), zap.String("source", book.Source))
	return book, true, nil
}

// Enrich fills the empty fields of a stored book from external metadata.
// Populated fields are never touched.
func (s *BookService) Enrich(ctx context.Context, bookID string) (*model.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	isbn := book.ISBN13
	if isbn == "" {
		isbn = book.ISBN10
	}
	if isbn == "" {
		return book, nil
	}
	local := model.RecordFromBook(book)
	merged := s.resolver.Enrich(ctx, isbn, local)
	if merged == nil || reflect.DeepEqual(local, merged) {
		return book, nil
	}
	var authors []model.Author
	if len(book.Authors) == 0 && len(merged.Authors) > 0 {
		authors, err = s.ensureAuthors(ctx, merged.Authors)
		if err != nil {
			return nil, err
		}
	}
	applyRecord(book, merged)
	book.Mtime = timeutil.NowUnix()
	if err := s.books.Update(ctx, book, authors); err != nil {
		return nil, err
	}
	if authors != nil {
		book.Authors = authors
	}
	return book, nil
}

func (s *BookService) ensureAuthors(ctx context.Context, names []string) ([]model.Author, error) {
	out := make([]model.Author, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	now := timeutil.NowUnix()
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		author, err := s.authors.GetOrCreate(ctx, &model.Author{ID: newID(), Name: name, Ctime: now, Mtime: now})
		if err != nil {
			return nil, err
		}
		out = append(out, *author)
	}
	return out, nil
}

func applyRecord(b *model.Book, rec *model.BookRecord) {
	b.ISBN13 = rec.ISBN13
	b.ISBN10 = rec.ISBN10
	b.Title = rec.Title
	b.Subtitle = rec.Subtitle
	b.Description = rec.Description
	b.Publisher = rec.Publisher
	b.PublicationDate = rec.PublicationDate
	b.PageCount = rec.PageCount
	b.Language = rec.Language
	if b.Language == "" {
		b.Language = defaultLanguage
	}
	b.CoverURL = rec.CoverURL
	b.Source = rec.Source
	if b.Source == "" {
		b.Source = model.BookSourceManual
	}
}
