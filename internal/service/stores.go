package service

import (
	"context"

	"github.com/xxxsen/mlibrary/internal/metadata"
	"github.com/xxxsen/mlibrary/internal/model"
)

type bookStore interface {
	GetByID(ctx context.Context, id string) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book, authors []model.Author) error
	Search(ctx context.Context, q string, scope model.SearchScope) ([]*model.Book, error)
	ListWithDescription(ctx context.Context, libraryID string) ([]*model.Book, error)
}

type authorStore interface {
	GetOrCreate(ctx context.Context, author *model.Author) (*model.Author, error)
}

type noteStore interface {
	Search(ctx context.Context, q string, libraryID string) ([]*model.Note, error)
	List(ctx context.Context, libraryID string) ([]*model.Note, error)
}

type reviewStore interface {
	Search(ctx context.Context, q string, libraryID string) ([]*model.Review, error)
	List(ctx context.Context, libraryID string) ([]*model.Review, error)
}

type bookFileStore interface {
	SearchText(ctx context.Context, q string, libraryID string) ([]*model.BookFile, error)
	ListWithText(ctx context.Context, libraryID string) ([]*model.BookFile, error)
}

type libraryBookStore interface {
	GetByID(ctx context.Context, id string) (*model.LibraryBook, error)
	ListByLibrary(ctx context.Context, libraryID string) ([]*model.LibraryBook, error)
}

type metadataResolver interface {
	Resolve(ctx context.Context, isbn string) metadata.LookupResult
	Enrich(ctx context.Context, isbn string, existing *model.BookRecord) *model.BookRecord
}

type embeddingCache interface {
	Enabled() bool
	ModelName() string
	GetOrCreate(ctx context.Context, owner model.OwnerRef, text string) ([]float32, error)
	Has(ctx context.Context, owner model.OwnerRef) (bool, error)
	Invalidate(ctx context.Context, owner model.OwnerRef) error
}
