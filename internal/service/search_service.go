package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/ai"
	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/mdtext"
)

const (
	scoreNote     = 0.8
	scoreReview   = 0.7
	scoreFileText = 0.6

	weightTitle       = 10.0
	weightTitlePrefix = 5.0
	weightISBN        = 8.0
	weightAuthor      = 7.0
	weightSubtitle    = 4.0
	weightDescription = 3.0
	weightPublisher   = 2.0

	DefaultTopK = 10
	MaxTopK     = 100
)

type SearchStatus struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

type SearchServiceConfig struct {
	Provider    string
	DefaultTopK int
}

type SearchService struct {
	books    bookStore
	notes    noteStore
	reviews  reviewStore
	files    bookFileStore
	cache    embeddingCache
	queryEmb ai.IEmbedder
	cfg      SearchServiceConfig
}

func NewSearchService(books bookStore, notes noteStore, reviews reviewStore, files bookFileStore,
	cache embeddingCache, queryEmb ai.IEmbedder, cfg SearchServiceConfig) *SearchService {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = DefaultTopK
	}
	return &SearchService{
		books:    books,
		notes:    notes,
		reviews:  reviews,
		files:    files,
		cache:    cache,
		queryEmb: queryEmb,
		cfg:      cfg,
	}
}

func (s *SearchService) Status() SearchStatus {
	st := SearchStatus{Enabled: s.cache.Enabled(), Provider: s.cfg.Provider}
	if st.Enabled {
		st.Model = s.cache.ModelName()
	}
	return st
}

// Exact runs a case-insensitive substring search over every owner kind.
// A failing kind is logged and left out of the result.
func (s *SearchService) Exact(ctx context.Context, query string, scope model.SearchScope) ([]model.SearchResultItem, error) {
	query = strings.TrimSpace(query)
	results := make([]model.SearchResultItem, 0)
	if query == "" {
		return results, nil
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", query))

	books, err := s.books.Search(ctx, query, scope)
	if err != nil {
		logger.Error("book search failed", zap.Error(err))
	}
	for _, b := range books {
		results = append(results, model.SearchResultItem{
			ID:      b.ID,
			Kind:    model.OwnerKindBook,
			Title:   b.Title,
			Score:   BookScore(b, query),
			Snippet: bookSnippet(b, query),
			URL:     ownerURL(model.OwnerKindBook, b.ID),
			Authors: b.AuthorNames(),
		})
	}

	notes, err := s.notes.Search(ctx, query, scope.LibraryID)
	if err != nil {
		logger.Error("note search failed", zap.Error(err))
	}
	for _, n := range notes {
		results = append(results, model.SearchResultItem{
			ID:            n.ID,
			Kind:          model.OwnerKindNote,
			Title:         n.Title,
			Score:         scoreNote,
			Snippet:       Snippet(mdtext.PlainText(n.ContentMarkdown), query, snippetRadius),
			URL:           ownerURL(model.OwnerKindNote, n.ID),
			LibraryBookID: n.LibraryBookID,
		})
	}

	reviews, err := s.reviews.Search(ctx, query, scope.LibraryID)
	if err != nil {
		logger.Error("review search failed", zap.Error(err))
	}
	for _, rv := range reviews {
		results = append(results, model.SearchResultItem{
			ID:            rv.ID,
			Kind:          model.OwnerKindReview,
			Title:         rv.Title,
			Score:         scoreReview,
			Snippet:       Snippet(mdtext.PlainText(rv.BodyMarkdown), query, snippetRadius),
			URL:           ownerURL(model.OwnerKindReview, rv.ID),
			LibraryBookID: rv.LibraryBookID,
		})
	}

	files, err := s.files.SearchText(ctx, query, scope.LibraryID)
	if err != nil {
		logger.Error("file text search failed", zap.Error(err))
	}
	for _, f := range files {
		results = append(results, model.SearchResultItem{
			ID:            f.ID,
			Kind:          model.OwnerKindFileText,
			Title:         fileTitle(f),
			Score:         scoreFileText,
			Snippet:       Snippet(f.ExtractedText, query, snippetRadius),
			URL:           ownerURL(model.OwnerKindFileText, f.ID),
			LibraryBookID: f.LibraryBookID,
		})
	}

	sortByScore(results)
	return results, nil
}

// BookScore adds up the weight of every field the query matches.
// Identifiers are compared case-sensitively.
func BookScore(b *model.Book, query string) float64 {
	score := 0.0
	title := lowerRunes(b.Title)
	q := lowerRunes(query)
	if indexRunes(title, q) >= 0 {
		score += weightTitle
		if indexRunes(title, q) == 0 {
			score += weightTitlePrefix
		}
	}
	if query != "" && strings.Contains(b.ISBN13, query) {
		score += weightISBN
	}
	if query != "" && strings.Contains(b.ISBN10, query) {
		score += weightISBN
	}
	for _, a := range b.Authors {
		if containsFold(a.Name, query) {
			score += weightAuthor
		}
	}
	if containsFold(b.Subtitle, query) {
		score += weightSubtitle
	}
	if containsFold(b.Description, query) {
		score += weightDescription
	}
	if containsFold(b.Publisher, query) {
		score += weightPublisher
	}
	return score
}

func bookSnippet(b *model.Book, query string) string {
	switch {
	case containsFold(b.Title, query):
		return "Title: " + b.Title
	case containsFold(b.Subtitle, query):
		return "Subtitle: " + b.Subtitle
	case containsFold(b.Description, query):
		return "Description: " + Snippet(b.Description, query, bookSnippetRadius)
	}
	for _, a := range b.Authors {
		if containsFold(a.Name, query) {
			return "By: " + strings.Join(b.AuthorNames(), ", ")
		}
	}
	return b.Title
}

type semanticCandidate struct {
	owner         model.OwnerRef
	title         string
	text          string
	authors       []string
	libraryBookID string
}

// Semantic ranks every embeddable item by cosine similarity to the query.
// It returns ai.ErrUnavailable when embeddings are switched off.
func (s *SearchService) Semantic(ctx context.Context, query string, libraryID string, topK int) ([]model.SearchResultItem, error) {
	if !s.cache.Enabled() {
		return nil, ai.ErrUnavailable
	}
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	results := make([]model.SearchResultItem, 0)
	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", query))

	queryVec, err := s.queryEmb.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			return nil, err
		}
		logger.Warn("embed query failed", zap.Error(err))
		return results, nil
	}
	if queryVec == nil {
		return results, nil
	}

	for _, c := range s.semanticCandidates(ctx, libraryID) {
		vec, err := s.cache.GetOrCreate(ctx, c.owner, c.text)
		if err != nil {
			logger.Warn("load item embedding failed", zap.String("owner", c.owner.String()), zap.Error(err))
			continue
		}
		if vec == nil {
			continue
		}
		results = append(results, model.SearchResultItem{
			ID:            c.owner.ID(),
			Kind:          c.owner.Kind(),
			Title:         c.title,
			Score:         roundTo(ai.CosineSimilarity(queryVec, vec), 3),
			Snippet:       Snippet(c.text, query, snippetRadius),
			URL:           ownerURL(c.owner.Kind(), c.owner.ID()),
			Authors:       c.authors,
			LibraryBookID: c.libraryBookID,
		})
	}
	sortByScore(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// EmbedAndCache returns the cached vector for owner, computing it from text
// on a miss. force drops any stored vector first.
func (s *SearchService) EmbedAndCache(ctx context.Context, owner model.OwnerRef, text string, force bool) ([]float32, error) {
	if !s.cache.Enabled() {
		return nil, ai.ErrUnavailable
	}
	if force {
		if err := s.cache.Invalidate(ctx, owner); err != nil {
			return nil, err
		}
	}
	return s.cache.GetOrCreate(ctx, owner, text)
}

func (s *SearchService) semanticCandidates(ctx context.Context, libraryID string) []semanticCandidate {
	out := make([]semanticCandidate, 0)
	for _, kind := range model.OwnerKinds() {
		items, err := s.candidates(ctx, kind, libraryID)
		if err != nil {
			logutil.GetLogger(ctx).Error("list embedding candidates failed", zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		out = append(out, items...)
	}
	return out
}

// candidates lists the items of one kind that carry text worth embedding.
func (s *SearchService) candidates(ctx context.Context, kind model.OwnerKind, libraryID string) ([]semanticCandidate, error) {
	out := make([]semanticCandidate, 0)
	switch kind {
	case model.OwnerKindBook:
		books, err := s.books.ListWithDescription(ctx, libraryID)
		if err != nil {
			return nil, err
		}
		for _, b := range books {
			out = append(out, semanticCandidate{owner: model.BookOwner(b.ID), title: b.Title, text: b.Description, authors: b.AuthorNames()})
		}
	case model.OwnerKindNote:
		notes, err := s.notes.List(ctx, libraryID)
		if err != nil {
			return nil, err
		}
		for _, n := range notes {
			text := mdtext.PlainText(n.ContentMarkdown)
			if text == "" {
				continue
			}
			out = append(out, semanticCandidate{owner: model.NoteOwner(n.ID), title: n.Title, text: text, libraryBookID: n.LibraryBookID})
		}
	case model.OwnerKindReview:
		reviews, err := s.reviews.List(ctx, libraryID)
		if err != nil {
			return nil, err
		}
		for _, rv := range reviews {
			text := mdtext.PlainText(rv.BodyMarkdown)
			if text == "" {
				continue
			}
			out = append(out, semanticCandidate{owner: model.ReviewOwner(rv.ID), title: rv.Title, text: text, libraryBookID: rv.LibraryBookID})
		}
	case model.OwnerKindFileText:
		files, err := s.files.ListWithText(ctx, libraryID)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			out = append(out, semanticCandidate{owner: model.FileTextOwner(f.ID), title: fileTitle(f), text: f.ExtractedText, libraryBookID: f.LibraryBookID})
		}
	}
	return out, nil
}

func fileTitle(f *model.BookFile) string {
	return f.BookTitle + " - " + strings.ToUpper(f.FileType)
}

func ownerURL(kind model.OwnerKind, id string) string {
	switch kind {
	case model.OwnerKindBook:
		return "/api/v1/books/" + id
	case model.OwnerKindNote:
		return "/api/v1/notes/" + id
	case model.OwnerKindReview:
		return "/api/v1/reviews/" + id
	case model.OwnerKindFileText:
		return "/api/v1/files/" + id
	}
	return ""
}

// sortByScore keeps equal scores in the order they were collected.
func sortByScore(items []model.SearchResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
