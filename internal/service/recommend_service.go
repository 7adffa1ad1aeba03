package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/model"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
)

const (
	DefaultRecommendLimit = 5

	pointsPerAuthor   = 10.0
	pointsPublisher   = 3.0
	pointsLanguage    = 2.0
	pointsNearbyYear  = 2.0
	nearbyYearsWindow = 5
)

type RecommendService struct {
	libraryBooks libraryBookStore
	defaultLimit int
}

func NewRecommendService(libraryBooks libraryBookStore, defaultLimit int) *RecommendService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultRecommendLimit
	}
	return &RecommendService{libraryBooks: libraryBooks, defaultLimit: defaultLimit}
}

// ForLibraryBook recommends other entries of the anchor's library.
func (s *RecommendService) ForLibraryBook(ctx context.Context, libraryBookID string, limit int) ([]model.RecommendationItem, error) {
	libraryBookID = strings.TrimSpace(libraryBookID)
	if libraryBookID == "" {
		return nil, appErr.ErrInvalid
	}
	anchor, err := s.libraryBooks.GetByID(ctx, libraryBookID)
	if err != nil {
		return nil, err
	}
	if anchor.Book == nil {
		return nil, fmt.Errorf("library book %s has no book: %w", libraryBookID, appErr.ErrNotFound)
	}
	pool, err := s.libraryBooks.ListByLibrary(ctx, anchor.LibraryID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	items := Recommend(anchor, pool, limit)
	logutil.GetLogger(ctx).Debug("recommendations computed",
		zap.String("library_book_id", libraryBookID),
		zap.Int("pool", len(pool)),
		zap.Int("count", len(items)))
	return items, nil
}

type scoredEntry struct {
	entry *model.LibraryBook
	score float64
}

// Recommend scores every pool entry against anchor. The anchor itself and
// entries without any shared factor are left out.
func Recommend(anchor *model.LibraryBook, pool []*model.LibraryBook, limit int) []model.RecommendationItem {
	scored := make([]scoredEntry, 0, len(pool))
	for _, lb := range pool {
		if lb == nil || lb.Book == nil || lb.ID == anchor.ID {
			continue
		}
		score := ScoreSimilarity(anchor.Book, lb.Book)
		if score <= 0 {
			continue
		}
		scored = append(scored, scoredEntry{entry: lb, score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	items := make([]model.RecommendationItem, 0, len(scored))
	for _, se := range scored {
		b := se.entry.Book
		items = append(items, model.RecommendationItem{
			LibraryBookID: se.entry.ID,
			BookID:        b.ID,
			Title:         b.Title,
			Authors:       b.AuthorNames(),
			Score:         roundTo(se.score, 2),
			Reasons:       SimilarityReasons(anchor.Book, b),
			CoverURL:      b.CoverURL,
			URL:           "/api/v1/library-books/" + se.entry.ID,
		})
	}
	return items
}

func ScoreSimilarity(a, b *model.Book) float64 {
	score := float64(len(sharedAuthors(a, b))) * pointsPerAuthor
	if sameFold(a.Publisher, b.Publisher) {
		score += pointsPublisher
	}
	if sameFold(a.Language, b.Language) {
		score += pointsLanguage
	}
	if _, _, ok := nearbyYears(a, b); ok {
		score += pointsNearbyYear
	}
	return score
}

// SimilarityReasons describes each factor that matched. It does not look at
// the score, so one reason may stand for several points.
func SimilarityReasons(a, b *model.Book) []string {
	reasons := make([]string, 0, 4)
	if shared := sharedAuthors(a, b); len(shared) > 0 {
		reasons = append(reasons, "Same author: "+strings.Join(shared, ", "))
	}
	if sameFold(a.Publisher, b.Publisher) {
		reasons = append(reasons, "Same publisher: "+a.Publisher)
	}
	if sameFold(a.Language, b.Language) {
		reasons = append(reasons, "Same language: "+a.Language)
	}
	if y1, y2, ok := nearbyYears(a, b); ok {
		reasons = append(reasons, fmt.Sprintf("Similar publication year: %d vs %d", y1, y2))
	}
	return reasons
}

// sharedAuthors returns the anchor's spelling of every author both books
// list, compared case-insensitively, in the anchor's order.
func sharedAuthors(a, b *model.Book) []string {
	other := make(map[string]struct{}, len(b.Authors))
	for _, au := range b.Authors {
		if key := authorKey(au.Name); key != "" {
			other[key] = struct{}{}
		}
	}
	seen := make(map[string]struct{}, len(a.Authors))
	out := make([]string, 0)
	for _, au := range a.Authors {
		key := authorKey(au.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := other[key]; ok {
			out = append(out, strings.TrimSpace(au.Name))
		}
	}
	return out
}

func authorKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sameFold(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

func nearbyYears(a, b *model.Book) (int, int, bool) {
	y1, ok1 := a.PublicationYear()
	y2, ok2 := b.PublicationYear()
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	diff := y1 - y2
	if diff < 0 {
		diff = -diff
	}
	return y1, y2, diff <= nearbyYearsWindow
}
