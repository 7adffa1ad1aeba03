package model

type SearchMode string

const (
	SearchModeExact    SearchMode = "exact"
	SearchModeSemantic SearchMode = "semantic"
)

// SearchScope narrows a search. Tag, Shelf and MinRating only apply to books
// and only when LibraryID is set.
type SearchScope struct {
	LibraryID string `json:"library_id,omitempty"`
	Author    string `json:"author,omitempty"`
	Tag       string `json:"tag,omitempty"`
	Shelf     string `json:"shelf,omitempty"`
	MinRating int    `json:"rating,omitempty"`
}

// SearchResultItem scores are only comparable within one search mode.
type SearchResultItem struct {
	ID            string    `json:"id"`
	Kind          OwnerKind `json:"type"`
	Title         string    `json:"title"`
	Score         float64   `json:"score"`
	Snippet       string    `json:"snippet"`
	URL           string    `json:"url"`
	Authors       []string  `json:"authors,omitempty"`
	LibraryBookID string    `json:"library_book_id,omitempty"`
}

type RecommendationItem struct {
	LibraryBookID string   `json:"id"`
	BookID        string   `json:"book_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Score         float64  `json:"similarity_score"`
	Reasons       []string `json:"similarity_reasons"`
	CoverURL      string   `json:"cover_url,omitempty"`
	URL           string   `json:"url"`
}
