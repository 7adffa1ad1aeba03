package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/response"
	"github.com/xxxsen/mlibrary/internal/service"
)

type SearchHandler struct {
	search    *service.SearchService
	recommend *service.RecommendService
}

func NewSearchHandler(search *service.SearchService, recommend *service.RecommendService) *SearchHandler {
	return &SearchHandler{search: search, recommend: recommend}
}

type searchResponse struct {
	Query   string                   `json:"query"`
	Mode    model.SearchMode         `json:"search_type"`
	Results []model.SearchResultItem `json:"results"`
	Total   int                      `json:"total"`
}

func (h *SearchHandler) Basic(c *gin.Context) {
	rating, ok := queryInt(c, "rating")
	if !ok {
		badRequest(c, "invalid rating")
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	scope := model.SearchScope{
		LibraryID: strings.TrimSpace(c.Query("library_id")),
		Author:    strings.TrimSpace(c.Query("author")),
		Tag:       strings.TrimSpace(c.Query("tag")),
		Shelf:     strings.TrimSpace(c.Query("shelf")),
		MinRating: rating,
	}
	results, err := h.search.Exact(c.Request.Context(), query, scope)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, searchResponse{Query: query, Mode: model.SearchModeExact, Results: results, Total: len(results)})
}

type semanticRequest struct {
	Query     string `json:"query"`
	LibraryID string `json:"library_id"`
	TopK      int    `json:"top_k"`
}

func (h *SearchHandler) Semantic(c *gin.Context) {
	var req semanticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		badRequest(c, "query required")
		return
	}
	if req.TopK < 0 || req.TopK > service.MaxTopK {
		badRequest(c, "top_k must be between 1 and 100")
		return
	}
	results, err := h.search.Semantic(c.Request.Context(), req.Query, strings.TrimSpace(req.LibraryID), req.TopK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, searchResponse{Query: req.Query, Mode: model.SearchModeSemantic, Results: results, Total: len(results)})
}

func (h *SearchHandler) Status(c *gin.Context) {
	response.Success(c, h.search.Status())
}

func (h *SearchHandler) Recommendations(c *gin.Context) {
	id := strings.TrimSpace(c.Query("library_book_id"))
	if id == "" {
		badRequest(c, "library_book_id is required")
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok || limit < 0 {
		badRequest(c, "invalid limit")
		return
	}
	items, err := h.recommend.ForLibraryBook(c.Request.Context(), id, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"recommendations": items})
}
