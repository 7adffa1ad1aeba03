package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mlibrary/internal/middleware"
)

type RouterDeps struct {
	Books             *BookHandler
	Search            *SearchHandler
	SemanticRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/books/lookup", deps.Books.Lookup)
	api.POST("/books/ingest", deps.Books.Ingest)
	api.POST("/books/:id/enrich", deps.Books.Enrich)

	api.GET("/search/basic", deps.Search.Basic)
	api.POST("/search/semantic", middleware.RateLimit(deps.SemanticRateLimit), deps.Search.Semantic)
	api.GET("/search/status", deps.Search.Status)
	api.GET("/search/recommendations", deps.Search.Recommendations)
}
