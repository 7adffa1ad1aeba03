package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/ai"
	"github.com/xxxsen/mlibrary/internal/middleware"
	"github.com/xxxsen/mlibrary/internal/pkg/errcode"
	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
	"github.com/xxxsen/mlibrary/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, ai.ErrUnavailable):
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, errcode.ErrAIUnavailable, "semantic search is not enabled")
	case errors.Is(err, appErr.ErrNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.ErrorWithStatus(c, http.StatusConflict, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrUnavailable):
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, errcode.ErrInternal, "service unavailable")
	default:
		response.ErrorWithStatus(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}

func badRequest(c *gin.Context, msg string) {
	response.ErrorWithStatus(c, http.StatusBadRequest, errcode.ErrInvalid, msg)
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, key string) (int, bool) {
	value := c.Query(key)
	if value == "" {
		return 0, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}
