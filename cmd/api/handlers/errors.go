package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spacetravelling/cmd/api/clients/contentclient"
	"spacetravelling/cmd/api/paginator"
	"spacetravelling/cmd/api/services"
	"spacetravelling/cmd/api/trace"
	"spacetravelling/cmd/internal/logger"
)

// statusFor 는 page pass 오류를 HTTP status 와 에러 코드로 분류한다.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, contentclient.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrMalformedDocument):
		return http.StatusInternalServerError, "malformed_document"
	case errors.Is(err, contentclient.ErrSourceQueryInvalid):
		return http.StatusInternalServerError, "invalid_query"
	case errors.Is(err, contentclient.ErrSourceUnavailable):
		return http.StatusBadGateway, "source_unavailable"
	case errors.Is(err, paginator.ErrLoadInProgress):
		return http.StatusConflict, "load_in_progress"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError 는 err 를 {"error": code} 로 응답한다. 5xx 는 원인을 로그로 남긴다.
func writeError(c *gin.Context, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorWithFields(op+" failed", logger.Fields{
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": trace.RequestIDFromContext(c.Request.Context()),
			"error":      err.Error(),
		})
	}
	c.JSON(status, gin.H{"error": code})
}
