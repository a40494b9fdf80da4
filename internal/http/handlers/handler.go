package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"taskboard/internal/domain"
	"taskboard/internal/http/middleware"
	"taskboard/internal/logger"

	"github.com/gin-gonic/gin"
)

// writeError is the single place where domain errors become HTTP responses
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var (
		validation *domain.ValidationError
		missing    *domain.MissingParameterError
		notFound   *domain.NotFoundError
		persist    *domain.PersistenceError
		timeout    *domain.TimeoutError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{"error": missing.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &timeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": timeout.Error()})
	case errors.As(err, &persist):
		c.JSON(http.StatusBadRequest, gin.H{"error": persist.Op})
	default:
		log.Error("unhandled error", "error", err, "request_id", middleware.RequestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes the body into dst. An empty body decodes as {}.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("Invalid JSON body")
	}
	return nil
}

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return logger.Get()
	}
	return log
}
