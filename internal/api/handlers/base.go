package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/anvil/internal/api/dto"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	repo   storage.Repository
	logger *slog.Logger
}

// NewBase creates a new base handler with the given repository.
func NewBase(repo storage.Repository, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{repo: repo, logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(c *gin.Context, status int, err dto.APIError) {
	c.AbortWithStatusJSON(status, err)
}

// WriteStorageError maps a repository error to a response. Missing runs
// are 404, anything else is logged and returned as 500.
func (b *Base) WriteStorageError(c *gin.Context, resource string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		b.WriteError(c, http.StatusNotFound, dto.NotFoundError(resource))
		return
	}
	b.logger.Error("storage error", "path", c.Request.URL.Path, "error", err)
	b.WriteError(c, http.StatusInternalServerError, dto.InternalError())
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
