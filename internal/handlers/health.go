package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/pkg/config"
)

// HealthHandler reports liveness and database connectivity
type HealthHandler struct {
	db *config.DB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *config.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Welcome answers the API root
func (h *HealthHandler) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Welcome to backend API",
	})
}

// Check verifies the database connection is reachable
func (h *HealthHandler) Check(c echo.Context) error {
	if err := h.db.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Success: false,
			Message: "Database unreachable",
		})
	}
	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "OK",
	})
}
