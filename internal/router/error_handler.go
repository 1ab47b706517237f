package router

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/repositories"
	"github.com/openboard/backend/pkg/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewHTTPErrorHandler builds the centralized error handler: it renders every
// error as the response envelope and normalizes known database error shapes
// into the 400/404 taxonomy. Stack traces are echoed only outside production.
func NewHTTPErrorHandler(cfg *config.Config) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal Server Error"

		var httpErr *echo.HTTPError
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			message = fmt.Sprintf("%v", httpErr.Message)
		case errors.As(err, &validationErrs) && len(validationErrs) > 0:
			code = http.StatusBadRequest
			message = validationErrs[0].Error()
		case mongo.IsDuplicateKeyError(err):
			code = http.StatusBadRequest
			message = "Duplicate field value entered"
		case errors.Is(err, primitive.ErrInvalidHex):
			code = http.StatusNotFound
			message = "Resource not found"
		case errors.Is(err, repositories.ErrUserNotFound),
			errors.Is(err, repositories.ErrPostNotFound),
			errors.Is(err, repositories.ErrCommentNotFound):
			code = http.StatusNotFound
			message = err.Error()
		}

		resp := models.Response{Success: false, Message: message}
		if code == http.StatusInternalServerError {
			c.Logger().Error(err)
			if !cfg.IsProduction() {
				resp.Stack = fmt.Sprintf("%v\n%s", err, debug.Stack())
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}
