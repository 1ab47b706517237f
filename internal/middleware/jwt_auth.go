package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/models"
)

// userContextKey is where the decoded access claims are stored on the
// request context.
const userContextKey = "user"

// JWTAuthMiddleware checks for a valid access token and attaches the decoded
// identity to the request.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: No token provided")
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims := &models.AccessClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})

			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token expired, please login again")
				}
				if errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrSignatureInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Authentication failed")
			}
			if !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(userContextKey, claims)
			return next(c)
		}
	}
}

// CurrentUser returns the access claims attached by JWTAuthMiddleware, or
// nil on unprotected routes.
func CurrentUser(c echo.Context) *models.AccessClaims {
	claims, _ := c.Get(userContextKey).(*models.AccessClaims)
	return claims
}
