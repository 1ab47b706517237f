package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/repositories"
	"github.com/openboard/backend/pkg/config"
	"github.com/openboard/backend/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	userRepository repositories.UserRepository
	uploader       storage.Uploader
	cfg            *config.Config
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, uploader storage.Uploader, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		uploader:       uploader,
		cfg:            cfg,
	}
}

// Register handles user registration. The payload is multipart so an avatar
// image can ride along; when the upload fails the default avatar is kept and
// registration proceeds.
func (h *AuthHandler) Register(c echo.Context) error {
	req := models.RegisterRequest{
		UserName: c.FormValue("userName"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Bio:      c.FormValue("bio"),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	exists, err := h.userRepository.ExistsByUserNameOrEmail(ctx, req.UserName, req.Email)
	if err != nil {
		return err
	}
	if exists {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	avatarURL := models.DefaultAvatarURL
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		if url, upErr := uploadFile(c, h.uploader, fh, "avatars"); upErr != nil {
			log.Printf("Avatar upload failed, keeping default: %v", upErr)
		} else {
			avatarURL = url
		}
	}

	user := &models.User{
		UserName: req.UserName,
		Email:    req.Email,
		Password: string(hashedPassword),
		Avatar:   avatarURL,
		Bio:      req.Bio,
		IsActive: true,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return err
	}

	accessToken, refreshToken, err := h.generateTokenPair(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "User registered successfully",
		Data: echo.Map{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
	})
}

// Login authenticates by email and password and issues a fresh token pair
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}

	now := time.Now()
	if err := h.userRepository.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("Failed to update last login for %s: %v", user.UserName, err)
	} else {
		user.LastLogin = &now
	}

	accessToken, refreshToken, err := h.generateTokenPair(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data: echo.Map{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
	})
}

// Logout clears the refresh-token cookie. Outstanding access tokens stay
// valid until natural expiry; tokens are stateless and never revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "refreshToken",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "User logged out successfully",
	})
}

// generateTokenPair signs the short-lived access token and the longer-lived
// refresh token with their independent secrets.
func (h *AuthHandler) generateTokenPair(user *models.User) (string, string, error) {
	now := time.Now()

	accessClaims := &models.AccessClaims{
		UserID:   user.ID.Hex(),
		Email:    user.Email,
		UserName: user.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(h.cfg.AccessTokenSecret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := &models.RefreshClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(h.cfg.RefreshTokenSecret))
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}
