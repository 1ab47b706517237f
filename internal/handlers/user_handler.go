package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/middleware"
	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/repositories"
	"github.com/openboard/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// profileListLimit caps the embedded posts/comments/likedPosts lists on
// profile responses; full listings go through the paginated endpoints.
const profileListLimit = 10

// UserHandler handles profile-related HTTP requests
type UserHandler struct {
	userRepository    repositories.UserRepository
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	uploader          storage.Uploader
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, uploader storage.Uploader) *UserHandler {
	return &UserHandler{
		userRepository:    userRepo,
		postRepository:    postRepo,
		commentRepository: commentRepo,
		uploader:          uploader,
	}
}

// GetMyProfile returns the authenticated user's profile with derived stats
// and recent activity.
func (h *UserHandler) GetMyProfile(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}

	stats, err := h.collectStats(c, user.ID, true)
	if err != nil {
		return err
	}

	posts, _, err := h.postRepository.ListPosts(ctx, models.PostFilter{Creator: user.ID}, 0, profileListLimit)
	if err != nil {
		return err
	}
	comments, _, err := h.commentRepository.ListByAuthor(ctx, user.ID, 0, profileListLimit)
	if err != nil {
		return err
	}
	likedPosts, err := h.postRepository.ListLikedBy(ctx, user.ID, profileListLimit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: echo.Map{
			"user":       user,
			"stats":      stats,
			"posts":      posts,
			"comments":   comments,
			"likedPosts": likedPosts,
		},
	})
}

// GetUserByID returns a public profile: no email, no liked-posts list.
func (h *UserHandler) GetUserByID(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, c.Param("userId"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	user.Email = ""

	stats, err := h.collectStats(c, user.ID, false)
	if err != nil {
		return err
	}

	posts, _, err := h.postRepository.ListPosts(ctx, models.PostFilter{Creator: user.ID}, 0, profileListLimit)
	if err != nil {
		return err
	}
	comments, _, err := h.commentRepository.ListByAuthor(ctx, user.ID, 0, profileListLimit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: echo.Map{
			"user":     user,
			"stats":    stats,
			"posts":    posts,
			"comments": comments,
		},
	})
}

// UpdateProfile applies a partial update to userName and bio
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	if req.UserName != "" {
		taken, err := h.userRepository.IsUserNameTaken(ctx, req.UserName, userID)
		if err != nil {
			return err
		}
		if taken {
			return echo.NewHTTPError(http.StatusBadRequest, "Username is already taken")
		}
	}

	user, err := h.userRepository.UpdateProfile(ctx, userID, req.UserName, req.Bio)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Profile updated successfully",
		Data:    echo.Map{"user": user},
	})
}

// UpdateAvatar uploads a new avatar image and stores its URL. Unlike
// registration there is no fallback: a failed upload fails the request.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	claims := middleware.CurrentUser(c)

	fh, err := c.FormFile("avatar")
	if err != nil || fh == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Avatar image is required")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	url, err := uploadFile(c, h.uploader, fh, "avatars")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload avatar")
	}

	user, err := h.userRepository.UpdateAvatar(c.Request().Context(), userID, url)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Avatar updated successfully",
		Data:    echo.Map{"user": user},
	})
}

// collectStats gathers the derived per-user counters. The liked-posts count
// is only reported on the owner's own profile.
func (h *UserHandler) collectStats(c echo.Context, userID primitive.ObjectID, includeLiked bool) (*models.UserStats, error) {
	ctx := c.Request().Context()

	totalPosts, err := h.postRepository.CountByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalComments, err := h.commentRepository.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalLikesReceived, err := h.postRepository.CountLikesReceived(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.UserStats{
		TotalPosts:         totalPosts,
		TotalComments:      totalComments,
		TotalLikesReceived: totalLikesReceived,
	}
	if includeLiked {
		liked, err := h.postRepository.CountLikedBy(ctx, userID)
		if err != nil {
			return nil, err
		}
		stats.TotalLikedPosts = liked
	}
	return stats, nil
}
