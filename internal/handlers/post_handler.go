package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/middleware"
	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/repositories"
	"github.com/openboard/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	uploader          storage.Uploader
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, uploader storage.Uploader) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
		uploader:          uploader,
	}
}

// pageParams reads page/limit query parameters with their defaults.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// parseTags normalizes tags submitted either as repeated form fields or as a
// single comma-separated value into a trimmed, non-empty slice.
func parseTags(values []string) []string {
	tags := []string{}
	for _, value := range values {
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// CreatePost creates a new post, uploading the optional image first
func (h *PostHandler) CreatePost(c echo.Context) error {
	claims := middleware.CurrentUser(c)

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req := models.CreatePostRequest{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		Tags:    parseTags(form["tags"]),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	creatorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	imageURL := ""
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		imageURL, err = uploadFile(c, h.uploader, fh, "posts")
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload image")
		}
	}

	post := &models.Post{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Creator: creatorID,
		Image:   imageURL,
	}
	ctx := c.Request().Context()
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return err
	}

	view, err := h.postRepository.GetPostViewByID(ctx, post.ID.Hex())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Post created successfully",
		Data:    view,
	})
}

// GetAllPosts lists posts with search, tag filtering and pagination
func (h *PostHandler) GetAllPosts(c echo.Context) error {
	page, limit := pageParams(c)
	filter := models.PostFilter{
		Search: c.QueryParam("search"),
		Tag:    c.QueryParam("tag"),
	}

	posts, total, err := h.postRepository.ListPosts(c.Request().Context(), filter, int64((page-1)*limit), int64(limit))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: echo.Map{
			"posts":      posts,
			"pagination": models.NewPagination(page, limit, total),
		},
	})
}

// GetUserPosts lists the posts of one creator, paginated
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	creatorID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	page, limit := pageParams(c)
	posts, total, err := h.postRepository.ListPosts(c.Request().Context(), models.PostFilter{Creator: creatorID}, int64((page-1)*limit), int64(limit))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: echo.Map{
			"posts":      posts,
			"pagination": models.NewPagination(page, limit, total),
		},
	})
}

// GetPostByID returns one post with its creator and comments expanded
func (h *PostHandler) GetPostByID(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.postRepository.GetPostViewByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	comments := []models.CommentView{}
	if view.CommentsCount > 0 {
		comments, _, err = h.commentRepository.ListByPost(ctx, view.ID, 0, view.CommentsCount)
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data:    models.PostDetail{PostView: *view, Comments: comments},
	})
}

// UpdatePost applies a creator-only partial update; fields left empty keep
// their current values.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}
	if post.Creator.Hex() != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own posts")
	}

	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req := models.UpdatePostRequest{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		Tags:    parseTags(form["tags"]),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if _, sent := form["tags"]; sent {
		post.Tags = req.Tags
	}
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		url, upErr := uploadFile(c, h.uploader, fh, "posts")
		if upErr != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload image")
		}
		post.Image = url
	}

	if err := h.postRepository.UpdatePost(ctx, post); err != nil {
		return err
	}

	view, err := h.postRepository.GetPostViewByID(ctx, post.ID.Hex())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post updated successfully",
		Data:    view,
	})
}

// DeletePost removes a post and cascade-deletes its comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}
	if post.Creator.Hex() != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own posts")
	}

	if err := h.postRepository.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	if _, err := h.commentRepository.DeleteByPostID(ctx, post.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post deleted successfully",
	})
}

// ToggleLike flips the caller's membership in the post's likes array
func (h *PostHandler) ToggleLike(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	isLiked := false
	for _, id := range post.Likes {
		if id == userID {
			isLiked = true
			break
		}
	}

	if err := h.postRepository.SetLike(ctx, post.ID, userID, !isLiked); err != nil {
		return err
	}

	likesCount := len(post.Likes)
	message := "Post liked"
	if isLiked {
		likesCount--
		message = "Post unliked"
	} else {
		likesCount++
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: message,
		Data: echo.Map{
			"isLiked":    !isLiked,
			"likesCount": likesCount,
		},
	})
}

// VotePost moves the post's single vote counter up or down. There is no
// per-user ledger here: repeat votes by the same caller all count.
func (h *PostHandler) VotePost(c echo.Context) error {
	var req models.VoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	var delta int
	voteType := req.Value()
	switch voteType {
	case models.VoteUp, "up":
		delta = 1
		voteType = models.VoteUp
	case models.VoteDown, "down":
		delta = -1
		voteType = models.VoteDown
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid vote type. Use 'upvote' or 'downvote'")
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	votes, err := h.postRepository.IncrementVotes(c.Request().Context(), postID, delta)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Post " + voteType + " successful",
		Data:    echo.Map{"votes": votes},
	})
}

// GetLeaderboard returns the top posts ranked by vote count
func (h *PostHandler) GetLeaderboard(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 10
	}

	leaderboard, err := h.postRepository.Leaderboard(c.Request().Context(), int64(limit))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Leaderboard retrieved successfully",
		Data: echo.Map{
			"leaderboard": leaderboard,
			"totalPosts":  len(leaderboard),
		},
	})
}
