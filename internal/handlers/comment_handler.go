package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/middleware"
	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
	}
}

// CreateComment creates a new comment on an existing post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return err
	}

	authorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	comment := &models.Comment{
		PostID:  post.ID,
		Author:  authorID,
		Content: req.Content,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Comment created successfully",
		Data:    h.expand(c, comment),
	})
}

// GetCommentsByPost lists a post's comments, paginated, newest first
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	page, limit := pageParams(c)
	comments, total, err := h.commentRepository.ListByPost(c.Request().Context(), postID, int64((page-1)*limit), int64(limit))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: echo.Map{
			"comments":   comments,
			"pagination": models.NewPagination(page, limit, total),
		},
	})
}

// GetUserComments lists a user's comments, paginated, newest first
func (h *CommentHandler) GetUserComments(c echo.Context) error {
	authorID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	page, limit := pageParams(c)
	comments, total, err := h.commentRepository.ListByAuthor(c.Request().Context(), authorID, int64((page-1)*limit), int64(limit))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Data: echo.Map{
			"comments":   comments,
			"pagination": models.NewPagination(page, limit, total),
		},
	})
}

// UpdateComment lets the author edit the content; the edited flag and
// timestamp are always set.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}
	if comment.Author.Hex() != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own comments")
	}

	updated, err := h.commentRepository.UpdateContent(ctx, comment.ID, req.Content, time.Now())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Comment updated successfully",
		Data:    h.expand(c, updated),
	})
}

// DeleteComment lets the author remove the comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}
	if comment.Author.Hex() != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(ctx, comment.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Comment deleted successfully",
	})
}

// VoteComment applies the per-user vote toggle: the same type twice clears
// the vote, the opposite type overwrites it. The response carries the
// recomputed tallies.
func (h *CommentHandler) VoteComment(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	var req models.VoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	voteType := req.Value()
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return echo.NewHTTPError(http.StatusBadRequest, "Vote type must be 'upvote' or 'downvote'")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return err
	}

	comment.ApplyVote(userID, voteType)
	if err := h.commentRepository.SetVotes(ctx, comment.ID, comment.Votes); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Vote updated successfully",
		Data:    comment.CountVotes(),
	})
}

// expand attaches the author summary to a freshly written comment so create
// and update responses match the listed shape.
func (h *CommentHandler) expand(c echo.Context, comment *models.Comment) models.CommentView {
	view := models.CommentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		Votes:     comment.Votes,
		IsEdited:  comment.IsEdited,
		EditedAt:  comment.EditedAt,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if author, err := h.userRepository.GetUserByID(c.Request().Context(), comment.Author.Hex()); err == nil {
		view.Author = author.Summary()
	} else {
		view.Author = models.UserSummary{ID: comment.Author}
	}
	return view
}
