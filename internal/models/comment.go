package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vote types accepted on comments and posts.
const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// CommentVote is a single user's active vote on a comment. A user holds at
// most one entry per comment.
type CommentVote struct {
	UserID   primitive.ObjectID `json:"userId" bson:"userId"`
	VoteType string             `json:"voteType" bson:"voteType"`
}

// Comment represents a comment on a post
type Comment struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	PostID    primitive.ObjectID `json:"postId" bson:"postId"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Content   string             `json:"content" bson:"content"`
	Votes     []CommentVote      `json:"votes" bson:"votes"`
	IsEdited  bool               `json:"isEdited" bson:"isEdited"`
	EditedAt  *time.Time         `json:"editedAt" bson:"editedAt"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CommentView is a comment with its author expanded.
type CommentView struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	PostID    primitive.ObjectID `json:"postId" bson:"postId"`
	Author    UserSummary        `json:"author" bson:"author"`
	Content   string             `json:"content" bson:"content"`
	Votes     []CommentVote      `json:"votes" bson:"votes"`
	IsEdited  bool               `json:"isEdited" bson:"isEdited"`
	EditedAt  *time.Time         `json:"editedAt" bson:"editedAt"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// VoteCounts reports the recomputed tallies after a comment vote.
type VoteCounts struct {
	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	TotalVotes int `json:"totalVotes"`
}

// CountVotes tallies the comment's vote entries.
func (c *Comment) CountVotes() VoteCounts {
	var up, down int
	for _, v := range c.Votes {
		switch v.VoteType {
		case VoteUp:
			up++
		case VoteDown:
			down++
		}
	}
	return VoteCounts{Upvotes: up, Downvotes: down, TotalVotes: up - down}
}

// ApplyVote toggles or overwrites the user's vote entry: casting the same
// type again removes it, casting the opposite type replaces it.
func (c *Comment) ApplyVote(userID primitive.ObjectID, voteType string) {
	for i, v := range c.Votes {
		if v.UserID == userID {
			if v.VoteType == voteType {
				c.Votes = append(c.Votes[:i], c.Votes[i+1:]...)
			} else {
				c.Votes[i].VoteType = voteType
			}
			return
		}
	}
	c.Votes = append(c.Votes, CommentVote{UserID: userID, VoteType: voteType})
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID  string `json:"postId" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// UpdateCommentRequest defines the request body for updating a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
