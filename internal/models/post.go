package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a community post. Likes are held as user id membership on
// the post itself; comments reference the post through Comment.PostID and are
// expanded at query time.
type Post struct {
	ID        primitive.ObjectID   `json:"_id,omitempty" bson:"_id,omitempty"`
	Title     string               `json:"title" bson:"title"`
	Content   string               `json:"content" bson:"content"`
	Tags      []string             `json:"tags" bson:"tags"`
	Creator   primitive.ObjectID   `json:"creator" bson:"creator"` // immutable after creation
	Image     string               `json:"image,omitempty" bson:"image,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Votes     int                  `json:"votes" bson:"votes"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// PostView is a post with its creator expanded, as produced by the $lookup
// aggregations in the repository.
type PostView struct {
	ID            primitive.ObjectID   `json:"_id" bson:"_id"`
	Title         string               `json:"title" bson:"title"`
	Content       string               `json:"content" bson:"content"`
	Tags          []string             `json:"tags" bson:"tags"`
	Creator       UserSummary          `json:"creator" bson:"creator"`
	Image         string               `json:"image,omitempty" bson:"image,omitempty"`
	Likes         []primitive.ObjectID `json:"likes" bson:"likes"`
	Votes         int                  `json:"votes" bson:"votes"`
	CommentsCount int64                `json:"commentsCount" bson:"commentsCount"`
	Rank          int                  `json:"rank,omitempty" bson:"-"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// PostDetail is the read-one shape: the post plus its comments, each with
// the author expanded.
type PostDetail struct {
	PostView
	Comments []CommentView `json:"comments"`
}

// CreatePostRequest carries the validated form fields of post creation.
// Tags arrive either comma-separated or as repeated form fields and are
// normalized before validation.
type CreatePostRequest struct {
	Title   string   `form:"title" json:"title" validate:"required,min=1,max=200"`
	Content string   `form:"content" json:"content" validate:"required,min=1,max=5000"`
	Tags    []string `json:"tags" validate:"omitempty,dive,min=1"`
}

// UpdatePostRequest carries the partial-update fields; empty fields are left
// unchanged.
type UpdatePostRequest struct {
	Title   string   `form:"title" json:"title" validate:"omitempty,min=1,max=200"`
	Content string   `form:"content" json:"content" validate:"omitempty,min=1,max=5000"`
	Tags    []string `json:"tags" validate:"omitempty,dive,min=1"`
}

// VoteRequest accepts both the voteType and type spellings used by clients.
type VoteRequest struct {
	VoteType string `json:"voteType"`
	Type     string `json:"type"`
}

// Value returns whichever spelling the client sent.
func (r *VoteRequest) Value() string {
	if r.VoteType != "" {
		return r.VoteType
	}
	return r.Type
}

// PostFilter narrows the post listing.
type PostFilter struct {
	Search  string
	Tag     string
	Creator primitive.ObjectID
}
