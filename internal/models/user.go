package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAvatarURL is assigned at registration when no avatar is uploaded,
// and kept when the upload fails.
const DefaultAvatarURL = "https://icon-library.com/images/anonymous-avatar-icon/anonymous-avatar-icon-25.jpg"

// User represents a registered member. Posts, comments and liked posts are
// not stored here; they are derived at query time from the owning documents.
type User struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserName  string             `json:"userName" bson:"userName"`
	Email     string             `json:"email,omitempty" bson:"email"`
	Password  string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	Avatar    string             `json:"avatar" bson:"avatar"`
	Bio       string             `json:"bio" bson:"bio"`
	Score     int                `json:"score" bson:"score"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	LastLogin *time.Time         `json:"lastLogin" bson:"lastLogin"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the subset of user fields expanded into posts and comments.
type UserSummary struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	UserName string             `json:"userName" bson:"userName"`
	Avatar   string             `json:"avatar" bson:"avatar"`
}

// Summary returns the expandable view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, UserName: u.UserName, Avatar: u.Avatar}
}

// UserStats aggregates the derived per-user counters shown on profiles.
type UserStats struct {
	TotalPosts         int64 `json:"totalPosts"`
	TotalComments      int64 `json:"totalComments"`
	TotalLikedPosts    int64 `json:"totalLikedPosts,omitempty"`
	TotalLikesReceived int64 `json:"totalLikesReceived"`
}

// RegisterRequest defines the form fields for user registration
type RegisterRequest struct {
	UserName string `form:"userName" json:"userName" validate:"required,alphanum,min=3,max=30"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
	Bio      string `form:"bio" json:"bio" validate:"omitempty,max=500"`
}

// LoginRequest defines the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the request body for profile updates
type UpdateProfileRequest struct {
	UserName string  `json:"userName" validate:"omitempty,alphanum,min=3,max=30"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
}

// AccessClaims are the custom claims carried by the access token
type AccessClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	UserName string `json:"userName"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims carried by the refresh token
type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}
