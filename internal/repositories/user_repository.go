package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openboard/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sentinel errors shared by the repositories.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error)
	IsUserNameTaken(ctx context.Context, userName string, exclude primitive.ObjectID) (bool, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, userName string, bio *string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, when time.Time) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser inserts a new user document
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by their hex id
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ExistsByUserNameOrEmail reports whether any user already holds the given
// username or email.
func (r *MongoUserRepository) ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"$or": bson.A{bson.M{"userName": userName}, bson.M{"email": email}},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsUserNameTaken reports whether another user already holds the username.
func (r *MongoUserRepository) IsUserNameTaken(ctx context.Context, userName string, exclude primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"userName": userName,
		"_id":      bson.M{"$ne": exclude},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateProfile applies the partial profile update and returns the updated
// document.
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, userName string, bio *string) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if userName != "" {
		set["userName"] = userName
	}
	if bio != nil {
		set["bio"] = *bio
	}

	return r.findAndUpdate(ctx, id, bson.M{"$set": set})
}

// UpdateAvatar replaces the user's avatar URL and returns the updated
// document.
func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) (*models.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{"avatar": avatarURL, "updatedAt": time.Now()}})
}

// UpdateLastLogin stamps the login time.
func (r *MongoUserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, when time.Time) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": when}})
	return err
}

func (r *MongoUserRepository) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
