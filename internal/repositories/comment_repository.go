package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/openboard/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.CommentView, int64, error)
	ListByAuthor(ctx context.Context, author primitive.ObjectID, skip, limit int64) ([]models.CommentView, int64, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string, editedAt time.Time) (*models.Comment, error)
	SetVotes(ctx context.Context, id primitive.ObjectID, votes []models.CommentVote) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error)
	CountByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment inserts a new comment document
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if comment.Votes == nil {
		comment.Votes = []models.CommentVote{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by its hex id
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID format: %w", err)
	}

	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves the post's comments with authors expanded, newest
// first, plus the total count for pagination.
func (r *MongoCommentRepository) ListByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.CommentView, int64, error) {
	return r.list(ctx, bson.M{"postId": postID}, skip, limit)
}

// ListByAuthor retrieves the user's comments with authors expanded, newest
// first, plus the total count for pagination.
func (r *MongoCommentRepository) ListByAuthor(ctx context.Context, author primitive.ObjectID, skip, limit int64) ([]models.CommentView, int64, error) {
	return r.list(ctx, bson.M{"author": author}, skip, limit)
}

func (r *MongoCommentRepository) list(ctx context.Context, match bson.M, skip, limit int64) ([]models.CommentView, int64, error) {
	total, err := r.collection.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "author",
			"foreignField": "_id",
			"as":           "author",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$author", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"author.password": 0,
			"author.email":    0,
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	views := []models.CommentView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// UpdateContent replaces the comment body, marking it edited, and returns
// the updated document.
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string, editedAt time.Time) (*models.Comment, error) {
	update := bson.M{"$set": bson.M{
		"content":   content,
		"isEdited":  true,
		"editedAt":  editedAt,
		"updatedAt": editedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// SetVotes persists the recomputed vote ledger
func (r *MongoCommentRepository) SetVotes(ctx context.Context, id primitive.ObjectID, votes []models.CommentVote) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"votes": votes}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteComment removes the comment document
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteByPostID removes every comment of a deleted post
func (r *MongoCommentRepository) DeleteByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByAuthor counts the comments written by the user
func (r *MongoCommentRepository) CountByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"author": author})
}
