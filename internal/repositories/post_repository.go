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

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostViewByID(ctx context.Context, id string) (*models.PostView, error)
	ListPosts(ctx context.Context, filter models.PostFilter, skip, limit int64) ([]models.PostView, int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	SetLike(ctx context.Context, id, userID primitive.ObjectID, liked bool) error
	IncrementVotes(ctx context.Context, id primitive.ObjectID, delta int) (int, error)
	Leaderboard(ctx context.Context, limit int64) ([]models.PostView, error)
	CountByCreator(ctx context.Context, creator primitive.ObjectID) (int64, error)
	CountLikesReceived(ctx context.Context, creator primitive.ObjectID) (int64, error)
	ListLikedBy(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.PostView, error)
	CountLikedBy(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// expandStages are the aggregation stages that turn a Post into a PostView:
// the creator reference becomes a user summary and the comment backlog
// becomes a count.
func expandStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "creator",
			"foreignField": "_id",
			"as":           "creator",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$creator", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "comments",
			"localField":   "_id",
			"foreignField": "postId",
			"as":           "postComments",
		}}},
		{{Key: "$addFields", Value: bson.M{"commentsCount": bson.M{"$size": "$postComments"}}}},
		{{Key: "$project", Value: bson.M{
			"postComments":     0,
			"creator.password": 0,
			"creator.email":    0,
		}}},
	}
}

// CreatePost inserts a new post document
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves the raw post document by its hex id
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostViewByID retrieves a post with its creator expanded
func (r *MongoPostRepository) GetPostViewByID(ctx context.Context, id string) (*models.PostView, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": objID}}}}
	pipeline = append(pipeline, expandStages()...)

	views, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrPostNotFound
	}
	return &views[0], nil
}

// ListPosts retrieves posts matching the filter, newest first, with the
// total match count for pagination.
func (r *MongoPostRepository) ListPosts(ctx context.Context, filter models.PostFilter, skip, limit int64) ([]models.PostView, int64, error) {
	match := bson.M{}
	if filter.Search != "" {
		match["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"content": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	if filter.Tag != "" {
		match["tags"] = bson.M{"$in": bson.A{filter.Tag}}
	}
	if !filter.Creator.IsZero() {
		match["creator"] = filter.Creator
	}

	total, err := r.collection.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, expandStages()...)

	views, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// UpdatePost persists the mutable post fields
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"title":     post.Title,
		"content":   post.Content,
		"tags":      post.Tags,
		"image":     post.Image,
		"updatedAt": post.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost removes the post document
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// SetLike adds or removes the user's membership in the post's likes array.
// $addToSet keeps the toggle retry-safe.
func (r *MongoPostRepository) SetLike(ctx context.Context, id, userID primitive.ObjectID, liked bool) error {
	var update bson.M
	if liked {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	} else {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// IncrementVotes adjusts the vote counter and returns the new value.
func (r *MongoPostRepository) IncrementVotes(ctx context.Context, id primitive.ObjectID, delta int) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"votes": delta}}, opts).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	return post.Votes, nil
}

// Leaderboard returns the top posts by vote count, breaking ties by like
// count.
func (r *MongoPostRepository) Leaderboard(ctx context.Context, limit int64) ([]models.PostView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{"likesCount": bson.M{"$size": "$likes"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "votes", Value: -1}, {Key: "likesCount", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, expandStages()...)

	views, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Rank = i + 1
	}
	return views, nil
}

// CountByCreator counts the posts owned by the user
func (r *MongoPostRepository) CountByCreator(ctx context.Context, creator primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"creator": creator})
}

// CountLikesReceived sums the like array sizes across the creator's posts.
func (r *MongoPostRepository) CountLikesReceived(ctx context.Context, creator primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"creator": creator}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$size": "$likes"}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

// ListLikedBy returns the posts the user has liked, newest first.
func (r *MongoPostRepository) ListLikedBy(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.PostView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"likes": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, expandStages()...)
	return r.aggregate(ctx, pipeline)
}

// CountLikedBy counts the posts the user has liked
func (r *MongoPostRepository) CountLikedBy(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"likes": userID})
}

func (r *MongoPostRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.PostView, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	views := []models.PostView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}
