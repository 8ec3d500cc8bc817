package repository

import (
	"context"
	"errors"
	"time"

	"viewtube/internal/comment/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository 留言存取
type CommentRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, c *domain.Comment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]domain.Comment, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) (int64, error)
}

type commentRepository struct {
	collection *mongo.Collection
}

// NewCommentRepository create comment repository
func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &commentRepository{collection: db.Collection("comments")}
}

// EnsureIndexes 依影片分頁查詢用的複合索引
func (r *commentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "video_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	return err
}

// Create insert one comment
func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) (primitive.ObjectID, error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	c.ID = id
	return id, nil
}

// GetByID find comment by id
func (r *commentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByVideo 影片的留言，新到舊分頁
func (r *commentRepository) ListByVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]domain.Comment, int64, error) {
	filter := bson.M{"video_id": videoID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	comments := []domain.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// Delete remove one comment
func (r *commentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByVideo 影片刪除時清掉底下所有留言
func (r *commentRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"video_id": videoID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByVideos 頻道刪除時批次清掉旗下影片的留言
func (r *commentRepository) DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) (int64, error) {
	if len(videoIDs) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"video_id": bson.M{"$in": videoIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
