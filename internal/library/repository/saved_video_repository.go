package repository

import (
	"context"
	"errors"
	"time"

	"viewtube/internal/library/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SavedVideoRepository 稍後觀看清單
type SavedVideoRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, s *domain.SavedVideo) (primitive.ObjectID, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.SavedVideo, error)
	Delete(ctx context.Context, userID, videoID primitive.ObjectID) error
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error
}

type savedVideoRepository struct {
	collection *mongo.Collection
}

// NewSavedVideoRepository create saved video repository
func NewSavedVideoRepository(db *mongo.Database) SavedVideoRepository {
	return &savedVideoRepository{collection: db.Collection("saved_videos")}
}

// EnsureIndexes (user_id, video_id) 唯一，重複收藏交給索引擋
func (r *savedVideoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "video_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create insert one saved-video record
func (r *savedVideoRepository) Create(ctx context.Context, s *domain.SavedVideo) (primitive.ObjectID, error) {
	s.SavedAt = time.Now()

	res, err := r.collection.InsertOne(ctx, s)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// ListByUser 收藏清單，新到舊
func (r *savedVideoRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.SavedVideo, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	saved := []domain.SavedVideo{}
	if err := cursor.All(ctx, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete remove one saved video of the user
func (r *savedVideoRepository) Delete(ctx context.Context, userID, videoID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "video_id": videoID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByVideo 影片刪除時移除所有人的收藏
func (r *savedVideoRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"video_id": videoID})
	return err
}

// DeleteByVideos 頻道刪除時批次移除旗下影片的收藏
func (r *savedVideoRepository) DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"video_id": bson.M{"$in": videoIDs}})
	return err
}
