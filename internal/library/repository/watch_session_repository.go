package repository

import (
	"context"
	"time"

	videodomain "viewtube/internal/video/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WatchSessionRepository 前端回報的觀看時長，統計頁彙總用
type WatchSessionRepository interface {
	Create(ctx context.Context, s *videodomain.WatchSession) error
	StatsByVideo(ctx context.Context, videoID primitive.ObjectID) (*videodomain.WatchStats, error)
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error
}

type watchSessionRepository struct {
	collection *mongo.Collection
}

// NewWatchSessionRepository create watch session repository
func NewWatchSessionRepository(db *mongo.Database) WatchSessionRepository {
	return &watchSessionRepository{collection: db.Collection("watch_sessions")}
}

// Create append one watch session
func (r *watchSessionRepository) Create(ctx context.Context, s *videodomain.WatchSession) error {
	if s.WatchedAt.IsZero() {
		s.WatchedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, s)
	return err
}

// StatsByVideo 彙總單一影片的總觀看時長與場次
func (r *watchSessionRepository) StatsByVideo(ctx context.Context, videoID primitive.ObjectID) (*videodomain.WatchStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"video_id": videoID}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$video_id",
			"total_duration": bson.M{"$sum": "$duration"},
			"session_count":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := []videodomain.WatchStats{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return &videodomain.WatchStats{VideoID: videoID}, nil
	}
	return &stats[0], nil
}

// DeleteByVideo 影片刪除時清掉它的觀看場次
func (r *watchSessionRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"video_id": videoID})
	return err
}

// DeleteByVideos 頻道刪除時批次清掉旗下影片的觀看場次
func (r *watchSessionRepository) DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"video_id": bson.M{"$in": videoIDs}})
	return err
}
