package repository

import (
	"context"
	"time"

	videodomain "viewtube/internal/video/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WatchHistoryRepository 觀看紀錄：同一部影片只留最近一筆
type WatchHistoryRepository interface {
	EnsureIndexes(ctx context.Context) error
	Upsert(ctx context.Context, userID, videoID primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]videodomain.WatchHistoryEntry, int64, error)
	Delete(ctx context.Context, userID, entryID primitive.ObjectID) error
	Clear(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error
}

type watchHistoryRepository struct {
	collection *mongo.Collection
}

// NewWatchHistoryRepository create watch history repository
func NewWatchHistoryRepository(db *mongo.Database) WatchHistoryRepository {
	return &watchHistoryRepository{collection: db.Collection("watch_history")}
}

// EnsureIndexes (user_id, video_id) 唯一 + watched_at 排序索引
func (r *watchHistoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "video_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "watched_at", Value: -1},
			},
		},
	})
	return err
}

// Upsert 再看同一部影片只更新時間，不新增紀錄
func (r *watchHistoryRepository) Upsert(ctx context.Context, userID, videoID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID, "video_id": videoID},
		bson.M{"$set": bson.M{"watched_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// ListByUser 最近看的在前，分頁
func (r *watchHistoryRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]videodomain.WatchHistoryEntry, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "watched_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	entries := []videodomain.WatchHistoryEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Delete 刪單筆，限本人的紀錄
func (r *watchHistoryRepository) Delete(ctx context.Context, userID, entryID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": entryID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Clear 清空整份紀錄，回傳刪除筆數
func (r *watchHistoryRepository) Clear(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByVideo 影片刪除時移除所有人的對應紀錄
func (r *watchHistoryRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"video_id": videoID})
	return err
}

// DeleteByVideos 頻道刪除時批次移除旗下影片的紀錄
func (r *watchHistoryRepository) DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"video_id": bson.M{"$in": videoIDs}})
	return err
}
