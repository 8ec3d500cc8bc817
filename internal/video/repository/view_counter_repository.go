package repository

import (
	"context"
	"time"

	"viewtube/internal/video/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ViewCounterRepository 每日觀看計數：播放時 +1，熱門排行從這裡彙總
type ViewCounterRepository interface {
	EnsureIndexes(ctx context.Context) error
	IncDaily(ctx context.Context, videoID primitive.ObjectID, date string) error
	TopWindow(ctx context.Context, from, to string, limit int64) ([]domain.RankedVideo, error)
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error
}

type viewCounterRepository struct {
	collection *mongo.Collection
}

// NewViewCounterRepository create daily view counter repository
func NewViewCounterRepository(db *mongo.Database) ViewCounterRepository {
	return &viewCounterRepository{collection: db.Collection("daily_view_counters")}
}

// EnsureIndexes (video_id, date) 唯一，一部影片一天一筆
func (r *viewCounterRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "video_id", Value: 1},
			{Key: "date", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// IncDaily upsert：當天這部影片的計數 +1，沒有就建一筆
func (r *viewCounterRepository) IncDaily(ctx context.Context, videoID primitive.ObjectID, date string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"video_id": videoID, "date": date},
		bson.M{
			"$inc": bson.M{"view_count": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// TopWindow 彙總 [from, to] 視窗內的計數：
// 依影片分組加總，同分依最近觀看日新者在前
func (r *viewCounterRepository) TopWindow(ctx context.Context, from, to string, limit int64) ([]domain.RankedVideo, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"date": bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":              "$video_id",
			"period_views":     bson.M{"$sum": "$view_count"},
			"latest_view_date": bson.M{"$max": "$date"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "period_views", Value: -1},
			{Key: "latest_view_date", Value: -1},
		}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ranked := []domain.RankedVideo{}
	if err := cursor.All(ctx, &ranked); err != nil {
		return nil, err
	}
	return ranked, nil
}

// DeleteByVideo 影片刪除時清掉它的計數
func (r *viewCounterRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"video_id": videoID})
	return err
}

// DeleteByVideos 頻道連鎖刪除用的批次版本
func (r *viewCounterRepository) DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"video_id": bson.M{"$in": videoIDs}})
	return err
}
