package repository

import (
	"context"
	"regexp"
	"time"

	"viewtube/internal/video/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideoRepository definition video db CRUD
type VideoRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, v *domain.Video) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error)
	Update(ctx context.Context, id primitive.ObjectID, req *domain.UpdateVideoReq) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncViews(ctx context.Context, id primitive.ObjectID) error
	ApplyReaction(ctx context.Context, videoID, userID primitive.ObjectID, ops domain.ReactionOps) error
	PublicByChannel(ctx context.Context, channelID primitive.ObjectID) ([]domain.Video, error)
	PublicByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error)
	DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) ([]primitive.ObjectID, error)
	SearchPublic(ctx context.Context, keyword string, skip, limit int64) ([]domain.Video, int64, error)
	SuggestionsByTags(ctx context.Context, tags []string, exclude primitive.ObjectID, limit int64) ([]domain.Video, error)
}

type videoRepository struct {
	collection *mongo.Collection
}

// NewVideoRepository create video repository
func NewVideoRepository(db *mongo.Database) VideoRepository {
	return &videoRepository{collection: db.Collection("videos")}
}

// EnsureIndexes 頻道/標籤查詢與搜尋用的索引
func (r *videoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "channel_id", Value: 1}, {Key: "visibility", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
	})
	return err
}

// Create insert a video document (id 由呼叫端預先配好，物件路徑要用)
func (r *videoRepository) Create(ctx context.Context, v *domain.Video) error {
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Likes == nil {
		v.Likes = []primitive.ObjectID{}
	}
	if v.Dislikes == nil {
		v.Dislikes = []primitive.ObjectID{}
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}

	_, err := r.collection.InsertOne(ctx, v)
	return err
}

// GetByID get video by id
func (r *videoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	var v domain.Video
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Update apply the non-nil fields of req
func (r *videoRepository) Update(ctx context.Context, id primitive.ObjectID, req *domain.UpdateVideoReq) error {
	set := bson.M{"updated_at": time.Now()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Tags != nil {
		set["tags"] = *req.Tags
	}
	if req.Visibility != nil {
		set["visibility"] = *req.Visibility
	}

	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete remove a video document
func (r *videoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IncViews 總觀看數 +1
func (r *videoRepository) IncViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	return err
}

// ApplyReaction 單一 UpdateOne 套用 like/dislike 集合異動，
// $addToSet 與 $pull 同次執行，兩集合不可能同時包含同一個 user
func (r *videoRepository) ApplyReaction(ctx context.Context, videoID, userID primitive.ObjectID, ops domain.ReactionOps) error {
	addToSet := bson.M{}
	pull := bson.M{}
	if ops.AddLike {
		addToSet["likes"] = userID
	}
	if ops.AddDislike {
		addToSet["dislikes"] = userID
	}
	if ops.RemoveLike {
		pull["likes"] = userID
	}
	if ops.RemoveDislike {
		pull["dislikes"] = userID
	}

	update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(pull) > 0 {
		update["$pull"] = pull
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": videoID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// PublicByChannel 頻道頁的公開影片，新到舊
func (r *videoRepository) PublicByChannel(ctx context.Context, channelID primitive.ObjectID) ([]domain.Video, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"channel_id": channelID,
		"visibility": domain.VisibilityPublic,
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	videos := []domain.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// PublicByIDs 只回公開影片，私人/未列出的在彙總結果裡被濾掉
func (r *videoRepository) PublicByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error) {
	if len(ids) == 0 {
		return []domain.Video{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"_id":        bson.M{"$in": ids},
		"visibility": domain.VisibilityPublic,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	videos := []domain.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// DeleteByChannel 刪頻道時整批移除影片，回傳被刪的 id 給後續清理用
func (r *videoRepository) DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"channel_id": channelID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := []primitive.ObjectID{}
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		if _, err := r.collection.DeleteMany(ctx, bson.M{"channel_id": channelID}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// SearchPublic 標題/描述/標籤的模糊搜尋，只搜公開影片，觀看數高的在前
func (r *videoRepository) SearchPublic(ctx context.Context, keyword string, skip, limit int64) ([]domain.Video, int64, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	filter := bson.M{
		"visibility": domain.VisibilityPublic,
		"$or": []bson.M{
			{"title": pattern},
			{"description": pattern},
			{"tags": pattern},
		},
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	videos := []domain.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// SuggestionsByTags 同標籤的其他公開影片，觀看數高的在前
func (r *videoRepository) SuggestionsByTags(ctx context.Context, tags []string, exclude primitive.ObjectID, limit int64) ([]domain.Video, error) {
	filter := bson.M{
		"_id":        bson.M{"$ne": exclude},
		"visibility": domain.VisibilityPublic,
	}
	if len(tags) > 0 {
		filter["tags"] = bson.M{"$in": tags}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	videos := []domain.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}
