package repository

import (
	"context"
	"errors"
	"time"

	"viewtube/internal/channel/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChannelRepository definition channel db CRUD
type ChannelRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, ch *domain.Channel) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Channel, error)
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Channel, error)
	Update(ctx context.Context, id primitive.ObjectID, req *domain.UpdateChannelReq) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncSubscriberCount(ctx context.Context, id primitive.ObjectID, delta int64) error
	IncVideoCount(ctx context.Context, id primitive.ObjectID, delta int64) error
	SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Summary, error)
}

type channelRepository struct {
	collection *mongo.Collection
}

// NewChannelRepository create channel repository
func NewChannelRepository(db *mongo.Database) ChannelRepository {
	return &channelRepository{collection: db.Collection("channels")}
}

// EnsureIndexes 頻道名稱唯一索引
func (r *channelRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create insert a new channel and return the generated id
func (r *channelRepository) Create(ctx context.Context, ch *domain.Channel) (primitive.ObjectID, error) {
	now := time.Now()
	ch.CreatedAt = now
	ch.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, ch)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// GetByID query a channel by id
func (r *channelRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Channel, error) {
	var ch domain.Channel
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// FindByOwner list all channels owned by ownerID
func (r *channelRepository) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Channel, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	channels := []domain.Channel{}
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// Update apply the non-nil fields of req
func (r *channelRepository) Update(ctx context.Context, id primitive.ObjectID, req *domain.UpdateChannelReq) error {
	set := bson.M{"updated_at": time.Now()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Avatar != nil {
		set["avatar"] = *req.Avatar
	}
	if req.Banner != nil {
		set["banner"] = *req.Banner
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

// Delete remove a channel document
func (r *channelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IncSubscriberCount 訂閱/退訂時同步反正規化計數
func (r *channelRepository) IncSubscriberCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"subscriber_count": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}

// IncVideoCount 上傳/刪除影片時同步影片數
func (r *channelRepository) IncVideoCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"video_count": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}

// SummariesByIDs batch load channel projections, keyed by channel id
func (r *channelRepository) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Summary, error) {
	result := make(map[primitive.ObjectID]domain.Summary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "avatar": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var s domain.Summary
		if err := cursor.Decode(&s); err != nil {
			return nil, err
		}
		result[s.ID] = s
	}
	return result, cursor.Err()
}
