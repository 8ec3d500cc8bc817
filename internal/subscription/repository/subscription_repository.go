package repository

import (
	"context"
	"errors"
	"time"

	"viewtube/internal/subscription/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubscriptionRepository definition subscription db CRUD
type SubscriptionRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, s *domain.Subscription) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error)
	FindBySubscriberAndChannel(ctx context.Context, subscriberID, channelID primitive.ObjectID) (*domain.Subscription, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) (int64, error)
	SubscriberIDsByChannel(ctx context.Context, channelID primitive.ObjectID) ([]primitive.ObjectID, error)
	ListBySubscriber(ctx context.Context, subscriberID primitive.ObjectID, skip, limit int64) ([]domain.Subscription, int64, error)
	ListByChannel(ctx context.Context, channelID primitive.ObjectID, skip, limit int64) ([]domain.Subscription, int64, error)
}

type subscriptionRepository struct {
	collection *mongo.Collection
}

// NewSubscriptionRepository create subscription repository
func NewSubscriptionRepository(db *mongo.Database) SubscriptionRepository {
	return &subscriptionRepository{collection: db.Collection("subscriptions")}
}

// EnsureIndexes (subscriber_id, channel_id) 複合唯一索引，
// 併發下重複訂閱的最後一道防線
func (r *subscriptionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "subscriber_id", Value: 1},
			{Key: "channel_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create insert a subscription record
func (r *subscriptionRepository) Create(ctx context.Context, s *domain.Subscription) (primitive.ObjectID, error) {
	s.SubscribedAt = time.Now()

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

// FindBySubscriberAndChannel query the single record for a (subscriber, channel) pair
// GetByID find one subscription record by id
func (r *subscriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	var s domain.Subscription
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepository) FindBySubscriberAndChannel(ctx context.Context, subscriberID, channelID primitive.ObjectID) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.collection.FindOne(ctx, bson.M{
		"subscriber_id": subscriberID,
		"channel_id":    channelID,
	}).Decode(&s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete remove one subscription record by id
func (r *subscriptionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByChannel 頻道刪除時清掉其全部訂閱
func (r *subscriptionRepository) DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SubscriberIDsByChannel all subscriber ids of a channel (for cascade bookkeeping)
func (r *subscriptionRepository) SubscriberIDsByChannel(ctx context.Context, channelID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"subscriber_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"channel_id": channelID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := []primitive.ObjectID{}
	for cursor.Next(ctx) {
		var row struct {
			SubscriberID primitive.ObjectID `bson:"subscriber_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.SubscriberID)
	}
	return ids, cursor.Err()
}

// ListBySubscriber 使用者的訂閱，新到舊分頁
func (r *subscriptionRepository) ListBySubscriber(ctx context.Context, subscriberID primitive.ObjectID, skip, limit int64) ([]domain.Subscription, int64, error) {
	return r.list(ctx, bson.M{"subscriber_id": subscriberID}, skip, limit)
}

// ListByChannel 頻道的訂閱者，新到舊分頁
func (r *subscriptionRepository) ListByChannel(ctx context.Context, channelID primitive.ObjectID, skip, limit int64) ([]domain.Subscription, int64, error) {
	return r.list(ctx, bson.M{"channel_id": channelID}, skip, limit)
}

func (r *subscriptionRepository) list(ctx context.Context, filter bson.M, skip, limit int64) ([]domain.Subscription, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "subscribed_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	items := []domain.Subscription{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
