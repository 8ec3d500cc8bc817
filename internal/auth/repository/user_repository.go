package repository

import (
	"context"
	"errors"
	"time"

	"viewtube/internal/auth/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository definition user db CRUD
type UserRepository interface {
	EnsureIndexes(ctx context.Context) error
	CreateUser(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	FindByUser(ctx context.Context, q *domain.UserQuery) (*domain.User, error)
	ProfilesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Profile, error)
	AddSubscription(ctx context.Context, userID, channelID primitive.ObjectID) error
	RemoveSubscription(ctx context.Context, userID, channelID primitive.ObjectID) error
	AddLikedVideo(ctx context.Context, userID, videoID primitive.ObjectID) error
	RemoveLikedVideo(ctx context.Context, userID, videoID primitive.ObjectID) error
	SetSearchHistory(ctx context.Context, userID primitive.ObjectID, entries []domain.SearchEntry) error
}

type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository create user repository
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection("users")}
}

// EnsureIndexes email/username 唯一索引，資料庫層擋重複註冊
func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// CreateUser insert a new user and return the generated id
func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.SubscribedChannels == nil {
		user.SubscribedChannels = []primitive.ObjectID{}
	}
	if user.LikedVideos == nil {
		user.LikedVideos = []primitive.ObjectID{}
	}

	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// FindByUser query a single user by any combination of id/email/username
func (r *userRepository) FindByUser(ctx context.Context, q *domain.UserQuery) (*domain.User, error) {
	filter := bson.M{}
	if q.ID != nil {
		filter["_id"] = *q.ID
	}
	if q.Email != nil {
		filter["email"] = *q.Email
	}
	if q.Username != nil {
		filter["username"] = *q.Username
	}
	if len(filter) == 0 {
		return nil, errors.New("empty user query")
	}

	var user domain.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfilesByIDs batch load public profiles, keyed by user id
func (r *userRepository) ProfilesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Profile, error) {
	result := make(map[primitive.ObjectID]domain.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "avatar": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p domain.Profile
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	return result, cursor.Err()
}

// AddSubscription 訂閱紀錄寫回 user：$addToSet 去重，計數只在真的加入時遞增
func (r *userRepository) AddSubscription(ctx context.Context, userID, channelID primitive.ObjectID) error {
	res, err := r.collection.UpdateByID(ctx, userID, bson.M{
		"$addToSet": bson.M{"subscribed_channels": channelID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.ModifiedCount > 0 {
		_, err = r.collection.UpdateByID(ctx, userID, bson.M{
			"$inc": bson.M{"subscribed_count": 1},
		})
	}
	return err
}

// RemoveSubscription 退訂時移除 channel 並遞減計數
func (r *userRepository) RemoveSubscription(ctx context.Context, userID, channelID primitive.ObjectID) error {
	res, err := r.collection.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"subscribed_channels": channelID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.ModifiedCount > 0 {
		_, err = r.collection.UpdateByID(ctx, userID, bson.M{
			"$inc": bson.M{"subscribed_count": -1},
		})
	}
	return err
}

// AddLikedVideo record the liked video on the user document
func (r *userRepository) AddLikedVideo(ctx context.Context, userID, videoID primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, userID, bson.M{
		"$addToSet": bson.M{"liked_videos": videoID},
	})
	return err
}

// RemoveLikedVideo drop the liked video from the user document
func (r *userRepository) RemoveLikedVideo(ctx context.Context, userID, videoID primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"liked_videos": videoID},
	})
	return err
}

// SetSearchHistory overwrite the per-user search history (already deduped and capped by caller)
func (r *userRepository) SetSearchHistory(ctx context.Context, userID primitive.ObjectID, entries []domain.SearchEntry) error {
	_, err := r.collection.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"search_history": entries},
	})
	return err
}
