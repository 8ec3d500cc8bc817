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

// PlaylistRepository definition playlist db CRUD
type PlaylistRepository interface {
	Create(ctx context.Context, p *domain.Playlist) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Playlist, error)
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Playlist, error)
	Update(ctx context.Context, id primitive.ObjectID, req *domain.UpdatePlaylistReq) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) error
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) error
	RemoveVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) error
	RemoveVideosEverywhere(ctx context.Context, videoIDs []primitive.ObjectID) error
}

type playlistRepository struct {
	collection *mongo.Collection
}

// NewPlaylistRepository create playlist repository
func NewPlaylistRepository(db *mongo.Database) PlaylistRepository {
	return &playlistRepository{collection: db.Collection("playlists")}
}

// Create insert a playlist and return the generated id
func (r *playlistRepository) Create(ctx context.Context, p *domain.Playlist) (primitive.ObjectID, error) {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.VideoIDs == nil {
		p.VideoIDs = []primitive.ObjectID{}
	}

	res, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// GetByID query a playlist by id
func (r *playlistRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Playlist, error) {
	var p domain.Playlist
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByOwner list all playlists of a user, newest first
func (r *playlistRepository) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Playlist, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	playlists := []domain.Playlist{}
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// Update apply the non-nil fields of req
func (r *playlistRepository) Update(ctx context.Context, id primitive.ObjectID, req *domain.UpdatePlaylistReq) error {
	set := bson.M{"updated_at": time.Now()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
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

// Delete remove a playlist document
func (r *playlistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddVideo $addToSet 去重，重複加入不產生第二筆
func (r *playlistRepository) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"video_ids": videoID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveVideo drop one video from the playlist
func (r *playlistRepository) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"video_ids": videoID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveVideoEverywhere 影片刪除時把它從所有清單裡拔掉
func (r *playlistRepository) RemoveVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"video_ids": videoID},
		bson.M{"$pull": bson.M{"video_ids": videoID}},
	)
	return err
}

// RemoveVideosEverywhere 頻道刪除時批次把旗下影片從所有清單裡拔掉
func (r *playlistRepository) RemoveVideosEverywhere(ctx context.Context, videoIDs []primitive.ObjectID) error {
	if len(videoIDs) == 0 {
		return nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"video_ids": bson.M{"$in": videoIDs}},
		bson.M{"$pull": bson.M{"video_ids": bson.M{"$in": videoIDs}}},
	)
	return err
}
