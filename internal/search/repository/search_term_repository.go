package repository

import (
	"context"
	"regexp"
	"time"

	"viewtube/internal/search/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SearchTermRepository 全站搜尋詞統計
type SearchTermRepository interface {
	EnsureIndexes(ctx context.Context) error
	IncTerm(ctx context.Context, term string) error
	TopByPrefix(ctx context.Context, prefix string, limit int64) ([]domain.SearchTerm, error)
}

type searchTermRepository struct {
	collection *mongo.Collection
}

// NewSearchTermRepository create search term repository
func NewSearchTermRepository(db *mongo.Database) SearchTermRepository {
	return &searchTermRepository{collection: db.Collection("search_terms")}
}

// EnsureIndexes term 唯一 + 熱門排序索引
func (r *searchTermRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "term", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "count", Value: -1}},
		},
	})
	return err
}

// IncTerm upsert 計數 +1
func (r *searchTermRepository) IncTerm(ctx context.Context, term string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"term": term},
		bson.M{
			"$inc": bson.M{"count": 1},
			"$set": bson.M{"last_searched": time.Now()},
		},
		options.Update().SetUpsert(true))
	return err
}

// TopByPrefix 熱門搜尋詞，前綴可選
func (r *searchTermRepository) TopByPrefix(ctx context.Context, prefix string, limit int64) ([]domain.SearchTerm, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["term"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	terms := []domain.SearchTerm{}
	if err := cursor.All(ctx, &terms); err != nil {
		return nil, err
	}
	return terms, nil
}
