package domain

import (
	"time"

	videodomain "viewtube/internal/video/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchTerm 全站搜尋詞計數，建議清單的資料來源
type SearchTerm struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Term         string             `bson:"term" json:"term"`
	Count        int64              `bson:"count" json:"count"`
	LastSearched time.Time          `bson:"last_searched" json:"last_searched"`
}

// SearchResult 搜尋結果分頁
type SearchResult struct {
	Items []videodomain.Video `json:"items"`
	Total int64               `json:"total"`
	Page  int64               `json:"page"`
	Limit int64               `json:"limit"`
}
