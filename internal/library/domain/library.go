package domain

import (
	"time"

	videodomain "viewtube/internal/video/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Playlist 使用者自訂的影片清單，影片順序照加入順序
type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID   `bson:"owner_id" json:"ownerId"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	VideoIDs    []primitive.ObjectID `bson:"video_ids" json:"videoIds"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updatedAt"`
}

// SavedVideo 稍後觀看，一人一部影片最多一筆
type SavedVideo struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"userId"`
	VideoID primitive.ObjectID `bson:"video_id" json:"videoId"`
	SavedAt time.Time          `bson:"saved_at" json:"savedAt"`
}

// PlaylistView 清單加上可播放的影片（非公開的在 join 時被濾掉）
type PlaylistView struct {
	Playlist
	Videos []videodomain.Video `json:"videos"`
}

// CreatePlaylistReq create request payload
type CreatePlaylistReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdatePlaylistReq 部分更新，nil 欄位不動
type UpdatePlaylistReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// HistoryPage 觀看紀錄分頁，join 影片資料
type HistoryPage struct {
	Items []HistoryItem `json:"items"`
	Total int64         `json:"total"`
	Page  int64         `json:"page"`
	Limit int64         `json:"limit"`
}

// HistoryItem 一筆觀看紀錄與它指向的影片（可能已被刪除，Video 為 nil）
type HistoryItem struct {
	Entry videodomain.WatchHistoryEntry `json:"entry"`
	Video *videodomain.Video            `json:"video"`
}

// SavedList 稍後觀看清單，join 影片資料
type SavedList struct {
	Items []SavedItem `json:"items"`
	Total int64       `json:"total"`
}

// SavedItem 一筆收藏與它指向的影片
type SavedItem struct {
	Saved SavedVideo         `json:"saved"`
	Video *videodomain.Video `json:"video"`
}
