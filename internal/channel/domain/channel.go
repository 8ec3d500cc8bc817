package domain

import (
	"time"

	videodomain "viewtube/internal/video/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Channel 頻道文件，subscriber_count/video_count 為反正規化計數
type Channel struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	OwnerID         primitive.ObjectID `bson:"owner_id" json:"ownerId"`
	Avatar          string             `bson:"avatar" json:"avatar"`
	Banner          string             `bson:"banner" json:"banner"`
	IsVerified      bool               `bson:"is_verified" json:"isVerified"`
	SubscriberCount int64              `bson:"subscriber_count" json:"subscriberCount"`
	VideoCount      int64              `bson:"video_count" json:"videoCount"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Summary 給其他模組 join 用的頻道投影
type Summary struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Avatar string             `bson:"avatar" json:"avatar"`
}

// ChannelPage 頻道頁回應：頻道 + 其公開影片
type ChannelPage struct {
	Channel *Channel            `json:"channel"`
	Videos  []videodomain.Video `json:"videos"`
}

// CreateChannelReq create request payload
type CreateChannelReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
	Banner      string `json:"banner"`
}

// UpdateChannelReq 部分更新，nil 欄位不動
type UpdateChannelReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
	Banner      *string `json:"banner"`
}
