package domain

import (
	"time"

	authdomain "viewtube/internal/auth/domain"
	channeldomain "viewtube/internal/channel/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription 訂閱帳目，一人一頻道最多一筆 (唯一索引)
type Subscription struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubscriberID primitive.ObjectID `bson:"subscriber_id" json:"subscriberId"`
	ChannelID    primitive.ObjectID `bson:"channel_id" json:"channelId"`
	Notify       bool               `bson:"notify" json:"notify"`
	SubscribedAt time.Time          `bson:"subscribed_at" json:"subscribedAt"`
}

// SubscriptionView 訂閱列表的一列：帳目 + 頻道投影
type SubscriptionView struct {
	Subscription Subscription          `json:"subscription"`
	Channel      channeldomain.Summary `json:"channel"`
}

// SubscriberView 頻道訂閱者列表的一列：帳目 + 使用者投影
type SubscriberView struct {
	Subscription Subscription       `json:"subscription"`
	User         authdomain.Profile `json:"user"`
}

// SubscriptionList 分頁結果
type SubscriptionList struct {
	Items []SubscriptionView `json:"items"`
	Total int64              `json:"total"`
	Page  int64              `json:"page"`
	Limit int64              `json:"limit"`
}

// SubscriberList 分頁結果
type SubscriberList struct {
	Items []SubscriberView `json:"items"`
	Total int64            `json:"total"`
	Page  int64            `json:"page"`
	Limit int64            `json:"limit"`
}
