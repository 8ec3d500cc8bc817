package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility 影片可見性
type Visibility string

const (
	// VisibilityPublic listed everywhere
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate owner only
	VisibilityPrivate Visibility = "private"
	// VisibilityUnlisted reachable by direct link, excluded from listings
	VisibilityUnlisted Visibility = "unlisted"
)

// Valid report whether v is a known visibility value
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
		return true
	}
	return false
}

// Video 影片文件，likes/dislikes 存使用者 id 集合，兩者互斥
type Video struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	OwnerID      primitive.ObjectID   `bson:"owner_id" json:"ownerId"`
	ChannelID    primitive.ObjectID   `bson:"channel_id,omitempty" json:"channelId,omitempty"`
	VideoURL     string               `bson:"video_url" json:"videoUrl"`
	ThumbnailURL string               `bson:"thumbnail_url" json:"thumbnailUrl"`
	Duration     float64              `bson:"duration" json:"duration"`
	Views        int64                `bson:"views" json:"views"`
	Likes        []primitive.ObjectID `bson:"likes" json:"likes"`
	Dislikes     []primitive.ObjectID `bson:"dislikes" json:"dislikes"`
	Tags         []string             `bson:"tags" json:"tags"`
	Visibility   Visibility           `bson:"visibility" json:"visibility"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

// ReactionKind like 或 dislike
type ReactionKind string

const (
	// ReactionLike toggle membership in the likes set
	ReactionLike ReactionKind = "like"
	// ReactionDislike toggle membership in the dislikes set
	ReactionDislike ReactionKind = "dislike"
)

// ReactionOps 單次按讚/倒讚要套用的集合異動
// 同一次操作絕不會同時 Add 兩個集合，互斥由這裡保證
type ReactionOps struct {
	AddLike        bool
	RemoveLike     bool
	AddDislike     bool
	RemoveDislike  bool
	UserLikedAfter bool // 操作後 user 是否仍在 likes 集合，用來同步 user.liked_videos
}

// NextReactionOps 依目前集合狀態計算 toggle 結果：
// 已在同方集合 -> 移除（取消）；否則加入同方集合並離開對方集合
func NextReactionOps(v *Video, userID primitive.ObjectID, kind ReactionKind) ReactionOps {
	liked := containsID(v.Likes, userID)
	disliked := containsID(v.Dislikes, userID)

	var ops ReactionOps
	switch kind {
	case ReactionLike:
		if liked {
			ops.RemoveLike = true
		} else {
			ops.AddLike = true
			ops.RemoveDislike = disliked
			ops.UserLikedAfter = true
		}
	case ReactionDislike:
		if disliked {
			ops.RemoveDislike = true
		} else {
			ops.AddDislike = true
			ops.RemoveLike = liked
		}
	}
	return ops
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CounterDateLayout 每日觀看計數的日期鍵格式 (UTC)
const CounterDateLayout = "2006-01-02"

// DailyViewCounter 每部影片每天一筆的觀看數，熱門排行從這裡彙總
type DailyViewCounter struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VideoID   primitive.ObjectID `bson:"video_id" json:"videoId"`
	Date      string             `bson:"date" json:"date"`
	ViewCount int64              `bson:"view_count" json:"viewCount"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// RankedVideo 彙總 pipeline 的輸出：視窗內總觀看數與最近一次觀看日
type RankedVideo struct {
	VideoID        primitive.ObjectID `bson:"_id" json:"videoId"`
	PeriodViews    int64              `bson:"period_views" json:"periodViews"`
	LatestViewDate string             `bson:"latest_view_date" json:"latestViewDate"`
}

// WatchHistoryEntry 使用者的觀看紀錄，同一部影片只留最近一筆
type WatchHistoryEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	VideoID   primitive.ObjectID `bson:"video_id" json:"videoId"`
	WatchedAt time.Time          `bson:"watched_at" json:"watchedAt"`
}

// WatchSession 前端回報的單次觀看時長，餵給觀看統計
type WatchSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	VideoID   primitive.ObjectID `bson:"video_id" json:"videoId"`
	Duration  float64            `bson:"duration" json:"duration"`
	WatchedAt time.Time          `bson:"watched_at" json:"watchedAt"`
}

// WatchStats 單一影片的觀看統計彙總
type WatchStats struct {
	VideoID       primitive.ObjectID `bson:"_id" json:"videoId"`
	TotalDuration float64            `bson:"total_duration" json:"totalDuration"`
	SessionCount  int64              `bson:"session_count" json:"sessionCount"`
}

// WatchEvent kafka 上的觀看事件 (best-effort，寫入失敗不影響播放)
type WatchEvent struct {
	VideoID string    `json:"video_id"`
	UserID  string    `json:"user_id,omitempty"`
	Date    string    `json:"date"`
	At      time.Time `json:"at"`
}

// ProcessingJob 上傳完成後丟進 RabbitMQ 的後製工作，JobID 供 worker 去重
type ProcessingJob struct {
	JobID       string `json:"job_id"`
	VideoID     string `json:"video_id"`
	ObjectName  string `json:"object_name"`
	ContentType string `json:"content_type"`
}

// UploadVideoReq multipart 以外的上傳欄位
type UploadVideoReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Visibility  string   `json:"visibility"`
	ChannelID   string   `json:"channelId"`
	Duration    float64  `json:"duration"`
}

// UpdateVideoReq 部分更新，nil 欄位不動
type UpdateVideoReq struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Visibility  *string   `json:"visibility"`
}

// Creator 影片回應裡內嵌的上傳者投影
type Creator struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Avatar   string             `json:"avatar"`
}

// ChannelCard 影片回應裡內嵌的頻道投影
type ChannelCard struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Avatar string             `json:"avatar"`
}

// VideoDetail 播放頁回應：影片 + 上傳者/頻道投影
type VideoDetail struct {
	Video   *Video      `json:"video"`
	Creator Creator     `json:"creator"`
	Channel ChannelCard `json:"channel"`
}

// TrendingEntry 熱門排行的一列
type TrendingEntry struct {
	Video          *Video      `json:"video"`
	Creator        Creator     `json:"creator"`
	Channel        ChannelCard `json:"channel"`
	PeriodViews    int64       `json:"periodViews"`
	LatestViewDate string      `json:"latestViewDate"`
}
