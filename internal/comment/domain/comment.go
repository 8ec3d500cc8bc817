package domain

import (
	"fmt"
	"time"

	authdomain "viewtube/internal/auth/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment 影片底下的一則留言
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VideoID   primitive.ObjectID `bson:"video_id" json:"video_id"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CommentView 留言加上作者投影
type CommentView struct {
	Comment
	Author authdomain.Profile `json:"author"`
}

// CommentPage 單頁留言
type CommentPage struct {
	Items []CommentView `json:"items"`
	Total int64         `json:"total"`
	Page  int64         `json:"page"`
	Limit int64         `json:"limit"`
}

// EventAction pubsub 事件種類
type EventAction string

const (
	// CommentCreated a new comment was posted
	CommentCreated EventAction = "comment.created"
	// CommentDeleted a comment was removed
	CommentDeleted EventAction = "comment.deleted"
)

// CommentEvent 發到 redis channel 的留言事件
type CommentEvent struct {
	Action    EventAction `json:"action"`
	CommentID string      `json:"comment_id"`
	VideoID   string      `json:"video_id"`
	AuthorID  string      `json:"author_id"`
	Content   string      `json:"content,omitempty"`
	At        time.Time   `json:"at"`
}

// ChannelForVideo 每部影片一條 pubsub channel
func ChannelForVideo(videoID string) string {
	return fmt.Sprintf("comments:video:%s", videoID)
}

// CreateCommentReq create comment request
type CreateCommentReq struct {
	Content string `json:"content"`
}
