package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"viewtube/internal/comment/domain"
	"viewtube/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// CommentPubSub 留言事件的 redis pub/sub
type CommentPubSub interface {
	Publish(ctx context.Context, channel string, event domain.CommentEvent) error
	Subscribe(ctx context.Context, channel string, handler func(event domain.CommentEvent)) error
}

type commentPubSub struct {
	client *redis.Client
}

// NewCommentPubSub create CommentPubSub
func NewCommentPubSub(client *redis.Client) CommentPubSub {
	return &commentPubSub{client: client}
}

// Publish 將事件序列化後，發布到影片的 channel
func (r *commentPubSub) Publish(ctx context.Context, channel string, event domain.CommentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe 訂閱影片的留言事件，收到後呼叫 handler 處理。
// ctx 取消時關閉訂閱
func (r *commentPubSub) Subscribe(ctx context.Context, channel string, handler func(event domain.CommentEvent)) error {
	sub := r.client.Subscribe(ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var event domain.CommentEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					logger.Log.Error(fmt.Sprintf("留言事件解析失敗 channel[%s]: %v", channel, err))
					continue
				}
				handler(event)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
