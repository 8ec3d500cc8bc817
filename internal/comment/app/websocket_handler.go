package app

import (
	"context"
	"encoding/json"
	"time"

	"viewtube/internal/comment/domain"
	"viewtube/internal/comment/repository"
	"viewtube/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// CommentWebsocketHandler 把影片的留言事件推給連上來的觀眾
type CommentWebsocketHandler struct {
	pubsub repository.CommentPubSub
}

// NewCommentWebsocketHandler create CommentWebsocketHandler
func NewCommentWebsocketHandler(pubsub repository.CommentPubSub) *CommentWebsocketHandler {
	return &CommentWebsocketHandler{pubsub: pubsub}
}

// HandleConnection 是 WebSocket 連線的進入點：
// 訂閱影片的 pubsub channel，事件直接轉發給 client
func (h *CommentWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	videoID := conn.Params("videoId")
	logger.Log.Info("websocket comment feed", zap.String("videoID", videoID))

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("videoID", videoID))
		conn.Close()
		cancel()
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})

	channel := domain.ChannelForVideo(videoID)
	if err := h.pubsub.Subscribe(ctxClose, channel, func(event domain.CommentEvent) {
		h.sendEvent(conn, event)
	}); err != nil {
		logger.Log.Errorf("subscribe error:", err)
		return
	}

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping message")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	// 觀眾端只收不發，讀取只為了偵測斷線
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
	}
}

func (h *CommentWebsocketHandler) sendEvent(conn *websocket.Conn, event domain.CommentEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Log.Errorf("websocket write error:", err)
	}
}
