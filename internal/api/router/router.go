package router

import (
	"context"

	"viewtube/internal/api/handlers"
	commentapp "viewtube/internal/comment/app"
	"viewtube/pkg/middlewares"
	"viewtube/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// Handlers 路由需要的所有 handler
type Handlers struct {
	Auth         *handlers.AuthHandler
	Channel      *handlers.ChannelHandler
	Video        *handlers.VideoHandler
	Comment      *handlers.CommentHandler
	Search       *handlers.SearchHandler
	Subscription *handlers.SubscriptionHandler
	Library      *handlers.LibraryHandler
	CommentWS    *commentapp.CommentWebsocketHandler
}

// RegisterRoutes 注册所有路由
// @title ViewTube API
// @version 1.0
// @description Video sharing platform backend API
// @host localhost:8080
// @BasePath /
func RegisterRoutes(app *fiber.App, tokens *token.Service, corsOrigin string, h Handlers) {
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Authorization, X-Access-Token",
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	required := middlewares.AuthRequired(tokens)
	optional := middlewares.AuthOptional(tokens)

	auth := app.Group("/api/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/logout", h.Auth.Logout)
	auth.Get("/me", required, h.Auth.Me)
	app.Get("/api/users/me", required, h.Auth.Me)

	channel := app.Group("/api/channel")
	channel.Get("/:id/subscribers", h.Channel.Subscribers)
	channel.Get("/:id", h.Channel.Get)
	channel.Use(required)
	channel.Post("/", h.Channel.Create)
	channel.Get("/", h.Channel.Mine)
	channel.Patch("/:id", h.Channel.Update)
	channel.Delete("/:id", h.Channel.Delete)

	videos := app.Group("/api/videos")
	videos.Get("/", h.Video.Trending)
	videos.Post("/upload", required, h.Video.Upload)
	videos.Get("/:id/suggestions", h.Video.Suggestions)
	videos.Get("/:id", optional, h.Video.Get)
	videos.Patch("/:id", required, h.Video.Update)
	videos.Delete("/:id", required, h.Video.Delete)
	videos.Put("/:id/like", required, h.Video.Like)
	videos.Put("/:id/dislike", required, h.Video.Dislike)
	videos.Post("/:id/watch", required, h.Video.LogWatch)
	videos.Get("/:id/stats", required, h.Video.Stats)

	comments := app.Group("/api/comments")
	comments.Get("/:videoId", h.Comment.List)
	comments.Post("/:videoId", required, h.Comment.Create)
	comments.Delete("/:id", required, h.Comment.Delete)

	search := app.Group("/api/search", required)
	search.Get("/suggestions", h.Search.Suggestions)
	search.Get("/history", h.Search.History)
	search.Get("/", h.Search.Search)

	subs := app.Group("/api/subscription", required)
	subs.Post("/", h.Subscription.Subscribe)
	subs.Get("/", h.Subscription.Mine)
	subs.Delete("/:id", h.Subscription.Unsubscribe)

	playlist := app.Group("/api/playlist")
	playlist.Get("/:id", optional, h.Library.GetPlaylist)
	playlist.Use(required)
	playlist.Post("/", h.Library.CreatePlaylist)
	playlist.Get("/", h.Library.MyPlaylists)
	playlist.Patch("/:id", h.Library.UpdatePlaylist)
	playlist.Delete("/:id", h.Library.DeletePlaylist)
	playlist.Post("/:id/videos/:videoId", h.Library.AddToPlaylist)
	playlist.Delete("/:id/videos/:videoId", h.Library.RemoveFromPlaylist)

	saved := app.Group("/api/saved", required)
	saved.Get("/", h.Library.SavedVideos)
	saved.Post("/:videoId", h.Library.SaveVideo)
	saved.Delete("/:videoId", h.Library.UnsaveVideo)

	history := app.Group("/api/history", required)
	history.Get("/", h.Library.WatchHistory)
	history.Delete("/:id", h.Library.DeleteHistoryEntry)
	history.Delete("/", h.Library.ClearHistory)

	// 留言即時推播，訂閱端免登入
	app.Get("/ws/comments/:videoId", websocket.New(func(c *websocket.Conn) {
		h.CommentWS.HandleConnection(context.Background(), c)
	}))
}
