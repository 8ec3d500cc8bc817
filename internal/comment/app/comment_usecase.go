package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authrepo "viewtube/internal/auth/repository"
	"viewtube/internal/comment/domain"
	"viewtube/internal/comment/repository"
	videodomain "viewtube/internal/video/domain"
	"viewtube/pkg/database"
	errprocess "viewtube/pkg/err"
	"viewtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	storeTimeout = 5 * time.Second
	cacheTimeout = 2 * time.Second

	maxContentLen = 1000

	defaultPageSize int64 = 20
	maxPageSize     int64 = 50

	firstPageTTL = 15 * time.Minute
)

// VideoFinder 留言前確認影片存在
type VideoFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*videodomain.Video, error)
}

// CommentUseCase 留言的新增、查詢與刪除
type CommentUseCase interface {
	AddComment(ctx context.Context, callerID, videoID string, req domain.CreateCommentReq) (*domain.CommentView, error)
	ListComments(ctx context.Context, videoID string, page, limit int64) (*domain.CommentPage, error)
	DeleteComment(ctx context.Context, callerID, commentID string) error
}

type commentUseCase struct {
	commentRepo repository.CommentRepository
	pubsub      repository.CommentPubSub
	userRepo    authrepo.UserRepository
	videos      VideoFinder
	cache       database.RedisRepository[domain.CommentPage]
}

// NewCommentUseCase create comment use case
func NewCommentUseCase(
	commentRepo repository.CommentRepository,
	pubsub repository.CommentPubSub,
	userRepo authrepo.UserRepository,
	videos VideoFinder,
	cache database.RedisRepository[domain.CommentPage],
) CommentUseCase {
	return &commentUseCase{
		commentRepo: commentRepo,
		pubsub:      pubsub,
		userRepo:    userRepo,
		videos:      videos,
		cache:       cache,
	}
}

// AddComment 在影片底下留言，成功後發 comment.created 事件並作廢第一頁快取
func (c *commentUseCase) AddComment(ctx context.Context, callerID, videoID string, req domain.CreateCommentReq) (*domain.CommentView, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	author, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, errprocess.Validation("invalid video id")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errprocess.Validation("content is required")
	}
	if len(content) > maxContentLen {
		return nil, errprocess.Validation("content is too long")
	}

	if _, err := c.videos.GetByID(ctx, vid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("video not found")
		}
		return nil, errprocess.Dependency("failed to query video", err)
	}

	comment := &domain.Comment{
		VideoID:  vid,
		AuthorID: author,
		Content:  content,
	}
	if _, err := c.commentRepo.Create(ctx, comment); err != nil {
		return nil, errprocess.Dependency("failed to create comment", err)
	}

	c.invalidateFirstPage(videoID)
	c.publish(domain.CommentEvent{
		Action:    domain.CommentCreated,
		CommentID: comment.ID.Hex(),
		VideoID:   videoID,
		AuthorID:  callerID,
		Content:   content,
		At:        time.Now(),
	})

	view := &domain.CommentView{Comment: *comment}
	profiles, err := c.userRepo.ProfilesByIDs(ctx, []primitive.ObjectID{author})
	if err == nil {
		if p, ok := profiles[author]; ok {
			view.Author = p
		}
	}
	return view, nil
}

// ListComments 影片留言分頁，新到舊。
// 第一頁（預設頁長）走 redis 快取，快取故障 fail-open 直接查庫
func (c *commentUseCase) ListComments(ctx context.Context, videoID string, page, limit int64) (*domain.CommentPage, error) {
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, errprocess.Validation("invalid video id")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	cacheable := page == 1 && limit == defaultPageSize
	cacheKey := firstPageKey(videoID)

	if cacheable {
		cacheCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
		cached, err := c.cache.Get(cacheCtx, cacheKey)
		cancel()
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, database.ErrCacheMiss) {
			logger.Log.Warn(fmt.Sprintf("留言快取讀取失敗 key[%s]: %v", cacheKey, err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	comments, total, err := c.commentRepo.ListByVideo(ctx, vid, (page-1)*limit, limit)
	if err != nil {
		return nil, errprocess.Dependency("failed to list comments", err)
	}

	authorIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, cm := range comments {
		authorIDs = append(authorIDs, cm.AuthorID)
	}
	authorByID, err := c.userRepo.ProfilesByIDs(ctx, authorIDs)
	if err != nil {
		return nil, errprocess.Dependency("failed to load comment authors", err)
	}

	items := make([]domain.CommentView, 0, len(comments))
	for _, cm := range comments {
		view := domain.CommentView{Comment: cm}
		if p, ok := authorByID[cm.AuthorID]; ok {
			view.Author = p
		}
		items = append(items, view)
	}

	result := &domain.CommentPage{Items: items, Total: total, Page: page, Limit: limit}

	if cacheable {
		cacheCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
		if err := c.cache.Set(cacheCtx, cacheKey, *result, firstPageTTL); err != nil {
			logger.Log.Warn(fmt.Sprintf("留言快取寫入失敗 key[%s]: %v", cacheKey, err))
		}
		cancel()
	}
	return result, nil
}

// DeleteComment 只有作者本人能刪自己的留言
func (c *commentUseCase) DeleteComment(ctx context.Context, callerID, commentID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	caller, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return errprocess.Validation("invalid user id")
	}
	id, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return errprocess.Validation("invalid comment id")
	}

	comment, err := c.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errprocess.NotFound("comment not found")
		}
		return errprocess.Dependency("failed to query comment", err)
	}
	if comment.AuthorID != caller {
		return errprocess.Authorization("only the author can delete this comment")
	}

	if err := c.commentRepo.Delete(ctx, id); err != nil {
		return errprocess.Dependency("failed to delete comment", err)
	}

	videoID := comment.VideoID.Hex()
	c.invalidateFirstPage(videoID)
	c.publish(domain.CommentEvent{
		Action:    domain.CommentDeleted,
		CommentID: commentID,
		VideoID:   videoID,
		AuthorID:  callerID,
		At:        time.Now(),
	})
	return nil
}

// invalidateFirstPage 快取作廢失敗只記 log，TTL 會自然收斂
func (c *commentUseCase) invalidateFirstPage(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	key := firstPageKey(videoID)
	if err := c.cache.Del(ctx, key); err != nil {
		logger.Log.Warn(fmt.Sprintf("留言快取作廢失敗 key[%s]: %v", key, err))
	}
}

// publish 事件為 best-effort，訂閱端斷線不影響留言本身
func (c *commentUseCase) publish(event domain.CommentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	channel := domain.ChannelForVideo(event.VideoID)
	if err := c.pubsub.Publish(ctx, channel, event); err != nil {
		logger.Log.Warn(fmt.Sprintf("留言事件發布失敗 channel[%s]: %v", channel, err))
	}
}

func firstPageKey(videoID string) string {
	return fmt.Sprintf("comments:video:%s:p1", videoID)
}
